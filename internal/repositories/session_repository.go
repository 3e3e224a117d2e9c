package repositories

import (
	"context"
	"errors"
	"genbot-ai/internal/models"

	"gorm.io/gorm"
)

// ErrVersionConflict is returned when an update targets a row whose version
// column no longer matches the caller's copy.
var ErrVersionConflict = errors.New("record was modified by another writer")

// SessionFilter narrows a session listing.
type SessionFilter struct {
	TitleContains string
	HasMedia      *bool
}

type SessionRepository interface {
	WithTx(tx *gorm.DB) SessionRepository
	Create(ctx context.Context, session *models.ChatSession) error
	Update(ctx context.Context, session *models.ChatSession) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*models.ChatSession, error)
	FindByBotID(ctx context.Context, botID uint64, filter SessionFilter, orderBy string, asc bool, limit int) ([]*models.ChatSession, error)
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	CreateMedia(ctx context.Context, media *models.MessageMedia) error
	FindMessagesBySession(ctx context.Context, sessionID uint64) ([]*models.ChatMessage, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction so that a turn's
// writes commit or roll back together.
func (r *sessionRepository) WithTx(tx *gorm.DB) SessionRepository {
	return &sessionRepository{db: tx}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) Update(ctx context.Context, session *models.ChatSession) error {
	expected := session.Version
	session.Version = expected + 1
	result := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("id = ? AND version = ?", session.ID, expected).
		Updates(map[string]interface{}{
			"title":          session.Title,
			"has_media":      session.HasMedia,
			"updated_by":     session.UpdatedBy,
			"utc_updated_on": session.UtcUpdatedOn,
			"version":        session.Version,
		})
	if result.Error != nil {
		session.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		session.Version = expected
		return ErrVersionConflict
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var messageIDs []uint64
		if err := tx.Model(&models.ChatMessage{}).
			Where("chat_session_id = ?", id).
			Pluck("id", &messageIDs).Error; err != nil {
			return err
		}
		if len(messageIDs) > 0 {
			if err := tx.Where("chat_message_id IN ?", messageIDs).
				Delete(&models.MessageMedia{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("chat_session_id = ?", id).
			Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatSession{}, id).Error
	})
}

func (r *sessionRepository) FindByID(ctx context.Context, id uint64) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("chat_messages.id ASC")
		}).
		Preload("Messages.Media").
		First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

var sessionOrderColumns = map[string]string{
	"id":             "id",
	"title":          "title",
	"utc_created_on": "utc_created_on",
	"utc_updated_on": "utc_updated_on",
}

func (r *sessionRepository) FindByBotID(ctx context.Context, botID uint64, filter SessionFilter, orderBy string, asc bool, limit int) ([]*models.ChatSession, error) {
	var sessions []*models.ChatSession
	query := r.db.WithContext(ctx).Where("bot_id = ?", botID)
	if filter.TitleContains != "" {
		query = query.Where("title LIKE ?", "%"+filter.TitleContains+"%")
	}
	if filter.HasMedia != nil {
		query = query.Where("has_media = ?", *filter.HasMedia)
	}

	column, ok := sessionOrderColumns[orderBy]
	if !ok {
		column = "utc_created_on"
	}
	direction := "DESC"
	if asc {
		direction = "ASC"
	}
	query = query.Order(column + " " + direction)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *sessionRepository) CreateMedia(ctx context.Context, media *models.MessageMedia) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *sessionRepository) FindMessagesBySession(ctx context.Context, sessionID uint64) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("Media").
		Where("chat_session_id = ?", sessionID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
