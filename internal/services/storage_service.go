package services

import (
	"context"
	"fmt"
	"genbot-ai/internal/constants"
	"genbot-ai/internal/models"
	"genbot-ai/internal/repositories"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrVersionConflict mirrors the repository sentinel so callers can match it
// without importing the repositories package.
var ErrVersionConflict = repositories.ErrVersionConflict

// ChatStorageService owns every database write for bots, sessions, and turns.
// A turn's message and media rows commit in a single transaction.
type ChatStorageService interface {
	CreateBot(ctx context.Context, bot *models.Bot) error
	GetBot(ctx context.Context, id uint64) (*models.Bot, error)
	GetBotByName(ctx context.Context, accountID uint64, name string) (*models.Bot, error)
	UpdateBot(ctx context.Context, bot *models.Bot) error
	DeleteBot(ctx context.Context, id uint64) error

	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, id uint64) (*models.ChatSession, error)
	UpdateSession(ctx context.Context, session *models.ChatSession) error
	UpdateSessionTitle(ctx context.Context, sessionID uint64, title string) error
	DeleteSession(ctx context.Context, id uint64) error
	ListSessions(ctx context.Context, botID uint64, filter repositories.SessionFilter, orderBy string, asc bool, limit int) ([]*models.ChatSession, error)

	AddMessage(ctx context.Context, sessionID uint64, message *models.ChatMessage, media []*models.MessageMedia) (*models.ChatMessage, error)
}

type chatStorageService struct {
	db           *gorm.DB
	botRepo      repositories.BotRepository
	sessionRepo  repositories.SessionRepository
	userResolver UserResolver
}

func NewChatStorageService(db *gorm.DB, botRepo repositories.BotRepository, sessionRepo repositories.SessionRepository, userResolver UserResolver) ChatStorageService {
	return &chatStorageService{
		db:           db,
		botRepo:      botRepo,
		sessionRepo:  sessionRepo,
		userResolver: userResolver,
	}
}

func (s *chatStorageService) CreateBot(ctx context.Context, bot *models.Bot) error {
	if bot == nil {
		return ErrNilMessage
	}
	if strings.TrimSpace(bot.Name) == "" {
		return fmt.Errorf("bot name cannot be empty")
	}
	bot.StampNew(s.userResolver.GetUserEmail(ctx), time.Now().UTC())
	return s.botRepo.Create(ctx, bot)
}

func (s *chatStorageService) GetBot(ctx context.Context, id uint64) (*models.Bot, error) {
	if id == 0 {
		return nil, ErrInvalidBotID
	}
	bot, err := s.botRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, ErrBotNotFound
	}
	return bot, nil
}

func (s *chatStorageService) GetBotByName(ctx context.Context, accountID uint64, name string) (*models.Bot, error) {
	bot, err := s.botRepo.FindByName(ctx, accountID, name)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, ErrBotNotFound
	}
	return bot, nil
}

func (s *chatStorageService) UpdateBot(ctx context.Context, bot *models.Bot) error {
	if bot == nil || bot.ID == 0 {
		return ErrInvalidBotID
	}
	bot.StampUpdate(s.userResolver.GetUserEmail(ctx), time.Now().UTC())
	return s.botRepo.Update(ctx, bot)
}

func (s *chatStorageService) DeleteBot(ctx context.Context, id uint64) error {
	if id == 0 {
		return ErrInvalidBotID
	}
	return s.botRepo.Delete(ctx, id)
}

func (s *chatStorageService) CreateSession(ctx context.Context, session *models.ChatSession) error {
	if session == nil {
		return ErrNilSession
	}
	if session.BotID == 0 {
		return ErrMissingBotReference
	}
	if strings.TrimSpace(session.Title) == "" {
		session.Title = constants.DefaultSessionTitle
	}
	session.StampNew(s.userResolver.GetUserEmail(ctx), time.Now().UTC())
	return s.sessionRepo.Create(ctx, session)
}

func (s *chatStorageService) GetSession(ctx context.Context, id uint64) (*models.ChatSession, error) {
	if id == 0 {
		return nil, ErrInvalidSessionID
	}
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.BotID != 0 {
		bot, err := s.botRepo.FindByID(ctx, session.BotID)
		if err != nil {
			return nil, err
		}
		session.Bot = bot
	}
	return session, nil
}

func (s *chatStorageService) UpdateSession(ctx context.Context, session *models.ChatSession) error {
	if session == nil {
		return ErrNilSession
	}
	if session.ID == 0 {
		return ErrInvalidSessionID
	}
	user := s.userResolver.GetUserEmail(ctx)
	session.UpdatedBy = user
	session.UtcUpdatedOn = time.Now().UTC()
	return s.sessionRepo.Update(ctx, session)
}

func (s *chatStorageService) UpdateSessionTitle(ctx context.Context, sessionID uint64, title string) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Title = title
	return s.UpdateSession(ctx, session)
}

func (s *chatStorageService) DeleteSession(ctx context.Context, id uint64) error {
	if id == 0 {
		return ErrInvalidSessionID
	}
	return s.sessionRepo.Delete(ctx, id)
}

func (s *chatStorageService) ListSessions(ctx context.Context, botID uint64, filter repositories.SessionFilter, orderBy string, asc bool, limit int) ([]*models.ChatSession, error) {
	if botID == 0 {
		return nil, ErrInvalidBotID
	}
	return s.sessionRepo.FindByBotID(ctx, botID, filter, orderBy, asc, limit)
}

// AddMessage persists a completed turn. The message, its media rows, and the
// session's has-media flag commit together or not at all.
func (s *chatStorageService) AddMessage(ctx context.Context, sessionID uint64, message *models.ChatMessage, media []*models.MessageMedia) (*models.ChatMessage, error) {
	if message == nil {
		return nil, ErrNilMessage
	}
	if sessionID == 0 {
		return nil, ErrInvalidSessionID
	}

	user := s.userResolver.GetUserEmail(ctx)
	now := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.sessionRepo.WithTx(tx)

		var session models.ChatSession
		if err := tx.First(&session, sessionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSessionNotFound
			}
			return err
		}

		message.ChatSessionID = sessionID
		message.StampNew(user, now)
		if err := txRepo.CreateMessage(ctx, message); err != nil {
			return fmt.Errorf("failed to persist message: %w", err)
		}

		for _, m := range media {
			m.ChatMessageID = message.ID
			m.StampNew(user, now)
			if err := txRepo.CreateMedia(ctx, m); err != nil {
				return fmt.Errorf("failed to persist media %s: %w", m.FileName, err)
			}
		}

		if len(media) > 0 && !session.HasMedia {
			session.HasMedia = true
			session.UpdatedBy = user
			session.UtcUpdatedOn = now
			if err := txRepo.Update(ctx, &session); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ChatStorageService -> AddMessage -> session %d: %v", sessionID, err)
		return nil, err
	}

	message.Media = make([]models.MessageMedia, 0, len(media))
	for _, m := range media {
		message.Media = append(message.Media, *m)
	}
	return message, nil
}
