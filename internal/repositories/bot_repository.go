package repositories

import (
	"context"
	"errors"
	"genbot-ai/internal/models"

	"gorm.io/gorm"
)

type BotRepository interface {
	Create(ctx context.Context, bot *models.Bot) error
	Update(ctx context.Context, bot *models.Bot) error
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*models.Bot, error)
	FindByName(ctx context.Context, accountID uint64, name string) (*models.Bot, error)
	FindByAccountID(ctx context.Context, accountID uint64) ([]*models.Bot, error)
}

type botRepository struct {
	db *gorm.DB
}

func NewBotRepository(db *gorm.DB) BotRepository {
	return &botRepository{db: db}
}

func (r *botRepository) Create(ctx context.Context, bot *models.Bot) error {
	return r.db.WithContext(ctx).Create(bot).Error
}

func (r *botRepository) Update(ctx context.Context, bot *models.Bot) error {
	return r.db.WithContext(ctx).Save(bot).Error
}

func (r *botRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Bot{}, id).Error
}

func (r *botRepository) FindByID(ctx context.Context, id uint64) (*models.Bot, error) {
	var bot models.Bot
	err := r.db.WithContext(ctx).First(&bot, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bot, nil
}

func (r *botRepository) FindByName(ctx context.Context, accountID uint64, name string) (*models.Bot, error) {
	var bot models.Bot
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND name = ?", accountID, name).
		First(&bot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bot, nil
}

func (r *botRepository) FindByAccountID(ctx context.Context, accountID uint64) ([]*models.Bot, error) {
	var bots []*models.Bot
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("name ASC").
		Find(&bots).Error
	if err != nil {
		return nil, err
	}
	return bots, nil
}
