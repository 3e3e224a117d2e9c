package services

import (
	"context"
	"errors"
	"genbot-ai/internal/models"
	"genbot-ai/internal/utils"
	"log"
	"strings"
)

// BotResolver finds bots by name, caching hits so hot-path session creation
// does not touch the database for every turn.
type BotResolver interface {
	GetBot(ctx context.Context, name string, createIfMissing bool) (*models.Bot, error)
	UpdateBot(ctx context.Context, bot *models.Bot) error
}

type botResolver struct {
	storage       ChatStorageService
	cache         BotCache
	accountID     uint64
	defaultPrompt string
}

func NewBotResolver(storage ChatStorageService, cache BotCache, accountID uint64, defaultPrompt string) BotResolver {
	return &botResolver{
		storage:       storage,
		cache:         cache,
		accountID:     accountID,
		defaultPrompt: defaultPrompt,
	}
}

func (r *botResolver) GetBot(ctx context.Context, name string, createIfMissing bool) (*models.Bot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBotNotFound
	}

	if bot, ok := r.cache.Get(ctx, r.accountID, name); ok {
		return bot, nil
	}

	bot, err := r.storage.GetBotByName(ctx, r.accountID, name)
	if err == nil {
		r.cache.Set(ctx, bot)
		return bot, nil
	}
	if !errors.Is(err, ErrBotNotFound) {
		return nil, err
	}
	if !createIfMissing {
		return nil, ErrBotNotFound
	}

	bot = &models.Bot{
		AccountID: r.accountID,
		Name:      name,
	}
	if r.defaultPrompt != "" {
		bot.SystemPrompt = utils.ToStringPtr(r.defaultPrompt)
	}
	if err := r.storage.CreateBot(ctx, bot); err != nil {
		log.Printf("BotResolver -> GetBot -> failed to create bot %s: %v", name, err)
		return nil, err
	}
	r.cache.Set(ctx, bot)
	return bot, nil
}

// UpdateBot writes through to storage and drops the cached copy so the next
// lookup sees the new configuration.
func (r *botResolver) UpdateBot(ctx context.Context, bot *models.Bot) error {
	if bot == nil {
		return ErrBotNotFound
	}
	if err := r.storage.UpdateBot(ctx, bot); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, bot.AccountID, bot.Name)
	return nil
}
