package services

import (
	"context"
	"genbot-ai/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStorage wraps a real storage service and counts name lookups.
type countingStorage struct {
	ChatStorageService
	nameLookups int
}

func (s *countingStorage) GetBotByName(ctx context.Context, accountID uint64, name string) (*models.Bot, error) {
	s.nameLookups++
	return s.ChatStorageService.GetBotByName(ctx, accountID, name)
}

func newTestResolver(t *testing.T) (BotResolver, ChatStorageService, *countingStorage) {
	t.Helper()
	storage, _ := newTestStorage(t)
	counting := &countingStorage{ChatStorageService: storage}
	resolver := NewBotResolver(counting, NewMemoryBotCache(time.Minute), 1, "You answer questions about lighthouses.")
	return resolver, storage, counting
}

func TestResolverCreatesAndCaches(t *testing.T) {
	resolver, storage, counting := newTestResolver(t)

	bot, err := resolver.GetBot(context.Background(), "Harbor Bot", true)
	require.NoError(t, err)
	require.NotZero(t, bot.ID)
	require.NotNil(t, bot.SystemPrompt)
	assert.Equal(t, "You answer questions about lighthouses.", *bot.SystemPrompt)

	// second lookup is served from the cache
	again, err := resolver.GetBot(context.Background(), "Harbor Bot", false)
	require.NoError(t, err)
	assert.Equal(t, bot.ID, again.ID)
	assert.Equal(t, 1, counting.nameLookups)

	stored, err := storage.GetBotByName(context.Background(), 1, "Harbor Bot")
	require.NoError(t, err)
	assert.Equal(t, bot.ID, stored.ID)
}

func TestResolverMissingBot(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	_, err := resolver.GetBot(context.Background(), "Nobody", false)
	assert.ErrorIs(t, err, ErrBotNotFound)

	_, err = resolver.GetBot(context.Background(), "  ", true)
	assert.ErrorIs(t, err, ErrBotNotFound)
}

func TestResolverUpdateInvalidates(t *testing.T) {
	resolver, _, counting := newTestResolver(t)

	bot, err := resolver.GetBot(context.Background(), "Harbor Bot", true)
	require.NoError(t, err)

	prompt := "New instructions."
	bot.SystemPrompt = &prompt
	require.NoError(t, resolver.UpdateBot(context.Background(), bot))

	refreshed, err := resolver.GetBot(context.Background(), "Harbor Bot", false)
	require.NoError(t, err)
	require.NotNil(t, refreshed.SystemPrompt)
	assert.Equal(t, "New instructions.", *refreshed.SystemPrompt)
	// the post-update lookup went back to storage
	assert.Equal(t, 2, counting.nameLookups)
}

func TestMemoryBotCacheTTL(t *testing.T) {
	cache := NewMemoryBotCache(10 * time.Millisecond)
	cache.Set(context.Background(), &models.Bot{AccountID: 1, Name: "Harbor Bot"})

	_, ok := cache.Get(context.Background(), 1, "Harbor Bot")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get(context.Background(), 1, "Harbor Bot")
	assert.False(t, ok)
}
