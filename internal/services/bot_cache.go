package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"genbot-ai/internal/models"
	"genbot-ai/pkg/redis"
	"log"
	"sync"
	"time"
)

// BotCache holds resolved bots so repeated lookups skip the database. Entries
// expire after the configured TTL.
type BotCache interface {
	Get(ctx context.Context, accountID uint64, name string) (*models.Bot, bool)
	Set(ctx context.Context, bot *models.Bot)
	Invalidate(ctx context.Context, accountID uint64, name string)
}

func botCacheKey(accountID uint64, name string) string {
	return fmt.Sprintf("bot:%d:%s", accountID, name)
}

type redisBotCache struct {
	redisRepo redis.IRedisRepositories
	ttl       time.Duration
}

func NewRedisBotCache(redisRepo redis.IRedisRepositories, ttl time.Duration) BotCache {
	return &redisBotCache{
		redisRepo: redisRepo,
		ttl:       ttl,
	}
}

func (c *redisBotCache) Get(ctx context.Context, accountID uint64, name string) (*models.Bot, bool) {
	data, err := c.redisRepo.Get(botCacheKey(accountID, name), ctx)
	if err != nil {
		if !errors.Is(err, redis.ErrKeyNotFound) {
			log.Printf("BotCache -> Get -> redis error for bot %s: %v", name, err)
		}
		return nil, false
	}

	var bot models.Bot
	if err := json.Unmarshal([]byte(data), &bot); err != nil {
		log.Printf("BotCache -> Get -> failed to decode cached bot %s: %v", name, err)
		return nil, false
	}
	return &bot, true
}

func (c *redisBotCache) Set(ctx context.Context, bot *models.Bot) {
	data, err := json.Marshal(bot)
	if err != nil {
		log.Printf("BotCache -> Set -> failed to encode bot %s: %v", bot.Name, err)
		return
	}
	if err := c.redisRepo.Set(botCacheKey(bot.AccountID, bot.Name), data, c.ttl, ctx); err != nil {
		log.Printf("BotCache -> Set -> redis error for bot %s: %v", bot.Name, err)
	}
}

func (c *redisBotCache) Invalidate(ctx context.Context, accountID uint64, name string) {
	if err := c.redisRepo.Del(botCacheKey(accountID, name), ctx); err != nil {
		log.Printf("BotCache -> Invalidate -> redis error for bot %s: %v", name, err)
	}
}

type memoryBotCacheEntry struct {
	bot       *models.Bot
	expiresAt time.Time
}

type memoryBotCache struct {
	mu      sync.RWMutex
	entries map[string]memoryBotCacheEntry
	ttl     time.Duration
}

// NewMemoryBotCache is the in-process fallback used when Redis is not
// configured, and the cache of choice in tests.
func NewMemoryBotCache(ttl time.Duration) BotCache {
	return &memoryBotCache{
		entries: make(map[string]memoryBotCacheEntry),
		ttl:     ttl,
	}
}

func (c *memoryBotCache) Get(_ context.Context, accountID uint64, name string) (*models.Bot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[botCacheKey(accountID, name)]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.bot, true
}

func (c *memoryBotCache) Set(_ context.Context, bot *models.Bot) {
	c.mu.Lock()
	c.entries[botCacheKey(bot.AccountID, bot.Name)] = memoryBotCacheEntry{
		bot:       bot,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *memoryBotCache) Invalidate(_ context.Context, accountID uint64, name string) {
	c.mu.Lock()
	delete(c.entries, botCacheKey(accountID, name))
	c.mu.Unlock()
}
