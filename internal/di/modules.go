package di

import (
	"genbot-ai/config"
	"genbot-ai/internal/apis/handlers"
	"genbot-ai/internal/constants"
	"genbot-ai/internal/repositories"
	"genbot-ai/internal/services"
	"genbot-ai/internal/utils"
	"genbot-ai/pkg/database"
	"genbot-ai/pkg/llm"
	"genbot-ai/pkg/media"
	"genbot-ai/pkg/redis"
	"log"
	"time"

	"gorm.io/gorm"

	"go.uber.org/dig"
)

var DiContainer *dig.Container

func Initialize() {
	DiContainer = dig.New()

	// Initialize the relational store
	db, err := database.Connect(database.Config{
		Type: config.Env.DatabaseType,
		DSN:  config.Env.DatabaseDSN,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := repositories.InitializeStore(db, config.Env.CreateDefaultBotOnStart); err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	// Initialize the bot cache. Redis when configured, in-process otherwise.
	cacheTTL := time.Duration(config.Env.BotCacheTTLSeconds) * time.Second
	var botCache services.BotCache
	if config.Env.RedisEnabled {
		redisClient, err := redis.RedisClient(config.Env.RedisHost, config.Env.RedisPort, config.Env.RedisPassword)
		if err != nil {
			log.Fatalf("Failed to initialize Redis client: %v", err)
		}
		redisRepo := redis.NewRedisRepositories(redisClient)
		if err := DiContainer.Provide(func() redis.IRedisRepositories { return redisRepo }); err != nil {
			log.Fatalf("Failed to provide Redis repositories: %v", err)
		}
		botCache = services.NewRedisBotCache(redisRepo, cacheTTL)
	} else {
		botCache = services.NewMemoryBotCache(cacheTTL)
	}

	jwtService := utils.NewJWTService(
		config.Env.JWTSecret,
		time.Millisecond*time.Duration(config.Env.JWTExpirationMilliseconds),
	)

	// Provide all dependencies to the container
	if err := DiContainer.Provide(func() *gorm.DB { return db }); err != nil {
		log.Fatalf("Failed to provide database: %v", err)
	}

	if err := DiContainer.Provide(func() services.BotCache { return botCache }); err != nil {
		log.Fatalf("Failed to provide bot cache: %v", err)
	}

	if err := DiContainer.Provide(func() utils.JWTService { return jwtService }); err != nil {
		log.Fatalf("Failed to provide JWT service: %v", err)
	}

	if err := DiContainer.Provide(func(db *gorm.DB) repositories.BotRepository {
		return repositories.NewBotRepository(db)
	}); err != nil {
		log.Fatalf("Failed to provide bot repository: %v", err)
	}

	if err := DiContainer.Provide(func(db *gorm.DB) repositories.SessionRepository {
		return repositories.NewSessionRepository(db)
	}); err != nil {
		log.Fatalf("Failed to provide session repository: %v", err)
	}

	if err := DiContainer.Provide(func() services.UserResolver {
		return services.NewContextUserResolver("system")
	}); err != nil {
		log.Fatalf("Failed to provide user resolver: %v", err)
	}

	// Add LLM Manager
	if err := DiContainer.Provide(func() *llm.Manager {
		manager := llm.NewManager()

		switch config.Env.DefaultLLMClient {
		case constants.OpenAI:
			// Register default OpenAI client
			err := manager.RegisterClient(constants.OpenAI, llm.Config{
				Provider:            constants.OpenAI,
				Model:               config.Env.OpenAIModel,
				APIKey:              config.Env.OpenAIAPIKey,
				MaxCompletionTokens: config.Env.OpenAIMaxCompletionTokens,
				Temperature:         config.Env.OpenAITemperature,
			})
			if err != nil {
				log.Printf("Warning: Failed to register OpenAI client: %v", err)
			}
		case constants.Gemini:
			// Register default Gemini client
			err := manager.RegisterClient(constants.Gemini, llm.Config{
				Provider:            constants.Gemini,
				Model:               config.Env.GeminiModel,
				APIKey:              config.Env.GeminiAPIKey,
				MaxCompletionTokens: config.Env.GeminiMaxCompletionTokens,
				Temperature:         config.Env.GeminiTemperature,
			})
			if err != nil {
				log.Printf("Warning: Failed to register Gemini client: %v", err)
			}
		}
		return manager
	}); err != nil {
		log.Fatalf("Failed to provide LLM manager: %v", err)
	}

	// Media uploader backed by the Gemini File API
	if err := DiContainer.Provide(func() (media.Uploader, error) {
		return media.NewGeminiMediaService(config.Env.GeminiAPIKey)
	}); err != nil {
		log.Fatalf("Failed to provide media uploader: %v", err)
	}

	if err := DiContainer.Provide(func(
		db *gorm.DB,
		botRepo repositories.BotRepository,
		sessionRepo repositories.SessionRepository,
		userResolver services.UserResolver,
	) services.ChatStorageService {
		return services.NewChatStorageService(db, botRepo, sessionRepo, userResolver)
	}); err != nil {
		log.Fatalf("Failed to provide chat storage service: %v", err)
	}

	if err := DiContainer.Provide(func(storage services.ChatStorageService, cache services.BotCache) services.BotResolver {
		return services.NewBotResolver(storage, cache, config.Env.DefaultAccountID, config.Env.DefaultBotSystemPrompt)
	}); err != nil {
		log.Fatalf("Failed to provide bot resolver: %v", err)
	}

	if err := DiContainer.Provide(func(uploader media.Uploader) services.ContextBuilder {
		return services.NewContextBuilder(uploader)
	}); err != nil {
		log.Fatalf("Failed to provide context builder: %v", err)
	}

	if err := DiContainer.Provide(func(llmManager *llm.Manager) (services.TitleService, error) {
		llmClient, err := llmManager.GetClient(config.Env.DefaultLLMClient)
		if err != nil {
			return nil, err
		}
		return services.NewTitleService(llmClient), nil
	}); err != nil {
		log.Fatalf("Failed to provide title service: %v", err)
	}

	if err := DiContainer.Provide(func(
		contextBuilder services.ContextBuilder,
		storage services.ChatStorageService,
		titleService services.TitleService,
		resolver services.BotResolver,
		llmManager *llm.Manager,
	) (services.ChatService, error) {
		llmClient, err := llmManager.GetClient(config.Env.DefaultLLMClient)
		if err != nil {
			return nil, err
		}
		return services.NewChatService(llmClient, contextBuilder, storage, titleService, resolver), nil
	}); err != nil {
		log.Fatalf("Failed to provide chat service: %v", err)
	}

	// Provide handlers
	if err := DiContainer.Provide(func(storage services.ChatStorageService, resolver services.BotResolver) *handlers.BotHandler {
		return handlers.NewBotHandler(storage, resolver)
	}); err != nil {
		log.Fatalf("Failed to provide bot handler: %v", err)
	}

	if err := DiContainer.Provide(func(chatService services.ChatService, storage services.ChatStorageService) *handlers.ChatHandler {
		return handlers.NewChatHandler(chatService, storage)
	}); err != nil {
		log.Fatalf("Failed to provide chat handler: %v", err)
	}
}

// GetChatHandler retrieves the ChatHandler from the DI container
func GetChatHandler() (*handlers.ChatHandler, error) {
	var handler *handlers.ChatHandler
	err := DiContainer.Invoke(func(h *handlers.ChatHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

// GetBotHandler retrieves the BotHandler from the DI container
func GetBotHandler() (*handlers.BotHandler, error) {
	var handler *handlers.BotHandler
	err := DiContainer.Invoke(func(h *handlers.BotHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}
