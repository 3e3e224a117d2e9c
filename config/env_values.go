package config

import (
	"fmt"
	"genbot-ai/internal/constants"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Environment struct {
	// Server configs
	IsDocker          bool
	Port              string
	Environment       string
	CorsAllowedOrigin string

	// Auth configs
	JWTSecret                 string
	JWTExpirationMilliseconds int

	// Database configs
	DatabaseType string
	DatabaseDSN  string

	// Redis configs
	RedisEnabled       bool
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	BotCacheTTLSeconds int

	// Bot configs
	DefaultAccountID        uint64
	DefaultBotName          string
	DefaultBotSystemPrompt  string
	CreateDefaultBotOnStart bool

	// LLM configs
	DefaultLLMClient string

	// OpenAI configs
	OpenAIAPIKey              string
	OpenAIModel               string
	OpenAIMaxCompletionTokens int
	OpenAITemperature         float64

	// Gemini configs
	GeminiAPIKey              string
	GeminiModel               string
	GeminiMaxCompletionTokens int
	GeminiTemperature         float64
}

var Env Environment

// LoadEnv loads environment variables from .env file if present
// and validates required variables
func LoadEnv() error {
	// Check if running in Docker
	Env.IsDocker = os.Getenv("IS_DOCKER") == "true"

	// Load .env file only if not running in Docker
	if !Env.IsDocker {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Warning: .env file not found: %v\n", err)
		}
	}

	// Server configs
	Env.Port = getEnvWithDefault("PORT", "3000")
	Env.Environment = getEnvWithDefault("ENVIRONMENT", "DEVELOPMENT")
	Env.CorsAllowedOrigin = getEnvWithDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	// Auth configs
	Env.JWTSecret = getEnvWithDefault("JWT_SECRET", "genbot_jwt_secret")
	Env.JWTExpirationMilliseconds = getIntEnvWithDefault("JWT_EXPIRATION_MILLISECONDS", 1000*60*60*24*10) // 10 days default

	// Database configs
	Env.DatabaseType = getEnvWithDefault("GENBOT_DB_TYPE", "postgres")
	Env.DatabaseDSN = getEnvWithDefault("GENBOT_DB_DSN", "host=localhost user=genbot password=genbot dbname=genbot port=5432 sslmode=disable")

	// Redis configs
	Env.RedisEnabled = getEnvWithDefault("GENBOT_REDIS_ENABLED", "false") == "true"
	Env.RedisHost = getEnvWithDefault("GENBOT_REDIS_HOST", "localhost")
	Env.RedisPort = getEnvWithDefault("GENBOT_REDIS_PORT", "6379")
	Env.RedisPassword = getEnvWithDefault("GENBOT_REDIS_PASSWORD", "")
	Env.BotCacheTTLSeconds = getIntEnvWithDefault("GENBOT_BOT_CACHE_TTL_SECONDS", 300)

	// Bot configs
	Env.DefaultAccountID = uint64(getIntEnvWithDefault("GENBOT_DEFAULT_ACCOUNT_ID", int(constants.DefaultAccountID)))
	Env.DefaultBotName = getEnvWithDefault("GENBOT_DEFAULT_BOT_NAME", constants.DefaultBotName)
	Env.DefaultBotSystemPrompt = getEnvWithDefault("GENBOT_DEFAULT_BOT_SYSTEM_PROMPT", "")
	Env.CreateDefaultBotOnStart = getEnvWithDefault("GENBOT_CREATE_DEFAULT_BOT", "true") == "true"

	// LLM configs
	Env.DefaultLLMClient = getEnvWithDefault("DEFAULT_LLM_CLIENT", constants.OpenAI)

	// OpenAI configs
	Env.OpenAIAPIKey = getEnvWithDefault("OPENAI_API_KEY", "")
	Env.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", constants.OpenAIModel)
	Env.OpenAIMaxCompletionTokens = getIntEnvWithDefault("OPENAI_MAX_COMPLETION_TOKENS", constants.OpenAIMaxCompletionTokens)
	Env.OpenAITemperature = getFloatEnvWithDefault("OPENAI_TEMPERATURE", constants.OpenAITemperature)

	// Gemini configs
	Env.GeminiAPIKey = getEnvWithDefault("GEMINI_API_KEY", "")
	Env.GeminiModel = getEnvWithDefault("GEMINI_MODEL", constants.GeminiModel)
	Env.GeminiMaxCompletionTokens = getIntEnvWithDefault("GEMINI_MAX_COMPLETION_TOKENS", constants.GeminiMaxCompletionTokens)
	Env.GeminiTemperature = getFloatEnvWithDefault("GEMINI_TEMPERATURE", constants.GeminiTemperature)

	return validateConfig()
}

// Helper functions to get environment variables with defaults and validation
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvWithDefault(key string, defaultValue int) int {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(strValue)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}
	return value
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %f\n", key, defaultValue)
		return defaultValue
	}
	return value
}

func validateConfig() error {
	if Env.DatabaseDSN == "" {
		return fmt.Errorf("GENBOT_DB_DSN must not be empty")
	}

	// Validate JWT expiration
	if Env.JWTExpirationMilliseconds <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MILLISECONDS must be positive, got: %d", Env.JWTExpirationMilliseconds)
	}

	switch Env.DefaultLLMClient {
	case constants.OpenAI, constants.Gemini:
	default:
		return fmt.Errorf("unsupported DEFAULT_LLM_CLIENT: %s", Env.DefaultLLMClient)
	}

	if Env.DefaultLLMClient == constants.OpenAI && Env.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when OpenAI is the default client")
	}
	if Env.DefaultLLMClient == constants.Gemini && Env.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when Gemini is the default client")
	}

	return nil
}
