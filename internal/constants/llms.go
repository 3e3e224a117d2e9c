package constants

const (
	OpenAI = "openai"
	Gemini = "gemini"
)

// OpenAI defaults
const (
	OpenAIModel               = "gpt-4o"
	OpenAIMaxCompletionTokens = 4096
	OpenAITemperature         = 0.7
)

// Gemini defaults
const (
	GeminiModel               = "gemini-1.5-pro"
	GeminiMaxCompletionTokens = 4096
	GeminiTemperature         = 0.7
)

// Title derivation runs as a one-shot completion at a fixed low temperature,
// independent of whatever settings the conversational turn itself used.
const (
	TitleModel       = "gpt-4o-mini"
	TitleTemperature = 0.2
	TitleMaxLength   = 80
)
