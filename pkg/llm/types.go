package llm

import (
	"context"
)

// Client defines the interface for LLM completions. StreamCompletion yields an
// ordered sequence of chunks terminated by a Done chunk; Complete is the
// one-shot variant used for short auxiliary calls such as title derivation.
type Client interface {
	StreamCompletion(ctx context.Context, history *ChatHistory, settings Settings) (<-chan StreamChunk, error)
	Complete(ctx context.Context, history *ChatHistory, settings Settings) (*Completion, error)
	GetModelInfo() ModelInfo
}

// Settings carries per-call execution settings. Zero values fall back to the
// client's configured defaults.
type Settings struct {
	Model               string
	Temperature         *float64
	MaxCompletionTokens int
}

// StreamChunk is one fragment of a streamed completion. Meta is nil for most
// chunks; when present it carries the model id, finish reason and usage as
// reported by the provider. Exactly one chunk has Done set; no chunks follow it.
type StreamChunk struct {
	Content string
	Meta    *ChunkMeta
	Err     error
	Done    bool
}

// ChunkMeta is provider metadata attached to a chunk. Usage arrives either as
// a structured *TokenUsage or as a JSON-encoded string depending on the
// provider; use ParseUsage to normalize it.
type ChunkMeta struct {
	ModelID      string
	FinishReason string
	Usage        interface{}
}

// Completion is the result of a one-shot call. Providers may return the text
// split across multiple items; callers concatenate in order.
type Completion struct {
	Items []string
	Meta  *ChunkMeta
}

// emit delivers a chunk to the consumer, giving up when the consumer's
// context ends so a producer goroutine never blocks on an abandoned stream.
func emit(ctx context.Context, chunks chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case chunks <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// Per-call settings override the client's configured defaults.
func resolveModel(settings Settings, fallback string) string {
	if settings.Model != "" {
		return settings.Model
	}
	return fallback
}

func resolveTemperature(settings Settings, fallback float64) float64 {
	if settings.Temperature != nil {
		return *settings.Temperature
	}
	return fallback
}

func resolveMaxTokens(settings Settings, fallback int) int {
	if settings.MaxCompletionTokens > 0 {
		return settings.MaxCompletionTokens
	}
	return fallback
}

// ModelInfo contains information about the LLM model
type ModelInfo struct {
	Name                string
	Provider            string
	MaxCompletionTokens int
}

// Config holds configuration for LLM clients
type Config struct {
	Provider            string
	Model               string
	APIKey              string
	MaxCompletionTokens int
	Temperature         float64
}
