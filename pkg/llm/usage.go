package llm

import (
	"encoding/json"
	"log"
)

// TokenUsage is the normalized token accounting for one completion.
type TokenUsage struct {
	InputTokenCount  int `json:"InputTokenCount"`
	OutputTokenCount int `json:"OutputTokenCount"`
}

// TotalTokenCount returns input plus output tokens.
func (u TokenUsage) TotalTokenCount() int {
	return u.InputTokenCount + u.OutputTokenCount
}

type usagePayload struct {
	InputTokenCount  *int `json:"InputTokenCount"`
	OutputTokenCount *int `json:"OutputTokenCount"`
	InputTokens      *int `json:"input_tokens"`
	OutputTokens     *int `json:"output_tokens"`
	PromptTokens     *int `json:"prompt_tokens"`
	CompletionTokens *int `json:"completion_tokens"`
}

// ParseUsage normalizes the usage value carried by a ChunkMeta. Providers
// report usage either as a structured TokenUsage or as a JSON-encoded string;
// both encodings resolve to the same record. Unknown shapes normalize to zero
// counts rather than failing the turn.
func ParseUsage(v interface{}) TokenUsage {
	switch usage := v.(type) {
	case nil:
		return TokenUsage{}
	case TokenUsage:
		return usage
	case *TokenUsage:
		if usage == nil {
			return TokenUsage{}
		}
		return *usage
	case string:
		return parseUsageJSON([]byte(usage))
	case []byte:
		return parseUsageJSON(usage)
	case json.RawMessage:
		return parseUsageJSON(usage)
	default:
		log.Printf("ParseUsage -> unexpected usage type %T, treating as zero usage", v)
		return TokenUsage{}
	}
}

func parseUsageJSON(data []byte) TokenUsage {
	var payload usagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("ParseUsage -> invalid usage payload: %v", err)
		return TokenUsage{}
	}

	pick := func(candidates ...*int) int {
		for _, c := range candidates {
			if c != nil {
				return *c
			}
		}
		return 0
	}

	return TokenUsage{
		InputTokenCount:  pick(payload.InputTokenCount, payload.InputTokens, payload.PromptTokens),
		OutputTokenCount: pick(payload.OutputTokenCount, payload.OutputTokens, payload.CompletionTokens),
	}
}
