package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUsageStructured(t *testing.T) {
	usage := ParseUsage(TokenUsage{InputTokenCount: 12, OutputTokenCount: 34})
	assert.Equal(t, 12, usage.InputTokenCount)
	assert.Equal(t, 34, usage.OutputTokenCount)
	assert.Equal(t, 46, usage.TotalTokenCount())

	fromPtr := ParseUsage(&TokenUsage{InputTokenCount: 5, OutputTokenCount: 7})
	assert.Equal(t, 5, fromPtr.InputTokenCount)
	assert.Equal(t, 7, fromPtr.OutputTokenCount)
}

func TestParseUsageStringEncoded(t *testing.T) {
	usage := ParseUsage(`{"InputTokenCount":100,"OutputTokenCount":200}`)
	assert.Equal(t, 100, usage.InputTokenCount)
	assert.Equal(t, 200, usage.OutputTokenCount)

	snake := ParseUsage(`{"input_tokens":3,"output_tokens":9}`)
	assert.Equal(t, 3, snake.InputTokenCount)
	assert.Equal(t, 9, snake.OutputTokenCount)

	openAIStyle := ParseUsage(json.RawMessage(`{"prompt_tokens":11,"completion_tokens":13}`))
	assert.Equal(t, 11, openAIStyle.InputTokenCount)
	assert.Equal(t, 13, openAIStyle.OutputTokenCount)
}

func TestParseUsageUnknownShapes(t *testing.T) {
	assert.Equal(t, TokenUsage{}, ParseUsage(nil))
	assert.Equal(t, TokenUsage{}, ParseUsage((*TokenUsage)(nil)))
	assert.Equal(t, TokenUsage{}, ParseUsage("not json"))
	assert.Equal(t, TokenUsage{}, ParseUsage(42))
}
