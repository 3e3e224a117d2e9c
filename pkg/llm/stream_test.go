package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmitDeliversToReceiver(t *testing.T) {
	chunks := make(chan StreamChunk, 1)
	ok := emit(context.Background(), chunks, StreamChunk{Content: "hi"})
	assert.True(t, ok)

	got := <-chunks
	assert.Equal(t, "hi", got.Content)
}

func TestEmitGivesUpWhenConsumerIsGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks := make(chan StreamChunk) // nobody receiving
	done := make(chan bool, 1)
	go func() { done <- emit(ctx, chunks, StreamChunk{Done: true}) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("emit blocked on an abandoned stream")
	}
}

func TestSettingsResolution(t *testing.T) {
	assert.Equal(t, "gpt-4o", resolveModel(Settings{}, "gpt-4o"))
	assert.Equal(t, "gpt-4o-mini", resolveModel(Settings{Model: "gpt-4o-mini"}, "gpt-4o"))

	temp := 0.2
	assert.Equal(t, 0.7, resolveTemperature(Settings{}, 0.7))
	assert.Equal(t, 0.2, resolveTemperature(Settings{Temperature: &temp}, 0.7))

	assert.Equal(t, 4096, resolveMaxTokens(Settings{}, 4096))
	assert.Equal(t, 64, resolveMaxTokens(Settings{MaxCompletionTokens: 64}, 4096))
}
