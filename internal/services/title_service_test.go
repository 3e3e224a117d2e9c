package services

import (
	"context"
	"genbot-ai/internal/models"
	"genbot-ai/pkg/llm"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titledSession() *models.ChatSession {
	return &models.ChatSession{
		Messages: []models.ChatMessage{
			{UserMessage: "how do lighthouses work?", AgentResponse: "They use rotating lamps."},
		},
	}
}

func TestDeriveTitle(t *testing.T) {
	client := &fakeClient{completion: &llm.Completion{Items: []string{"Lighthouse Basics"}}}
	service := NewTitleService(client)

	title, err := service.DeriveTitle(context.Background(), titledSession())
	require.NoError(t, err)
	assert.Equal(t, "Lighthouse Basics", title)

	// the prompt embeds the conversation
	require.NotNil(t, client.lastHistory)
	prompt := client.lastHistory.Messages[len(client.lastHistory.Messages)-1].Text()
	assert.Contains(t, prompt, "how do lighthouses work?")
	assert.Contains(t, prompt, "They use rotating lamps.")
}

func TestDeriveTitleConcatenatesItems(t *testing.T) {
	client := &fakeClient{completion: &llm.Completion{Items: []string{"Lighthouse ", "Basics"}}}
	service := NewTitleService(client)

	title, err := service.DeriveTitle(context.Background(), titledSession())
	require.NoError(t, err)
	assert.Equal(t, "Lighthouse Basics", title)
}

func TestDeriveTitleCleansOutput(t *testing.T) {
	client := &fakeClient{completion: &llm.Completion{Items: []string{"\"Lighthouse Basics\"\nSecond line ignored"}}}
	service := NewTitleService(client)

	title, err := service.DeriveTitle(context.Background(), titledSession())
	require.NoError(t, err)
	assert.Equal(t, "Lighthouse Basics", title)
}

func TestDeriveTitleEnforcesMaxLength(t *testing.T) {
	long := strings.Repeat("very long title ", 20)
	client := &fakeClient{completion: &llm.Completion{Items: []string{long}}}
	service := NewTitleService(client)

	title, err := service.DeriveTitle(context.Background(), titledSession())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(title), 80)
	assert.NotEmpty(t, title)
}

func TestDeriveTitleTruncatesOnRuneBoundary(t *testing.T) {
	// A multi-byte character straddling the length cap must be dropped whole,
	// never cut mid-sequence.
	long := strings.Repeat("a", 79) + "éé"
	client := &fakeClient{completion: &llm.Completion{Items: []string{long}}}
	service := NewTitleService(client)

	title, err := service.DeriveTitle(context.Background(), titledSession())
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, strings.Repeat("a", 79)+"é", title)
	assert.LessOrEqual(t, utf8.RuneCountInString(title), 80)
}

func TestDeriveTitleFailures(t *testing.T) {
	service := NewTitleService(&fakeClient{completeErr: assert.AnError})
	_, err := service.DeriveTitle(context.Background(), titledSession())
	assert.Error(t, err)

	service = NewTitleService(&fakeClient{completion: &llm.Completion{Items: []string{"   "}}})
	_, err = service.DeriveTitle(context.Background(), titledSession())
	assert.Error(t, err)

	_, err = service.DeriveTitle(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilSession)

	_, err = service.DeriveTitle(context.Background(), &models.ChatSession{})
	assert.Error(t, err)
}
