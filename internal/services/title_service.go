package services

import (
	"context"
	"fmt"
	"genbot-ai/internal/constants"
	"genbot-ai/internal/models"
	"genbot-ai/internal/utils"
	"genbot-ai/pkg/llm"
	"strings"
)

// TitleService derives a short session title from the conversation so far.
type TitleService interface {
	DeriveTitle(ctx context.Context, session *models.ChatSession) (string, error)
}

type titleService struct {
	client llm.Client
}

func NewTitleService(client llm.Client) TitleService {
	return &titleService{client: client}
}

func (s *titleService) DeriveTitle(ctx context.Context, session *models.ChatSession) (string, error) {
	if session == nil {
		return "", ErrNilSession
	}
	if len(session.Messages) == 0 {
		return "", fmt.Errorf("session %d has no messages to derive a title from", session.ID)
	}

	var body strings.Builder
	for _, m := range session.Messages {
		body.WriteString("User: ")
		body.WriteString(m.UserMessage)
		body.WriteString("\nAgent: ")
		body.WriteString(m.AgentResponse)
		body.WriteString("\n\n")
	}
	prompt := strings.ReplaceAll(constants.TitlePrompt, "{body}", body.String())

	history := llm.NewChatHistory("")
	history.AddUserMessage(prompt)

	completion, err := s.client.Complete(ctx, history, llm.Settings{
		Model:               constants.TitleModel,
		Temperature:         utils.ToFloat64Ptr(constants.TitleTemperature),
		MaxCompletionTokens: 64,
	})
	if err != nil {
		return "", fmt.Errorf("title completion failed: %w", err)
	}

	title := cleanTitle(strings.Join(completion.Items, ""))
	if title == "" {
		return "", fmt.Errorf("title completion returned no usable text")
	}
	return title, nil
}

// cleanTitle reduces the model output to a single trimmed line without
// wrapping quotes, capped at the configured length.
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if idx := strings.IndexAny(title, "\r\n"); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)
	// Cap on rune boundaries so a multi-byte character is never split.
	if runes := []rune(title); len(runes) > constants.TitleMaxLength {
		title = strings.TrimSpace(string(runes[:constants.TitleMaxLength]))
	}
	return title
}
