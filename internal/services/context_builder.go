package services

import (
	"context"
	"fmt"
	"genbot-ai/internal/constants"
	"genbot-ai/internal/models"
	"genbot-ai/pkg/llm"
	"genbot-ai/pkg/media"
	"io"
	"log"
	"strings"
)

// MediaFile is an attachment submitted with a turn, before upload.
type MediaFile struct {
	FileName string
	Content  io.Reader
}

// BuiltContext is the provider-ready conversation plus the uploaded
// attachment records for the newest turn.
type BuiltContext struct {
	History *llm.ChatHistory
	Uploads []*media.FileInfo
}

// ContextBuilder assembles the completion request for a turn: the system
// prompt, the session's prior turns replayed in order, and the new user
// message with its attachments.
type ContextBuilder interface {
	Build(ctx context.Context, session *models.ChatSession, message string, files []MediaFile) (*BuiltContext, error)
}

type contextBuilder struct {
	uploader media.Uploader
}

func NewContextBuilder(uploader media.Uploader) ContextBuilder {
	return &contextBuilder{uploader: uploader}
}

func (b *contextBuilder) Build(ctx context.Context, session *models.ChatSession, message string, files []MediaFile) (*BuiltContext, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	if session.Bot == nil {
		return nil, ErrMissingBotReference
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	systemPrompt := constants.DefaultSystemPrompt
	if session.Bot.SystemPrompt != nil && strings.TrimSpace(*session.Bot.SystemPrompt) != "" {
		systemPrompt = *session.Bot.SystemPrompt
	}

	history := llm.NewChatHistory(systemPrompt)
	for _, prior := range session.Messages {
		history.AddUserMessage(prior.UserMessage)
		history.AddAssistantMessage(prior.AgentResponse)
	}

	// Attachments upload in submission order. A failed upload aborts the
	// whole build so no partially referenced context reaches the provider.
	uploads := make([]*media.FileInfo, 0, len(files))
	for _, file := range files {
		info, err := b.uploader.Upload(ctx, file.Content, file.FileName)
		if err != nil {
			log.Printf("ContextBuilder -> Build -> upload failed for %s (session %d): %v", file.FileName, session.ID, err)
			return nil, fmt.Errorf("failed to upload attachment %s: %w", file.FileName, err)
		}
		uploads = append(uploads, info)
	}

	if len(uploads) == 0 {
		history.AddUserMessage(message)
	} else {
		items := make([]llm.ContentItem, 0, len(uploads)+1)
		for _, info := range uploads {
			items = append(items, llm.ImageItem(info.URI))
		}
		items = append(items, llm.TextItem(message))
		history.AddUserContent(items)
	}

	return &BuiltContext{History: history, Uploads: uploads}, nil
}
