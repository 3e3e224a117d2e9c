package dtos

import "genbot-ai/internal/models"

// AttachmentRequest is a base64-encoded file submitted with a turn.
type AttachmentRequest struct {
	FileName string `json:"file_name" binding:"required"`
	Content  string `json:"content" binding:"required"` // base64
}

type CompletionSettings struct {
	Model               string   `json:"model,omitempty"`
	Temperature         *float64 `json:"temperature,omitempty"`
	MaxCompletionTokens int      `json:"max_completion_tokens,omitempty"`
}

// CreateSessionRequest starts a session against a bot addressed either by id
// or by name. Name resolution goes through the bot cache and creates the bot
// on first use.
type CreateSessionRequest struct {
	BotID       uint64              `json:"bot_id,omitempty"`
	BotName     string              `json:"bot_name,omitempty"`
	Message     string              `json:"message" binding:"required"`
	Title       string              `json:"title,omitempty"`
	Attachments []AttachmentRequest `json:"attachments,omitempty"`
	Settings    CompletionSettings  `json:"settings,omitempty"`
}

type AppendMessageRequest struct {
	Message     string              `json:"message" binding:"required"`
	StreamID    string              `json:"stream_id,omitempty"`
	Attachments []AttachmentRequest `json:"attachments,omitempty"`
	Settings    CompletionSettings  `json:"settings,omitempty"`
}

type MediaResponse struct {
	ID             uint64 `json:"id"`
	FileName       string `json:"file_name"`
	ContentType    string `json:"content_type"`
	ProviderName   string `json:"provider_name"`
	MediaURL       string `json:"media_url"`
	PublicMediaURL string `json:"public_media_url"`
}

type MessageResponse struct {
	ID            uint64          `json:"id"`
	SessionID     uint64          `json:"session_id"`
	UserMessage   string          `json:"user_message"`
	AgentResponse string          `json:"agent_response"`
	Model         string          `json:"model"`
	ProviderName  string          `json:"provider_name"`
	InputTokens   int             `json:"input_tokens"`
	OutputTokens  int             `json:"output_tokens"`
	TotalTokens   int             `json:"total_tokens"`
	Media         []MediaResponse `json:"media,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type SessionResponse struct {
	ID        uint64            `json:"id"`
	BotID     uint64            `json:"bot_id"`
	Title     string            `json:"title"`
	HasMedia  bool              `json:"has_media"`
	Version   int               `json:"version"`
	Messages  []MessageResponse `json:"messages,omitempty"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

type CreateBotRequest struct {
	Name         string  `json:"name" binding:"required"`
	AccountID    uint64  `json:"account_id"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
}

type UpdateBotRequest struct {
	Name         *string `json:"name,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
}

type BotResponse struct {
	ID           uint64  `json:"id"`
	AccountID    uint64  `json:"account_id"`
	Name         string  `json:"name"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

const timeLayout = "2006-01-02T15:04:05Z"

func NewBotResponse(bot *models.Bot) BotResponse {
	return BotResponse{
		ID:           bot.ID,
		AccountID:    bot.AccountID,
		Name:         bot.Name,
		SystemPrompt: bot.SystemPrompt,
		CreatedAt:    bot.UtcCreatedOn.Format(timeLayout),
	}
}

func NewMessageResponse(message *models.ChatMessage) MessageResponse {
	resp := MessageResponse{
		ID:            message.ID,
		SessionID:     message.ChatSessionID,
		UserMessage:   message.UserMessage,
		AgentResponse: message.AgentResponse,
		Model:         message.Model,
		ProviderName:  message.ProviderName,
		InputTokens:   message.InputTokens,
		OutputTokens:  message.OutputTokens,
		TotalTokens:   message.TotalTokens(),
		CreatedAt:     message.UtcCreatedOn.Format(timeLayout),
	}
	for _, m := range message.Media {
		resp.Media = append(resp.Media, MediaResponse{
			ID:             m.ID,
			FileName:       m.FileName,
			ContentType:    m.ContentType,
			ProviderName:   m.ProviderName,
			MediaURL:       m.MediaURL,
			PublicMediaURL: m.PublicMediaURL,
		})
	}
	return resp
}

func NewSessionResponse(session *models.ChatSession) SessionResponse {
	resp := SessionResponse{
		ID:        session.ID,
		BotID:     session.BotID,
		Title:     session.Title,
		HasMedia:  session.HasMedia,
		Version:   session.Version,
		CreatedAt: session.UtcCreatedOn.Format(timeLayout),
		UpdatedAt: session.UtcUpdatedOn.Format(timeLayout),
	}
	for i := range session.Messages {
		resp.Messages = append(resp.Messages, NewMessageResponse(&session.Messages[i]))
	}
	return resp
}
