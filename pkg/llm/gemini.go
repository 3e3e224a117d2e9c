package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client              *genai.Client
	model               string
	maxCompletionTokens int
	temperature         float64
}

func NewGeminiClient(config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	// Create the Gemini SDK client using the provided API key.
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GeminiClient{
		client:              client,
		model:               config.Model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
	}, nil
}

// StreamCompletion streams a chat completion through a Gemini chat session.
// Gemini reports usage as a serialized JSON payload on the chunk metadata.
func (c *GeminiClient) StreamCompletion(ctx context.Context, history *ChatHistory, settings Settings) (<-chan StreamChunk, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	modelName := resolveModel(settings, c.model)
	session, lastParts, err := c.prepareChat(modelName, history, settings)
	if err != nil {
		return nil, err
	}

	chunks := make(chan StreamChunk)

	go func() {
		defer close(chunks)

		iter := session.SendMessageStream(ctx, lastParts...)
		var lastMeta *ChunkMeta
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				emit(ctx, chunks, StreamChunk{Done: true, Meta: lastMeta})
				return
			}
			if err != nil {
				emit(ctx, chunks, StreamChunk{Err: fmt.Errorf("gemini stream error: %w", err)})
				return
			}

			meta := &ChunkMeta{ModelID: modelName}
			content := ""
			if len(resp.Candidates) > 0 {
				candidate := resp.Candidates[0]
				if candidate.FinishReason != genai.FinishReasonUnspecified {
					meta.FinishReason = candidate.FinishReason.String()
				}
				if candidate.Content != nil {
					for _, part := range candidate.Content.Parts {
						if text, ok := part.(genai.Text); ok {
							content += string(text)
						}
					}
				}
			}
			if resp.UsageMetadata != nil {
				meta.Usage = encodeUsage(resp.UsageMetadata)
			}
			lastMeta = meta

			if !emit(ctx, chunks, StreamChunk{Content: content, Meta: meta}) {
				return
			}
		}
	}()

	return chunks, nil
}

// Complete executes a one-shot completion.
func (c *GeminiClient) Complete(ctx context.Context, history *ChatHistory, settings Settings) (*Completion, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	modelName := resolveModel(settings, c.model)
	session, lastParts, err := c.prepareChat(modelName, history, settings)
	if err != nil {
		return nil, err
	}

	resp, err := session.SendMessage(ctx, lastParts...)
	if err != nil {
		log.Printf("GeminiClient -> Complete -> err: %v", err)
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	candidate := resp.Candidates[0]
	items := make([]string, 0, len(candidate.Content.Parts))
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			items = append(items, string(text))
		}
	}

	meta := &ChunkMeta{
		ModelID:      modelName,
		FinishReason: candidate.FinishReason.String(),
	}
	if resp.UsageMetadata != nil {
		meta.Usage = encodeUsage(resp.UsageMetadata)
	}

	return &Completion{Items: items, Meta: meta}, nil
}

func (c *GeminiClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            "gemini",
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}

// prepareChat maps a ChatHistory onto a Gemini chat session. The system
// message becomes the model's system instruction, prior turns become the
// session history and the final user turn is returned as the message to send.
func (c *GeminiClient) prepareChat(modelName string, history *ChatHistory, settings Settings) (*genai.ChatSession, []genai.Part, error) {
	if len(history.Messages) == 0 {
		return nil, nil, fmt.Errorf("chat history has no messages")
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(float32(resolveTemperature(settings, c.temperature)))
	if maxTokens := resolveMaxTokens(settings, c.maxCompletionTokens); maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	messages := history.Messages
	if messages[0].Role == RoleSystem {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(messages[0].Text())},
		}
		messages = messages[1:]
	}
	if len(messages) == 0 {
		return nil, nil, fmt.Errorf("chat history has no user message")
	}

	session := model.StartChat()
	for _, msg := range messages[:len(messages)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  mapGeminiRole(msg.Role),
			Parts: convertGeminiParts(msg.Items),
		})
	}

	last := messages[len(messages)-1]
	return session, convertGeminiParts(last.Items), nil
}

func convertGeminiParts(items []ContentItem) []genai.Part {
	parts := make([]genai.Part, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case ContentText:
			parts = append(parts, genai.Text(item.Text))
		case ContentImageURL:
			parts = append(parts, genai.FileData{URI: item.ImageURL})
		}
	}
	return parts
}

func mapGeminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

func encodeUsage(usage *genai.UsageMetadata) string {
	data, err := json.Marshal(map[string]int{
		"InputTokenCount":  int(usage.PromptTokenCount),
		"OutputTokenCount": int(usage.CandidatesTokenCount),
	})
	if err != nil {
		return ""
	}
	return string(data)
}
