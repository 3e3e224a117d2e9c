package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client              *openai.Client
	model               string
	maxCompletionTokens int
	temperature         float64
}

func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	client := openai.NewClient(config.APIKey)
	model := config.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAIClient{
		client:              client,
		model:               model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
	}, nil
}

// StreamCompletion streams a chat completion. Usage accounting is requested on
// the stream so the terminal chunk carries token counts.
func (c *OpenAIClient) StreamCompletion(ctx context.Context, history *ChatHistory, settings Settings) (<-chan StreamChunk, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req := openai.ChatCompletionRequest{
		Model:               resolveModel(settings, c.model),
		Messages:            c.convertHistory(history),
		MaxCompletionTokens: resolveMaxTokens(settings, c.maxCompletionTokens),
		Temperature:         float32(resolveTemperature(settings, c.temperature)),
		Stream:              true,
		StreamOptions:       &openai.StreamOptions{IncludeUsage: true},
	}

	chunks := make(chan StreamChunk)

	go func() {
		defer close(chunks)

		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			emit(ctx, chunks, StreamChunk{Err: fmt.Errorf("failed to create completion stream: %w", err)})
			return
		}
		defer stream.Close()

		var lastMeta *ChunkMeta
		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				emit(ctx, chunks, StreamChunk{Done: true, Meta: lastMeta})
				return
			}
			if err != nil {
				emit(ctx, chunks, StreamChunk{Err: fmt.Errorf("completion stream error: %w", err)})
				return
			}

			meta := &ChunkMeta{ModelID: response.Model}
			if len(response.Choices) > 0 && response.Choices[0].FinishReason != "" {
				meta.FinishReason = string(response.Choices[0].FinishReason)
			}
			if response.Usage != nil {
				meta.Usage = &TokenUsage{
					InputTokenCount:  response.Usage.PromptTokens,
					OutputTokenCount: response.Usage.CompletionTokens,
				}
			}
			lastMeta = meta

			content := ""
			if len(response.Choices) > 0 {
				content = response.Choices[0].Delta.Content
			}
			if content == "" && meta.FinishReason == "" && meta.Usage == nil {
				continue
			}

			if !emit(ctx, chunks, StreamChunk{Content: content, Meta: meta}) {
				return
			}
		}
	}()

	return chunks, nil
}

// Complete executes a one-shot chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, history *ChatHistory, settings Settings) (*Completion, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req := openai.ChatCompletionRequest{
		Model:               resolveModel(settings, c.model),
		Messages:            c.convertHistory(history),
		MaxCompletionTokens: resolveMaxTokens(settings, c.maxCompletionTokens),
		Temperature:         float32(resolveTemperature(settings, c.temperature)),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("OpenAIClient -> Complete -> err: %v", err)
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	meta := &ChunkMeta{
		ModelID:      resp.Model,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: &TokenUsage{
			InputTokenCount:  resp.Usage.PromptTokens,
			OutputTokenCount: resp.Usage.CompletionTokens,
		},
	}

	return &Completion{
		Items: []string{resp.Choices[0].Message.Content},
		Meta:  meta,
	}, nil
}

func (c *OpenAIClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            "openai",
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}

func (c *OpenAIClient) convertHistory(history *ChatHistory) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history.Messages))
	for _, msg := range history.Messages {
		messages = append(messages, convertMessage(msg))
	}
	return messages
}

func convertMessage(msg HistoryMessage) openai.ChatCompletionMessage {
	// A single text item keeps the simple content form.
	if len(msg.Items) == 1 && msg.Items[0].Type == ContentText {
		return openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Items[0].Text,
		}
	}

	parts := make([]openai.ChatMessagePart, 0, len(msg.Items))
	for _, item := range msg.Items {
		switch item.Type {
		case ContentText:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: item.Text,
			})
		case ContentImageURL:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    item.ImageURL,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}

	return openai.ChatCompletionMessage{
		Role:         msg.Role,
		MultiContent: parts,
	}
}
