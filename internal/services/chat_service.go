package services

import (
	"context"
	"fmt"
	"genbot-ai/internal/models"
	"genbot-ai/pkg/llm"
	"log"
	"strings"
	"sync"
)

// StreamResult is delivered to stream subscribers for every content chunk.
type StreamResult struct {
	SessionID uint64
	Content   string
}

// CompletedResult is delivered to completion subscribers once per turn with
// the aggregated response and normalized token accounting.
type CompletedResult struct {
	SessionID        uint64
	Content          string
	ModelID          string
	FinishReason     string
	InputTokenCount  int
	OutputTokenCount int
}

func (r CompletedResult) TotalTokenCount() int {
	return r.InputTokenCount + r.OutputTokenCount
}

// ChatService runs a full turn: validate, build context, stream the
// completion, notify subscribers, and persist the result atomically.
type ChatService interface {
	SubmitMessageToNewSession(ctx context.Context, botID uint64, message, sessionTitle string, files []MediaFile, settings llm.Settings) (*models.ChatMessage, error)
	SubmitMessageToNewSessionByBotName(ctx context.Context, botName, message, sessionTitle string, files []MediaFile, settings llm.Settings) (*models.ChatMessage, error)
	AppendMessageToSession(ctx context.Context, sessionID uint64, message string, files []MediaFile, settings llm.Settings) (*models.ChatMessage, error)

	OnMessageStream(fn func(StreamResult))
	OnMessageCompleted(fn func(CompletedResult))

	RegisterProcess(streamID string, cancel context.CancelFunc)
	UnregisterProcess(streamID string)
	CancelProcessing(streamID string) bool
}

type chatService struct {
	client         llm.Client
	contextBuilder ContextBuilder
	storage        ChatStorageService
	titleService   TitleService
	resolver       BotResolver

	subscribersMu        sync.RWMutex
	streamSubscribers    []func(StreamResult)
	completedSubscribers []func(CompletedResult)

	processesMu     sync.Mutex
	activeProcesses map[string]context.CancelFunc
}

func NewChatService(client llm.Client, contextBuilder ContextBuilder, storage ChatStorageService, titleService TitleService, resolver BotResolver) ChatService {
	return &chatService{
		client:          client,
		contextBuilder:  contextBuilder,
		storage:         storage,
		titleService:    titleService,
		resolver:        resolver,
		activeProcesses: make(map[string]context.CancelFunc),
	}
}

// OnMessageStream registers a subscriber for per-chunk updates. Subscribers
// run synchronously in registration order.
func (s *chatService) OnMessageStream(fn func(StreamResult)) {
	s.subscribersMu.Lock()
	s.streamSubscribers = append(s.streamSubscribers, fn)
	s.subscribersMu.Unlock()
}

// OnMessageCompleted registers a subscriber fired once per turn when the
// stream finishes.
func (s *chatService) OnMessageCompleted(fn func(CompletedResult)) {
	s.subscribersMu.Lock()
	s.completedSubscribers = append(s.completedSubscribers, fn)
	s.subscribersMu.Unlock()
}

func (s *chatService) RegisterProcess(streamID string, cancel context.CancelFunc) {
	s.processesMu.Lock()
	s.activeProcesses[streamID] = cancel
	s.processesMu.Unlock()
}

func (s *chatService) UnregisterProcess(streamID string) {
	s.processesMu.Lock()
	delete(s.activeProcesses, streamID)
	s.processesMu.Unlock()
}

// CancelProcessing cancels the in-flight turn bound to the stream, if any.
func (s *chatService) CancelProcessing(streamID string) bool {
	s.processesMu.Lock()
	cancel, exists := s.activeProcesses[streamID]
	if exists {
		delete(s.activeProcesses, streamID)
	}
	s.processesMu.Unlock()
	if exists {
		cancel()
	}
	return exists
}

func (s *chatService) SubmitMessageToNewSession(ctx context.Context, botID uint64, message, sessionTitle string, files []MediaFile, settings llm.Settings) (*models.ChatMessage, error) {
	if botID == 0 {
		return nil, ErrInvalidBotID
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	bot, err := s.storage.GetBot(ctx, botID)
	if err != nil {
		log.Printf("ChatService -> SubmitMessageToNewSession -> bot %d: %v", botID, err)
		return nil, err
	}

	session := &models.ChatSession{
		BotID: bot.ID,
		Title: sessionTitle,
	}
	if err := s.storage.CreateSession(ctx, session); err != nil {
		log.Printf("ChatService -> SubmitMessageToNewSession -> failed to create session for bot %d: %v", botID, err)
		return nil, err
	}
	session.Bot = bot

	return s.runTurn(ctx, session, message, files, settings)
}

// SubmitMessageToNewSessionByBotName resolves the bot through the cached
// resolver, creating it on first use, then runs a normal first turn.
func (s *chatService) SubmitMessageToNewSessionByBotName(ctx context.Context, botName, message, sessionTitle string, files []MediaFile, settings llm.Settings) (*models.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	bot, err := s.resolver.GetBot(ctx, botName, true)
	if err != nil {
		log.Printf("ChatService -> SubmitMessageToNewSessionByBotName -> bot %q: %v", botName, err)
		return nil, err
	}

	session := &models.ChatSession{
		BotID: bot.ID,
		Title: sessionTitle,
	}
	if err := s.storage.CreateSession(ctx, session); err != nil {
		log.Printf("ChatService -> SubmitMessageToNewSessionByBotName -> failed to create session for bot %q: %v", botName, err)
		return nil, err
	}
	session.Bot = bot

	return s.runTurn(ctx, session, message, files, settings)
}

func (s *chatService) AppendMessageToSession(ctx context.Context, sessionID uint64, message string, files []MediaFile, settings llm.Settings) (*models.ChatMessage, error) {
	if sessionID == 0 {
		return nil, ErrInvalidSessionID
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		log.Printf("ChatService -> AppendMessageToSession -> session %d: %v", sessionID, err)
		return nil, err
	}

	return s.runTurn(ctx, session, message, files, settings)
}

// runTurn is the shared turn pipeline. A turn that fails or is cancelled at
// any point persists nothing; there is no retry.
func (s *chatService) runTurn(ctx context.Context, session *models.ChatSession, message string, files []MediaFile, settings llm.Settings) (*models.ChatMessage, error) {
	built, err := s.contextBuilder.Build(ctx, session, message, files)
	if err != nil {
		log.Printf("ChatService -> runTurn -> context build failed for session %d: %v", session.ID, err)
		return nil, err
	}

	stream, err := s.client.StreamCompletion(ctx, built.History, settings)
	if err != nil {
		log.Printf("ChatService -> runTurn -> stream start failed for session %d (bot %d): %v", session.ID, session.BotID, err)
		return nil, err
	}

	var content strings.Builder
	var lastMeta *llm.ChunkMeta
	var finishReason string

	for chunk := range stream {
		select {
		case <-ctx.Done():
			log.Printf("ChatService -> runTurn -> cancelled for session %d", session.ID)
			return nil, ctx.Err()
		default:
		}

		if chunk.Err != nil {
			log.Printf("ChatService -> runTurn -> stream error for session %d (bot %d): %v", session.ID, session.BotID, chunk.Err)
			return nil, chunk.Err
		}
		if chunk.Meta != nil {
			lastMeta = chunk.Meta
			// Providers report the finish reason and the usage summary on
			// separate chunks; keep the last non-empty reason.
			if chunk.Meta.FinishReason != "" {
				finishReason = chunk.Meta.FinishReason
			}
		}
		if chunk.Content != "" {
			content.WriteString(chunk.Content)
			s.notifyStream(StreamResult{SessionID: session.ID, Content: chunk.Content})
		}
		if chunk.Done {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		log.Printf("ChatService -> runTurn -> cancelled for session %d", session.ID)
		return nil, err
	}

	result := CompletedResult{SessionID: session.ID, Content: content.String(), FinishReason: finishReason}
	modelID := settings.Model
	if lastMeta != nil {
		if lastMeta.ModelID != "" {
			modelID = lastMeta.ModelID
		}
		usage := llm.ParseUsage(lastMeta.Usage)
		result.InputTokenCount = usage.InputTokenCount
		result.OutputTokenCount = usage.OutputTokenCount
	}
	result.ModelID = modelID
	s.notifyCompleted(result)

	chatMessage := &models.ChatMessage{
		UserMessage:   message,
		AgentResponse: result.Content,
		Model:         modelID,
		ProviderName:  s.client.GetModelInfo().Provider,
		InputTokens:   result.InputTokenCount,
		OutputTokens:  result.OutputTokenCount,
	}

	mediaRows := make([]*models.MessageMedia, 0, len(built.Uploads))
	for _, upload := range built.Uploads {
		mediaRows = append(mediaRows, &models.MessageMedia{
			FileName:         upload.FileName,
			ProviderFileName: upload.ProviderFileName,
			ProviderName:     upload.ProviderName,
			ContentType:      upload.ContentType,
			ContentHash:      upload.ContentHash,
			MediaURL:         upload.URI,
			PublicMediaURL:   upload.PublicURI,
		})
	}

	stored, err := s.storage.AddMessage(ctx, session.ID, chatMessage, mediaRows)
	if err != nil {
		return nil, fmt.Errorf("failed to persist turn for session %d: %w", session.ID, err)
	}

	if len(session.Messages) == 0 {
		s.deriveSessionTitle(ctx, session, stored)
	}

	refreshed, err := s.storage.GetSession(ctx, session.ID)
	if err != nil {
		log.Printf("ChatService -> runTurn -> failed to reload session %d: %v", session.ID, err)
		return stored, nil
	}
	stored.Session = refreshed
	return stored, nil
}

// deriveSessionTitle runs once, after the first turn of a session. A failed
// derivation is logged and skipped; the turn stands either way.
func (s *chatService) deriveSessionTitle(ctx context.Context, session *models.ChatSession, message *models.ChatMessage) {
	titled := *session
	titled.Messages = []models.ChatMessage{*message}

	title, err := s.titleService.DeriveTitle(ctx, &titled)
	if err != nil {
		log.Printf("ChatService -> deriveSessionTitle -> session %d: %v", session.ID, err)
		return
	}
	if err := s.storage.UpdateSessionTitle(ctx, session.ID, title); err != nil {
		log.Printf("ChatService -> deriveSessionTitle -> failed to save title for session %d: %v", session.ID, err)
	}
}

func (s *chatService) notifyStream(result StreamResult) {
	s.subscribersMu.RLock()
	subscribers := s.streamSubscribers
	s.subscribersMu.RUnlock()
	for _, fn := range subscribers {
		s.safeNotify(func() { fn(result) })
	}
}

func (s *chatService) notifyCompleted(result CompletedResult) {
	s.subscribersMu.RLock()
	subscribers := s.completedSubscribers
	s.subscribersMu.RUnlock()
	for _, fn := range subscribers {
		s.safeNotify(func() { fn(result) })
	}
}

// safeNotify keeps a misbehaving subscriber from taking down the turn.
func (s *chatService) safeNotify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ChatService -> subscriber panic: %v", r)
		}
	}()
	fn()
}
