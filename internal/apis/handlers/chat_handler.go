package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"genbot-ai/internal/apis/dtos"
	"genbot-ai/internal/models"
	"genbot-ai/internal/repositories"
	"genbot-ai/internal/services"
	"genbot-ai/internal/utils"
	"genbot-ai/pkg/llm"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService services.ChatService
	storage     services.ChatStorageService

	streamMutex    sync.RWMutex
	streams        map[string]chan dtos.StreamResponse // key: sessionID:streamID
	sessionStreams map[uint64]string                   // sessionID -> active stream key
}

func NewChatHandler(chatService services.ChatService, storage services.ChatStorageService) *ChatHandler {
	h := &ChatHandler{
		chatService:    chatService,
		storage:        storage,
		streams:        make(map[string]chan dtos.StreamResponse),
		sessionStreams: make(map[uint64]string),
	}

	chatService.OnMessageStream(func(result services.StreamResult) {
		h.sendStreamEvent(result.SessionID, dtos.StreamResponse{
			Event: "chat-stream",
			Data:  result.Content,
		})
	})
	chatService.OnMessageCompleted(func(result services.CompletedResult) {
		h.sendStreamEvent(result.SessionID, dtos.StreamResponse{
			Event: "chat-completed",
			Data: gin.H{
				"content":       result.Content,
				"model":         result.ModelID,
				"finish_reason": result.FinishReason,
				"input_tokens":  result.InputTokenCount,
				"output_tokens": result.OutputTokenCount,
				"total_tokens":  result.TotalTokenCount(),
			},
		})
	})

	return h
}

// sendStreamEvent delivers an event to the SSE channel bound to the session,
// if a client is listening. Sends never block the turn.
func (h *ChatHandler) sendStreamEvent(sessionID uint64, event dtos.StreamResponse) {
	h.streamMutex.RLock()
	streamKey, ok := h.sessionStreams[sessionID]
	var streamChan chan dtos.StreamResponse
	if ok {
		streamChan = h.streams[streamKey]
	}
	h.streamMutex.RUnlock()

	if streamChan == nil {
		return
	}
	select {
	case streamChan <- event:
	default:
		log.Printf("ChatHandler -> sendStreamEvent -> dropping event for session %d, channel full", sessionID)
	}
}

func parseID(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func decodeAttachments(attachments []dtos.AttachmentRequest) ([]services.MediaFile, error) {
	files := make([]services.MediaFile, 0, len(attachments))
	for _, a := range attachments {
		content, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, fmt.Errorf("attachment %s is not valid base64: %w", a.FileName, err)
		}
		files = append(files, services.MediaFile{
			FileName: a.FileName,
			Content:  bytes.NewReader(content),
		})
	}
	return files, nil
}

func toSettings(s dtos.CompletionSettings) llm.Settings {
	return llm.Settings{
		Model:               s.Model,
		Temperature:         s.Temperature,
		MaxCompletionTokens: s.MaxCompletionTokens,
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrInvalidBotID),
		errors.Is(err, services.ErrInvalidSessionID),
		errors.Is(err, services.ErrNilMessage),
		errors.Is(err, services.ErrNilSession),
		errors.Is(err, services.ErrMissingBotReference):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrBotNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *ChatHandler) respondError(c *gin.Context, err error) {
	errorMsg := err.Error()
	c.JSON(statusForError(err), dtos.Response{
		Success: false,
		Error:   &errorMsg,
	})
}

// CreateSession starts a new session with the first user message and runs the
// full turn synchronously.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req dtos.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	files, err := decodeAttachments(req.Attachments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var message *models.ChatMessage
	if req.BotName != "" {
		message, err = h.chatService.SubmitMessageToNewSessionByBotName(c.Request.Context(), req.BotName, req.Message, req.Title, files, toSettings(req.Settings))
	} else {
		message, err = h.chatService.SubmitMessageToNewSession(c.Request.Context(), req.BotID, req.Message, req.Title, files, toSettings(req.Settings))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.NewMessageResponse(message),
	})
}

// CreateMessage appends a turn to an existing session. When a stream_id is
// supplied the turn's chunks flow to the matching SSE stream and the turn is
// cancellable.
func (h *ChatHandler) CreateMessage(c *gin.Context) {
	sessionID, err := parseID(c)
	if err != nil {
		h.respondError(c, services.ErrInvalidSessionID)
		return
	}

	var req dtos.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	files, err := decodeAttachments(req.Attachments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.StreamID != "" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		h.chatService.RegisterProcess(req.StreamID, cancel)
		defer h.chatService.UnregisterProcess(req.StreamID)

		streamKey := fmt.Sprintf("%d:%s", sessionID, req.StreamID)
		h.streamMutex.Lock()
		h.sessionStreams[sessionID] = streamKey
		h.streamMutex.Unlock()
		defer func() {
			h.streamMutex.Lock()
			delete(h.sessionStreams, sessionID)
			h.streamMutex.Unlock()
		}()
	}

	message, err := h.chatService.AppendMessageToSession(ctx, sessionID, req.Message, files, toSettings(req.Settings))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.sendStreamEvent(sessionID, dtos.StreamResponse{
				Event: "response-cancelled",
				Data:  "Operation cancelled by user",
			})
		} else {
			h.sendStreamEvent(sessionID, dtos.StreamResponse{
				Event: "chat-error",
				Data:  err.Error(),
			})
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.NewMessageResponse(message),
	})
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	sessionID, err := parseID(c)
	if err != nil {
		h.respondError(c, services.ErrInvalidSessionID)
		return
	}

	session, err := h.storage.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    dtos.NewSessionResponse(session),
	})
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	botID, err := strconv.ParseUint(c.Query("bot_id"), 10, 64)
	if err != nil {
		h.respondError(c, services.ErrInvalidBotID)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orderBy := c.DefaultQuery("order", "utc_created_on")
	asc := c.Query("direction") == "asc"

	filter := repositories.SessionFilter{
		TitleContains: c.Query("title_contains"),
	}
	if hasMedia := c.Query("has_media"); hasMedia != "" {
		filter.HasMedia = utils.ToBoolPtr(hasMedia == "true")
	}

	sessions, err := h.storage.ListSessions(c.Request.Context(), botID, filter, orderBy, asc, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]dtos.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, dtos.NewSessionResponse(session))
	}
	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    responses,
	})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID, err := parseID(c)
	if err != nil {
		h.respondError(c, services.ErrInvalidSessionID)
		return
	}

	if err := h.storage.DeleteSession(c.Request.Context(), sessionID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    "Session deleted",
	})
}

// StreamChat handles the SSE endpoint
func (h *ChatHandler) StreamChat(c *gin.Context) {
	sessionID, err := parseID(c)
	if err != nil {
		h.respondError(c, services.ErrInvalidSessionID)
		return
	}
	streamID := c.Query("stream_id")
	if streamID == "" {
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   utils.ToStringPtr("stream_id is required"),
		})
		return
	}

	streamKey := fmt.Sprintf("%d:%s", sessionID, streamID)
	log.Printf("Starting stream for key: %s", streamKey)

	h.streamMutex.Lock()
	streamChan := make(chan dtos.StreamResponse, 100)
	h.streams[streamKey] = streamChan
	h.streamMutex.Unlock()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Transfer-Encoding", "chunked")

	ctx := c.Request.Context()
	heartbeatTicker := time.NewTicker(30 * time.Second)
	defer heartbeatTicker.Stop()

	defer func() {
		h.streamMutex.Lock()
		if ch, exists := h.streams[streamKey]; exists {
			close(ch)
			delete(h.streams, streamKey)
			log.Printf("Cleaned up stream for key: %s", streamKey)
		}
		h.streamMutex.Unlock()
	}()

	data, _ := json.Marshal(dtos.StreamResponse{
		Event: "connected",
		Data:  "Stream established",
	})
	c.Writer.Write([]byte(fmt.Sprintf("data: %s\n\n", data)))
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Client disconnected for stream key: %s", streamKey)
			return

		case <-heartbeatTicker.C:
			data, _ := json.Marshal(dtos.StreamResponse{
				Event: "heartbeat",
				Data:  "ping",
			})
			c.Writer.Write([]byte(fmt.Sprintf("data: %s\n\n", data)))
			c.Writer.Flush()

		case msg, ok := <-streamChan:
			if !ok {
				log.Printf("Stream channel closed for key: %s", streamKey)
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			c.Writer.Write([]byte(fmt.Sprintf("data: %s\n\n", data)))
			c.Writer.Flush()
		}
	}
}

// CancelStream cancels the currently streaming response
func (h *ChatHandler) CancelStream(c *gin.Context) {
	streamID := c.Query("stream_id")
	if streamID == "" {
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   utils.ToStringPtr("stream_id is required"),
		})
		return
	}

	if !h.chatService.CancelProcessing(streamID) {
		c.JSON(http.StatusNotFound, dtos.Response{
			Success: false,
			Error:   utils.ToStringPtr("no active process for stream"),
		})
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    "Processing cancelled",
	})
}
