package dtos

type StreamResponse struct {
	Event string      `json:"event"` // connected, chat-stream, chat-completed, chat-error, response-cancelled, heartbeat
	Data  interface{} `json:"data,omitempty"`
}
