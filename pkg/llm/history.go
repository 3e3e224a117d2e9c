package llm

// Roles used in a chat history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content item kinds.
const (
	ContentText     = "text"
	ContentImageURL = "image_url"
)

// ContentItem is one piece of a message: plain text or a reference to an
// uploaded image.
type ContentItem struct {
	Type     string
	Text     string
	ImageURL string
}

// TextItem returns a text content item.
func TextItem(text string) ContentItem {
	return ContentItem{Type: ContentText, Text: text}
}

// ImageItem returns an image-reference content item.
func ImageItem(url string) ContentItem {
	return ContentItem{Type: ContentImageURL, ImageURL: url}
}

// HistoryMessage is one entry in a chat history.
type HistoryMessage struct {
	Role  string
	Items []ContentItem
}

// Text concatenates the message's text items.
func (m HistoryMessage) Text() string {
	out := ""
	for _, item := range m.Items {
		if item.Type == ContentText {
			out += item.Text
		}
	}
	return out
}

// ChatHistory is the ordered conversational context sent to a completion
// client. When a system prompt is set it is the first message.
type ChatHistory struct {
	Messages []HistoryMessage
}

// NewChatHistory returns a history seeded with the given system prompt. An
// empty prompt yields a history with no system message.
func NewChatHistory(systemPrompt string) *ChatHistory {
	h := &ChatHistory{}
	if systemPrompt != "" {
		h.Messages = append(h.Messages, HistoryMessage{Role: RoleSystem, Items: []ContentItem{TextItem(systemPrompt)}})
	}
	return h
}

// AddUserMessage appends a plain-text user turn.
func (h *ChatHistory) AddUserMessage(text string) {
	h.Messages = append(h.Messages, HistoryMessage{Role: RoleUser, Items: []ContentItem{TextItem(text)}})
}

// AddAssistantMessage appends a plain-text assistant turn.
func (h *ChatHistory) AddAssistantMessage(text string) {
	h.Messages = append(h.Messages, HistoryMessage{Role: RoleAssistant, Items: []ContentItem{TextItem(text)}})
}

// AddUserContent appends a user turn with mixed content items, preserving
// item order.
func (h *ChatHistory) AddUserContent(items []ContentItem) {
	h.Messages = append(h.Messages, HistoryMessage{Role: RoleUser, Items: items})
}
