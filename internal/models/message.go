package models

// ChatMessage is one completed turn: the user prompt, the aggregated agent
// response, and the token accounting reported by the provider.
type ChatMessage struct {
	Entity
	ChatSessionID uint64 `gorm:"not null;index" json:"chat_session_id"`
	UserMessage   string `gorm:"type:text;not null" json:"user_message"`
	AgentResponse string `gorm:"type:text" json:"agent_response"`
	Model         string `gorm:"size:100" json:"model"`
	ProviderName  string `gorm:"size:50" json:"provider_name"`
	InputTokens   int    `json:"input_tokens"`
	OutputTokens  int    `json:"output_tokens"`

	Media   []MessageMedia `gorm:"foreignKey:ChatMessageID;constraint:OnDelete:CASCADE" json:"media,omitempty"`
	Session *ChatSession   `gorm:"-" json:"session,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// TotalTokens is the provider-reported cost of the turn.
func (m *ChatMessage) TotalTokens() int {
	return m.InputTokens + m.OutputTokens
}
