package models

// ChatSession groups the ordered turns of a single conversation with a bot.
type ChatSession struct {
	Entity
	BotID    uint64 `gorm:"not null;index" json:"bot_id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	HasMedia bool   `gorm:"default:false" json:"has_media"`

	Bot      *Bot          `gorm:"foreignKey:BotID" json:"bot,omitempty"`
	Messages []ChatMessage `gorm:"foreignKey:ChatSessionID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
