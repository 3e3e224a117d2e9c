package models

// Bot represents a configured assistant profile. SystemPrompt overrides the
// default instructions when present.
type Bot struct {
	Entity
	AccountID    uint64  `gorm:"not null;index:idx_bots_account_name,unique" json:"account_id"`
	Name         string  `gorm:"size:100;not null;index:idx_bots_account_name,unique" json:"name"`
	SystemPrompt *string `gorm:"type:text" json:"system_prompt,omitempty"`

	Sessions []ChatSession `gorm:"foreignKey:BotID" json:"sessions,omitempty"`
}

func (Bot) TableName() string {
	return "bots"
}
