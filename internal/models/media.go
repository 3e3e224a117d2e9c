package models

// MessageMedia records a file attached to a turn after it was handed to the
// media provider.
type MessageMedia struct {
	Entity
	ChatMessageID    uint64 `gorm:"not null;index" json:"chat_message_id"`
	FileName         string `gorm:"size:255;not null" json:"file_name"`
	ProviderFileName string `gorm:"size:255" json:"provider_file_name"`
	ProviderName     string `gorm:"size:50" json:"provider_name"`
	ContentType      string `gorm:"size:100" json:"content_type"`
	ContentHash      string `gorm:"size:128" json:"content_hash"`
	MediaURL         string `gorm:"size:1024" json:"media_url"`
	PublicMediaURL   string `gorm:"size:1024" json:"public_media_url"`
}

func (MessageMedia) TableName() string {
	return "message_media"
}
