package database

import (
	"time"
)

// Conversation is a titled, user-owned thread of messages. TopicID is an
// opaque grouping token set by clients; it has no referential integrity.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:255;not null;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	TopicID   *string   `gorm:"size:255;index" json:"topic_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	UserID         string    `gorm:"size:255;not null" json:"user_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsUser         bool      `gorm:"not null;default:true" json:"is_user"`
	Timestamp      time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
