package migration_0

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Initial schema: conversations and their messages, before topics existed.

type Conversation struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:255;not null;index"`
	Title     string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

type Message struct {
	ID             uint      `gorm:"primaryKey"`
	ConversationID uint      `gorm:"not null;index"`
	UserID         string    `gorm:"size:255;not null"`
	Content        string    `gorm:"type:text;not null"`
	IsUser         bool      `gorm:"not null;default:true"`
	Timestamp      time.Time `gorm:"autoCreateTime;index"`
}

func Migration(txn *gorm.DB) error {
	if err := txn.AutoMigrate(&Conversation{}, &Message{}); err != nil {
		return fmt.Errorf("error creating initial tables: %w", err)
	}
	return nil
}
