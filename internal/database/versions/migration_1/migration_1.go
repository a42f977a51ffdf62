package migration_1

import (
	"fmt"

	"gorm.io/gorm"
)

// Adds the topic_id grouping column to conversations.

type Conversation struct {
	TopicID *string `gorm:"size:255;index"`
}

func Migration(db *gorm.DB) error {
	if err := db.Migrator().AddColumn(&Conversation{}, "topic_id"); err != nil {
		return fmt.Errorf("error adding TopicID column: %w", err)
	}

	if err := db.Migrator().CreateIndex(&Conversation{}, "TopicID"); err != nil {
		return fmt.Errorf("error creating TopicID index: %w", err)
	}

	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropColumn(&Conversation{}, "TopicID"); err != nil {
		return fmt.Errorf("error dropping TopicID column: %w", err)
	}

	return nil
}
