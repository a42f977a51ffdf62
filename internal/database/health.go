package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type HealthStats struct {
	Conversations int64 `json:"conversations"`
	Messages      int64 `json:"messages"`
}

// Health reports the tables present in the database along with row counts for
// the two chat tables. An error here means the store is unreachable or the
// schema is missing.
func Health(ctx context.Context, db *gorm.DB) ([]string, HealthStats, error) {
	var stats HealthStats

	tables, err := db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, stats, fmt.Errorf("error listing tables: %w", err)
	}

	if err := db.WithContext(ctx).Model(&Conversation{}).Count(&stats.Conversations).Error; err != nil {
		return nil, stats, fmt.Errorf("error counting conversations: %w", err)
	}
	if err := db.WithContext(ctx).Model(&Message{}).Count(&stats.Messages).Error; err != nil {
		return nil, stats, fmt.Errorf("error counting messages: %w", err)
	}

	return tables, stats, nil
}
