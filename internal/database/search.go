package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// Search results are capped before grouping, matching the original API contract.
const searchRowLimit = 20

// SearchHit is one matching message row joined with its conversation.
type SearchHit struct {
	MessageID      uint      `gorm:"column:message_id"`
	ConversationID uint      `gorm:"column:conversation_id"`
	Title          string    `gorm:"column:title"`
	Content        string    `gorm:"column:content"`
	IsUser         bool      `gorm:"column:is_user"`
	Timestamp      time.Time `gorm:"column:timestamp"`
}

type searchStrategy interface {
	Search(ctx context.Context, db *gorm.DB, userID, term string) ([]SearchHit, error)
}

const searchSelect = `SELECT m.id AS message_id, m.content, m.is_user, m.timestamp, c.id AS conversation_id, c.title
FROM messages m
JOIN conversations c ON m.conversation_id = c.id
WHERE m.user_id = ? AND c.user_id = ? AND %s
ORDER BY m.timestamp DESC
LIMIT %d`

// fullTextStrategy uses the database's natural-language full text matching.
// Only Postgres and MySQL support it; other dialects report an error so the
// caller can fall back.
type fullTextStrategy struct{}

func (fullTextStrategy) Search(ctx context.Context, db *gorm.DB, userID, term string) ([]SearchHit, error) {
	var match string
	switch db.Dialector.Name() {
	case "postgres":
		match = "to_tsvector('english', m.content) @@ plainto_tsquery('english', ?)"
	case "mysql":
		match = "MATCH(m.content) AGAINST(? IN NATURAL LANGUAGE MODE)"
	default:
		return nil, fmt.Errorf("full text search is not supported by dialect %q", db.Dialector.Name())
	}

	query := fmt.Sprintf(searchSelect, match, searchRowLimit)

	var hits []SearchHit
	if err := db.WithContext(ctx).Raw(query, userID, userID, term).Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("error running full text search: %w", err)
	}
	return hits, nil
}

// substringStrategy is a case-insensitive LIKE match over message content.
type substringStrategy struct{}

func (substringStrategy) Search(ctx context.Context, db *gorm.DB, userID, term string) ([]SearchHit, error) {
	query := fmt.Sprintf(searchSelect, "LOWER(m.content) LIKE LOWER(?)", searchRowLimit)

	var hits []SearchHit
	if err := db.WithContext(ctx).Raw(query, userID, userID, "%"+term+"%").Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("error running substring search: %w", err)
	}
	return hits, nil
}

// Searcher runs a primary full text search and falls back to a substring
// match when full text is unavailable or finds nothing. Both strategies scope
// messages and conversations to the requesting user.
type Searcher struct {
	primary  searchStrategy
	fallback searchStrategy
}

func NewSearcher() *Searcher {
	return &Searcher{primary: fullTextStrategy{}, fallback: substringStrategy{}}
}

func (s *Searcher) Search(ctx context.Context, db *gorm.DB, userID, term string) ([]SearchHit, error) {
	hits, err := s.primary.Search(ctx, db, userID, term)
	if err == nil && len(hits) > 0 {
		return hits, nil
	}
	if err != nil {
		slog.Info("full text search not available, using substring search instead", "error", err)
	}

	return s.fallback.Search(ctx, db, userID, term)
}
