package api

import "time"

// Request bodies use the camelCase keys the original front-end sends; list
// endpoints return raw rows with snake_case column names. Both shapes are part
// of the wire contract.

type CreateConversationRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	TopicID string `json:"topicId"`
}

type CreateConversationResponse struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	TopicID   *string   `json:"topicId"`
	CreatedAt time.Time `json:"created_at"`
}

type Conversation struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	TopicID   *string   `json:"topic_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SaveMessageRequest struct {
	ConversationID uint   `json:"conversationId"`
	UserID         string `json:"userId"`
	Content        string `json:"content"`
	IsUser         bool   `json:"isUser"`
}

type SaveMessageResponse struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversationId"`
	UserID         string    `json:"userId"`
	Content        string    `json:"content"`
	IsUser         bool      `json:"isUser"`
	Timestamp      time.Time `json:"timestamp"`
}

type Message struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	IsUser         bool      `json:"is_user"`
	Timestamp      time.Time `json:"timestamp"`
}

type DeleteConversationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SearchQuery struct {
	UserID string `schema:"userId"`
	Term   string `schema:"term"`
}

type SearchMessage struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchResult groups the matching messages of one conversation, most recent
// message first.
type SearchResult struct {
	ID       uint            `json:"id"`
	Title    string          `json:"title"`
	Messages []SearchMessage `json:"messages"`
}

type HealthStats struct {
	Conversations int64 `json:"conversations"`
	Messages      int64 `json:"messages"`
}

type DatabaseHealthResponse struct {
	Status   string      `json:"status"`
	Database string      `json:"database"`
	Tables   []string    `json:"tables"`
	Stats    HealthStats `json:"stats"`
}
