package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"companion-backend/internal/database"
	"companion-backend/pkg/api"
)

const defaultConversationTitle = "New Conversation"

type ChatHistoryService struct {
	db       *gorm.DB
	dbName   string
	searcher *database.Searcher
}

func NewChatHistoryService(db *gorm.DB, dbName string) *ChatHistoryService {
	return &ChatHistoryService{
		db:       db,
		dbName:   dbName,
		searcher: database.NewSearcher(),
	}
}

func (s *ChatHistoryService) AddRoutes(r chi.Router) {
	r.Route("/conversations", func(r chi.Router) {
		r.Post("/", RestCreateHandler(s.CreateConversation))
		r.Get("/topic/{topic_id}", RestHandler(s.GetConversationsByTopic))
		// Inherited API shape: GET takes a user id, DELETE a conversation id,
		// both in the same position.
		r.Get("/{id}", RestHandler(s.GetConversations))
		r.Delete("/{id}", RestHandler(s.DeleteConversation))
	})
	r.Route("/messages", func(r chi.Router) {
		r.Post("/", RestCreateHandler(s.SaveMessage))
		r.Get("/{conversation_id}", RestHandler(s.GetMessages))
	})
	r.Get("/search", RestHandler(s.Search))
	r.Get("/health/database", s.DatabaseHealth)
	r.Route("/debug", func(r chi.Router) {
		r.Get("/all-conversations", RestHandler(s.DebugAllConversations))
		r.Get("/all-messages", RestHandler(s.DebugAllMessages))
		r.Get("/user-messages/{user_id}", RestHandler(s.DebugUserMessages))
	})
}

func (s *ChatHistoryService) CreateConversation(r *http.Request) (any, error) {
	req, err := ParseRequest[api.CreateConversationRequest](r)
	if err != nil {
		return nil, err
	}

	if req.UserID == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "User ID is required")
	}

	title := req.Title
	if title == "" {
		title = defaultConversationTitle
	}

	var topicID *string
	if req.TopicID != "" {
		topicID = &req.TopicID
	}

	conversation := database.Conversation{
		UserID:  req.UserID,
		Title:   title,
		TopicID: topicID,
	}
	if err := s.db.WithContext(r.Context()).Create(&conversation).Error; err != nil {
		slog.Error("error creating conversation", "user_id", req.UserID, "error", err)
		return nil, StoreError("Failed to create conversation", err)
	}

	slog.Info("created conversation", "conversation_id", conversation.ID, "user_id", req.UserID, "topic_id", req.TopicID)

	return api.CreateConversationResponse{
		ID:        conversation.ID,
		UserID:    conversation.UserID,
		Title:     conversation.Title,
		TopicID:   conversation.TopicID,
		CreatedAt: conversation.CreatedAt,
	}, nil
}

func (s *ChatHistoryService) GetConversations(r *http.Request) (any, error) {
	userID, err := URLParam(r, "id")
	if err != nil {
		return nil, err
	}

	conversations := make([]database.Conversation, 0)
	if err := s.db.WithContext(r.Context()).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		slog.Error("error fetching conversations", "user_id", userID, "error", err)
		return nil, StoreError("Failed to fetch conversations", err)
	}

	return conversations, nil
}

func (s *ChatHistoryService) GetConversationsByTopic(r *http.Request) (any, error) {
	topicID, err := URLParam(r, "topic_id")
	if err != nil {
		return nil, err
	}

	conversations := make([]database.Conversation, 0)
	if err := s.db.WithContext(r.Context()).
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&conversations).Error; err != nil {
		slog.Error("error fetching conversations by topic", "topic_id", topicID, "error", err)
		return nil, StoreError("Failed to fetch conversations by topic", err)
	}

	slog.Info("fetched conversations for topic", "topic_id", topicID, "count", len(conversations))
	return conversations, nil
}

func (s *ChatHistoryService) SaveMessage(r *http.Request) (any, error) {
	req, err := ParseRequest[api.SaveMessageRequest](r)
	if err != nil {
		return nil, err
	}

	slog.Info("received message save request",
		"conversation_id", req.ConversationID, "user_id", req.UserID,
		"content_length", len(req.Content), "is_user", req.IsUser)

	if req.ConversationID == 0 || req.UserID == "" || req.Content == "" {
		slog.Warn("message save failed: missing required fields")
		return nil, CodedErrorf(http.StatusBadRequest, "Missing required fields")
	}

	ctx := r.Context()

	// The conversation must exist and belong to the same user before anything
	// is written.
	var conversation database.Conversation
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", req.ConversationID, req.UserID).
		First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("message save failed: conversation not found",
				"conversation_id", req.ConversationID, "user_id", req.UserID)
			return nil, CodedErrorf(http.StatusNotFound, "Conversation not found")
		}
		slog.Error("error checking conversation", "conversation_id", req.ConversationID, "error", err)
		return nil, StoreError("Failed to save message", err)
	}

	message := database.Message{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Content:        req.Content,
		IsUser:         req.IsUser,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		slog.Error("database error when saving message", "conversation_id", req.ConversationID, "error", err)
		return nil, StoreError("Failed to save message to database", err)
	}

	slog.Info("message saved successfully", "message_id", message.ID)

	// Bump the parent's updated_at. This deliberately runs outside a
	// transaction with the insert above; a failure here leaves the timestamp
	// stale but the message committed.
	if err := s.db.WithContext(ctx).
		Model(&database.Conversation{}).
		Where("id = ?", req.ConversationID).
		Update("updated_at", time.Now().UTC()).Error; err != nil {
		slog.Error("error updating conversation timestamp", "conversation_id", req.ConversationID, "error", err)
		return nil, StoreError("Failed to save message to database", err)
	}

	return api.SaveMessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		UserID:         message.UserID,
		Content:        message.Content,
		IsUser:         message.IsUser,
		Timestamp:      message.Timestamp,
	}, nil
}

func (s *ChatHistoryService) GetMessages(r *http.Request) (any, error) {
	conversationID, err := URLParamUint(r, "conversation_id")
	if err != nil {
		return nil, err
	}

	messages := make([]database.Message, 0)
	if err := s.db.WithContext(r.Context()).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		slog.Error("error fetching messages", "conversation_id", conversationID, "error", err)
		return nil, StoreError("Failed to fetch messages", err)
	}

	return messages, nil
}

func (s *ChatHistoryService) DeleteConversation(r *http.Request) (any, error) {
	conversationID, err := URLParamUint(r, "id")
	if err != nil {
		return nil, err
	}

	// Messages go with the conversation via the cascade constraint. Deleting
	// an id that does not exist still reports success.
	if err := s.db.WithContext(r.Context()).
		Delete(&database.Conversation{}, conversationID).Error; err != nil {
		slog.Error("error deleting conversation", "conversation_id", conversationID, "error", err)
		return nil, StoreError("Failed to delete conversation", err)
	}

	slog.Info("deleted conversation", "conversation_id", conversationID)

	return api.DeleteConversationResponse{
		Success: true,
		Message: "Conversation deleted successfully",
	}, nil
}

func (s *ChatHistoryService) Search(r *http.Request) (any, error) {
	query, err := ParseRequestQueryParams[api.SearchQuery](r)
	if err != nil {
		return nil, err
	}

	if query.UserID == "" || query.Term == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "User ID and search term are required")
	}

	hits, err := s.searcher.Search(r.Context(), s.db, query.UserID, query.Term)
	if err != nil {
		slog.Error("error searching conversations", "user_id", query.UserID, "error", err)
		return nil, StoreError("Failed to search conversations", err)
	}

	return groupSearchHits(hits), nil
}

// groupSearchHits folds raw matching rows into per-conversation groups,
// preserving the row order within each group.
func groupSearchHits(hits []database.SearchHit) []api.SearchResult {
	results := make([]api.SearchResult, 0)
	index := make(map[uint]int)

	for _, hit := range hits {
		i, ok := index[hit.ConversationID]
		if !ok {
			i = len(results)
			index[hit.ConversationID] = i
			results = append(results, api.SearchResult{ID: hit.ConversationID, Title: hit.Title})
		}
		results[i].Messages = append(results[i].Messages, api.SearchMessage{
			ID:        hit.MessageID,
			Content:   hit.Content,
			IsUser:    hit.IsUser,
			Timestamp: hit.Timestamp,
		})
	}

	return results
}

func (s *ChatHistoryService) DatabaseHealth(w http.ResponseWriter, r *http.Request) {
	tables, stats, err := database.Health(r.Context(), s.db)
	if err != nil {
		slog.Error("database health check failed", "error", err)
		WriteJsonResponse(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	WriteJsonResponse(w, http.StatusOK, api.DatabaseHealthResponse{
		Status:   "ok",
		Database: s.dbName,
		Tables:   tables,
		Stats:    api.HealthStats{Conversations: stats.Conversations, Messages: stats.Messages},
	})
}

// Debug endpoints; these should be disabled in production.

func (s *ChatHistoryService) DebugAllConversations(r *http.Request) (any, error) {
	conversations := make([]database.Conversation, 0)
	if err := s.db.WithContext(r.Context()).
		Order("updated_at DESC").
		Limit(100).
		Find(&conversations).Error; err != nil {
		return nil, StoreError("Failed to fetch conversations", err)
	}
	return conversations, nil
}

func (s *ChatHistoryService) DebugAllMessages(r *http.Request) (any, error) {
	messages := make([]database.Message, 0)
	if err := s.db.WithContext(r.Context()).
		Order("timestamp DESC").
		Limit(200).
		Find(&messages).Error; err != nil {
		return nil, StoreError("Failed to fetch messages", err)
	}
	return messages, nil
}

func (s *ChatHistoryService) DebugUserMessages(r *http.Request) (any, error) {
	userID, err := URLParam(r, "user_id")
	if err != nil {
		return nil, err
	}

	messages := make([]database.Message, 0)
	if err := s.db.WithContext(r.Context()).
		Joins("JOIN conversations c ON messages.conversation_id = c.id").
		Where("c.user_id = ?", userID).
		Order("messages.timestamp DESC").
		Limit(100).
		Find(&messages).Error; err != nil {
		return nil, StoreError("Failed to fetch user messages", err)
	}
	return messages, nil
}
