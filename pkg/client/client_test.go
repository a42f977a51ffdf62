package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	backend "companion-backend/internal/api"
	"companion-backend/internal/database"
)

// Tests here run the client against a real server instance backed by a
// throwaway database.
func setupClient(t *testing.T) *Client {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "client.db") + "?_fk=1")
	require.NoError(t, err)

	service := backend.NewChatHistoryService(db, "client_test")
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		service.AddRoutes(r)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return New(server.URL + "/api")
}

func TestClientConversationLifecycle(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	conv, err := c.CreateConversation(ctx, nil, "alice", "", "")
	require.NoError(t, err)
	assert.NotZero(t, conv.ID)
	assert.Equal(t, "New Conversation", conv.Title)

	saved, err := c.SaveMessage(ctx, conv.ID, "alice", "Salam!", true)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, saved.ConversationID)

	_, err = c.SaveMessage(ctx, conv.ID, "alice", "Salam habibi!", false)
	require.NoError(t, err)

	messages, err := c.Messages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Salam!", messages[0].Content)

	conversations, err := c.Conversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	results, err := c.Search(ctx, "alice", "habibi")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Messages, 1)

	deleted, err := c.DeleteConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Success)

	messages, err = c.Messages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestClientErrorsPropagate(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	_, err := c.CreateConversation(ctx, nil, "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	_, err = c.SaveMessage(ctx, 9999, "alice", "hello", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestCreateConversationUsesSessionTopic(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	session := NewTopicSession(nil)

	first, err := c.CreateConversation(ctx, session, "alice", "First", "")
	require.NoError(t, err)
	require.NotNil(t, first.TopicID)
	assert.Equal(t, session.Current(), *first.TopicID)

	// A second conversation without an explicit topic joins the same one.
	second, err := c.CreateConversation(ctx, session, "alice", "Second", "")
	require.NoError(t, err)
	require.NotNil(t, second.TopicID)
	assert.Equal(t, *first.TopicID, *second.TopicID)

	grouped, err := c.ConversationsByTopic(ctx, *first.TopicID)
	require.NoError(t, err)
	assert.Len(t, grouped, 2)

	// An explicit topic is adopted as current.
	third, err := c.CreateConversation(ctx, session, "alice", "Third", "T-654321-42")
	require.NoError(t, err)
	require.NotNil(t, third.TopicID)
	assert.Equal(t, "T-654321-42", session.Current())
}
