// Package client wraps the chat-history HTTP API for Go front-ends, adding
// the topic-continuity bookkeeping the browser client kept in session storage.
package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"companion-backend/pkg/api"
)

type Client struct {
	client *resty.Client
}

// New creates a client for a server's /api base URL, e.g.
// "http://localhost:3005/api".
func New(baseURL string) *Client {
	return &Client{client: resty.New().SetBaseURL(baseURL)}
}

func apiError(resp *resty.Response) error {
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode(), resp.Body())
}

// CreateConversation starts a new conversation. When topicID is empty the
// session decides which topic the conversation joins; when it is set, the
// session adopts it as current.
func (c *Client) CreateConversation(ctx context.Context, session *TopicSession, userID, title, topicID string) (api.CreateConversationResponse, error) {
	if title == "" {
		title = "New Conversation"
	}
	if session != nil {
		if topicID == "" {
			topicID = session.EnsureTopic()
		} else {
			session.Adopt(topicID)
		}
	}

	var result api.CreateConversationResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(api.CreateConversationRequest{UserID: userID, Title: title, TopicID: topicID}).
		SetResult(&result).
		Post("/conversations")
	if err != nil {
		return result, fmt.Errorf("error creating conversation: %w", err)
	}
	if resp.IsError() {
		return result, apiError(resp)
	}
	return result, nil
}

// Conversations lists a user's conversations, most recently active first.
func (c *Client) Conversations(ctx context.Context, userID string) ([]api.Conversation, error) {
	var result []api.Conversation
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/conversations/" + userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching conversations: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result, nil
}

// ConversationsByTopic lists the conversations of one topic in chronological
// order.
func (c *Client) ConversationsByTopic(ctx context.Context, topicID string) ([]api.Conversation, error) {
	var result []api.Conversation
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/conversations/topic/" + topicID)
	if err != nil {
		return nil, fmt.Errorf("error fetching conversations by topic: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result, nil
}

// SaveMessage appends a message to a conversation the user owns.
func (c *Client) SaveMessage(ctx context.Context, conversationID uint, userID, content string, isUser bool) (api.SaveMessageResponse, error) {
	var result api.SaveMessageResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(api.SaveMessageRequest{
			ConversationID: conversationID,
			UserID:         userID,
			Content:        content,
			IsUser:         isUser,
		}).
		SetResult(&result).
		Post("/messages")
	if err != nil {
		return result, fmt.Errorf("error saving message: %w", err)
	}
	if resp.IsError() {
		return result, apiError(resp)
	}
	return result, nil
}

// Messages lists a conversation's messages in insertion order.
func (c *Client) Messages(ctx context.Context, conversationID uint) ([]api.Message, error) {
	var result []api.Message
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/messages/" + strconv.FormatUint(uint64(conversationID), 10))
	if err != nil {
		return nil, fmt.Errorf("error fetching messages: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result, nil
}

// DeleteConversation deletes a conversation and, via cascade, its messages.
func (c *Client) DeleteConversation(ctx context.Context, conversationID uint) (api.DeleteConversationResponse, error) {
	var result api.DeleteConversationResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Delete("/conversations/" + strconv.FormatUint(uint64(conversationID), 10))
	if err != nil {
		return result, fmt.Errorf("error deleting conversation: %w", err)
	}
	if resp.IsError() {
		return result, apiError(resp)
	}
	return result, nil
}

// Search returns the user's conversations containing the term, grouped by
// conversation.
func (c *Client) Search(ctx context.Context, userID, term string) ([]api.SearchResult, error) {
	var result []api.SearchResult
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"userId": userID, "term": term}).
		SetResult(&result).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("error searching conversations: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result, nil
}
