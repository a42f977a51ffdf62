package client

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-backend/pkg/api"
)

var topicIDPattern = regexp.MustCompile(`^T-\d{1,6}-\d{1,3}$`)

func TestGenerateTopicIDFormat(t *testing.T) {
	for i := 0; i < 10; i++ {
		id := GenerateTopicID()
		assert.Regexp(t, topicIDPattern, id)
	}
}

func TestGenerateTopicIDVaries(t *testing.T) {
	// No uniqueness guarantee, but repeated generation should not be constant.
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateTopicID()] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestEnsureTopicFallbackChain(t *testing.T) {
	// In-memory value wins.
	session := NewTopicSession(nil)
	session.Adopt("T-111111-1")
	assert.Equal(t, "T-111111-1", session.EnsureTopic())

	// Then the store.
	store := NewMemoryTopicStore()
	store.Set(topicStoreKey, "T-222222-2")
	session = NewTopicSession(store)
	assert.Equal(t, "T-222222-2", session.EnsureTopic())

	// Then a fresh id, which is written back to the store.
	store = NewMemoryTopicStore()
	session = NewTopicSession(store)
	generated := session.EnsureTopic()
	assert.Regexp(t, topicIDPattern, generated)
	stored, ok := store.Get(topicStoreKey)
	require.True(t, ok)
	assert.Equal(t, generated, stored)

	// Repeated calls are stable.
	assert.Equal(t, generated, session.EnsureTopic())
}

func TestNewTopicResets(t *testing.T) {
	session := NewTopicSession(nil)
	session.Adopt("T-111111-1")

	next := session.NewTopic()
	assert.Regexp(t, topicIDPattern, next)
	assert.Equal(t, next, session.Current())
	assert.NotEqual(t, "T-111111-1", session.Current())
}

func TestInCurrentTopic(t *testing.T) {
	session := NewTopicSession(nil)

	topic := "T-333333-3"
	other := "T-444444-4"

	// No current topic yet.
	assert.False(t, session.InCurrentTopic(api.Conversation{TopicID: &topic}))

	session.Adopt(topic)
	assert.True(t, session.InCurrentTopic(api.Conversation{TopicID: &topic}))
	assert.False(t, session.InCurrentTopic(api.Conversation{TopicID: &other}))
	assert.False(t, session.InCurrentTopic(api.Conversation{TopicID: nil}))
}
