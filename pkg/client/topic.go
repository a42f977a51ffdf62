package client

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"companion-backend/pkg/api"
)

const topicStoreKey = "currentTopicId"

// TopicStore is the ephemeral backup for the current topic, the analog of the
// browser's session storage.
type TopicStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

type MemoryTopicStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryTopicStore() *MemoryTopicStore {
	return &MemoryTopicStore{values: make(map[string]string)}
}

func (s *MemoryTopicStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryTopicStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// TopicSession tracks the current topic for one client session. It replaces
// the hidden singleton state of the original service with an explicit object
// passed to client calls.
type TopicSession struct {
	mu      sync.Mutex
	current string
	store   TopicStore
}

func NewTopicSession(store TopicStore) *TopicSession {
	if store == nil {
		store = NewMemoryTopicStore()
	}
	return &TopicSession{store: store}
}

// EnsureTopic resolves the topic for a new conversation: the in-memory
// current value first, then the store, then a freshly generated id. Whatever
// is chosen becomes current and is written back to the store.
func (s *TopicSession) EnsureTopic() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		if v, ok := s.store.Get(topicStoreKey); ok && v != "" {
			s.current = v
		}
	}
	if s.current == "" {
		s.current = GenerateTopicID()
	}

	s.store.Set(topicStoreKey, s.current)
	return s.current
}

// Adopt makes an externally chosen topic the current one.
func (s *TopicSession) Adopt(topicID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = topicID
	s.store.Set(topicStoreKey, topicID)
}

// Current returns the current topic id, which may be empty.
func (s *TopicSession) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// NewTopic discards the current topic and generates a new one. Call this when
// the user starts a new chat.
func (s *TopicSession) NewTopic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = GenerateTopicID()
	s.store.Set(topicStoreKey, s.current)
	return s.current
}

// InCurrentTopic reports whether a conversation belongs to the current topic.
func (s *TopicSession) InCurrentTopic(conversation api.Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != "" && conversation.TopicID != nil && *conversation.TopicID == s.current
}

// GenerateTopicID builds a readable topic id from the last six digits of the
// current unix-millisecond time plus a random 1-999 suffix. The scheme is not
// collision resistant and must never be used as a primary key.
func GenerateTopicID() string {
	timestamp := time.Now().UnixMilli() % 1_000_000
	randomPart := rand.Intn(999) + 1
	return fmt.Sprintf("T-%d-%d", timestamp, randomPart)
}
