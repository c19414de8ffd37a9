package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists conversations by id.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Conversation, error)
	Save(ctx context.Context, conversation *Conversation) error
}

// RedisSessionStore keeps each conversation as JSON under session:<id>.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore expires sessions ttl after their last save; ttl <= 0
// keeps them forever.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisSessionStore) Load(ctx context.Context, id string) (*Conversation, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading session %s: %w", id, err)
	}

	var conversation Conversation
	if err := json.Unmarshal(data, &conversation); err != nil {
		return nil, fmt.Errorf("error decoding session %s: %w", id, err)
	}
	if conversation.State == nil {
		conversation.State = map[string]string{}
	}
	return &conversation, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, conversation *Conversation) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("error encoding session %s: %w", conversation.ID, err)
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, sessionKey(conversation.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("error saving session %s: %w", conversation.ID, err)
	}
	return nil
}

// InMemorySessionStore is used when no Redis is configured. Conversations are
// copied in and out so callers never share slices with the store.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Conversation
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: map[string]*Conversation{}}
}

func (s *InMemorySessionStore) Load(ctx context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneConversation(conversation), nil
}

func (s *InMemorySessionStore) Save(ctx context.Context, conversation *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[conversation.ID] = cloneConversation(conversation)
	return nil
}

func cloneConversation(c *Conversation) *Conversation {
	out := &Conversation{
		ID:        c.ID,
		Messages:  append(c.Messages[:0:0], c.Messages...),
		State:     maps.Clone(c.State),
		UpdatedAt: c.UpdatedAt,
	}
	if out.State == nil {
		out.State = map[string]string{}
	}
	return out
}
