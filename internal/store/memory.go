package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a pure in-memory Store implementation, used for unit
// tests and for runs started with a ":memory:"-equivalent database path
// that don't need durability.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	messages      map[string]*Message
	order         []string // message IDs in insertion order
	kv            map[string]*KeyValue
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*Conversation),
		messages:      make(map[string]*Message),
		kv:            make(map[string]*KeyValue),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateConversation(ctx context.Context, title, metadata *string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now().UTC()
	s.conversations[id] = &Conversation{
		ID:        id,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  metadata,
	}
	return id, nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListConversations(ctx context.Context, limit int) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return ErrNotFound
	}
	delete(s.conversations, id)

	kept := s.order[:0]
	for _, mid := range s.order {
		if s.messages[mid].ConversationID == id {
			delete(s.messages, mid)
			continue
		}
		kept = append(kept, mid)
	}
	s.order = kept
	return nil
}

func (s *MemoryStore) AddMessage(ctx context.Context, conversationID, role, content string, metadata *string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return "", ErrNotFound
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	s.messages[id] = &Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
		Metadata:       metadata,
	}
	s.order = append(s.order, id)
	c.UpdatedAt = now
	return id, nil
}

func (s *MemoryStore) GetMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Message
	for _, mid := range s.order {
		m := s.messages[mid]
		if m.ConversationID != conversationID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetRecentMessages(ctx context.Context, limit int) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Message
	for i := len(s.order) - 1; i >= 0; i-- {
		m := s.messages[s.order[i]]
		cp := *m
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) SearchMessages(ctx context.Context, query string, limit int) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Message
	for i := len(s.order) - 1; i >= 0; i-- {
		m := s.messages[s.order[i]]
		if !strings.Contains(m.Content, query) {
			continue
		}
		cp := *m
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) KVSet(ctx context.Context, key string, value json.RawMessage, ttl *time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var expiresAt *time.Time
	if ttl != nil {
		e := now.Add(*ttl)
		expiresAt = &e
	}

	createdAt := now
	if existing, ok := s.kv[key]; ok {
		createdAt = existing.CreatedAt
	}

	s.kv[key] = &KeyValue{
		Key:       key,
		Value:     append(json.RawMessage(nil), value...),
		CreatedAt: createdAt,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (s *MemoryStore) purgeExpiredLocked() {
	now := time.Now().UTC()
	for k, v := range s.kv {
		if v.ExpiresAt != nil && v.ExpiresAt.Before(now) {
			delete(s.kv, k)
		}
	}
}

func (s *MemoryStore) KVGet(ctx context.Context, key string) (*KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	v, ok := s.kv[key]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (s *MemoryStore) KVDelete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.kv, key)
	return nil
}

func (s *MemoryStore) KVList(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	var keys []string
	for k := range s.kv {
		if prefix != "" && !strings.HasPrefix(k, prefix) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
