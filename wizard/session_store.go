package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/reviewloop/reviewloop/utils"
)

// SessionStore persists wizard machines between requests. Sessions expire
// after a TTL; an expired or unknown id surfaces as ErrSessionNotFound.
type SessionStore interface {
	Save(ctx context.Context, m *Machine) error
	Load(ctx context.Context, id uuid.UUID) (*Machine, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const sessionKeyPrefix = "wizard:session:"

// RedisSessionStore keeps serialized machines in Redis with a TTL
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = utils.WizardSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Save(ctx context.Context, m *Machine) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize wizard session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+m.ID.String(), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store wizard session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Load(ctx context.Context, id uuid.UUID) (*Machine, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}

	var m Machine
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("failed to deserialize wizard session: %w", err)
	}
	return &m, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, sessionKeyPrefix+id.String()).Err()
}

// MemorySessionStore is the fallback when no cache is configured. Expired
// entries are reaped lazily on access.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]memorySession
	ttl      time.Duration
}

type memorySession struct {
	payload   []byte
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = utils.WizardSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[uuid.UUID]memorySession),
		ttl:      ttl,
	}
}

func (s *MemorySessionStore) Save(ctx context.Context, m *Machine) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize wizard session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[m.ID] = memorySession{
		payload:   payload,
		expiresAt: utils.UTCNow().Add(s.ttl),
	}
	return nil
}

func (s *MemorySessionStore) Load(ctx context.Context, id uuid.UUID) (*Machine, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if utils.UTCNow().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	var m Machine
	if err := json.Unmarshal(entry.payload, &m); err != nil {
		return nil, fmt.Errorf("failed to deserialize wizard session: %w", err)
	}
	return &m, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
