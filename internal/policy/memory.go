package policy

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process ConfigStore for unit tests and embedded use.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[uuid.UUID]Config
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: make(map[uuid.UUID]Config)}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, userID uuid.UUID) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[userID]
	if !ok {
		cfg = DefaultConfig(userID)
		now := time.Now().UTC()
		cfg.CreatedAt = now
		cfg.UpdatedAt = now
		s.configs[userID] = cfg
	}
	out := cfg
	return &out, nil
}

func (s *MemoryStore) Update(_ context.Context, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.UpdatedAt = time.Now().UTC()
	s.configs[cfg.UserID] = *cfg
	return nil
}
