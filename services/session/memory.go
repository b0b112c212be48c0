package sessionsvc

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/schooldash/core"
)

type memoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

var _ core.TokenStore = (*memoryStore)(nil)

// NewMemoryStore is used when no redis server is configured.
func NewMemoryStore() core.TokenStore {
	return &memoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *memoryStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if expiresAt.After(now) {
		s.revoked[tokenID] = expiresAt
	}
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	return ok && exp.After(s.now()), nil
}
