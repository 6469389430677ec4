package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/sentinel"
)

// InMemoryStore keeps the newest snapshot per account.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[domain.Address]models.Snapshot
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snapshots: make(map[domain.Address]models.Snapshot)}
}

// Save ignores snapshots that are not newer than the stored one.
func (s *InMemoryStore) Save(_ context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.snapshots[snap.Account]; ok && cur.Version >= snap.Version {
		return nil
	}
	s.snapshots[snap.Account] = snap
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, account domain.Address) (models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[account]
	if !ok {
		return models.Snapshot{}, fmt.Errorf("snapshot %s: %w", account, sentinel.ErrNotFound)
	}
	return snap, nil
}

// List returns snapshots ordered by account.
func (s *InMemoryStore) List(_ context.Context) ([]models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	slices.SortFunc(out, func(a, b models.Snapshot) int {
		return strings.Compare(string(a.Account), string(b.Account))
	})
	return out, nil
}
