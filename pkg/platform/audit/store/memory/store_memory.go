package memory

import (
	"context"
	"sync"

	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.Address][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.Address][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Account] = append(s.events[event.Account], event)
	return nil
}

func (s *InMemoryStore) ListByAccount(_ context.Context, account domain.Address) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[account]...), nil
}

// ListRecent returns the last limit events for an account, oldest first.
func (s *InMemoryStore) ListRecent(_ context.Context, account domain.Address, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[account]
	start := max(len(events)-limit, 0)
	return append([]audit.Event{}, events[start:]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.Address][]audit.Event)
}
