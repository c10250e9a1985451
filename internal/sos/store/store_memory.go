package store

import (
	"context"
	"sort"
	"sync"

	id "abhaya/pkg/domain"
	"abhaya/pkg/platform/sentinel"
)

// InMemoryStore keeps records for the lifetime of the process.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.AlertID]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.AlertID]Record)}
}

func (s *InMemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.AlertID]; ok {
		return sentinel.ErrConflict
	}
	rec.NotifiedChannels = append([]string(nil), rec.NotifiedChannels...)
	s.records[rec.AlertID] = rec
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, alertID id.AlertID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[alertID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

// ListRecent returns records newest dispatch first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].DispatchedAt.After(out[j].DispatchedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
