package store

import (
	"context"
	"sort"
	"sync"

	"abhaya/internal/hazard/models"
	id "abhaya/pkg/domain"
	"abhaya/pkg/platform/sentinel"
)

// InMemoryStore keeps reports for the lifetime of the process.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[id.ReportID]models.Report
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reports: make(map[id.ReportID]models.Report)}
}

func (s *InMemoryStore) Save(_ context.Context, r models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; ok {
		return sentinel.ErrConflict
	}
	s.reports[r.ID] = r
	return nil
}

// ListRecent returns reports newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, filter ListFilter) ([]models.Report, error) {
	minRank := filter.MinSeverity.Rank()
	s.mu.RLock()
	out := make([]models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if r.Severity.Rank() >= minRank {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit := filter.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
