package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avelis/probed/internal/domain"
	"github.com/avelis/probed/internal/repo"
)

var _ repo.ResultStore = (*Store)(nil)

// Store keeps observations in memory. Used when no DATABASE_URL is
// configured and throughout the tests.
type Store struct {
	mu   sync.RWMutex
	rows []domain.Observation
}

func New() *Store {
	return &Store{rows: make([]domain.Observation, 0, 128)}
}

func (m *Store) Append(ctx context.Context, o domain.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, o)
	return nil
}

func (m *Store) QueryRange(ctx context.Context, checkName string, from, to time.Time) ([]domain.Observation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Observation, 0, len(m.rows))
	for _, o := range m.rows {
		if checkName != "" && o.CheckName != checkName {
			continue
		}
		if o.Timestamp.Before(from) || o.Timestamp.After(to) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// Len reports how many observations are stored.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}
