package repo

import (
	"context"
	"time"

	"github.com/avelis/probed/internal/domain"
)

// Ports (interfaces) — swap in any storage adapter.
//
// ResultStore is the append-only observation log. Appends are serialized
// by the adapter; reads run concurrently with writes and see rows
// committed so far.
type ResultStore interface {
	// Append persists one observation atomically.
	Append(ctx context.Context, o domain.Observation) error

	// QueryRange returns observations with timestamp in [from, to],
	// ordered by timestamp ascending. checkName == "" matches all checks.
	QueryRange(ctx context.Context, checkName string, from, to time.Time) ([]domain.Observation, error)
}
