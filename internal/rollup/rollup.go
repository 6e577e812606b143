package rollup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/avelis/probed/internal/domain"
	"github.com/avelis/probed/internal/repo"
)

// ErrInvalidParameter reports a window/bucket combination that cannot be
// rolled up. Surfaced synchronously to the caller.
var ErrInvalidParameter = errors.New("invalid rollup parameter")

type Params struct {
	Window     time.Duration
	BucketSize time.Duration
	Now        time.Time
	Check      string // optional filter; "" means all checks
}

// Bucket aggregates one check's observations within one time bucket.
// Latency stats cover successful observations only and are nil when the
// bucket holds no successes. Buckets are derived on demand, never stored.
type Bucket struct {
	CheckName   string      `json:"check_name"`
	Kind        domain.Kind `json:"kind"`
	BucketStart time.Time   `json:"bucket_start"`
	MinMS       *int64      `json:"min_ms,omitempty"`
	AvgMS       *int64      `json:"avg_ms,omitempty"`
	MaxMS       *int64      `json:"max_ms,omitempty"`
	SampleCount int         `json:"sample_count"`
	ErrorCount  int         `json:"error_count"`
}

type groupKey struct {
	name  string
	kind  domain.Kind
	start int64 // epoch seconds
}

type acc struct {
	min, max, sum int64
	successes     int64
	samples       int
	errors        int
}

// Compute buckets all observations in [now-window, now] and summarizes
// each (check, kind, bucket) group. Empty buckets are omitted. The result
// is ordered by (bucket_start, check_name, kind); downstream consumers
// rely on that ordering.
func Compute(ctx context.Context, store repo.ResultStore, p Params) ([]Bucket, error) {
	bs := int64(p.BucketSize / time.Second)
	if bs <= 0 {
		return nil, fmt.Errorf("%w: bucket_size must be a positive number of seconds", ErrInvalidParameter)
	}
	if p.Window < p.BucketSize {
		return nil, fmt.Errorf("%w: window %v is smaller than bucket_size %v", ErrInvalidParameter, p.Window, p.BucketSize)
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rows, err := store.QueryRange(ctx, p.Check, now.Add(-p.Window), now)
	if err != nil {
		return nil, err
	}

	groups := make(map[groupKey]*acc)
	for i := range rows {
		o := &rows[i]
		key := groupKey{
			name:  o.CheckName,
			kind:  o.Kind,
			start: o.Timestamp.Unix() / bs * bs,
		}
		g := groups[key]
		if g == nil {
			g = &acc{}
			groups[key] = g
		}
		g.samples++
		if o.Success() {
			ms := *o.LatencyMS
			if g.successes == 0 || ms < g.min {
				g.min = ms
			}
			if g.successes == 0 || ms > g.max {
				g.max = ms
			}
			g.sum += ms
			g.successes++
		} else {
			g.errors++
		}
	}

	out := make([]Bucket, 0, len(groups))
	for key, g := range groups {
		b := Bucket{
			CheckName:   key.name,
			Kind:        key.kind,
			BucketStart: time.Unix(key.start, 0).UTC(),
			SampleCount: g.samples,
			ErrorCount:  g.errors,
		}
		if g.successes > 0 {
			min, max := g.min, g.max
			avg := g.sum / g.successes // integer-truncated mean
			b.MinMS, b.AvgMS, b.MaxMS = &min, &avg, &max
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.BucketStart.Equal(b.BucketStart) {
			return a.BucketStart.Before(b.BucketStart)
		}
		if a.CheckName != b.CheckName {
			return a.CheckName < b.CheckName
		}
		return a.Kind < b.Kind
	})
	return out, nil
}
