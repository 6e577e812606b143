//go:build integration

package postgres

// go test -tags=integration ./internal/repo/postgres -count=1

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avelis/probed/internal/domain"
)

func TestAppendAndQueryRange(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL empty")
	}
	ctx := context.Background()

	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Now().UTC().Truncate(time.Second)
	name := "it-" + base.Format("150405.000000000")

	rows := []domain.Observation{
		domain.NewSuccess(name, domain.KindHTTP, base, 12*time.Millisecond, 200),
		domain.NewFailure(name, domain.KindHTTP, base.Add(time.Second), domain.ErrTimeout, "deadline exceeded"),
		domain.NewSuccess(name, domain.KindPing, base.Add(2*time.Second), 3*time.Millisecond, -1),
	}
	for _, o := range rows {
		if err := store.Append(ctx, o); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.QueryRange(ctx, name, base, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 rows, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatal("rows not ordered by ts")
		}
	}

	first := got[0]
	if first.Kind != domain.KindHTTP || !first.Success() || first.Code == nil || *first.Code != 200 {
		t.Fatalf("http success row wrong: %+v", first)
	}
	second := got[1]
	if second.Success() || second.ErrKind == nil || *second.ErrKind != domain.ErrTimeout {
		t.Fatalf("failure row wrong: %+v", second)
	}
	third := got[2]
	if third.Kind != domain.KindPing || third.Code != nil {
		t.Fatalf("ping row wrong: %+v", third)
	}

	// range excludes rows outside [from, to]
	none, err := store.QueryRange(ctx, name, base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("want empty result, got %d rows", len(none))
	}
}
