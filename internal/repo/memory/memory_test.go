package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avelis/probed/internal/domain"
)

func obsAt(name string, sec int) domain.Observation {
	at := time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC)
	return domain.NewSuccess(name, domain.KindHTTP, at, 10*time.Millisecond, 200)
}

func TestQueryRange_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	// append out of timestamp order, mixed checks
	for _, o := range []domain.Observation{obsAt("b", 30), obsAt("a", 10), obsAt("a", 50), obsAt("b", 20)} {
		if err := s.Append(ctx, o); err != nil {
			t.Fatal(err)
		}
	}

	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	to := from.Add(time.Minute)

	all, err := s.QueryRange(ctx, "", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("want 4 rows, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.Before(all[i-1].Timestamp) {
			t.Fatal("rows not ordered by timestamp")
		}
	}

	onlyA, err := s.QueryRange(ctx, "a", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyA) != 2 {
		t.Fatalf("want 2 rows for check a, got %d", len(onlyA))
	}
	for _, o := range onlyA {
		if o.CheckName != "a" {
			t.Fatalf("wrong check in filtered result: %q", o.CheckName)
		}
	}
}

func TestQueryRange_InclusiveBounds(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Append(ctx, obsAt("a", 10))
	_ = s.Append(ctx, obsAt("a", 20))
	_ = s.Append(ctx, obsAt("a", 30))

	from := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	to := time.Date(2025, 6, 1, 12, 0, 20, 0, time.UTC)
	got, err := s.QueryRange(ctx, "a", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("bounds are inclusive; want 2 rows, got %d", len(got))
	}
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Append(ctx, obsAt("a", i%60))
		}
	}()
	go func() {
		defer wg.Done()
		from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 200; i++ {
			if _, err := s.QueryRange(ctx, "", from, from.Add(24*time.Hour)); err != nil {
				t.Errorf("query: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if s.Len() != 200 {
		t.Fatalf("want 200 rows, got %d", s.Len())
	}
}
