package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/avelis/probed/internal/domain"
	apimw "github.com/avelis/probed/internal/httpapi/middleware"
	"github.com/avelis/probed/internal/registry"
	"github.com/avelis/probed/internal/repo"
	"github.com/avelis/probed/internal/rollup"
)

// Server is the read-side query surface consumed by dashboards and
// reporting scripts. It only reads: the scheduler keeps writing while
// these handlers run.
type Server struct {
	Logger   *zap.Logger
	Registry *registry.Registry
	Results  repo.ResultStore
}

func NewServer(l *zap.Logger, reg *registry.Registry, rs repo.ResultStore) *Server {
	return &Server{Logger: l, Registry: reg, Results: rs}
}

func (s *Server) Router(reqPerMin, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(reqPerMin, burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/checks", s.handleListChecks)
	r.Get("/api/observations", s.handleObservations)
	r.Get("/api/rollup", s.handleRollup)

	return r
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Registry.Checks())
}

func (s *Server) handleObservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := time.Now().UTC()

	from := now.Add(-time.Hour)
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "bad from: "+err.Error(), http.StatusBadRequest)
			return
		}
		from = t
	}
	to := now
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "bad to: "+err.Error(), http.StatusBadRequest)
			return
		}
		to = t
	}

	rows, err := s.Results.QueryRange(r.Context(), q.Get("check"), from, to)
	if err != nil {
		s.Logger.Error("query_range_error", zap.Error(err))
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []domain.Observation{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleRollup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window := time.Hour
	if v := q.Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			http.Error(w, "bad window: "+err.Error(), http.StatusBadRequest)
			return
		}
		window = d
	}
	bucket := time.Minute
	if v := q.Get("bucket"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			http.Error(w, "bad bucket: "+err.Error(), http.StatusBadRequest)
			return
		}
		bucket = d
	}

	buckets, err := rollup.Compute(r.Context(), s.Results, rollup.Params{
		Window:     window,
		BucketSize: bucket,
		Now:        time.Now().UTC(),
		Check:      q.Get("check"),
	})
	if err != nil {
		if errors.Is(err, rollup.ErrInvalidParameter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Logger.Error("rollup_error", zap.Error(err))
		http.Error(w, "rollup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, buckets)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
