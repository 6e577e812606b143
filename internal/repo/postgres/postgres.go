package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/avelis/probed/internal/domain"
	"github.com/avelis/probed/internal/repo"
)

var _ repo.ResultStore = (*Store)(nil)

// Store persists observations in postgres, one table per check kind so
// kind-specific columns (http status) don't force nullable-everything
// rows. Both tables are indexed on ts for range scans.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &Store{pool: pool, log: log}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS http_resp (
			id         bigserial PRIMARY KEY,
			check_name text NOT NULL,
			ts         timestamptz NOT NULL,
			latency_ms bigint,
			code       integer,
			error      text,
			error_kind text
		)`,
		`CREATE INDEX IF NOT EXISTS http_resp_ts_idx ON http_resp (ts)`,
		`CREATE TABLE IF NOT EXISTS ping_resp (
			id         bigserial PRIMARY KEY,
			check_name text NOT NULL,
			ts         timestamptz NOT NULL,
			latency_ms bigint,
			error      text,
			error_kind text
		)`,
		`CREATE INDEX IF NOT EXISTS ping_resp_ts_idx ON ping_resp (ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, o domain.Observation) error {
	var err error
	switch o.Kind {
	case domain.KindHTTP:
		_, err = s.pool.Exec(ctx,
			`INSERT INTO http_resp (check_name, ts, latency_ms, code, error, error_kind)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			o.CheckName, o.Timestamp, o.LatencyMS, o.Code, o.ErrDetail, o.ErrKind)
	case domain.KindPing:
		_, err = s.pool.Exec(ctx,
			`INSERT INTO ping_resp (check_name, ts, latency_ms, error, error_kind)
			 VALUES ($1, $2, $3, $4, $5)`,
			o.CheckName, o.Timestamp, o.LatencyMS, o.ErrDetail, o.ErrKind)
	default:
		return fmt.Errorf("append: unknown kind %q", o.Kind)
	}
	if err != nil {
		return fmt.Errorf("insert %s observation: %w", o.Kind, err)
	}
	return nil
}

func (s *Store) QueryRange(ctx context.Context, checkName string, from, to time.Time) ([]domain.Observation, error) {
	q := `
SELECT check_name, 'http' AS kind, ts, latency_ms, code, error, error_kind
  FROM http_resp
 WHERE ts >= $1 AND ts <= $2`
	args := []any{from, to}
	if checkName != "" {
		q += ` AND check_name = $3`
		args = append(args, checkName)
	}
	q += `
UNION ALL
SELECT check_name, 'ping' AS kind, ts, latency_ms, NULL::integer, error, error_kind
  FROM ping_resp
 WHERE ts >= $1 AND ts <= $2`
	if checkName != "" {
		q += ` AND check_name = $3`
	}
	q += `
 ORDER BY ts ASC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	defer rows.Close()

	var out []domain.Observation
	for rows.Next() {
		var (
			o    domain.Observation
			kind string
		)
		if err := rows.Scan(&o.CheckName, &kind, &o.Timestamp, &o.LatencyMS, &o.Code, &o.ErrDetail, &o.ErrKind); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Kind = domain.Kind(kind)
		o.Timestamp = o.Timestamp.UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	return out, nil
}
