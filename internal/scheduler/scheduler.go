package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/avelis/probed/internal/domain"
	"github.com/avelis/probed/internal/probe"
	"github.com/avelis/probed/internal/repo"
)

// Scheduler runs every check at its configured interval, forever. Each
// check owns an independent ticker, so a stalled probe for one check never
// delays another. Per check at most one probe is in flight: an overdue
// tick is skipped, never queued.
type Scheduler struct {
	log     *zap.Logger
	checks  []domain.Check
	probers *probe.Probers
	store   repo.ResultStore

	now func() time.Time
}

type Option func(*Scheduler)

func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

func New(log *zap.Logger, checks []domain.Check, probers *probe.Probers, store repo.ResultStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		log:     log,
		checks:  checks,
		probers: probers,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts one loop per check, does an immediate pass, and blocks until
// ctx is cancelled and every outstanding probe has completed.
func (s *Scheduler) Run(ctx context.Context) {
	var loops, probes sync.WaitGroup
	for _, c := range s.checks {
		loops.Add(1)
		go func(c domain.Check) {
			defer loops.Done()
			s.runCheck(ctx, c, &probes)
		}(c)
	}
	loops.Wait()
	probes.Wait()
	s.log.Info("scheduler_stopped")
}

func (s *Scheduler) runCheck(ctx context.Context, c domain.Check, probes *sync.WaitGroup) {
	prober := s.probers.For(c.Kind)
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	// inFlight is the per-check exclusive flag: a tick that loses the CAS
	// is dropped so a slow target can't build a backlog.
	var inFlight atomic.Bool
	launch := func() {
		if !inFlight.CompareAndSwap(false, true) {
			s.log.Debug("tick_skipped", zap.String("check", c.Name))
			return
		}
		probes.Add(1)
		go func() {
			defer probes.Done()
			defer inFlight.Store(false)
			s.probeOnce(ctx, prober, c)
		}()
	}

	launch()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			launch()
		}
	}
}

func (s *Scheduler) probeOnce(ctx context.Context, prober probe.Prober, c domain.Check) {
	cctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	start := s.now()
	res := prober.Probe(cctx, c.Target)

	var o domain.Observation
	if res.Success {
		o = domain.NewSuccess(c.Name, c.Kind, start, res.Latency, res.Code)
		s.log.Debug("probe_ok",
			zap.String("check", c.Name),
			zap.String("kind", c.Kind.String()),
			zap.Duration("latency", res.Latency),
			zap.Int("code", res.Code),
		)
	} else {
		o = domain.NewFailure(c.Name, c.Kind, start, res.ErrKind, res.Detail)
		s.log.Info("probe_failed",
			zap.String("check", c.Name),
			zap.String("kind", c.Kind.String()),
			zap.String("error_kind", string(res.ErrKind)),
			zap.String("detail", res.Detail),
		)
	}

	// a failed append drops this observation; the next tick produces a
	// fresh attempt
	if err := s.store.Append(ctx, o); err != nil {
		s.log.Warn("append_error",
			zap.String("check", c.Name),
			zap.Error(err),
		)
	}
}
