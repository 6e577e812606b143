package probe

import (
	"context"
	"time"

	"github.com/avelis/probed/internal/domain"
)

// Result is the outcome of a single probe attempt. Success carries latency
// (and a status code for http); failure carries the error classification.
type Result struct {
	Success bool
	Latency time.Duration
	Code    int // http status; -1 when not applicable
	ErrKind domain.ErrorKind
	Detail  string
}

func success(latency time.Duration, code int) Result {
	return Result{Success: true, Latency: latency, Code: code}
}

func failure(kind domain.ErrorKind, detail string) Result {
	return Result{Code: -1, ErrKind: kind, Detail: detail}
}

// Prober executes one probe against a target. Implementations are
// stateless, never retry, and respect the ctx deadline as the attempt's
// timeout.
type Prober interface {
	Probe(ctx context.Context, target string) Result
}

// Probers holds one executor per check kind. The set is closed.
type Probers struct {
	HTTP Prober
	Ping Prober
}

func NewProbers() *Probers {
	return &Probers{
		HTTP: NewHTTPProber(),
		Ping: NewPingProber(),
	}
}

// For returns the executor for a kind. Kinds are validated at registry
// load, so an unknown kind here is a programming error.
func (p *Probers) For(kind domain.Kind) Prober {
	switch kind {
	case domain.KindHTTP:
		return p.HTTP
	case domain.KindPing:
		return p.Ping
	default:
		return nil
	}
}
