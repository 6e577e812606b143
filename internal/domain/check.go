package domain

import (
	"fmt"
	"time"
)

// Kind identifies how a check's target is probed. The set is closed:
// the per-kind result tables depend on it.
type Kind string

const (
	KindHTTP Kind = "http"
	KindPing Kind = "ping"
)

// ParseKind maps a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindHTTP:
		return KindHTTP, nil
	case KindPing:
		return KindPing, nil
	default:
		return "", fmt.Errorf("unknown check kind %q", s)
	}
}

func (k Kind) String() string { return string(k) }

type CheckID string

// Check is one configured probe target. Checks are built once at startup
// and never mutated afterwards.
type Check struct {
	ID       CheckID       `json:"id"`
	Name     string        `json:"name"`
	Kind     Kind          `json:"kind"`
	Target   string        `json:"target"`
	Interval time.Duration `json:"interval"`
	Timeout  time.Duration `json:"timeout"`
}
