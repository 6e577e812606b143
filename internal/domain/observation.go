package domain

import "time"

// ErrorKind classifies a failed probe attempt.
type ErrorKind string

const (
	ErrTimeout     ErrorKind = "timeout"
	ErrConnection  ErrorKind = "connection_error"
	ErrProtocol    ErrorKind = "protocol_error"
	ErrUnreachable ErrorKind = "unreachable"
	ErrPermission  ErrorKind = "permission_error"
)

// Observation records one completed probe attempt. Exactly one of
// (LatencyMS, ErrKind) is set: a successful probe has a latency and no
// error, a failed probe has an error and no latency.
type Observation struct {
	CheckName string     `json:"check_name"`
	Kind      Kind       `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`
	LatencyMS *int64     `json:"latency_ms,omitempty"`
	Code      *int       `json:"code,omitempty"` // http status, http checks only
	ErrKind   *ErrorKind `json:"error_kind,omitempty"`
	ErrDetail *string    `json:"error,omitempty"`
}

// Success reports whether the observation recorded a completed measurement.
func (o *Observation) Success() bool { return o.LatencyMS != nil }

// NewSuccess builds a success observation. code < 0 means no status code
// (ping checks).
func NewSuccess(name string, kind Kind, at time.Time, latency time.Duration, code int) Observation {
	ms := latency.Milliseconds()
	o := Observation{
		CheckName: name,
		Kind:      kind,
		Timestamp: at.UTC(),
		LatencyMS: &ms,
	}
	if code >= 0 {
		c := code
		o.Code = &c
	}
	return o
}

// NewFailure builds a failure observation.
func NewFailure(name string, kind Kind, at time.Time, ek ErrorKind, detail string) Observation {
	d := detail
	k := ek
	return Observation{
		CheckName: name,
		Kind:      kind,
		Timestamp: at.UTC(),
		ErrKind:   &k,
		ErrDetail: &d,
	}
}
