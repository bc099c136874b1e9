package corkboard

import (
	"net/http"
)

// Middleware wraps the physical send. It sees each attempt separately,
// including backoff retries.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option represents a configuration option
type Option func(*Client)

type contextKey string

// OutcomeKind distinguishes the two successful resolutions of a call.
type OutcomeKind int

const (
	// OutcomePayload carries a decoded typed payload.
	OutcomePayload OutcomeKind = iota
	// OutcomeDone is the upstream {"result_code":"done"} report: success
	// with no payload.
	OutcomeDone
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePayload:
		return "payload"
	case OutcomeDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is the successful resolution of a call. Payload is the zero value
// when Kind is OutcomeDone.
type Outcome[T any] struct {
	Kind    OutcomeKind
	Payload T
}

// Done reports whether the upstream answered with the "done" sentinel.
func (o Outcome[T]) Done() bool {
	return o.Kind == OutcomeDone
}

// Result is what Go delivers: exactly one of an Outcome or an error.
type Result[T any] struct {
	Outcome Outcome[T]
	Err     error
}
