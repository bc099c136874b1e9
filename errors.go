package corkboard

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error type names carried in ClientError.Type.
const (
	ErrorTypeURLConstruction = "URLConstruction"
	ErrorTypeNetwork         = "Network"
	ErrorTypeUpstreamStatus  = "UpstreamStatus"
	ErrorTypeUpstreamReport  = "UpstreamReport"
	ErrorTypeTooSoon         = "TooSoon"
	ErrorTypeRetryExhausted  = "RetryExhausted"
	ErrorTypeDecode          = "Decode"
	ErrorTypeValidation      = "Validation"
)

// Sentinel errors, one per ClientError type. errors.Is(err, ErrRetryExhausted)
// matches any *ClientError of that type.
var (
	ErrURLConstruction = errors.New("corkboard: url construction failed")
	ErrNetwork         = errors.New("corkboard: network failure")
	ErrUpstreamStatus  = errors.New("corkboard: unexpected upstream status")
	ErrUpstreamReport  = errors.New("corkboard: upstream reported an error")
	ErrRequestTooSoon  = errors.New("corkboard: request issued too soon")
	ErrRetryExhausted  = errors.New("corkboard: rate-limit retries exhausted")
	ErrDecode          = errors.New("corkboard: payload decoding failed")
	ErrInvalidConfig   = errors.New("corkboard: invalid configuration")
)

var sentinels = map[string]error{
	ErrorTypeURLConstruction: ErrURLConstruction,
	ErrorTypeNetwork:         ErrNetwork,
	ErrorTypeUpstreamStatus:  ErrUpstreamStatus,
	ErrorTypeUpstreamReport:  ErrUpstreamReport,
	ErrorTypeTooSoon:         ErrRequestTooSoon,
	ErrorTypeRetryExhausted:  ErrRetryExhausted,
	ErrorTypeDecode:          ErrDecode,
	ErrorTypeValidation:      ErrInvalidConfig,
}

// ClientError is the single error type returned by the request core.
type ClientError struct {
	Type    string
	Message string
	Cause   error

	Endpoint  Endpoint
	RequestID string
	// URL has the password and auth_token redacted.
	URL string

	// StatusCode is set for UpstreamStatus errors.
	StatusCode int
	// ResultCode is set for UpstreamReport errors.
	ResultCode string
	// Wait is the remaining interval for TooSoon, or the last backoff wait
	// for RetryExhausted.
	Wait time.Duration
	// Attempt counts physical requests made for the call.
	Attempt int
	// Response is the raw response behind a Network error, if there was one.
	// Its body has already been consumed.
	Response *http.Response

	Timestamp time.Time
}

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Endpoint)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *ClientError of the same Type, or the Type's sentinel.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	if sentinel, ok := sentinels[e.Type]; ok {
		return target == sentinel
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Endpoint != "" {
		info += fmt.Sprintf("Endpoint: %s\n", e.Endpoint)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.ResultCode != "" {
		info += fmt.Sprintf("Result Code: %s\n", e.ResultCode)
	}
	if e.Wait > 0 {
		info += fmt.Sprintf("Wait: %v\n", e.Wait)
	}
	if e.Attempt > 0 {
		info += fmt.Sprintf("Attempt: %d\n", e.Attempt)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// IsTransient reports whether repeating the call later may succeed:
// network failures, too-soon rejections and exhausted 429 retries.
func IsTransient(err error) bool {
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	switch clientErr.Type {
	case ErrorTypeNetwork, ErrorTypeTooSoon, ErrorTypeRetryExhausted:
		return true
	case ErrorTypeUpstreamStatus:
		return clientErr.StatusCode >= 500
	default:
		return false
	}
}

// ResultCodeOf extracts the upstream result code from an UpstreamReport error.
func ResultCodeOf(err error) (string, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.Type == ErrorTypeUpstreamReport {
		return clientErr.ResultCode, true
	}
	return "", false
}

// RetryAfterOf extracts the remaining wait from a TooSoon error.
func RetryAfterOf(err error) (time.Duration, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.Type == ErrorTypeTooSoon {
		return clientErr.Wait, true
	}
	return 0, false
}
