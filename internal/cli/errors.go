package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/ambiyansyah-risyal/corkboard"
)

var (
	// ErrUnknownEndpoint indicates the endpoint argument is not in the table.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrInvalidParam indicates a parameter argument is not name=value.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrUnsupportedOutput indicates an unknown --output format.
	ErrUnsupportedOutput = errors.New("unsupported output format")

	// ErrConfig indicates the configuration could not be loaded.
	ErrConfig = errors.New("configuration error")
)

// Exit codes returned by the corkboard binary.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitConfig      = 3
	ExitUpstream    = 4
	ExitRateLimited = 5
	ExitNetwork     = 6
	ExitInterrupt   = 130
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	if errors.Is(err, ErrUnknownEndpoint) || errors.Is(err, ErrInvalidParam) ||
		errors.Is(err, ErrUnsupportedOutput) || errors.Is(err, corkboard.ErrURLConstruction) {
		return ExitUsage
	}

	if errors.Is(err, ErrConfig) || errors.Is(err, corkboard.ErrInvalidConfig) {
		return ExitConfig
	}

	if errors.Is(err, corkboard.ErrRequestTooSoon) || errors.Is(err, corkboard.ErrRetryExhausted) {
		return ExitRateLimited
	}

	if errors.Is(err, corkboard.ErrNetwork) || errors.Is(err, context.DeadlineExceeded) {
		return ExitNetwork
	}

	if errors.Is(err, corkboard.ErrUpstreamStatus) || errors.Is(err, corkboard.ErrUpstreamReport) ||
		errors.Is(err, corkboard.ErrDecode) {
		return ExitUpstream
	}

	// Typed errors win over message matching.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	return ExitGeneral
}

// Cobra doesn't expose typed errors, so usage failures are recognised by
// message.
var cobraUsageErrorPatterns = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand",
	"flag needs an argument",
	"invalid argument",
	"accepts ",
	"requires at least",
}

func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
