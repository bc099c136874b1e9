// Package cli implements the corkboard command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/ambiyansyah-risyal/corkboard"
)

// Env holds injectable dependencies for CLI commands.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// ClientOptions are appended to the options of every client the CLI
	// builds, after those derived from configuration.
	ClientOptions []corkboard.Option
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithClientOptions adds client options.
func WithClientOptions(opts ...corkboard.Option) EnvOption {
	return func(e *Env) {
		e.ClientOptions = append(e.ClientOptions, opts...)
	}
}

// DefaultEnv writes to the process's stdout and stderr.
func DefaultEnv() *Env {
	return NewEnv()
}

// NewEnv returns DefaultEnv with opts applied.
func NewEnv(opts ...EnvOption) *Env {
	env := &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}
