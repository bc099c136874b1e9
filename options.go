package corkboard

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	internalbackoff "github.com/ambiyansyah-risyal/corkboard/internal/backoff"
)

// WithBaseURL overrides scheme, host and version prefix (for tests and
// API-compatible mirrors).
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		c.baseURLRaw = raw
	}
}

// WithHTTPClient sets a custom HTTP client. The client is copied so a
// configured timeout never changes the caller's value; the transport is
// shared.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client == nil {
			c.httpClient = nil
			return
		}
		cp := *client
		c.httpClient = &cp
		if c.timeout != 0 {
			c.httpClient.Timeout = c.timeout
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent replaces the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithEndpointPolicy gives endpoint a throttle class of its own.
func WithEndpointPolicy(endpoint Endpoint, policy EndpointPolicy) Option {
	return func(c *Client) {
		c.policies[endpoint] = policy
	}
}

// WithDefaultPolicy sets the policy of the shared default class.
func WithDefaultPolicy(policy EndpointPolicy) Option {
	return func(c *Client) {
		c.defaultPol = policy
	}
}

// WithBackoffUnit sets how long one unit of the backoff scalar lasts.
// The default is one second.
func WithBackoffUnit(d time.Duration) Option {
	return func(c *Client) {
		c.backoffUnit = d
	}
}

// WithBackoffLimits sets the floor and ceiling of the backoff scalar, in
// units. The scalar doubles from floor; a 429 received once it has reached
// ceiling fails the call.
func WithBackoffLimits(floor, ceiling float64) Option {
	return func(c *Client) {
		c.progression.Floor = floor
		c.progression.Ceiling = ceiling
	}
}

// WithRateLimit paces every physical send, across all endpoints, through a
// token bucket. It applies in addition to the per-endpoint policies.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithMiddleware adds middleware to the client
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithWaitObserver registers a client-wide wait observer.
func WithWaitObserver(fn WaitObserver) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

// WithMetrics enables Prometheus metrics collection
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithLogger sets a custom logger for debug output
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithZerolog enables debug logging through an existing zerolog logger.
func WithZerolog(zl zerolog.Logger) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewZerologLogger(zl)
	}
}

// WithSimpleLogger enables debug logging with a simple console logger
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithClock replaces the time source used by the rate governor.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.clock = now
	}
}

// ValidateConfiguration validates the client configuration and returns an error if invalid
func (c *Client) ValidateConfiguration() error {
	var errors []string

	errors = append(errors, c.validateAuthConfig()...)
	errors = append(errors, c.validateTransportConfig()...)
	errors = append(errors, c.validatePolicyConfig()...)
	errors = append(errors, c.validateBackoffConfig()...)
	errors = append(errors, c.validateDebugConfig()...)
	errors = append(errors, c.validateMiddlewareConfig()...)
	errors = append(errors, c.validateExtremeValues()...)

	if len(errors) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", errors),
		}
	}

	return nil
}

func (c *Client) validateAuthConfig() []string {
	if c.auth == nil {
		return []string{"authentication is required"}
	}
	if err := c.auth.validate(); err != nil {
		return []string{err.Error()}
	}
	return nil
}

func (c *Client) validateTransportConfig() []string {
	var errors []string

	if _, err := parseBaseURL(c.baseURLRaw); err != nil {
		errors = append(errors, fmt.Sprintf("invalid base URL: %v", err))
	}
	if c.httpClient == nil {
		errors = append(errors, "HTTP client cannot be nil")
	}
	if c.timeout <= 0 {
		errors = append(errors, "timeout must be positive")
	}
	if c.clock == nil {
		errors = append(errors, "clock cannot be nil")
	}

	return errors
}

func (c *Client) validatePolicyConfig() []string {
	var errors []string

	for endpoint, policy := range c.policies {
		if !endpoint.Valid() {
			errors = append(errors, fmt.Sprintf("policy for unknown endpoint %q", string(endpoint)))
		}
		if policy.MinInterval < 0 {
			errors = append(errors, fmt.Sprintf("policy for %s has negative interval", endpoint))
		}
	}
	if c.defaultPol.MinInterval < 0 {
		errors = append(errors, "default policy has negative interval")
	}

	return errors
}

func (c *Client) validateBackoffConfig() []string {
	var errors []string

	if !c.progression.Validate() {
		errors = append(errors, "backoff floor must be positive and not above the ceiling")
	}
	if c.backoffUnit <= 0 {
		errors = append(errors, "backoff unit must be positive")
	}

	return errors
}

// validateDebugConfig validates debug configuration
func (c *Client) validateDebugConfig() []string {
	var errors []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			errors = append(errors, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			errors = append(errors, "logger must be set when debug is enabled")
		}
	}

	return errors
}

// validateMiddlewareConfig validates middleware configuration
func (c *Client) validateMiddlewareConfig() []string {
	var errors []string

	for i, middleware := range c.middleware {
		if middleware == nil {
			errors = append(errors, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}

	return errors
}

// validateExtremeValues validates that configuration values are within reasonable bounds
func (c *Client) validateExtremeValues() []string {
	var errors []string

	if c.timeout > 10*time.Minute {
		errors = append(errors, "timeout > 10m may cause requests to hang for too long")
	}
	if c.progression.Validate() {
		total := internalbackoff.Duration(c.progression.CumulativeUnits(), c.backoffUnit)
		if total > 24*time.Hour {
			errors = append(errors, "backoff schedule spans more than 24h")
		}
	}

	return errors
}
