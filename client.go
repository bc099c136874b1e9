package corkboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	internalbackoff "github.com/ambiyansyah-risyal/corkboard/internal/backoff"
)

// Client is the request core of the API client. It builds URLs, spaces
// requests per endpoint class, sends them, backs off on 429 responses and
// classifies the results. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	timeout     time.Duration
	baseURLRaw  string
	baseURL     *url.URL
	auth        Authentication
	userAgent   string
	policies    map[Endpoint]EndpointPolicy
	defaultPol  EndpointPolicy
	progression internalbackoff.Doubling
	backoffUnit time.Duration
	limiter     *rate.Limiter
	middleware  []Middleware
	observer    WaitObserver
	metrics     *MetricsCollector
	debug       *DebugConfig
	logger      Logger
	clock       func() time.Time

	state    *requestState
	governor *rateGovernor

	validationError error
}

// New constructs a Client for auth using the provided functional options.
// Configuration problems do not panic: they are recorded, reported by
// ValidationError, and returned by every call.
func New(auth Authentication, options ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		timeout:     30 * time.Second,
		baseURLRaw:  DefaultBaseURL,
		auth:        auth,
		userAgent:   UserAgent(),
		policies:    DefaultEndpointPolicies(),
		defaultPol:  DefaultPolicy,
		progression: internalbackoff.Default(),
		backoffUnit: time.Second,
		middleware:  []Middleware{},
		debug:       DefaultDebugConfig(),
		clock:       time.Now,
	}

	for _, option := range options {
		option(client)
	}

	client.state = newRequestState(client.progression)
	client.governor = &rateGovernor{
		state:         client.state,
		policies:      client.policies,
		defaultPolicy: client.defaultPol,
		now:           client.clock,
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}
	if base, err := parseBaseURL(client.baseURLRaw); err == nil {
		client.baseURL = base
	}

	return client
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// BackoffUnits returns the current value of the 429 backoff scalar.
func (c *Client) BackoffUnits() float64 {
	return c.state.backoffUnits()
}

// Policy returns the throttle policy applied to endpoint.
func (c *Client) Policy(endpoint Endpoint) EndpointPolicy {
	_, p := c.governor.classOf(endpoint)
	return p
}

// fetch runs one logical call through the governor, transport and backoff
// controller, returning the body of the eventual 2xx response.
func (c *Client) fetch(ctx context.Context, endpoint Endpoint, params url.Values, requestID string) ([]byte, error) {
	u, err := BuildURL(c.baseURL, endpoint, params, c.auth)
	if err != nil {
		return nil, c.newError(ErrorTypeURLConstruction, "cannot build request URL", err, endpoint, requestID, nil)
	}
	if c.validationError != nil {
		return nil, c.validationError
	}

	if err := c.admit(ctx, endpoint, u, requestID); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			c.metrics.RecordRetry(endpoint.String(), attempt-1)
			if c.debugEnabled() && c.debug.LogRetries {
				c.logger.Info("Retry attempt", "requestID", requestID, "attempt", attempt, "endpoint", endpoint.String())
			}
		}

		resp, body, err := c.send(ctx, endpoint, u, requestID)
		if err != nil {
			cerr := c.newError(ErrorTypeNetwork, "request failed", err, endpoint, requestID, u)
			cerr.Attempt = attempt
			cerr.Response = resp
			return nil, cerr
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			c.state.resetBackoff()
			c.metrics.RecordBackoffUnits(c.progression.Reset())
			return body, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			units, ok := c.state.escalate()
			c.metrics.RecordBackoffUnits(units)
			wait := internalbackoff.Duration(units, c.backoffUnit)
			if !ok {
				if c.debugEnabled() && c.debug.LogRetries {
					c.logger.Warn("Backoff ceiling reached", "requestID", requestID, "endpoint", endpoint.String(), "attempts", attempt)
				}
				cerr := c.newError(ErrorTypeRetryExhausted, fmt.Sprintf("still rate limited after %d attempts", attempt), nil, endpoint, requestID, u)
				cerr.StatusCode = resp.StatusCode
				cerr.Attempt = attempt
				cerr.Wait = wait
				return nil, cerr
			}

			if c.debugEnabled() && c.debug.LogRetries {
				c.logger.Info("Scheduling retry", "requestID", requestID, "attempt", attempt+1, "backoff", wait, "endpoint", endpoint.String())
			}
			c.notifyWait(ctx, WaitEvent{
				Endpoint:  endpoint,
				Reason:    WaitBackoff,
				Wait:      wait,
				Attempt:   attempt,
				RequestID: requestID,
			})
			if err := sleepContext(ctx, wait); err != nil {
				return nil, err
			}

		default:
			cerr := c.newError(ErrorTypeUpstreamStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil, endpoint, requestID, u)
			cerr.StatusCode = resp.StatusCode
			cerr.Attempt = attempt
			return nil, cerr
		}
	}
}

// admit blocks until the governor lets the request through. Reject-policy
// classes fail instead of waiting.
func (c *Client) admit(ctx context.Context, endpoint Endpoint, u *url.URL, requestID string) error {
	for {
		wait, policy, class := c.governor.acquire(endpoint)
		if wait <= 0 {
			return nil
		}

		if policy.Mode == ThrottleReject {
			if c.debugEnabled() && c.debug.LogRateLimit {
				c.logger.Warn("Request too soon", "requestID", requestID, "endpoint", endpoint.String(), "class", class, "remaining", wait)
			}
			c.metrics.RecordThrottleRejection(endpoint.String())
			cerr := c.newError(ErrorTypeTooSoon, fmt.Sprintf("minimum interval %s not yet elapsed", policy.MinInterval), nil, endpoint, requestID, u)
			cerr.Wait = wait
			return cerr
		}

		if c.debugEnabled() && c.debug.LogRateLimit {
			c.logger.Debug("Deferring request", "requestID", requestID, "endpoint", endpoint.String(), "class", class, "wait", wait)
		}
		c.notifyWait(ctx, WaitEvent{
			Endpoint:  endpoint,
			Reason:    WaitDeferred,
			Wait:      wait,
			RequestID: requestID,
		})
		if err := sleepContext(ctx, wait); err != nil {
			return err
		}
	}
}

// send issues one physical GET and reads the whole body. A non-nil error
// means no usable response; resp may still be set if the body read failed.
func (c *Client) send(ctx context.Context, endpoint Endpoint, u *url.URL, requestID string) (*http.Response, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("Sending request", "requestID", requestID, "url", redactURL(u), "endpoint", endpoint.String())
	}

	start := time.Now()
	resp, err := c.executeMiddleware(req)
	if err != nil {
		c.metrics.RecordRequest(endpoint.String(), 0, time.Since(start))
		// net/http quotes the full URL, auth_token included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactURL(u)
		}
		return nil, nil, err
	}
	if resp == nil || resp.Body == nil {
		c.metrics.RecordRequest(endpoint.String(), 0, time.Since(start))
		return resp, nil, fmt.Errorf("response has no body")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(endpoint.String(), resp.StatusCode, time.Since(start))
	if err != nil {
		return resp, nil, fmt.Errorf("read body: %w", err)
	}

	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("Received response", "requestID", requestID, "status", resp.StatusCode, "bytes", len(body), "duration", time.Since(start))
	}
	return resp, body, nil
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.httpClient.Do(req)
	}

	current := RoundTripperFunc(c.httpClient.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

func (c *Client) newError(errorType, message string, cause error, endpoint Endpoint, requestID string, u *url.URL) *ClientError {
	return &ClientError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		Endpoint:  endpoint,
		RequestID: requestID,
		URL:       redactURL(u),
		Timestamp: c.now(),
	}
}

// now reads the injected clock, or the wall clock when none is set.
func (c *Client) now() time.Time {
	if c.clock == nil {
		return time.Now()
	}
	return c.clock()
}
