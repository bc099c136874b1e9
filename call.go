package corkboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
)

// Call performs one logical request and decodes a 2xx body into T. It blocks
// through deferred admissions and backoff retries and resolves exactly once:
// with a payload, with the done sentinel (Outcome.Done), or with an error.
// Cancelling ctx abandons any pending wait.
func Call[T any](ctx context.Context, c *Client, endpoint Endpoint, params url.Values) (Outcome[T], error) {
	label := endpoint.String()
	requestID := c.newRequestID()

	c.metrics.RecordCallStart(label)
	defer c.metrics.RecordCallEnd(label)

	body, err := c.fetch(ctx, endpoint, params, requestID)
	if err != nil {
		c.recordFailure(label, err)
		return Outcome[T]{}, err
	}

	outcome, err := classify[T](body)
	if err != nil {
		var clientErr *ClientError
		if errors.As(err, &clientErr) {
			clientErr.Endpoint = endpoint
			clientErr.RequestID = requestID
			clientErr.Timestamp = c.now()
		}
		c.recordFailure(label, err)
		if c.debugEnabled() {
			c.logger.Warn("Call failed", "requestID", requestID, "endpoint", label, "error", err.Error())
		}
		return Outcome[T]{}, err
	}

	c.metrics.RecordOutcome(label, outcome.Kind)
	return outcome, nil
}

// Exec performs a side-effect call such as posts/add. The done sentinel is
// success; any other result code is an UpstreamReport error. A typed
// payload, if the endpoint returns one, is discarded.
func (c *Client) Exec(ctx context.Context, endpoint Endpoint, params url.Values) error {
	_, err := Call[json.RawMessage](ctx, c, endpoint, params)
	return err
}

// Raw performs a call and returns the undecoded 2xx body.
func (c *Client) Raw(ctx context.Context, endpoint Endpoint, params url.Values) (Outcome[json.RawMessage], error) {
	return Call[json.RawMessage](ctx, c, endpoint, params)
}

// Go runs Call on its own goroutine. The returned channel yields exactly
// one Result and is then closed.
func Go[T any](ctx context.Context, c *Client, endpoint Endpoint, params url.Values) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		outcome, err := Call[T](ctx, c, endpoint, params)
		ch <- Result[T]{Outcome: outcome, Err: err}
	}()
	return ch
}

func (c *Client) recordFailure(endpoint string, err error) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		c.metrics.RecordError(clientErr.Type, endpoint)
		return
	}
	c.metrics.RecordError("Canceled", endpoint)
}
