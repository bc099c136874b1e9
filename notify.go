package corkboard

import (
	"context"
	"time"
)

// WaitReason says why a call is being held back.
type WaitReason int

const (
	// WaitDeferred means the rate governor deferred admission.
	WaitDeferred WaitReason = iota
	// WaitBackoff means a 429 scheduled a retry.
	WaitBackoff
)

func (r WaitReason) String() string {
	switch r {
	case WaitDeferred:
		return "deferred"
	case WaitBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}

// WaitEvent is delivered to observers whenever a call has to wait. It is
// informational: the call stays pending until it resolves on its own.
type WaitEvent struct {
	Endpoint  Endpoint
	Reason    WaitReason
	Wait      time.Duration
	Attempt   int
	RequestID string
}

// WaitObserver receives wait events. It runs on the calling goroutine and
// should return quickly.
type WaitObserver func(WaitEvent)

const waitObserverKey contextKey = "corkboard_wait_observer"

// WithContextWaitObserver attaches an observer for calls made with ctx,
// in addition to any observer configured on the client.
func WithContextWaitObserver(ctx context.Context, fn WaitObserver) context.Context {
	return context.WithValue(ctx, waitObserverKey, fn)
}

func contextWaitObserver(ctx context.Context) WaitObserver {
	fn, _ := ctx.Value(waitObserverKey).(WaitObserver)
	return fn
}

func (c *Client) notifyWait(ctx context.Context, ev WaitEvent) {
	c.metrics.RecordWait(ev.Endpoint.String(), ev.Reason)
	if c.observer != nil {
		c.observer(ev)
	}
	if fn := contextWaitObserver(ctx); fn != nil {
		fn(ev)
	}
}

// sleepContext waits for d or until ctx is done. The timer is stopped on
// cancellation so it cannot fire after the caller has gone.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
