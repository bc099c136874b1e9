package corkboard

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testToken = Token("alice:0123456789ABCDEF")

// upstream is an httptest server that answers from a scripted list of
// responses and counts physical requests.
type upstream struct {
	*httptest.Server
	hits atomic.Int32

	mu       sync.Mutex
	script   []scripted
	fallback scripted
	last     *http.Request
}

type scripted struct {
	status int
	body   string
}

func newUpstream(t testing.TB, fallback scripted, script ...scripted) *upstream {
	t.Helper()
	u := &upstream{script: script, fallback: fallback}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)

		u.mu.Lock()
		u.last = r.Clone(r.Context())
		next := u.fallback
		if len(u.script) > 0 {
			next = u.script[0]
			u.script = u.script[1:]
		}
		u.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(next.status)
		_, _ = w.Write([]byte(next.body))
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) lastRequest() *http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last
}

func ok(body string) scripted { return scripted{status: http.StatusOK, body: body} }

func tooMany() scripted { return scripted{status: http.StatusTooManyRequests, body: "Too Many Requests"} }

// newTestClient points a client at srv with no default spacing and a
// millisecond backoff unit.
func newTestClient(t *testing.T, srv *upstream, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithBaseURL(srv.URL + "/v1"),
		WithDefaultPolicy(EndpointPolicy{MinInterval: 0, Mode: ThrottleDefer}),
		WithBackoffUnit(time.Millisecond),
	}
	c := New(testToken, append(base, opts...)...)
	if !c.IsValid() {
		t.Fatalf("test client invalid: %v", c.ValidationError())
	}
	return c
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// waitRecorder collects wait events from any goroutine.
type waitRecorder struct {
	mu     sync.Mutex
	events []WaitEvent
}

func (r *waitRecorder) observe(ev WaitEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *waitRecorder) snapshot() []WaitEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]WaitEvent(nil), r.events...)
}
