package corkboard

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

type tagCounts map[string]int

func TestCallTypedPayload(t *testing.T) {
	srv := newUpstream(t, ok(`{"go":3,"http":1}`))
	client := newTestClient(t, srv)

	out, err := Call[tagCounts](context.Background(), client, EndpointTagsGet, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Kind != OutcomePayload {
		t.Errorf("Expected payload outcome, got %v", out.Kind)
	}
	if want := (tagCounts{"go": 3, "http": 1}); !reflect.DeepEqual(out.Payload, want) {
		t.Errorf("Expected %v, got %v", want, out.Payload)
	}
}

func TestCallDone(t *testing.T) {
	srv := newUpstream(t, ok(`{"result_code":"done"}`))
	client := newTestClient(t, srv)

	out, err := Call[tagCounts](context.Background(), client, EndpointTagsRename, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !out.Done() {
		t.Errorf("Expected done outcome, got %v", out.Kind)
	}
	if out.Payload != nil {
		t.Errorf("Expected nil payload, got %v", out.Payload)
	}
}

func TestCallUpstreamReportCarriesContext(t *testing.T) {
	srv := newUpstream(t, ok(`{"result_code":"missing url"}`))
	client := newTestClient(t, srv, WithRequestIDGenerator(func() string { return "req-1" }), WithDebug(), WithLogger(nopLogger{}))

	err := client.Exec(context.Background(), EndpointPostsAdd, nil)
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("Expected *ClientError, got %v", err)
	}
	if clientErr.Type != ErrorTypeUpstreamReport || clientErr.ResultCode != "missing url" {
		t.Errorf("Unexpected report %s %q", clientErr.Type, clientErr.ResultCode)
	}
	if clientErr.Endpoint != EndpointPostsAdd || clientErr.RequestID != "req-1" {
		t.Errorf("Expected endpoint and request ID, got %s %q", clientErr.Endpoint, clientErr.RequestID)
	}
	if clientErr.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if IsTransient(err) {
		t.Error("Upstream reports are not transient")
	}
}

func TestRawReturnsBody(t *testing.T) {
	body := `{"update_time":"2024-01-02T03:04:05Z"}`
	srv := newUpstream(t, ok(body))
	client := newTestClient(t, srv)

	out, err := client.Raw(context.Background(), EndpointPostsUpdate, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(out.Payload) != body {
		t.Errorf("Expected %s, got %s", body, out.Payload)
	}
}

func TestGoYieldsOneResult(t *testing.T) {
	srv := newUpstream(t, ok(`{"go":1}`))
	client := newTestClient(t, srv)

	ch := Go[tagCounts](context.Background(), client, EndpointTagsGet, nil)

	res, open := <-ch
	if !open {
		t.Fatal("Expected a result before close")
	}
	if res.Err != nil {
		t.Fatalf("Unexpected error: %v", res.Err)
	}
	if got := res.Outcome.Payload["go"]; got != 1 {
		t.Errorf("Expected go=1, got %d", got)
	}

	if _, open = <-ch; open {
		t.Error("channel must be closed after the result")
	}
}

func TestGoReportsError(t *testing.T) {
	srv := newUpstream(t, ok(`not json`))
	client := newTestClient(t, srv)

	res := <-Go[tagCounts](context.Background(), client, EndpointTagsGet, nil)
	if !errors.Is(res.Err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", res.Err)
	}
}

func TestCancelDuringBackoff(t *testing.T) {
	srv := newUpstream(t, tooMany())
	client := New(testToken,
		WithBaseURL(srv.URL+"/v1"),
		WithDefaultPolicy(EndpointPolicy{}),
		WithBackoffUnit(time.Minute),
	)
	if !client.IsValid() {
		t.Fatalf("unexpected validation error: %v", client.ValidationError())
	}

	ctx, cancel := context.WithCancel(context.Background())
	waiting := make(chan struct{})
	ctx = WithContextWaitObserver(ctx, func(ev WaitEvent) {
		if ev.Reason == WaitBackoff {
			close(waiting)
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- client.Exec(ctx, EndpointPostsAdd, nil)
	}()

	select {
	case <-waiting:
	case <-time.After(5 * time.Second):
		t.Fatal("call never entered backoff")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled call did not return")
	}
	if hits := srv.hits.Load(); hits != 1 {
		t.Errorf("Expected 1 request, got %d", hits)
	}
}

func TestContextAndClientObservers(t *testing.T) {
	srv := newUpstream(t, ok(`{"result_code":"done"}`), tooMany())
	clientRec := &waitRecorder{}
	ctxRec := &waitRecorder{}
	client := newTestClient(t, srv, WithWaitObserver(clientRec.observe))

	ctx := WithContextWaitObserver(context.Background(), ctxRec.observe)
	if err := client.Exec(ctx, EndpointPostsAdd, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	fromClient, fromCtx := clientRec.snapshot(), ctxRec.snapshot()
	if len(fromClient) != 1 || len(fromCtx) != 1 {
		t.Fatalf("Expected one event per observer, got %d and %d", len(fromClient), len(fromCtx))
	}
	if fromClient[0] != fromCtx[0] {
		t.Errorf("Observers saw different events: %+v vs %+v", fromClient[0], fromCtx[0])
	}
}

func TestExecAcceptsPayload(t *testing.T) {
	srv := newUpstream(t, ok(`{"result":"ok"}`))
	client := newTestClient(t, srv)

	if err := client.Exec(context.Background(), EndpointUserSecret, nil); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestCallRawMessageRoundTrip(t *testing.T) {
	srv := newUpstream(t, ok(`[{"date":"2024-01-02","count":"4"}]`))
	client := newTestClient(t, srv)

	out, err := Call[json.RawMessage](context.Background(), client, EndpointPostsDates, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(out.Payload, &decoded); err != nil {
		t.Fatalf("Payload is not valid JSON: %v", err)
	}
	if decoded[0]["count"] != "4" {
		t.Errorf("Expected count 4, got %q", decoded[0]["count"])
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
