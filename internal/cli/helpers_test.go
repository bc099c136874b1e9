package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ambiyansyah-risyal/corkboard"
)

// fakeAPI answers every request with a fixed status and body and records
// the last query it saw.
type fakeAPI struct {
	*httptest.Server

	mu        sync.Mutex
	lastPath  string
	lastQuery map[string][]string
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.lastPath = r.URL.Path
		api.lastQuery = r.URL.Query()
		api.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(api.Close)
	return api
}

func (a *fakeAPI) last() (string, map[string][]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastPath, a.lastQuery
}

// run executes the CLI with args and returns stdout, stderr and the error.
// No config file is picked up from the working directory.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	env := NewEnv(
		WithStdout(&stdout),
		WithStderr(&stderr),
		WithClientOptions(
			corkboard.WithDefaultPolicy(corkboard.EndpointPolicy{MinInterval: 0, Mode: corkboard.ThrottleDefer}),
			corkboard.WithBackoffUnit(time.Millisecond),
		),
	)

	cmd := NewRootCmd(env)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
