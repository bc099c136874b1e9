package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambiyansyah-risyal/corkboard"
)

func TestCallPrintsJSON(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"go":3}`)

	stdout, _, err := run(t, "call", "tags/get", "--token", "alice:ABC", "--base-url", api.URL+"/v1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"go":3}`, stdout)
	assert.Contains(t, stdout, "  \"go\": 3")

	path, query := api.last()
	assert.Equal(t, "/v1/tags/get", path)
	assert.Equal(t, []string{"alice:ABC"}, query["auth_token"])
	assert.Equal(t, []string{"json"}, query["format"])
}

func TestCallPassesParams(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"result_code":"done"}`)

	stdout, _, err := run(t, "call", "/posts/add",
		"url=https://example.com/?a=1", "description=Example", "tags=go", "tags=http",
		"--token", "alice:ABC", "--base-url", api.URL+"/v1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result_code":"done"}`, stdout)

	_, query := api.last()
	assert.Equal(t, []string{"https://example.com/?a=1"}, query["url"])
	assert.Equal(t, []string{"go", "http"}, query["tags"])
}

func TestCallYAMLOutput(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"user":"alice","posts":[{"href":"https://example.com/"}]}`)

	stdout, _, err := run(t, "call", "posts/get", "-o", "yaml", "--token", "alice:ABC", "--base-url", api.URL+"/v1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "user: alice")
	assert.Contains(t, stdout, "- href: https://example.com/")
}

func TestCallTokenFromEnvironment(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	t.Setenv("CORKBOARD_TOKEN", "bob:ENV")
	t.Setenv("CORKBOARD_BASE_URL", api.URL+"/v1")

	_, _, err := run(t, "call", "user/secret")
	require.NoError(t, err)

	_, query := api.last()
	assert.Equal(t, []string{"bob:ENV"}, query["auth_token"])
}

func TestCallTokenFromConfigFile(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	path := filepath.Join(t.TempDir(), "corkboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("token: \"carol:FILE\"\nbase_url: %q\n", api.URL+"/v1")), 0o600))

	_, _, err := run(t, "--config", path, "call", "notes/list")
	require.NoError(t, err)

	_, query := api.last()
	assert.Equal(t, []string{"carol:FILE"}, query["auth_token"])
}

func TestCallReportsUpstreamError(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"result_code":"item not found"}`)

	_, _, err := run(t, "call", "posts/delete", "url=https://x", "--token", "alice:ABC", "--base-url", api.URL+"/v1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, corkboard.ErrUpstreamReport))
	assert.Equal(t, ExitUpstream, ExitCode(err))
}

func TestCallReportsBackoffWaits(t *testing.T) {
	api := newFakeAPI(t, http.StatusTooManyRequests, `Too Many Requests`)

	_, stderr, err := run(t, "call", "posts/add", "url=https://x", "--token", "alice:ABC", "--base-url", api.URL+"/v1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, corkboard.ErrRetryExhausted))
	assert.Equal(t, ExitRateLimited, ExitCode(err))
	assert.Equal(t, 4, strings.Count(stderr, "(backoff)"))
}

func TestCallUsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want error
	}{
		{"unknown endpoint", []string{"call", "posts/nope", "--token", "a:b"}, ErrUnknownEndpoint},
		{"bad param", []string{"call", "posts/add", "novalue", "--token", "a:b"}, ErrInvalidParam},
		{"bad output", []string{"call", "posts/add", "-o", "xml", "--token", "a:b"}, ErrUnsupportedOutput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := run(t, tc.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, ExitUsage, ExitCode(err))
		})
	}

	_, _, err := run(t, "call")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestCallWithoutCredentials(t *testing.T) {
	_, _, err := run(t, "call", "posts/recent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Equal(t, ExitConfig, ExitCode(err))
}

func TestCallWritesLogFile(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	logFile := filepath.Join(t.TempDir(), "corkboard.log")

	_, _, err := run(t, "call", "tags/get", "-v", "--log-file", logFile, "--token", "alice:SECRET", "--base-url", api.URL+"/v1")
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sending request")
	assert.NotContains(t, string(data), "SECRET")
}

func TestEndpointsTable(t *testing.T) {
	stdout, _, err := run(t, "endpoints")
	require.NoError(t, err)

	assert.Contains(t, stdout, "posts/all")
	assert.Contains(t, stdout, "5m0s")
	assert.Contains(t, stdout, "reject")
	assert.Contains(t, stdout, "3s")
	assert.Contains(t, stdout, "14 endpoints")
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, corkboard.Version)
}

func TestVersionStructured(t *testing.T) {
	stdout, _, err := run(t, "version", "--output", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, corkboard.Version, info["version"])
	assert.Equal(t, corkboard.GoVersion, info["go_version"])

	stdout, _, err = run(t, "version", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "version: "+corkboard.Version)

	_, _, err = run(t, "version", "-o", "xml")
	assert.True(t, errors.Is(err, ErrUnsupportedOutput))
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams([]string{"a=1", "b=", "a=2", "c=x=y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, params["a"])
	assert.Equal(t, []string{""}, params["b"])
	assert.Equal(t, []string{"x=y"}, params["c"])

	_, err = ParseParams([]string{"=v"})
	assert.True(t, errors.Is(err, ErrInvalidParam))
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": OutputJSON, "JSON": OutputJSON, "yml": OutputYAML, "yaml": OutputYAML} {
		got, err := ParseOutputFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitInterrupt, ExitCode(context.Canceled))
	assert.Equal(t, ExitNetwork, ExitCode(&corkboard.ClientError{Type: corkboard.ErrorTypeNetwork}))
	assert.Equal(t, ExitRateLimited, ExitCode(&corkboard.ClientError{Type: corkboard.ErrorTypeTooSoon}))
	assert.Equal(t, ExitConfig, ExitCode(&corkboard.ClientError{Type: corkboard.ErrorTypeValidation}))
	assert.Equal(t, ExitUpstream, ExitCode(&corkboard.ClientError{Type: corkboard.ErrorTypeDecode}))
	assert.Equal(t, ExitUsage, ExitCode(errors.New(`unknown command "nope" for "corkboard"`)))
	assert.Equal(t, ExitGeneral, ExitCode(errors.New("boom")))
}

func TestExitCodeTypedErrorsBeatMessages(t *testing.T) {
	einval := &corkboard.ClientError{
		Type:    corkboard.ErrorTypeNetwork,
		Message: "request failed",
		Cause:   errors.New("setsockopt: invalid argument"),
	}
	assert.Equal(t, ExitNetwork, ExitCode(einval))

	report := &corkboard.ClientError{
		Type:       corkboard.ErrorTypeUpstreamReport,
		Message:    `upstream reported "unknown command"`,
		ResultCode: "unknown command",
	}
	assert.Equal(t, ExitUpstream, ExitCode(report))
}
