package corkboard

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultBaseURL is the scheme, host and version prefix of the API.
	DefaultBaseURL = "https://api.pinboard.in/v1"

	formatParam = "format"
	formatJSON  = "json"
)

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("base URL %q has no host", raw)
	}
	if u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("base URL %q must not carry user-info, query or fragment", raw)
	}
	return u, nil
}

// BuildURL composes the absolute request URL for endpoint. Supplied
// parameters come first (sorted by name), then auth_token for Token
// authentication, then format=json. Credentials are carried as user-info.
// It has no side effects.
func BuildURL(base *url.URL, endpoint Endpoint, params url.Values, auth Authentication) (*url.URL, error) {
	if base == nil || base.Host == "" {
		return nil, fmt.Errorf("no base URL host configured")
	}
	if !endpoint.Valid() {
		return nil, fmt.Errorf("unknown endpoint %q", string(endpoint))
	}
	if auth == nil {
		return nil, fmt.Errorf("no authentication configured")
	}

	for name, values := range params {
		if name == "" {
			return nil, fmt.Errorf("empty query parameter name")
		}
		if name == formatParam || name == tokenParam {
			return nil, fmt.Errorf("query parameter %q is reserved", name)
		}
		if !utf8.ValidString(name) {
			return nil, fmt.Errorf("query parameter name %q is not valid UTF-8", name)
		}
		for _, v := range values {
			if !utf8.ValidString(v) {
				return nil, fmt.Errorf("value of query parameter %q is not valid UTF-8", name)
			}
		}
	}

	u := &url.URL{
		Scheme: base.Scheme,
		Host:   base.Host,
		Path:   strings.TrimRight(base.Path, "/") + endpoint.Path(),
	}

	extra := url.Values{}
	auth.inject(u, extra)

	var query strings.Builder
	if encoded := params.Encode(); encoded != "" {
		query.WriteString(encoded)
		query.WriteByte('&')
	}
	if encoded := extra.Encode(); encoded != "" {
		query.WriteString(encoded)
		query.WriteByte('&')
	}
	query.WriteString(formatParam + "=" + formatJSON)
	u.RawQuery = query.String()

	// Round-trip through the parser so anything net/http would refuse is
	// reported here instead of as a transport failure.
	if _, err := url.Parse(u.String()); err != nil {
		return nil, err
	}
	return u, nil
}

// redactURL hides the password and the auth_token value.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clone := *u
	if clone.User != nil {
		clone.User = url.User(clone.User.Username())
	}
	if clone.RawQuery != "" {
		q := clone.Query()
		if q.Has(tokenParam) {
			q.Set(tokenParam, "REDACTED")
			clone.RawQuery = q.Encode()
		}
	}
	return clone.String()
}
