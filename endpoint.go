package corkboard

import (
	"sort"
	"time"
)

// Endpoint identifies one supported API operation by its path below the
// versioned base URL.
type Endpoint string

const (
	EndpointPostsUpdate  Endpoint = "/posts/update"
	EndpointPostsAdd     Endpoint = "/posts/add"
	EndpointPostsDelete  Endpoint = "/posts/delete"
	EndpointPostsGet     Endpoint = "/posts/get"
	EndpointPostsRecent  Endpoint = "/posts/recent"
	EndpointPostsAll     Endpoint = "/posts/all"
	EndpointPostsDates   Endpoint = "/posts/dates"
	EndpointPostsSuggest Endpoint = "/posts/suggest"
	EndpointTagsGet      Endpoint = "/tags/get"
	EndpointTagsDelete   Endpoint = "/tags/delete"
	EndpointTagsRename   Endpoint = "/tags/rename"
	EndpointUserSecret   Endpoint = "/user/secret"
	EndpointUserAPIToken Endpoint = "/user/api_token"
	EndpointNotesList    Endpoint = "/notes/list"
)

var knownEndpoints = map[Endpoint]struct{}{
	EndpointPostsUpdate:  {},
	EndpointPostsAdd:     {},
	EndpointPostsDelete:  {},
	EndpointPostsGet:     {},
	EndpointPostsRecent:  {},
	EndpointPostsAll:     {},
	EndpointPostsDates:   {},
	EndpointPostsSuggest: {},
	EndpointTagsGet:      {},
	EndpointTagsDelete:   {},
	EndpointTagsRename:   {},
	EndpointUserSecret:   {},
	EndpointUserAPIToken: {},
	EndpointNotesList:    {},
}

// Valid reports whether e is one of the supported endpoints.
func (e Endpoint) Valid() bool {
	_, ok := knownEndpoints[e]
	return ok
}

// Path returns the path suffix appended to the base URL.
func (e Endpoint) Path() string {
	return string(e)
}

func (e Endpoint) String() string {
	if len(e) > 0 && e[0] == '/' {
		return string(e[1:])
	}
	return string(e)
}

// ParseEndpoint accepts "posts/recent" or "/posts/recent".
func ParseEndpoint(s string) (Endpoint, bool) {
	if s == "" {
		return "", false
	}
	if s[0] != '/' {
		s = "/" + s
	}
	e := Endpoint(s)
	return e, e.Valid()
}

// Endpoints returns every supported endpoint in path order.
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(knownEndpoints))
	for e := range knownEndpoints {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ThrottleMode selects what the rate governor does with a request issued
// before its class's minimum interval has elapsed.
type ThrottleMode int

const (
	// ThrottleDefer waits out the remaining interval and then tries again.
	ThrottleDefer ThrottleMode = iota
	// ThrottleReject fails the call immediately with ErrRequestTooSoon.
	ThrottleReject
)

func (m ThrottleMode) String() string {
	switch m {
	case ThrottleDefer:
		return "defer"
	case ThrottleReject:
		return "reject"
	default:
		return "unknown"
	}
}

// EndpointPolicy is the minimum spacing enforced between two requests of the
// same class.
type EndpointPolicy struct {
	MinInterval time.Duration
	Mode        ThrottleMode
}

// defaultClassKey is shared by every endpoint without a policy of its own.
const defaultClassKey = "default"

// DefaultPolicy is the global floor applied to endpoints without their own
// policy. All of them share a single timestamp.
var DefaultPolicy = EndpointPolicy{MinInterval: 3 * time.Second, Mode: ThrottleDefer}

// DefaultEndpointPolicies are the long-floor classes documented by the API.
func DefaultEndpointPolicies() map[Endpoint]EndpointPolicy {
	return map[Endpoint]EndpointPolicy{
		EndpointPostsAll:    {MinInterval: 5 * time.Minute, Mode: ThrottleReject},
		EndpointPostsRecent: {MinInterval: time.Minute, Mode: ThrottleReject},
	}
}
