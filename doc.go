// Package corkboard is the request core of a client for the Pinboard
// bookmarking REST API. It owns everything with state or timing behavior:
//
//   - URL construction (versioned path, query, format=json, authentication)
//   - Per-endpoint self-throttling (reject or defer requests issued too soon)
//   - HTTP status interpretation
//   - Exponential backoff on 429 responses, bounded by a retry ceiling
//   - Disambiguation of {"result_code": ...} reports from typed payloads
//
// Typed endpoint wrappers are left to callers: they hand the core an
// Endpoint, a set of query parameters and the payload type they expect.
//
// Typical usage:
//
//	client := corkboard.New(corkboard.Token("user:ABC123"),
//	    corkboard.WithWaitObserver(func(ev corkboard.WaitEvent) {
//	        log.Printf("%s: waiting %s (%s)", ev.Endpoint, ev.Wait, ev.Reason)
//	    }),
//	)
//	out, err := corkboard.Call[RecentPosts](ctx, client, corkboard.EndpointPostsRecent, url.Values{"count": {"10"}})
//
// A Client is safe for concurrent use. Each Client owns its throttle
// timestamps and backoff state; two clients never share them.
package corkboard
