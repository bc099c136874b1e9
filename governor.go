package corkboard

import (
	"time"
)

// rateGovernor spaces out requests per throttle class. Endpoints with a
// policy of their own are their own class; every other endpoint belongs to
// the shared default class.
type rateGovernor struct {
	state         *requestState
	policies      map[Endpoint]EndpointPolicy
	defaultPolicy EndpointPolicy
	now           func() time.Time
}

func (g *rateGovernor) classOf(endpoint Endpoint) (string, EndpointPolicy) {
	if p, ok := g.policies[endpoint]; ok {
		return string(endpoint), p
	}
	return defaultClassKey, g.defaultPolicy
}

// acquire admits the request, recording the issue time, or returns how much
// of the class's interval is still left. Check and record happen under the
// same lock; a refusal leaves the state untouched.
func (g *rateGovernor) acquire(endpoint Endpoint) (time.Duration, EndpointPolicy, string) {
	key, policy := g.classOf(endpoint)

	g.state.mu.Lock()
	defer g.state.mu.Unlock()

	now := g.now()
	if last, ok := g.state.lastIssued[key]; ok && policy.MinInterval > 0 {
		elapsed := now.Sub(last)
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed < policy.MinInterval {
			return policy.MinInterval - elapsed, policy, key
		}
	}
	g.state.lastIssued[key] = now
	return 0, policy, key
}
