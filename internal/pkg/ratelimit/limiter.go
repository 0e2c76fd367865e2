package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/metrics"
)

// RouteGroup is a named class of inbound operations sharing one window/limit
// configuration.
type RouteGroup string

const (
	GroupGeneral    RouteGroup = "general"
	GroupAuth       RouteGroup = "auth"
	GroupChat       RouteGroup = "chat"
	GroupGeneration RouteGroup = "generation"
)

// GroupConfig is one fixed-window configuration.
type GroupConfig struct {
	Window      time.Duration
	MaxRequests int64
}

// DefaultGroups returns the route group configurations.
func DefaultGroups() map[RouteGroup]GroupConfig {
	return map[RouteGroup]GroupConfig{
		GroupGeneral:    {Window: 15 * time.Minute, MaxRequests: 100},
		GroupAuth:       {Window: 15 * time.Minute, MaxRequests: 5},
		GroupChat:       {Window: 1 * time.Minute, MaxRequests: 20},
		GroupGeneration: {Window: 1 * time.Minute, MaxRequests: 5},
	}
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter is the admission controller: fixed-window counting per
// (route group, key), backed by the shared store when reachable and by the
// in-process store otherwise. The fallback weakens cross-instance accuracy in
// exchange for availability: each instance then counts alone, so a
// multi-instance deployment may admit more than the configured limit while
// degraded. Failing open here is deliberate.
type Limiter struct {
	shared CounterStore
	local  *LocalCounterStore
	groups map[RouteGroup]GroupConfig
}

// NewLimiter creates a limiter. shared may be nil when no shared store is
// configured; the limiter then runs entirely on the local store.
func NewLimiter(shared CounterStore, groups map[RouteGroup]GroupConfig) *Limiter {
	if groups == nil {
		groups = DefaultGroups()
	}
	return &Limiter{
		shared: shared,
		local:  NewLocalCounterStore(),
		groups: groups,
	}
}

// Allow checks and consumes one request slot for (group, key). It never blocks
// beyond the shared store's own timeout and never returns an error: a store
// failure degrades to the local counter for that call.
func (l *Limiter) Allow(ctx context.Context, group RouteGroup, key string) Decision {
	cfg, ok := l.groups[group]
	if !ok {
		cfg = l.groups[GroupGeneral]
	}

	counterKey := fmt.Sprintf("rate_limit:%s:%s", group, key)

	var (
		count int64
		err   error
	)
	if l.shared != nil {
		count, err = l.shared.Incr(ctx, counterKey, cfg.Window)
	}
	if l.shared == nil || err != nil {
		if err != nil {
			log.Warnf("[RateLimit] shared counter store unavailable, using local counter: %v", err)
			metrics.CounterStoreFallbacks.Inc()
		}
		count, _ = l.local.Incr(ctx, counterKey, cfg.Window)
	}

	remaining := cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	if count > cfg.MaxRequests {
		metrics.RateLimitRejections.WithLabelValues(string(group)).Inc()
		return Decision{
			Allowed:    false,
			Limit:      cfg.MaxRequests,
			Remaining:  0,
			RetryAfter: cfg.Window,
		}
	}

	return Decision{
		Allowed:   true,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
	}
}
