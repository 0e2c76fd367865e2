package ratelimit

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore simulates an unreachable shared store.
type failingStore struct {
	calls int
}

func (s *failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	s.calls++
	return 0, errors.New("connection refused")
}

func testGroups() map[RouteGroup]GroupConfig {
	return map[RouteGroup]GroupConfig{
		GroupGeneral: {Window: time.Minute, MaxRequests: 100},
		GroupAuth:    {Window: time.Minute, MaxRequests: 5},
	}
}

func TestLimiterDeniesOverLimit(t *testing.T) {
	l := NewLimiter(nil, testGroups())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d := l.Allow(ctx, GroupAuth, "account:1")
		assert.True(t, d.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, int64(5), d.Limit)
		assert.Equal(t, int64(5-(i+1)), d.Remaining)
	}

	d := l.Allow(ctx, GroupAuth, "account:1")
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
	assert.Equal(t, time.Minute, d.RetryAfter)
}

func TestLimiterIsolatesKeysAndGroups(t *testing.T) {
	l := NewLimiter(nil, testGroups())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		l.Allow(ctx, GroupAuth, "account:1")
	}
	assert.False(t, l.Allow(ctx, GroupAuth, "account:1").Allowed)

	// Other keys and other groups keep their own windows.
	assert.True(t, l.Allow(ctx, GroupAuth, "account:2").Allowed)
	assert.True(t, l.Allow(ctx, GroupGeneral, "account:1").Allowed)
}

func TestLimiterUnknownGroupUsesGeneral(t *testing.T) {
	l := NewLimiter(nil, testGroups())

	d := l.Allow(context.Background(), RouteGroup("mystery"), "account:1")
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(100), d.Limit)
}

func TestLimiterFallsBackWhenSharedStoreFails(t *testing.T) {
	shared := &failingStore{}
	l := NewLimiter(shared, map[RouteGroup]GroupConfig{
		GroupGeneral: {Window: time.Minute, MaxRequests: 2},
	})
	ctx := context.Background()

	// Every call still gets a definite boolean answer, counted locally.
	assert.True(t, l.Allow(ctx, GroupGeneral, "account:1").Allowed)
	assert.True(t, l.Allow(ctx, GroupGeneral, "account:1").Allowed)
	assert.False(t, l.Allow(ctx, GroupGeneral, "account:1").Allowed)
	assert.Equal(t, 3, shared.calls)
}

func TestMiddlewareRejectsWithRetryAfter(t *testing.T) {
	l := NewLimiter(nil, map[RouteGroup]GroupConfig{
		GroupGeneral: {Window: time.Minute, MaxRequests: 1},
	})

	app := fiber.New()
	app.Get("/ping", Middleware(l, GroupGeneral), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	resp, err = app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "rate_limited")
}
