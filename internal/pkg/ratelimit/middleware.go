package ratelimit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/accountcontext"
)

// Middleware gates a route group. The key is the authenticated account when
// one is attached, the client IP otherwise; the identity middleware must
// therefore run first on account-scoped routes.
func Middleware(l *Limiter, group RouteGroup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if acct := accountcontext.Get(c); acct.Resolved {
			key = "account:" + strconv.FormatUint(uint64(acct.AccountID), 10)
		}

		decision := l.Allow(c.UserContext(), group, key)

		c.Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

		if !decision.Allowed {
			c.Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests, please try again later.",
			})
		}

		return c.Next()
	}
}
