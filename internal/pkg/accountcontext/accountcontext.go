package accountcontext

import "github.com/gofiber/fiber/v2"

// Locals key under which the middleware stores the account context.
const Key = "ACCOUNT_CONTEXT"

// AccountContext carries the verified identity attached to a request. The
// upstream identity service resolves credentials; by the time a request gets
// here the account id is trusted.
type AccountContext struct {
	AccountID uint   `json:"account_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Resolved  bool   `json:"resolved"`
}

// Get retrieves the account context from the fiber context.
// Returns an unresolved context if none is set.
func Get(c *fiber.Ctx) AccountContext {
	if ctx := c.Locals(Key); ctx != nil {
		return ctx.(AccountContext)
	}
	return AccountContext{Resolved: false}
}

// Set stores the account context on the fiber context.
func Set(c *fiber.Ctx, ctx AccountContext) {
	c.Locals(Key, ctx)
}

// AccountID returns the current account's ID, or 0 if unresolved.
func AccountID(c *fiber.Ctx) uint {
	return Get(c).AccountID
}

// IsResolved checks whether a verified account is attached to the request.
func IsResolved(c *fiber.Ctx) bool {
	return Get(c).Resolved
}
