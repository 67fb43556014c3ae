package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Identity headers set by the upstream identity provider after it verified
// the caller's token.
const (
	UserIDHeader     = "X-User-ID"
	UserEmailHeader  = "X-User-Email"
	CustomerIDHeader = "X-Customer-ID"

	identityLocalKey = "caller"
)

// Identity is the resolved caller. Any field may be empty for anonymous
// requests.
type Identity struct {
	UserID     string
	Email      string
	CustomerID string
}

// ResolveIdentity reads the identity headers into fiber locals.
func ResolveIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(identityLocalKey, Identity{
			UserID:     strings.TrimSpace(c.Get(UserIDHeader)),
			Email:      strings.TrimSpace(c.Get(UserEmailHeader)),
			CustomerID: strings.TrimSpace(c.Get(CustomerIDHeader)),
		})
		return c.Next()
	}
}

// Caller returns the identity stored by ResolveIdentity.
func Caller(c *fiber.Ctx) Identity {
	id, _ := c.Locals(identityLocalKey).(Identity)
	return id
}
