package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/logging"
	"storefront/internal/ratelimit"
)

// RateLimit gates every request on l, keyed by the caller's user id or, for
// anonymous callers, the client IP. A limiter failure lets the request
// through.
func RateLimit(l ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if id := Caller(c).UserID; id != "" {
			key = "user:" + id
		}

		d, err := l.CanMakeRequest(c.UserContext(), key)
		if err != nil {
			logging.Warn("ratelimit", "rate_limit_unavailable", map[string]any{
				"key":           key,
				"error_message": err.Error(),
			})
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
		if !d.Allowed {
			return apperr.RateLimited()
		}
		return c.Next()
	}
}
