package middleware

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/logging"
)

// Logger logs each HTTP request as one JSON line through the shared logging
// output. Fields: ts, request_id, method, path, status, latency (ms).
func Logger() fiber.Handler {
	return LoggerWithWriter(logging.Writer(), logging.Location())
}

// LoggerWithWriter is Logger with an explicit sink and timezone.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Collect fields after the handler ran to capture the final status
		rid := RequestIDFrom(c)
		status := c.Response().StatusCode()
		if err != nil {
			status = StatusOf(err)
		}

		entry := map[string]any{
			"ts":         start.In(loc).Format(time.RFC3339Nano),
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		}
		if id := Caller(c).UserID; id != "" {
			entry["user_id"] = id
		}
		_ = enc.Encode(entry)

		return err
	}
}
