package handler

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/http/middleware"
	"storefront/internal/logging"
)

// errorPayload is the failed envelope plus the request id.
type errorPayload struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}


// writeError writes a failed envelope. message must be safe to show callers.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// ErrorHandler returns a Fiber global error handler. Status codes follow the
// error kind; internal details never reach the response.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			switch e.Code {
			case fiber.StatusBadRequest:
				return writeError(c, e.Code, string(apperr.KindValidation), "bad request")
			case fiber.StatusNotFound:
				return writeError(c, e.Code, string(apperr.KindNotFound), "resource not found")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, e.Code, "method_not_allowed", "method not allowed")
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, e.Code, string(apperr.KindValidation), "request body too large")
			case fiber.StatusServiceUnavailable:
				return writeError(c, e.Code, string(apperr.KindBackend), e.Message)
			default:
				return writeError(c, e.Code, string(apperr.KindInternal), "internal server error")
			}
		}

		kind := apperr.KindOf(err)
		status := middleware.StatusOf(err)
		msg := err.Error()
		if status >= fiber.StatusInternalServerError {
			logging.Error("http", "request_failed", err, map[string]any{
				"request_id": middleware.RequestIDFrom(c),
				"method":     c.Method(),
				"path":       c.Path(),
				"kind":       string(kind),
			})
			if kind == apperr.KindInternal {
				msg = "internal server error"
			}
		}
		return writeError(c, status, string(kind), msg)
	}
}
