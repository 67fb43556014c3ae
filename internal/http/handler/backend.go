package handler

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/envelope"
	"storefront/internal/http/middleware"
	"storefront/internal/logging"
)

func BackendStatus(sel *backend.Selector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(envelope.OK(sel.Status()))
	}
}

// RecheckBackend re-runs the live backend probe. It is the only way back to
// LIVE after a fallback decision.
func RecheckBackend(sel *backend.Selector, cfg config.BackendConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := sel.Recheck(cfg)
		fields := map[string]any{"mode": mode.String()}
		if a := middleware.Admin(c); a != nil {
			fields["admin_user_id"] = a.UserID
		}
		logging.Info("backend", "backend_recheck", fields)
		return c.JSON(envelope.OK(sel.Status()))
	}
}
