package middleware

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
)

const adminLocalKey = "admin"

// AdminLookup finds the admin record of an external identity.
type AdminLookup interface {
	GetByUserID(ctx context.Context, userID string) envelope.Envelope[*model.AdminUser]
}

// RequireAdmin lets the request through only for an active admin whose role
// is in roles (any role when roles is empty). It runs before any handler
// touches a repository.
func RequireAdmin(admins AdminLookup, roles ...model.AdminRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := Caller(c).UserID
		if userID == "" {
			return apperr.Auth("authentication required")
		}
		env := admins.GetByUserID(c.UserContext(), userID)
		a, err := env.Unwrap()
		if err != nil {
			return err
		}
		if a == nil || !a.IsActive {
			return apperr.Forbidden("admin access required")
		}
		if len(roles) > 0 && !slices.Contains(roles, a.Role) {
			return apperr.Forbidden("insufficient role")
		}
		c.Locals(adminLocalKey, a)
		return c.Next()
	}
}

// Admin returns the admin stored by RequireAdmin, or nil.
func Admin(c *fiber.Ctx) *model.AdminUser {
	a, _ := c.Locals(adminLocalKey).(*model.AdminUser)
	return a
}

// RequireRole narrows a route behind RequireAdmin to roles.
func RequireRole(roles ...model.AdminRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a := Admin(c)
		if a == nil {
			return apperr.Forbidden("admin access required")
		}
		if !slices.Contains(roles, a.Role) {
			return apperr.Forbidden("insufficient role")
		}
		return c.Next()
	}
}
