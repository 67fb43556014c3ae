package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/aggregate"
	"storefront/internal/apperr"
	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/http/middleware"
	"storefront/internal/model"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// Deps is everything the routes need. DB is nil when no live database is
// attached, Images is nil when object storage is not configured and a nil
// Limiter disables rate limiting.
type Deps struct {
	Repos     *repository.Repositories
	Selector  *backend.Selector
	Backend   config.BackendConfig
	DB        *sql.DB
	Images    service.ProductImageService
	Limiter   ratelimit.Limiter
	Dashboard aggregate.Options
}

var (
	catalogRoles = []model.AdminRole{model.RoleSuperAdmin, model.RoleAdmin, model.RoleManager}
	ownerRoles   = []model.AdminRole{model.RoleSuperAdmin, model.RoleAdmin}
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. The caller
// installs middleware.ResolveIdentity first; health probes are registered
// ahead of the rate limit gate.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB, d.Selector))
	app.Get("/healthz", LivenessProbe())

	if d.Limiter != nil {
		app.Use(middleware.RateLimit(d.Limiter))
	}

	r := d.Repos

	app.Get("/products", ListProducts(r.Products))
	app.Get("/products/:slug", GetProduct(r.Products, d.Images))
	app.Post("/analytics/events", RecordEvent(r.Analytics))

	app.Get("/cart", GetCart(r.Cart))
	app.Post("/cart/add", AddToCart(r.Cart))
	app.Put("/cart/update", UpdateCart(r.Cart))
	app.Delete("/cart/remove", RemoveFromCart(r.Cart))
	app.Delete("/cart/clear", ClearCart(r.Cart))
	app.Post("/orders", Checkout(r.Orders))

	admin := app.Group("/admin", middleware.RequireAdmin(r.Admins))

	admin.Get("/orders", ListOrders(r.Orders))
	admin.Get("/orders/:id", GetOrder(r.Orders))
	admin.Put("/orders/:id", UpdateOrder(r.Orders))

	catalog := middleware.RequireRole(catalogRoles...)
	admin.Post("/products", catalog, CreateProduct(r.Products))
	admin.Put("/products/:id", catalog, UpdateProduct(r.Products))
	admin.Delete("/products/:id", catalog, DeleteProduct(r.Products))
	admin.Post("/products/:id/image", catalog, UploadProductImage(d.Images))

	admin.Get("/customers", ListCustomers(r.Customers))
	admin.Delete("/customers/:id", middleware.RequireRole(ownerRoles...), DeleteCustomer(r.Customers))

	admin.Get("/dashboard", Dashboard(r, d.Dashboard))
	admin.Get("/analytics", ListMetrics(r.Analytics))

	admin.Get("/backend", BackendStatus(d.Selector))
	admin.Post("/backend/recheck", middleware.RequireRole(ownerRoles...), RecheckBackend(d.Selector, d.Backend))
}

// HealthCheck reports the backend mode. In LIVE mode it also pings the
// database and answers 503 when the ping fails. FALLBACK, or LIVE without a
// database handle to ping, is reported as degraded.
func HealthCheck(db *sql.DB, sel *backend.Selector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := backend.ModeFallback
		if sel != nil {
			mode = sel.Mode()
		}
		if mode != backend.ModeLive || db == nil {
			return c.JSON(fiber.Map{"status": "degraded", "mode": mode.String()})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, string(apperr.KindBackend), "dependency unavailable")
		}
		return c.JSON(fiber.Map{"status": "healthy", "mode": mode.String()})
	}
}

// LivenessProbe answers 200 while the process runs.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
