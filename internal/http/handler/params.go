package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/http/middleware"
	"storefront/internal/query"
)

// pagination is the paging block of list responses.
type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func paginationOf[T any](p query.Page[T], d query.Descriptor) pagination {
	return pagination{Page: d.Page(), Limit: d.PageSize(), Total: p.Total, TotalPages: p.TotalPages}
}

// camelCase sort keys accepted from clients
var sortAliases = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"stockQuantity": "stock_quantity",
	"orderNumber":   "order_number",
	"totalOrders":   "total_orders",
	"totalSpent":    "total_spent",
	"lastName":      "last_name",
	"recordedAt":    "recorded_at",
}

// listOptions reads page, limit, search, sortBy and sortOrder.
func listOptions(c *fiber.Ctx) ([]query.Option, error) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return nil, err
	}
	limit, err := intQuery(c, "limit", query.DefaultPageSize)
	if err != nil {
		return nil, err
	}

	sortBy := strings.TrimSpace(c.Query("sortBy"))
	if alias, ok := sortAliases[sortBy]; ok {
		sortBy = alias
	}

	opts := []query.Option{
		query.WithPage(page, limit),
		query.WithSort(sortBy, query.ParseDirection(c.Query("sortOrder"))),
	}
	if s := c.Query("search"); s != "" {
		opts = append(opts, query.WithSearch(s))
	}
	return opts, nil
}

func intQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("invalid %s", key)
	}
	return n, nil
}

func floatQuery(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.Validation("invalid %s", key)
	}
	return &f, nil
}

// customerID is the caller's customer id, required by cart and checkout.
func customerID(c *fiber.Ctx) (string, error) {
	id := middleware.Caller(c).CustomerID
	if id == "" {
		return "", apperr.Auth("customer identity required")
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// reply writes the envelope's payload with status, or returns its error to
// the error handler.
func reply[T any](c *fiber.Ctx, status int, env envelope.Envelope[T]) error {
	data, err := env.Unwrap()
	if err != nil {
		return err
	}
	return c.Status(status).JSON(envelope.OK(data))
}

// found is reply for single-record reads: a nil record is a 404.
func found[T any](c *fiber.Ctx, env envelope.Envelope[*T], what string) error {
	data, err := env.Unwrap()
	if err != nil {
		return err
	}
	if data == nil {
		return apperr.NotFound(what)
	}
	return c.JSON(envelope.OK(data))
}
