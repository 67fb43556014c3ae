package handler

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/envelope"
	"storefront/internal/http/middleware"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/repository"
)

func ListMetrics(analytics *repository.AnalyticsRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := listOptions(c)
		if err != nil {
			return err
		}
		if name := c.Query("name"); name != "" {
			opts = append(opts, query.WithFilter("name", name))
		}

		d := query.New(opts...)
		page, err := analytics.GetAll(c.UserContext(), d).Unwrap()
		if err != nil {
			return err
		}
		return c.JSON(envelope.OK(fiber.Map{
			"metrics":    page.Items,
			"pagination": paginationOf(page, d),
		}))
	}
}

// RecordEvent stores a storefront event. The caller's customer id is added
// to the context when the client did not send one.
func RecordEvent(analytics *repository.AnalyticsRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.AnalyticsMetricInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		if id := middleware.Caller(c).CustomerID; id != "" {
			if in.Context == nil {
				in.Context = map[string]any{}
			}
			if _, ok := in.Context["customer_id"]; !ok {
				in.Context["customer_id"] = id
			}
		}
		return reply(c, fiber.StatusCreated, analytics.Create(c.UserContext(), in))
	}
}
