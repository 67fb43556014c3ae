package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/query"
	"storefront/internal/repository"
)

func ListCustomers(customers *repository.CustomerRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := listOptions(c)
		if err != nil {
			return err
		}
		if raw := c.Query("active"); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				return apperr.Validation("invalid active")
			}
			opts = append(opts, query.WithFilter("is_active", active))
		}

		d := query.New(opts...)
		page, err := customers.GetAll(c.UserContext(), d).Unwrap()
		if err != nil {
			return err
		}
		return c.JSON(envelope.OK(fiber.Map{
			"customers":  page.Items,
			"pagination": paginationOf(page, d),
		}))
	}
}

// DeleteCustomer deactivates a customer with order history and removes one
// without.
func DeleteCustomer(customers *repository.CustomerRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return reply(c, fiber.StatusOK, customers.Delete(c.UserContext(), c.Params("id")))
	}
}
