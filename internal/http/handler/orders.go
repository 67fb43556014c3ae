package handler

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/repository"
)

// ListOrders serves the admin order list with customers embedded.
func ListOrders(orders *repository.OrderRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := listOptions(c)
		if err != nil {
			return err
		}
		if s := c.Query("status"); s != "" {
			status := model.OrderStatus(s)
			if !status.Valid() && status != model.OrderPartial {
				return apperr.Validation("invalid status %q", s)
			}
			opts = append(opts, query.WithFilter("status", s))
		}
		if id := c.Query("customer_id"); id != "" {
			opts = append(opts, query.WithFilter("customer_id", id))
		}

		d := query.New(opts...)
		page, err := orders.GetAllDetailed(c.UserContext(), d).Unwrap()
		if err != nil {
			return err
		}
		return c.JSON(envelope.OK(fiber.Map{
			"orders":     page.Items,
			"pagination": paginationOf(page, d),
		}))
	}
}

func GetOrder(orders *repository.OrderRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return found(c, orders.GetByID(c.UserContext(), c.Params("id")), "order")
	}
}

// UpdateOrder changes status, shipping address or notes.
func UpdateOrder(orders *repository.OrderRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch model.OrderPatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}
		return reply(c, fiber.StatusOK, orders.Update(c.UserContext(), c.Params("id"), patch))
	}
}

// Checkout turns the caller's cart into a pending order.
func Checkout(orders *repository.OrderRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := customerID(c)
		if err != nil {
			return err
		}
		var in model.CheckoutInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		return reply(c, fiber.StatusCreated, orders.Checkout(c.UserContext(), id, in))
	}
}
