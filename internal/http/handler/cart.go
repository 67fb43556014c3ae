package handler

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/repository"
)

type cartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Every cart endpoint answers with the whole cart: {items, summary}.

func GetCart(cart *repository.CartRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := customerID(c)
		if err != nil {
			return err
		}
		return reply(c, fiber.StatusOK, cart.View(c.UserContext(), id))
	}
}

// AddToCart adds quantity (default 1) of a product.
func AddToCart(cart *repository.CartRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := customerID(c)
		if err != nil {
			return err
		}
		line := cartLine{Quantity: 1}
		if err := parseBody(c, &line); err != nil {
			return err
		}
		return reply(c, fiber.StatusOK, cart.Add(c.UserContext(), id, line.ProductID, line.Quantity))
	}
}

// UpdateCart sets a line's quantity; zero or less removes the line.
func UpdateCart(cart *repository.CartRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := customerID(c)
		if err != nil {
			return err
		}
		var line cartLine
		if err := parseBody(c, &line); err != nil {
			return err
		}
		return reply(c, fiber.StatusOK, cart.SetQuantity(c.UserContext(), id, line.ProductID, line.Quantity))
	}
}

// RemoveFromCart takes the product from ?product_id= or the JSON body.
func RemoveFromCart(cart *repository.CartRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := customerID(c)
		if err != nil {
			return err
		}
		productID := c.Query("product_id")
		if productID == "" && len(c.Body()) > 0 {
			var line cartLine
			if err := parseBody(c, &line); err != nil {
				return err
			}
			productID = line.ProductID
		}
		return reply(c, fiber.StatusOK, cart.Remove(c.UserContext(), id, productID))
	}
}

func ClearCart(cart *repository.CartRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := customerID(c)
		if err != nil {
			return err
		}
		return reply(c, fiber.StatusOK, cart.Clear(c.UserContext(), id))
	}
}
