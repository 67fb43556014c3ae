package handler

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/aggregate"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/repository"
)

// Dashboard reads every order, customer and product and aggregates them.
// The three reads run concurrently; each degrades on its own, but every row
// of one entity comes from the same backend.
func Dashboard(repos *repository.Repositories, opts aggregate.Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		all := query.New(query.WithPage(1, query.MaxPageSize))

		var (
			wg        sync.WaitGroup
			orders    envelope.Envelope[[]model.Order]
			customers envelope.Envelope[[]model.Customer]
			products  envelope.Envelope[[]model.Product]
		)
		wg.Add(3)
		go func() {
			defer wg.Done()
			orders = repos.Orders.ListAll(ctx, all)
		}()
		go func() {
			defer wg.Done()
			customers = repos.Customers.ListAll(ctx, all)
		}()
		go func() {
			defer wg.Done()
			products = repos.Products.ListAll(ctx, all)
		}()
		wg.Wait()

		return reply(c, fiber.StatusOK, aggregate.FromEnvelopes(orders, customers, products, opts))
	}
}
