package handler

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/repository"
	"storefront/internal/service"
)

const relatedProducts = 4

// ListProducts serves the public catalogue: active products only.
func ListProducts(products *repository.ProductRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := listOptions(c)
		if err != nil {
			return err
		}
		opts = append(opts, query.WithFilter("is_active", true))
		if cat := c.Query("category"); cat != "" {
			opts = append(opts, query.WithFilter("category", cat))
		}
		minPrice, err := floatQuery(c, "minPrice")
		if err != nil {
			return err
		}
		maxPrice, err := floatQuery(c, "maxPrice")
		if err != nil {
			return err
		}
		opts = append(opts, query.WithRange("price", query.Range{Min: minPrice, Max: maxPrice}))

		d := query.New(opts...)
		page, err := products.GetAll(c.UserContext(), d).Unwrap()
		if err != nil {
			return err
		}
		return c.JSON(envelope.OK(fiber.Map{
			"products":   page.Items,
			"pagination": paginationOf(page, d),
		}))
	}
}

// GetProduct returns an active product by slug with related products. The
// image URL is presigned when images is set.
func GetProduct(products *repository.ProductRepository, images service.ProductImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		p, err := products.GetBySlug(ctx, c.Params("slug")).Unwrap()
		if err != nil {
			return err
		}
		if p == nil || !p.IsActive {
			return apperr.NotFound("product")
		}

		related, err := products.Related(ctx, *p, relatedProducts).Unwrap()
		if err != nil {
			return err
		}

		var imageURL string
		if images != nil {
			if imageURL, err = images.URL(ctx, p.ImageKey); err != nil {
				return err
			}
		}
		return c.JSON(envelope.OK(fiber.Map{
			"product":   p,
			"related":   related,
			"image_url": imageURL,
		}))
	}
}

func CreateProduct(products *repository.ProductRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.ProductInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		return reply(c, fiber.StatusCreated, products.Create(c.UserContext(), in))
	}
}

func UpdateProduct(products *repository.ProductRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch model.ProductPatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}
		return reply(c, fiber.StatusOK, products.Update(c.UserContext(), c.Params("id"), patch))
	}
}

func DeleteProduct(products *repository.ProductRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return reply(c, fiber.StatusOK, products.Delete(c.UserContext(), c.Params("id")))
	}
}

// UploadProductImage accepts multipart/form-data with the image in field
// "file".
func UploadProductImage(images service.ProductImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if images == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "image storage is not configured")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return apperr.Validation("file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return apperr.Validation("cannot open uploaded file")
		}
		defer f.Close()

		p, err := images.Upload(c.UserContext(), c.Params("id"), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(envelope.OK(p))
	}
}
