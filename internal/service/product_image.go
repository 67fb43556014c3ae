// Package service holds use cases that span the repositories and the object
// store.
package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/logging"
	"storefront/internal/model"
	"storefront/internal/storage"
)

const (
	// MaxImageSize is the largest accepted product image.
	MaxImageSize = 5 << 20

	imageURLExpiry = 15 * time.Minute
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProductCatalog is the part of the product repository the image flow needs.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) envelope.Envelope[*model.Product]
	SetImage(ctx context.Context, id, key string) envelope.Envelope[*model.Product]
}

// ProductImageService manages product images in object storage.
type ProductImageService interface {
	// Upload stores the image under products/<uuid><ext> and points the product
	// at it. The object is removed again when the product cannot be updated.
	Upload(ctx context.Context, productID string, r io.Reader, filename, contentType string, size int64) (*model.Product, error)

	// URL presigns key for download. An empty key yields an empty URL.
	URL(ctx context.Context, key string) (string, error)
}

type productImageService struct {
	store    storage.Storage
	products ProductCatalog
}

// NewProductImageService constructs a ProductImageService.
func NewProductImageService(store storage.Storage, products ProductCatalog) ProductImageService {
	return &productImageService{store: store, products: products}
}

func (s *productImageService) Upload(ctx context.Context, productID string, r io.Reader, filename, contentType string, size int64) (*model.Product, error) {
	if r == nil {
		return nil, apperr.Validation("image is required")
	}
	defExt, ok := imageTypes[contentType]
	if !ok {
		return nil, apperr.Validation("unsupported image type %q", contentType)
	}
	if size > MaxImageSize {
		return nil, apperr.Validation("image must be at most %d bytes", MaxImageSize)
	}

	p, err := s.products.GetByID(ctx, productID).Unwrap()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = defExt
	}
	key := path.Join("products", uuid.NewString()+ext)

	obj, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
			"product-id":        productID,
		},
	})
	if err != nil {
		return nil, apperr.Backend(fmt.Errorf("upload to storage: %w", err))
	}

	updated, err := s.products.SetImage(ctx, productID, obj.Key).Unwrap()
	if err != nil {
		// Rollback: the object is unreachable without the product row
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			logging.Error("images", "rollback_delete_failed", delErr, map[string]any{"key": obj.Key})
		}
		return nil, err
	}

	if p.ImageKey != "" && p.ImageKey != obj.Key {
		if err := s.store.Delete(ctx, p.ImageKey); err != nil {
			logging.Warn("images", "stale_image_delete_failed", map[string]any{
				"key":           p.ImageKey,
				"error_message": err.Error(),
			})
		}
	}
	return updated, nil
}

func (s *productImageService) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	u, err := s.store.PresignGet(ctx, key, imageURLExpiry)
	if err != nil {
		return "", apperr.Backend(err)
	}
	return u, nil
}
