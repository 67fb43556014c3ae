package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"storefront/internal/model"
)

type MockProductImageService struct {
	mock.Mock
}

func (m *MockProductImageService) Upload(ctx context.Context, productID string, r io.Reader, filename, contentType string, size int64) (*model.Product, error) {
	args := m.Called(ctx, productID, r, filename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductImageService) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
