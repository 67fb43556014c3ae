package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/storage"
	storeMocks "storefront/internal/storage/mocks"
)

const teeID = "11111111-0000-4000-8000-000000000001"

type catalogStub struct {
	product *model.Product
	getErr  error
	setErr  error
	setKey  string
}

func (c *catalogStub) GetByID(_ context.Context, id string) envelope.Envelope[*model.Product] {
	if c.getErr != nil {
		return envelope.Fail[*model.Product](c.getErr)
	}
	if c.product == nil || c.product.ID != id {
		return envelope.OK[*model.Product](nil)
	}
	p := c.product.Clone()
	return envelope.OK(&p)
}

func (c *catalogStub) SetImage(_ context.Context, id, key string) envelope.Envelope[*model.Product] {
	if c.setErr != nil {
		return envelope.Fail[*model.Product](c.setErr)
	}
	c.setKey = key
	p := c.product.Clone()
	p.ImageKey = key
	return envelope.OK(&p)
}

func isProductKey(key string) bool {
	return strings.HasPrefix(key, "products/") && strings.HasSuffix(key, ".png")
}

func TestProductImageService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		product     *model.Product
		contentType string
		size        int64
		setErr      error
		setupMocks  func(m *storeMocks.MockStorage, r io.Reader)
		wantKind    apperr.Kind
	}{
		{
			name:        "happy path",
			product:     &model.Product{ID: teeID, Name: "Classic Tee"},
			contentType: "image/png",
			size:        4,
			setupMocks: func(m *storeMocks.MockStorage, r io.Reader) {
				m.On("Put", ctx, mock.MatchedBy(isProductKey), r, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
					return o.Size == 4 && o.ContentType == "image/png" && o.Metadata["product-id"] == teeID
				})).Return(func(_ context.Context, key string, _ io.Reader, o storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key, Size: o.Size, ContentType: o.ContentType}
				}, nil)
			},
		},
		{
			name:        "replaces previous image",
			product:     &model.Product{ID: teeID, ImageKey: "products/old.png"},
			contentType: "image/png",
			size:        4,
			setupMocks: func(m *storeMocks.MockStorage, r io.Reader) {
				m.On("Put", ctx, mock.MatchedBy(isProductKey), r, mock.Anything).
					Return(storage.ObjectInfo{Key: "products/new.png"}, nil)
				m.On("Delete", ctx, "products/old.png").Return(errors.New("gone"))
			},
		},
		{
			name:        "unsupported type",
			product:     &model.Product{ID: teeID},
			contentType: "application/pdf",
			size:        4,
			wantKind:    apperr.KindValidation,
		},
		{
			name:        "too large",
			product:     &model.Product{ID: teeID},
			contentType: "image/png",
			size:        MaxImageSize + 1,
			wantKind:    apperr.KindValidation,
		},
		{
			name:        "unknown product",
			contentType: "image/png",
			size:        4,
			wantKind:    apperr.KindNotFound,
		},
		{
			name:        "storage error",
			product:     &model.Product{ID: teeID},
			contentType: "image/png",
			size:        4,
			setupMocks: func(m *storeMocks.MockStorage, r io.Reader) {
				m.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantKind: apperr.KindBackend,
		},
		{
			name:        "product update fails rolls back object",
			product:     &model.Product{ID: teeID},
			contentType: "image/png",
			size:        4,
			setErr:      apperr.Backend(errors.New("connection reset")),
			setupMocks: func(m *storeMocks.MockStorage, r io.Reader) {
				m.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{Key: "products/rolled.png"}, nil)
				m.On("Delete", ctx, "products/rolled.png").Return(nil).Once()
			},
			wantKind: apperr.KindBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			catalog := &catalogStub{product: tt.product, setErr: tt.setErr}
			r := strings.NewReader("\x89PNG")
			if tt.setupMocks != nil {
				tt.setupMocks(mStore, r)
			}

			svc := NewProductImageService(mStore, catalog)
			got, err := svc.Upload(ctx, teeID, r, "front.PNG", tt.contentType, tt.size)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, catalog.setKey, got.ImageKey)
				assert.True(t, strings.HasPrefix(got.ImageKey, "products/"))
			}
			mStore.AssertExpectations(t)
		})
	}
}

func TestProductImageService_URL(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	svc := NewProductImageService(mStore, &catalogStub{})

	t.Run("no image", func(t *testing.T) {
		u, err := svc.URL(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, u)
	})

	t.Run("presigned", func(t *testing.T) {
		mStore.On("PresignGet", ctx, "products/a.png", 15*time.Minute).
			Return("https://cdn.example.com/products/a.png?sig=1", nil).Once()
		u, err := svc.URL(ctx, "products/a.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/products/a.png?sig=1", u)
	})

	t.Run("storage down", func(t *testing.T) {
		mStore.On("PresignGet", ctx, "products/b.png", 15*time.Minute).
			Return("", errors.New("dial tcp: refused")).Once()
		_, err := svc.URL(ctx, "products/b.png")
		assert.True(t, apperr.Is(err, apperr.KindBackend))
	})

	mStore.AssertExpectations(t)
}
