package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var (
	_ store.ProductStore   = (*MockProductStore)(nil)
	_ store.OrderStore     = (*MockOrderStore)(nil)
	_ store.CustomerStore  = (*MockCustomerStore)(nil)
	_ store.AdminUserStore = (*MockAdminUserStore)(nil)
	_ store.CartStore      = (*MockCartStore)(nil)
	_ store.MetricStore    = (*MockMetricStore)(nil)
)

func listResult[T any](args mock.Arguments) ([]T, int, error) {
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]T), args.Int(1), args.Error(2)
}

func oneResult[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) List(ctx context.Context, d query.Descriptor) ([]model.Product, int, error) {
	return listResult[model.Product](m.Called(ctx, d))
}

func (m *MockProductStore) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return oneResult[model.Product](m.Called(ctx, id))
}

func (m *MockProductStore) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return oneResult[model.Product](m.Called(ctx, slug))
}

func (m *MockProductStore) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	return oneResult[model.Product](m.Called(ctx, p))
}

func (m *MockProductStore) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	return oneResult[model.Product](m.Called(ctx, p))
}

func (m *MockProductStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockOrderStore deliberately does not implement store.AtomicOrderCreator,
// so repositories fall back to the two-phase write against it.
type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) List(ctx context.Context, d query.Descriptor) ([]model.Order, int, error) {
	return listResult[model.Order](m.Called(ctx, d))
}

func (m *MockOrderStore) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return oneResult[model.Order](m.Called(ctx, id))
}

func (m *MockOrderStore) InsertHeader(ctx context.Context, o *model.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderStore) InsertItem(ctx context.Context, it *model.OrderItem) error {
	return m.Called(ctx, it).Error(0)
}

func (m *MockOrderStore) UpdateHeader(ctx context.Context, o *model.Order) (*model.Order, error) {
	return oneResult[model.Order](m.Called(ctx, o))
}

func (m *MockOrderStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderStore) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	args := m.Called(ctx, customerID)
	return args.Int(0), args.Error(1)
}

type MockCustomerStore struct {
	mock.Mock
}

func (m *MockCustomerStore) List(ctx context.Context, d query.Descriptor) ([]model.Customer, int, error) {
	return listResult[model.Customer](m.Called(ctx, d))
}

func (m *MockCustomerStore) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return oneResult[model.Customer](m.Called(ctx, id))
}

func (m *MockCustomerStore) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return oneResult[model.Customer](m.Called(ctx, email))
}

func (m *MockCustomerStore) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	return oneResult[model.Customer](m.Called(ctx, c))
}

func (m *MockCustomerStore) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	return oneResult[model.Customer](m.Called(ctx, c))
}

func (m *MockCustomerStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerStore) RefreshStats(ctx context.Context, id string) (*model.Customer, error) {
	return oneResult[model.Customer](m.Called(ctx, id))
}

type MockAdminUserStore struct {
	mock.Mock
}

func (m *MockAdminUserStore) List(ctx context.Context, d query.Descriptor) ([]model.AdminUser, int, error) {
	return listResult[model.AdminUser](m.Called(ctx, d))
}

func (m *MockAdminUserStore) FindByID(ctx context.Context, id string) (*model.AdminUser, error) {
	return oneResult[model.AdminUser](m.Called(ctx, id))
}

func (m *MockAdminUserStore) FindByUserID(ctx context.Context, userID string) (*model.AdminUser, error) {
	return oneResult[model.AdminUser](m.Called(ctx, userID))
}

func (m *MockAdminUserStore) Create(ctx context.Context, a *model.AdminUser) (*model.AdminUser, error) {
	return oneResult[model.AdminUser](m.Called(ctx, a))
}

func (m *MockAdminUserStore) Update(ctx context.Context, a *model.AdminUser) (*model.AdminUser, error) {
	return oneResult[model.AdminUser](m.Called(ctx, a))
}

func (m *MockAdminUserStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) List(ctx context.Context, d query.Descriptor) ([]model.CartItem, int, error) {
	return listResult[model.CartItem](m.Called(ctx, d))
}

func (m *MockCartStore) FindByID(ctx context.Context, id string) (*model.CartItem, error) {
	return oneResult[model.CartItem](m.Called(ctx, id))
}

func (m *MockCartStore) FindByCustomerProduct(ctx context.Context, customerID, productID string) (*model.CartItem, error) {
	return oneResult[model.CartItem](m.Called(ctx, customerID, productID))
}

func (m *MockCartStore) Create(ctx context.Context, c *model.CartItem) (*model.CartItem, error) {
	return oneResult[model.CartItem](m.Called(ctx, c))
}

func (m *MockCartStore) Update(ctx context.Context, c *model.CartItem) (*model.CartItem, error) {
	return oneResult[model.CartItem](m.Called(ctx, c))
}

func (m *MockCartStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCartStore) DeleteByCustomer(ctx context.Context, customerID string) error {
	return m.Called(ctx, customerID).Error(0)
}

type MockMetricStore struct {
	mock.Mock
}

func (m *MockMetricStore) List(ctx context.Context, d query.Descriptor) ([]model.AnalyticsMetric, int, error) {
	return listResult[model.AnalyticsMetric](m.Called(ctx, d))
}

func (m *MockMetricStore) FindByID(ctx context.Context, id string) (*model.AnalyticsMetric, error) {
	return oneResult[model.AnalyticsMetric](m.Called(ctx, id))
}

func (m *MockMetricStore) Create(ctx context.Context, mt *model.AnalyticsMetric) (*model.AnalyticsMetric, error) {
	return oneResult[model.AnalyticsMetric](m.Called(ctx, mt))
}
