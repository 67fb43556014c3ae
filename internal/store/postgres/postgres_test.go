package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

func ptr[T any](v T) *T { return &v }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var productCols = []string{"id", "name", "slug", "description", "price", "stock_quantity", "category", "is_active", "tags", "image_key", "created_at", "updated_at"}

func TestTableWhere(t *testing.T) {
	d := query.New(
		query.WithFilter("is_active", true),
		query.WithFilter("category", "footwear"),
		query.WithSearch("boot", "name", "description"),
		query.WithRange("price", query.Range{Max: ptr(120.0)}),
	)

	where, args, err := productTable.where(d)

	require.NoError(t, err)
	assert.Equal(t, " WHERE category = $1 AND is_active = $2 AND (name ILIKE $3 OR description ILIKE $3) AND price <= $4", where)
	assert.Equal(t, []any{"footwear", true, "%boot%", 120.0}, args)
}

func TestTableWhere_Empty(t *testing.T) {
	where, args, err := productTable.where(query.New())
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestTableWhere_UnknownField(t *testing.T) {
	_, _, err := productTable.where(query.New(query.WithFilter("price; DROP TABLE products", 1)))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestTableOrderBy(t *testing.T) {
	assert.Equal(t, " ORDER BY price DESC, id ASC", productTable.orderBy(query.New(query.WithSort("price", query.Desc))))
	assert.Equal(t, " ORDER BY shipping_address->>'name' ASC, id ASC", orderTable.orderBy(query.New(query.WithSort("shipping_name", query.Asc))))
	assert.Equal(t, " ORDER BY id ASC", productTable.orderBy(query.New()))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

func TestSchemasAreMapped(t *testing.T) {
	cases := []struct {
		schema query.Schema
		table  table
	}{
		{store.ProductSchema, productTable},
		{store.OrderSchema, orderTable},
		{store.CustomerSchema, customerTable},
		{store.AdminUserSchema, adminTable},
		{store.CartSchema, cartTable},
		{store.MetricSchema, metricTable},
	}
	for _, c := range cases {
		t.Run(c.table.name, func(t *testing.T) {
			var fields []string
			fields = append(fields, c.schema.Equality...)
			fields = append(fields, c.schema.Search...)
			fields = append(fields, c.schema.Range...)
			fields = append(fields, c.schema.Sort...)
			fields = append(fields, c.schema.DefaultSort)
			for _, f := range fields {
				assert.Contains(t, c.table.exprs, f)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify("product", nil))
	assert.True(t, apperr.Is(classify("product", sql.ErrNoRows), apperr.KindNotFound))

	dup := classify("product", &pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key"})
	assert.True(t, apperr.Is(dup, apperr.KindConflict))
	assert.Equal(t, "duplicate", dup.Error())

	fk := classify("order", &pgconn.PgError{Code: "23503", ConstraintName: store.FKOrderCustomer})
	assert.True(t, apperr.Is(fk, apperr.KindValidation))
	assert.Contains(t, fk.Error(), store.FKOrderCustomer)

	bad := classify("order", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
	assert.True(t, apperr.Is(bad, apperr.KindValidation))

	down := classify("order", errors.New("connection refused"))
	assert.True(t, apperr.Is(down, apperr.KindBackend))
	assert.True(t, apperr.Retryable(down))

	assert.True(t, apperr.Is(classify("order", context.DeadlineExceeded), apperr.KindBackend))
}

func TestProductPostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE category = \$1`).
		WithArgs("footwear").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE category = \$1 ORDER BY price DESC, id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("footwear", 2, 2).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "Canvas Sneakers", "canvas-sneakers", "Low top", 49.5, 60, "footwear", true, "{casual,canvas}", "", now, now))

	d := query.New(
		query.WithFilter("category", "footwear"),
		query.WithSort("price", query.Desc),
		query.WithPage(2, 2),
	)
	items, total, err := repo.List(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "canvas-sneakers", items[0].Slug)
	assert.Equal(t, []string{"casual", "canvas"}, items[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_List_CountFails(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("connection reset"))

	_, _, err := repo.List(context.Background(), query.New())
	assert.True(t, apperr.Is(err, apperr.KindBackend))
}

func TestProductPostgres_FindBySlug(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM products WHERE slug = \$1`).
			WithArgs("wool-beanie").
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow("p9", "Wool Beanie", "wool-beanie", "Ribbed", 19.0, 44, "accessories", true, "{}", "", now, now))

		p, err := repo.FindBySlug(ctx, "wool-beanie")

		require.NoError(t, err)
		assert.Equal(t, "p9", p.ID)
		assert.Equal(t, []string{}, p.Tags)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM products WHERE slug = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		p, err := repo.FindBySlug(ctx, "missing")

		assert.Nil(t, p)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestProductPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	p := &model.Product{ID: "p1", Name: "Tee", Slug: "tee", Price: 10, StockQuantity: 1, Category: "tops", IsActive: true, CreatedAt: now, UpdatedAt: now}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO products").
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow("p1", "Tee", "tee", "", 10.0, 1, "tops", true, "{}", "", now, now))

		out, err := repo.Create(ctx, p)

		require.NoError(t, err)
		assert.Equal(t, "tee", out.Slug)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO products").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key"})

		out, err := repo.Create(ctx, p)

		assert.Nil(t, out)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "p1"))

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, apperr.Is(repo.Delete(ctx, "gone"), apperr.KindNotFound))

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs("p2").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: store.FKItemProduct})
	err := repo.Delete(ctx, "p2")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), store.FKItemProduct)

	assert.NoError(t, mock.ExpectationsWereMet())
}

var (
	orderCols = []string{"id", "order_number", "customer_id", "status", "total", "shipping_address", "notes", "created_at", "updated_at"}
	itemCols  = []string{"id", "order_id", "product_id", "product_name", "quantity", "unit_price"}
)

func TestOrderPostgres_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \$1`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow("o1", "ORD-1001", "c1", "delivered", 69.97, []byte(`{"name":"Ava Chen","line1":"1 Main St","city":"Portland","postal_code":"97201","country":"US"}`), "", now, now))
	mock.ExpectQuery(`SELECT (.+) FROM order_items WHERE order_id = ANY`).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("i1", "o1", "p1", "Classic Cotton Tee", 2, 24.99).
			AddRow("i2", "o1", "p9", "Wool Beanie", 1, 19.99))

	o, err := repo.FindByID(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatus("delivered"), o.Status)
	assert.Equal(t, "Ava Chen", o.ShippingAddress.Name)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "i1", o.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_ListEmptyPageSkipsItems(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderPostgres(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE status = \$1`).
		WithArgs("shipped").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE status = \$1`).
		WillReturnRows(sqlmock.NewRows(orderCols))

	items, total, err := repo.List(context.Background(), query.New(query.WithFilter("status", "shipped")))

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_CreateAtomic(t *testing.T) {
	now := time.Now().UTC()
	order := func() *model.Order {
		return &model.Order{
			ID: "o9", OrderNumber: "ORD-2001", CustomerID: "c1", Status: model.OrderPending,
			Items: []model.OrderItem{
				{ID: "i1", OrderID: "o9", ProductID: "p1", ProductName: "Tee", Quantity: 1, UnitPrice: 10},
				{ID: "i2", OrderID: "o9", ProductID: "p2", ProductName: "Cap", Quantity: 2, UnitPrice: 5},
			},
			Total: 20, CreatedAt: now, UpdatedAt: now,
		}
	}

	t.Run("commits all rows", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderPostgres(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").WithArgs("i1", "o9", "p1", "Tee", 1, 10.0).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").WithArgs("i2", "o9", "p2", "Cap", 2, 5.0).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		out, err := repo.CreateAtomic(context.Background(), order())

		require.NoError(t, err)
		assert.Len(t, out.Items, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on item failure", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewOrderPostgres(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: store.FKItemProduct})
		mock.ExpectRollback()

		out, err := repo.CreateAtomic(context.Background(), order())

		assert.Nil(t, out)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderPostgres_UpdateHeaderMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderPostgres(db)

	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 0))

	out, err := repo.UpdateHeader(context.Background(), &model.Order{ID: "nope", Status: model.OrderCancelled})

	assert.Nil(t, out)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCustomerPostgres_RefreshStats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE customers c`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "phone", "is_active", "total_orders", "total_spent", "created_at", "updated_at"}).
			AddRow("c1", "ava@example.com", "Ava", "Chen", "", true, 2, 188.93, now, now))

	c, err := repo.RefreshStats(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, 2, c.TotalOrders)
	assert.Equal(t, 188.93, c.TotalSpent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUserPostgres_FindByUserID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminUserPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM admin_users WHERE user_id = \$1`).
		WithArgs("idp|staff-002").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "role", "permissions", "is_active", "created_at", "updated_at"}).
			AddRow("a2", "idp|staff-002", "staff@example.com", "staff", "{orders:read,customers:read}", true, now, now))

	a, err := repo.FindByUserID(context.Background(), "idp|staff-002")

	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, a.Role)
	assert.True(t, a.Can("orders:read"))
	assert.False(t, a.Can("orders:write"))
}

func TestCartPostgres_DeleteByCustomer(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartPostgres(db)

	mock.ExpectExec(`DELETE FROM cart_items WHERE customer_id = \$1`).
		WithArgs("c5").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteByCustomer(context.Background(), "c5"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMetricPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO analytics_metrics").
		WithArgs("m1", "page_view", 1.0, `{"path":"/"}`, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "value", "context", "recorded_at"}).
			AddRow("m1", "page_view", 1.0, []byte(`{"path":"/"}`), now))

	m, err := repo.Create(context.Background(), &model.AnalyticsMetric{
		ID: "m1", Name: "page_view", Value: 1, Context: map[string]any{"path": "/"}, RecordedAt: now,
	})

	require.NoError(t, err)
	assert.Equal(t, "/", m.Context["path"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStores(t *testing.T) {
	db, _ := newMock(t)
	set := NewStores(db)
	assert.Equal(t, "live", set.Name)
	_, atomic := set.Orders.(store.AtomicOrderCreator)
	assert.True(t, atomic)
}
