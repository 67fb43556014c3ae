package store

import "storefront/internal/query"

// Query schemas shared by both backends. Field names are the live column
// names; the memory store maps the same names onto struct fields.
var (
	ProductSchema = query.Schema{
		Equality:         []string{"id", "slug", "category", "is_active"},
		Search:           []string{"name", "description", "slug", "category"},
		Range:            []string{"price", "stock_quantity"},
		Sort:             []string{"name", "price", "stock_quantity", "created_at", "updated_at"},
		IDs:              []string{"id"},
		DefaultSort:      "created_at",
		DefaultDirection: query.Desc,
	}

	OrderSchema = query.Schema{
		Equality:         []string{"id", "customer_id", "status", "order_number"},
		Search:           []string{"order_number", "shipping_name", "notes"},
		Range:            []string{"total"},
		Sort:             []string{"order_number", "total", "status", "created_at", "updated_at"},
		IDs:              []string{"id", "customer_id"},
		DefaultSort:      "created_at",
		DefaultDirection: query.Desc,
	}

	CustomerSchema = query.Schema{
		Equality:         []string{"id", "email", "is_active"},
		Search:           []string{"email", "first_name", "last_name", "phone"},
		Range:            []string{"total_orders", "total_spent"},
		Sort:             []string{"email", "last_name", "total_orders", "total_spent", "created_at"},
		IDs:              []string{"id"},
		DefaultSort:      "created_at",
		DefaultDirection: query.Desc,
	}

	AdminUserSchema = query.Schema{
		Equality:         []string{"id", "user_id", "role", "is_active"},
		Search:           []string{"email", "user_id"},
		Sort:             []string{"email", "role", "created_at"},
		IDs:              []string{"id"},
		DefaultSort:      "created_at",
		DefaultDirection: query.Asc,
	}

	CartSchema = query.Schema{
		Equality:         []string{"id", "customer_id", "product_id"},
		Range:            []string{"quantity", "price"},
		Sort:             []string{"quantity", "price", "created_at"},
		IDs:              []string{"id", "customer_id", "product_id"},
		DefaultSort:      "created_at",
		DefaultDirection: query.Asc,
	}

	MetricSchema = query.Schema{
		Equality:         []string{"id", "name"},
		Search:           []string{"name"},
		Range:            []string{"value"},
		Sort:             []string{"name", "value", "recorded_at"},
		IDs:              []string{"id"},
		DefaultSort:      "recorded_at",
		DefaultDirection: query.Desc,
	}
)
