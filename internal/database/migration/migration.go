package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

// Text columns that are sorted or searched use the "C" collation so ordering
// is plain byte order, the same order the fallback dataset produces.
var steps = []migrationStep{
	{
		Name: "create_table_products",
		SQL: `CREATE TABLE IF NOT EXISTS products (
  id             UUID          PRIMARY KEY,
  name           TEXT          COLLATE "C" NOT NULL,
  slug           TEXT          COLLATE "C" NOT NULL,
  description    TEXT          COLLATE "C" NOT NULL DEFAULT '',
  price          NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  stock_quantity INTEGER       NOT NULL CHECK (stock_quantity >= 0),
  category       TEXT          COLLATE "C" NOT NULL,
  is_active      BOOLEAN       NOT NULL DEFAULT true,
  tags           TEXT[]        NOT NULL DEFAULT '{}',
  image_key      TEXT          NOT NULL DEFAULT '',
  created_at     TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ   NOT NULL DEFAULT now(),
  CONSTRAINT products_slug_key UNIQUE (slug)
);`,
	},
	{
		Name: "create_table_customers",
		SQL: `CREATE TABLE IF NOT EXISTS customers (
  id           UUID          PRIMARY KEY,
  email        TEXT          COLLATE "C" NOT NULL,
  first_name   TEXT          COLLATE "C" NOT NULL,
  last_name    TEXT          COLLATE "C" NOT NULL,
  phone        TEXT          COLLATE "C" NOT NULL DEFAULT '',
  is_active    BOOLEAN       NOT NULL DEFAULT true,
  total_orders INTEGER       NOT NULL DEFAULT 0,
  total_spent  NUMERIC(12,2) NOT NULL DEFAULT 0,
  created_at   TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ   NOT NULL DEFAULT now(),
  CONSTRAINT customers_email_key UNIQUE (email)
);`,
	},
	{
		Name: "create_table_orders",
		SQL: `CREATE TABLE IF NOT EXISTS orders (
  id               UUID          PRIMARY KEY,
  order_number     TEXT          COLLATE "C" NOT NULL,
  customer_id      UUID          NOT NULL,
  status           TEXT          COLLATE "C" NOT NULL
                   CHECK (status IN ('pending', 'processing', 'shipped', 'delivered', 'cancelled', 'partial')),
  total            NUMERIC(12,2) NOT NULL CHECK (total >= 0),
  shipping_address JSONB         NOT NULL,
  notes            TEXT          COLLATE "C" NOT NULL DEFAULT '',
  created_at       TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ   NOT NULL DEFAULT now(),
  CONSTRAINT orders_order_number_key UNIQUE (order_number),
  CONSTRAINT orders_customer_id_fkey FOREIGN KEY (customer_id) REFERENCES customers (id)
);`,
	},
	{
		Name: "create_table_order_items",
		SQL: `CREATE TABLE IF NOT EXISTS order_items (
  id           UUID          PRIMARY KEY,
  seq          BIGSERIAL     NOT NULL,
  order_id     UUID          NOT NULL,
  product_id   UUID          NOT NULL,
  product_name TEXT          NOT NULL,
  quantity     INTEGER       NOT NULL CHECK (quantity > 0),
  unit_price   NUMERIC(12,2) NOT NULL CHECK (unit_price >= 0),
  CONSTRAINT order_items_order_id_fkey FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE,
  CONSTRAINT order_items_product_id_fkey FOREIGN KEY (product_id) REFERENCES products (id)
);`,
	},
	{
		Name: "create_table_admin_users",
		SQL: `CREATE TABLE IF NOT EXISTS admin_users (
  id          UUID        PRIMARY KEY,
  user_id     TEXT        COLLATE "C" NOT NULL,
  email       TEXT        COLLATE "C" NOT NULL,
  role        TEXT        COLLATE "C" NOT NULL CHECK (role IN ('super_admin', 'admin', 'manager', 'staff')),
  permissions TEXT[]      NOT NULL DEFAULT '{}',
  is_active   BOOLEAN     NOT NULL DEFAULT true,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT admin_users_user_id_key UNIQUE (user_id)
);`,
	},
	{
		Name: "create_table_cart_items",
		SQL: `CREATE TABLE IF NOT EXISTS cart_items (
  id          UUID          PRIMARY KEY,
  customer_id UUID          NOT NULL,
  product_id  UUID          NOT NULL,
  quantity    INTEGER       NOT NULL CHECK (quantity > 0),
  price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  created_at  TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ   NOT NULL DEFAULT now(),
  CONSTRAINT cart_items_customer_id_product_id_key UNIQUE (customer_id, product_id),
  CONSTRAINT cart_items_customer_id_fkey FOREIGN KEY (customer_id) REFERENCES customers (id) ON DELETE CASCADE,
  CONSTRAINT cart_items_product_id_fkey FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
);`,
	},
	{
		Name: "create_table_analytics_metrics",
		SQL: `CREATE TABLE IF NOT EXISTS analytics_metrics (
  id          UUID             PRIMARY KEY,
  name        TEXT             COLLATE "C" NOT NULL,
  value       DOUBLE PRECISION NOT NULL,
  context     JSONB            NOT NULL DEFAULT '{}',
  recorded_at TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_products_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_category ON products (category, is_active);`,
	},
	{
		Name: "create_index_orders_customer_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders (customer_id);`,
	},
	{
		Name: "create_index_orders_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at);`,
	},
	{
		Name: "create_index_order_items_order_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id, seq);`,
	},
	{
		Name: "create_index_metrics_name_recorded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_metrics_name_recorded_at ON analytics_metrics (name, recorded_at);`,
	},
}

// sentinel is the last table created; its presence means the schema is in place.
const sentinel = "public.analytics_metrics"

// EnsureMigrated checks if the storefront schema exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()

	logging.JSON(map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinel).Scan(&exists)
	if err != nil {
		logging.JSON(map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logging.JSON(map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logging.JSON(map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
		"steps":     len(steps),
	})

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logging.JSON(map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logging.JSON(map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logging.JSON(map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}
