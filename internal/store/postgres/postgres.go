// Package postgres is the live backend: store implementations over
// database/sql with the pgx driver. Queries are parameterized and built from
// a query.Descriptor through per-table column maps, so only whitelisted
// column expressions ever reach the SQL text.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"storefront/internal/apperr"
	"storefront/internal/query"
	"storefront/internal/store"
)

// NewStores returns the live store set backed by db.
func NewStores(db *sql.DB) *store.Set {
	return &store.Set{
		Name:      "live",
		Products:  NewProductPostgres(db),
		Orders:    NewOrderPostgres(db),
		Customers: NewCustomerPostgres(db),
		Admins:    NewAdminUserPostgres(db),
		Cart:      NewCartPostgres(db),
		Metrics:   NewMetricPostgres(db),
	}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// table describes how a descriptor maps onto one relation.
type table struct {
	name    string
	entity  string
	columns string
	exprs   map[string]string
}

func (t table) expr(field string) (string, error) {
	e, ok := t.exprs[field]
	if !ok {
		return "", apperr.Validation("unknown field %q", field)
	}
	return e, nil
}

// where renders filters, search and ranges. Placeholders are numbered from 1.
func (t table) where(d query.Descriptor) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	filters := d.Filters()
	for _, f := range d.FilterKeys() {
		e, err := t.expr(f)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, e+" = "+bind(filters[f]))
	}

	if text := d.SearchText(); text != "" && len(d.SearchFields()) > 0 {
		p := bind("%" + escapeLike(text) + "%")
		parts := make([]string, 0, len(d.SearchFields()))
		for _, f := range d.SearchFields() {
			e, err := t.expr(f)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, e+" ILIKE "+p)
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	ranges := d.Ranges()
	for _, f := range d.RangeKeys() {
		e, err := t.expr(f)
		if err != nil {
			return "", nil, err
		}
		r := ranges[f]
		if r.Min != nil {
			conds = append(conds, e+" >= "+bind(*r.Min))
		}
		if r.Max != nil {
			conds = append(conds, e+" <= "+bind(*r.Max))
		}
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// orderBy sorts by the descriptor field and breaks ties by id ascending.
func (t table) orderBy(d query.Descriptor) string {
	e, ok := t.exprs[d.SortField()]
	if !ok || d.SortField() == "id" {
		return " ORDER BY id ASC"
	}
	dir := "ASC"
	if d.SortDirection() == query.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", e, dir)
}

// list runs the count and page queries for d and scans the page with scan.
func list[T any](ctx context.Context, q querier, t table, d query.Descriptor, scan func(scanner) (T, error)) ([]T, int, error) {
	where, args, err := t.where(d)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name+where, args...).Scan(&total); err != nil {
		return nil, 0, classify(t.entity, err)
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		t.columns, t.name, where, t.orderBy(d), len(args)+1, len(args)+2)
	rows, err := q.QueryContext(ctx, stmt, append(args, d.PageSize(), d.Offset())...)
	if err != nil {
		return nil, 0, classify(t.entity, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, 0, classify(t.entity, err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(t.entity, err)
	}
	return items, total, nil
}

// exec runs a single-row write and reports a missing row as not found.
func exec(ctx context.Context, q querier, entity, stmt string, args ...any) error {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return classify(entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(entity, err)
	}
	if n == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// uniqueFields maps unique constraint names to the field reported on conflict.
var uniqueFields = map[string]string{
	"products_slug_key":                     "slug",
	"customers_email_key":                   "email",
	"orders_order_number_key":               "order_number",
	"admin_users_user_id_key":               "user_id",
	"cart_items_customer_id_product_id_key": "cart item",
}

// classify translates driver errors into apperr kinds.
func classify(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if f, ok := uniqueFields[pgErr.ConstraintName]; ok {
				return apperr.Conflict(f)
			}
			return apperr.Conflict("id")
		case "23503":
			return store.ReferenceViolation(pgErr.ConstraintName)
		case "23502", "23514", "22001", "22003", "22P02":
			return apperr.Validation("%s", pgErr.Message)
		}
	}
	return apperr.Backend(err)
}

// jsonColumn scans a json/jsonb column into Target.
type jsonColumn struct {
	Target any
}

func (j jsonColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, j.Target)
	case string:
		return json.Unmarshal([]byte(v), j.Target)
	default:
		return fmt.Errorf("jsonColumn: unsupported source %T", src)
	}
}

// jsonArg encodes v as a json parameter.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", apperr.Validation("invalid json: %v", err)
	}
	return string(b), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
