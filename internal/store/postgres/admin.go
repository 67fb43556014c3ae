package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

const adminColumns = "id, user_id, email, role, permissions::text, is_active, created_at, updated_at"

var adminTable = table{
	name:    "admin_users",
	entity:  "admin user",
	columns: adminColumns,
	exprs: map[string]string{
		"id":         "id",
		"user_id":    "user_id",
		"email":      "email",
		"role":       "role",
		"is_active":  "is_active",
		"created_at": "created_at",
		"updated_at": "updated_at",
	},
}

// AdminUserPostgres is the live store.AdminUserStore.
type AdminUserPostgres struct {
	db *sql.DB
}

// NewAdminUserPostgres creates a new AdminUserPostgres store.
func NewAdminUserPostgres(db *sql.DB) *AdminUserPostgres {
	return &AdminUserPostgres{db: db}
}

var _ store.AdminUserStore = (*AdminUserPostgres)(nil)

func scanAdmin(s scanner) (model.AdminUser, error) {
	var (
		a     model.AdminUser
		perms pq.StringArray
	)
	if err := s.Scan(&a.ID, &a.UserID, &a.Email, &a.Role, &perms, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.AdminUser{}, err
	}
	a.Permissions = nonNil(perms)
	return a, nil
}

func (r *AdminUserPostgres) List(ctx context.Context, d query.Descriptor) ([]model.AdminUser, int, error) {
	return list(ctx, r.db, adminTable, d, scanAdmin)
}

func (r *AdminUserPostgres) FindByID(ctx context.Context, id string) (*model.AdminUser, error) {
	return r.one(ctx, "SELECT "+adminColumns+" FROM admin_users WHERE id = $1", id)
}

// FindByUserID resolves the dashboard account of an external identity.
func (r *AdminUserPostgres) FindByUserID(ctx context.Context, userID string) (*model.AdminUser, error) {
	return r.one(ctx, "SELECT "+adminColumns+" FROM admin_users WHERE user_id = $1", userID)
}

func (r *AdminUserPostgres) one(ctx context.Context, q string, args ...any) (*model.AdminUser, error) {
	a, err := scanAdmin(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, classify("admin user", err)
	}
	return &a, nil
}

func (r *AdminUserPostgres) Create(ctx context.Context, a *model.AdminUser) (*model.AdminUser, error) {
	return r.one(ctx, `
		INSERT INTO admin_users (id, user_id, email, role, permissions, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+adminColumns,
		a.ID, a.UserID, a.Email, string(a.Role), pq.Array(nonNil(a.Permissions)), a.IsActive, a.CreatedAt, a.UpdatedAt,
	)
}

func (r *AdminUserPostgres) Update(ctx context.Context, a *model.AdminUser) (*model.AdminUser, error) {
	return r.one(ctx, `
		UPDATE admin_users
		SET email = $2, role = $3, permissions = $4, is_active = $5, updated_at = $6
		WHERE id = $1
		RETURNING `+adminColumns,
		a.ID, a.Email, string(a.Role), pq.Array(nonNil(a.Permissions)), a.IsActive, a.UpdatedAt,
	)
}

func (r *AdminUserPostgres) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.db, "admin user", `DELETE FROM admin_users WHERE id = $1`, id)
}
