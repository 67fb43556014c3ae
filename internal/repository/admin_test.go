package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/query"
)

func TestAdminUsers(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	owner := r.Admins.GetByUserID(ctx, "idp|admin-001")
	require.True(t, owner.Success)
	require.NotNil(t, owner.Data)
	assert.Equal(t, model.RoleSuperAdmin, owner.Data.Role)

	unknown := r.Admins.GetByUserID(ctx, "idp|nobody")
	require.True(t, unknown.Success)
	assert.Nil(t, unknown.Data)

	created := r.Admins.Create(ctx, model.AdminUserInput{
		UserID:      "idp|manager-004",
		Email:       "Ops@Example.com",
		Role:        model.RoleManager,
		Permissions: []string{"orders:read", "orders:read", "orders:write"},
	})
	require.True(t, created.Success, created.Error)
	assert.Equal(t, "ops@example.com", created.Data.Email)
	assert.Equal(t, []string{"orders:read", "orders:write"}, created.Data.Permissions)

	dup := r.Admins.Create(ctx, model.AdminUserInput{UserID: "idp|manager-004", Email: "x@example.com", Role: model.RoleStaff})
	assert.Equal(t, apperr.KindConflict, dup.Kind)

	badRole := r.Admins.Create(ctx, model.AdminUserInput{UserID: "idp|x", Email: "x@example.com", Role: "root"})
	assert.Equal(t, apperr.KindValidation, badRole.Kind)

	off := r.Admins.Update(ctx, created.Data.ID, model.AdminUserPatch{IsActive: ptr(false)})
	require.True(t, off.Success)
	assert.False(t, off.Data.IsActive)

	require.True(t, r.Admins.Delete(ctx, created.Data.ID).Success)
	assert.Equal(t, apperr.KindNotFound, r.Admins.Delete(ctx, created.Data.ID).Kind)
}

func TestAnalyticsAppendOnly(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	rec := r.Analytics.Record(ctx, "page_view", 1, map[string]any{"path": "/products"})
	require.True(t, rec.Success, rec.Error)
	assert.Equal(t, fixedNow, rec.Data.RecordedAt)

	views := r.Analytics.GetAll(ctx, query.New(query.WithFilter("name", "page_view")))
	require.True(t, views.Success)
	assert.Equal(t, 3, views.Data.Total)

	assert.Equal(t, apperr.KindValidation, r.Analytics.Update(ctx, rec.Data.ID, model.AnalyticsMetricInput{Name: "x"}).Kind)
	assert.Equal(t, apperr.KindValidation, r.Analytics.Delete(ctx, rec.Data.ID).Kind)

	noName := r.Analytics.Create(ctx, model.AnalyticsMetricInput{Value: 3})
	assert.Equal(t, apperr.KindValidation, noName.Kind)
}
