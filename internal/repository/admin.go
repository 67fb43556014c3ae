package repository

import (
	"context"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

// AdminUserRepository manages dashboard users keyed by their external
// identity.
type AdminUserRepository struct {
	base
}

func (r *AdminUserRepository) GetAll(ctx context.Context, d query.Descriptor) envelope.Envelope[query.Page[model.AdminUser]] {
	return list(ctx, r.base, "admins.list", store.AdminUserSchema, d, func(s *store.Set) listFunc[model.AdminUser] {
		return s.Admins.List
	})
}

func (r *AdminUserRepository) GetByID(ctx context.Context, id string) envelope.Envelope[*model.AdminUser] {
	return get(ctx, r.base, "admins.get", id, func(s *store.Set) findFunc[model.AdminUser] {
		return s.Admins.FindByID
	})
}

// GetByUserID looks an admin up by identity provider subject.
func (r *AdminUserRepository) GetByUserID(ctx context.Context, userID string) envelope.Envelope[*model.AdminUser] {
	if strings.TrimSpace(userID) == "" {
		return envelope.Fail[*model.AdminUser](apperr.Validation("user_id is required"))
	}
	return run(ctx, r.base, "admins.get_by_user_id", func(ctx context.Context, s *store.Set) (*model.AdminUser, error) {
		return orNil(s.Admins.FindByUserID(ctx, userID))
	})
}

func (r *AdminUserRepository) Create(ctx context.Context, in model.AdminUserInput) envelope.Envelope[*model.AdminUser] {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return envelope.Fail[*model.AdminUser](err)
	}
	now := r.now()
	a := &model.AdminUser{
		ID:          r.newID(),
		UserID:      in.UserID,
		Email:       in.Email,
		Role:        in.Role,
		Permissions: dedupe(in.Permissions),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return run(ctx, r.base, "admins.create", func(ctx context.Context, s *store.Set) (*model.AdminUser, error) {
		if existing, err := s.Admins.FindByID(ctx, a.ID); err == nil {
			return existing, nil
		}
		_, err := s.Admins.FindByUserID(ctx, a.UserID)
		switch {
		case err == nil:
			return nil, apperr.Conflict("user_id")
		case !apperr.Is(err, apperr.KindNotFound):
			return nil, err
		}
		return s.Admins.Create(ctx, a)
	})
}

func (r *AdminUserRepository) Update(ctx context.Context, id string, patch model.AdminUserPatch) envelope.Envelope[*model.AdminUser] {
	if err := validID(id); err != nil {
		return envelope.Fail[*model.AdminUser](err)
	}
	if err := validateStruct(patch); err != nil {
		return envelope.Fail[*model.AdminUser](err)
	}
	now := r.now()
	return run(ctx, r.base, "admins.update", func(ctx context.Context, s *store.Set) (*model.AdminUser, error) {
		a, err := s.Admins.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if patch.Email != nil {
			a.Email = normalizeEmail(*patch.Email)
		}
		if patch.Role != nil {
			a.Role = *patch.Role
		}
		if patch.Permissions != nil {
			a.Permissions = dedupe(*patch.Permissions)
		}
		if patch.IsActive != nil {
			a.IsActive = *patch.IsActive
		}
		a.UpdatedAt = now
		return s.Admins.Update(ctx, a)
	})
}

func (r *AdminUserRepository) Delete(ctx context.Context, id string) envelope.Envelope[any] {
	if err := validID(id); err != nil {
		return envelope.Fail[any](err)
	}
	return run(ctx, r.base, "admins.delete", func(ctx context.Context, s *store.Set) (any, error) {
		return nil, s.Admins.Delete(ctx, id)
	})
}
