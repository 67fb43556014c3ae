package memory

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var adminFields = fields[model.AdminUser]{
	"id":         func(a model.AdminUser) any { return a.ID },
	"user_id":    func(a model.AdminUser) any { return a.UserID },
	"email":      func(a model.AdminUser) any { return a.Email },
	"role":       func(a model.AdminUser) any { return string(a.Role) },
	"is_active":  func(a model.AdminUser) any { return a.IsActive },
	"created_at": func(a model.AdminUser) any { return a.CreatedAt },
}

// AdminUserStore is the fallback store.AdminUserStore.
type AdminUserStore struct {
	ds *Dataset
}

var _ store.AdminUserStore = (*AdminUserStore)(nil)

func (s *AdminUserStore) List(_ context.Context, d query.Descriptor) ([]model.AdminUser, int, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	page, total := apply(s.ds.admins, d, adminFields, func(a model.AdminUser) string { return a.ID })
	out := make([]model.AdminUser, len(page))
	for i, a := range page {
		out[i] = a.Clone()
	}
	return out, total, nil
}

func (s *AdminUserStore) FindByID(_ context.Context, id string) (*model.AdminUser, error) {
	return s.find(func(a model.AdminUser) bool { return a.ID == id })
}

func (s *AdminUserStore) FindByUserID(_ context.Context, userID string) (*model.AdminUser, error) {
	return s.find(func(a model.AdminUser) bool { return a.UserID == userID })
}

func (s *AdminUserStore) Create(_ context.Context, a *model.AdminUser) (*model.AdminUser, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	for _, existing := range s.ds.admins {
		if existing.ID == a.ID {
			return nil, apperr.Conflict("id")
		}
		if existing.UserID == a.UserID {
			return nil, apperr.Conflict("user_id")
		}
	}
	s.ds.admins = append(s.ds.admins, a.Clone())
	out := a.Clone()
	return &out, nil
}

func (s *AdminUserStore) Update(_ context.Context, a *model.AdminUser) (*model.AdminUser, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	for i := range s.ds.admins {
		if s.ds.admins[i].ID == a.ID {
			s.ds.admins[i] = a.Clone()
			out := a.Clone()
			return &out, nil
		}
	}
	return nil, apperr.NotFound("admin user")
}

func (s *AdminUserStore) Delete(_ context.Context, id string) error {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	for i := range s.ds.admins {
		if s.ds.admins[i].ID == id {
			s.ds.admins = append(s.ds.admins[:i], s.ds.admins[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("admin user")
}

func (s *AdminUserStore) find(match func(model.AdminUser) bool) (*model.AdminUser, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	for _, a := range s.ds.admins {
		if match(a) {
			c := a.Clone()
			return &c, nil
		}
	}
	return nil, apperr.NotFound("admin user")
}
