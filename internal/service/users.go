package service

import (
	"context"
	"time"

	"github.com/dmunozv/crudhub/internal/authz"
	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/security"
)

type UsersService struct {
	users UserStore
}

func NewUsersService(users UserStore) *UsersService {
	return &UsersService{users: users}
}

// List returns every user. The transport restricts this to admins; the
// service does not repeat the check.
func (s *UsersService) List(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

// CurrentUser resolves the authenticated principal's email to a full user
// record. A miss means the session references a user that no longer
// exists and surfaces as user.ErrNotFound.
func (s *UsersService) CurrentUser(ctx context.Context, principalEmail string) (user.User, error) {
	return s.users.GetByEmail(ctx, principalEmail)
}

func (s *UsersService) GetByID(ctx context.Context, current user.User, id int64) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)

	if err != nil {
		return user.User{}, err
	}

	if !authz.CanAccessUser(current, u) {
		return user.User{}, authz.ErrForbidden
	}

	return u, nil
}

// Create registers a new user. The password is hashed exactly once and
// the role always starts as USER.
func (s *UsersService) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	if err := validateRequest(req); err != nil {
		return user.User{}, err
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()

	u := user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.users.Create(ctx, u)
}

// Update overwrites name and email, and re-hashes the password only when
// the request carries a new one. Fetch, authorize and save run inside one
// transaction with a row lock.
func (s *UsersService) Update(ctx context.Context, current user.User, id int64, req user.UpdateUserRequest) (user.User, error) {
	if err := validateRequest(req); err != nil {
		return user.User{}, err
	}

	tx, err := s.users.BeginTx(ctx)

	if err != nil {
		return user.User{}, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	u, err := s.users.GetForUpdate(ctx, tx, id)

	if err != nil {
		return user.User{}, err
	}

	if !authz.CanAccessUser(current, u) {
		return user.User{}, authz.ErrForbidden
	}

	u.Name = req.Name
	u.Email = req.Email

	if req.Password != "" {
		hash, err := security.HashPassword(req.Password)

		if err != nil {
			return user.User{}, err
		}

		u.PasswordHash = hash
	}

	u.UpdatedAt = time.Now().UTC()

	updated, err := s.users.UpdateTx(ctx, tx, u)

	if err != nil {
		return user.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return user.User{}, err
	}

	return updated, nil
}

// Delete removes the user; the store cascades deletion to owned products.
func (s *UsersService) Delete(ctx context.Context, current user.User, id int64) error {
	tx, err := s.users.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	u, err := s.users.GetForUpdate(ctx, tx, id)

	if err != nil {
		return err
	}

	if !authz.CanAccessUser(current, u) {
		return authz.ErrForbidden
	}

	if err := s.users.DeleteTx(ctx, tx, u.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
