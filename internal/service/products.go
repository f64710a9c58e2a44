package service

import (
	"context"
	"time"

	"github.com/dmunozv/crudhub/internal/authz"
	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
)

type ProductsService struct {
	products ProductStore
	users    UserStore
}

func NewProductsService(products ProductStore, users UserStore) *ProductsService {
	return &ProductsService{
		products: products,
		users:    users,
	}
}

// List returns every product. Admin-only at the transport boundary.
func (s *ProductsService) List(ctx context.Context) ([]product.Product, error) {
	return s.products.List(ctx)
}

// ListMine returns the products owned by current, in store order.
func (s *ProductsService) ListMine(ctx context.Context, current user.User) ([]product.Product, error) {
	return s.products.ListByOwner(ctx, current.ID)
}

func (s *ProductsService) GetByID(ctx context.Context, current user.User, id int64) (product.Product, error) {
	p, err := s.products.GetByID(ctx, id)

	if err != nil {
		return product.Product{}, err
	}

	if !authz.CanAccessProduct(current, p) {
		return product.Product{}, authz.ErrForbidden
	}

	return p, nil
}

// Create persists a new product. Any authenticated caller may create one;
// a named owner must exist or the call fails with user.ErrNotFound before
// anything is persisted.
func (s *ProductsService) Create(ctx context.Context, req product.CreateProductRequest) (product.Product, error) {
	if err := validateRequest(req); err != nil {
		return product.Product{}, err
	}

	now := time.Now().UTC()

	p := product.Product{
		Name:      req.Name,
		Price:     *req.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.OwnerID != nil {
		owner, err := s.users.GetByID(ctx, *req.OwnerID)

		if err != nil {
			return product.Product{}, err
		}

		p.OwnerID = &owner.ID
		p.OwnerName = owner.Name
	}

	return s.products.Create(ctx, p)
}

// Update overwrites name and price unconditionally and reassigns the
// owner when the request names one. Fetch, authorize and save run inside
// one transaction with a row lock.
func (s *ProductsService) Update(ctx context.Context, current user.User, id int64, req product.UpdateProductRequest) (product.Product, error) {
	if err := validateRequest(req); err != nil {
		return product.Product{}, err
	}

	tx, err := s.products.BeginTx(ctx)

	if err != nil {
		return product.Product{}, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.products.GetForUpdate(ctx, tx, id)

	if err != nil {
		return product.Product{}, err
	}

	if !authz.CanAccessProduct(current, p) {
		return product.Product{}, authz.ErrForbidden
	}

	p.Name = req.Name
	p.Price = *req.Price

	if req.OwnerID != nil {
		owner, err := s.users.GetByID(ctx, *req.OwnerID)

		if err != nil {
			return product.Product{}, err
		}

		p.OwnerID = &owner.ID
		p.OwnerName = owner.Name
	}

	p.UpdatedAt = time.Now().UTC()

	updated, err := s.products.UpdateTx(ctx, tx, p)

	if err != nil {
		return product.Product{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return product.Product{}, err
	}

	return updated, nil
}

func (s *ProductsService) Delete(ctx context.Context, current user.User, id int64) error {
	tx, err := s.products.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.products.GetForUpdate(ctx, tx, id)

	if err != nil {
		return err
	}

	if !authz.CanAccessProduct(current, p) {
		return authz.ErrForbidden
	}

	if err := s.products.DeleteTx(ctx, tx, p.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
