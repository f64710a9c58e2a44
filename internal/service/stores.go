package service

import (
	"context"

	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
)

// Tx is the slice of a store transaction the services need. pgx.Tx
// satisfies it directly; the memory store ships its own implementation.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UserStore is the persistence contract for users. Create and UpdateTx
// surface a duplicate email as user.ErrEmailTaken; lookups surface
// user.ErrNotFound. GetForUpdate must lock the row for the lifetime of
// the transaction so authorize-then-mutate sequences stay atomic.
type UserStore interface {
	BeginTx(ctx context.Context) (Tx, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	GetForUpdate(ctx context.Context, tx Tx, id int64) (user.User, error)
	UpdateTx(ctx context.Context, tx Tx, u user.User) (user.User, error)
	DeleteTx(ctx context.Context, tx Tx, id int64) error
}

// ProductStore is the persistence contract for products. Deleting a user
// cascades to its products at the store level, not here.
type ProductStore interface {
	BeginTx(ctx context.Context) (Tx, error)
	Create(ctx context.Context, p product.Product) (product.Product, error)
	GetByID(ctx context.Context, id int64) (product.Product, error)
	List(ctx context.Context) ([]product.Product, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]product.Product, error)
	GetForUpdate(ctx context.Context, tx Tx, id int64) (product.Product, error)
	UpdateTx(ctx context.Context, tx Tx, p product.Product) (product.Product, error)
	DeleteTx(ctx context.Context, tx Tx, id int64) error
}
