// Package memory is an in-process store used by tests. One lock
// serializes every operation, so the Tx handles are no-ops; the postgres
// store is where real transaction semantics live.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/service"
)

type DB struct {
	mu            sync.RWMutex
	users         map[int64]user.User
	products      map[int64]product.Product
	nextUserID    int64
	nextProductID int64
}

func NewDB() *DB {
	return &DB{
		users:    make(map[int64]user.User),
		products: make(map[int64]product.Product),
	}
}

func (d *DB) Users() *UsersRepo {
	return &UsersRepo{db: d}
}

func (d *DB) Products() *ProductsRepo {
	return &ProductsRepo{db: d}
}

type memTx struct{}

func (memTx) Commit(ctx context.Context) error   { return nil }
func (memTx) Rollback(ctx context.Context) error { return nil }

func copyOwnerID(p product.Product) product.Product {
	if p.OwnerID != nil {
		id := *p.OwnerID
		p.OwnerID = &id
	}

	return p
}

// UsersRepo implements service.UserStore.

type UsersRepo struct {
	db *DB
}

func (r *UsersRepo) BeginTx(ctx context.Context) (service.Tx, error) {
	return memTx{}, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.db.nextUserID++
	u.ID = r.db.nextUserID
	r.db.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]user.User, 0, len(r.db.users))

	for _, u := range r.db.users {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) GetForUpdate(ctx context.Context, tx service.Tx, id int64) (user.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UsersRepo) UpdateTx(ctx context.Context, tx service.Tx, u user.User) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[u.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}

	for _, existing := range r.db.users {
		if existing.ID != u.ID && existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.db.users[u.ID] = u

	return u, nil
}

// DeleteTx removes the user and cascades to every product it owns.
func (r *UsersRepo) DeleteTx(ctx context.Context, tx service.Tx, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.db.users, id)

	for pid, p := range r.db.products {
		if p.OwnerID != nil && *p.OwnerID == id {
			delete(r.db.products, pid)
		}
	}

	return nil
}

// ProductsRepo implements service.ProductStore.

type ProductsRepo struct {
	db *DB
}

func (r *ProductsRepo) BeginTx(ctx context.Context) (service.Tx, error) {
	return memTx{}, nil
}

func (r *ProductsRepo) withOwnerName(p product.Product) product.Product {
	p.OwnerName = ""

	if p.OwnerID != nil {
		if owner, ok := r.db.users[*p.OwnerID]; ok {
			p.OwnerName = owner.Name
		}
	}

	return p
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if p.OwnerID != nil {
		if _, ok := r.db.users[*p.OwnerID]; !ok {
			return product.Product{}, user.ErrNotFound
		}
	}

	p = copyOwnerID(p)
	r.db.nextProductID++
	p.ID = r.db.nextProductID
	r.db.products[p.ID] = p

	return r.withOwnerName(p), nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id int64) (product.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.products[id]

	if !ok {
		return product.Product{}, product.ErrNotFound
	}

	return r.withOwnerName(p), nil
}

func (r *ProductsRepo) List(ctx context.Context) ([]product.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]product.Product, 0, len(r.db.products))

	for _, p := range r.db.products {
		out = append(out, r.withOwnerName(p))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ProductsRepo) ListByOwner(ctx context.Context, ownerID int64) ([]product.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]product.Product, 0)

	for _, p := range r.db.products {
		if p.OwnerID != nil && *p.OwnerID == ownerID {
			out = append(out, r.withOwnerName(p))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ProductsRepo) GetForUpdate(ctx context.Context, tx service.Tx, id int64) (product.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductsRepo) UpdateTx(ctx context.Context, tx service.Tx, p product.Product) (product.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.products[p.ID]; !ok {
		return product.Product{}, product.ErrNotFound
	}

	if p.OwnerID != nil {
		if _, ok := r.db.users[*p.OwnerID]; !ok {
			return product.Product{}, user.ErrNotFound
		}
	}

	p = copyOwnerID(p)
	r.db.products[p.ID] = p

	return r.withOwnerName(p), nil
}

func (r *ProductsRepo) DeleteTx(ctx context.Context, tx service.Tx, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.products[id]; !ok {
		return product.ErrNotFound
	}

	delete(r.db.products, id)

	return nil
}
