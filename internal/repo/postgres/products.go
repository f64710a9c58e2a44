package postgres

import (
	"context"
	"errors"

	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/observability"
	"github.com/dmunozv/crudhub/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// owner name is denormalized into every read so responses can show it
// without a second query
const productSelect = `
	SELECT p.id, p.name, p.price, p.user_id, COALESCE(u.name, ''), p.created_at, p.updated_at
	FROM products p
	LEFT JOIN users u ON u.id = p.user_id`

type ProductsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ProductsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ProductsRepo) BeginTx(ctx context.Context) (service.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.OwnerID,
		&p.OwnerName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

func isOwnerFKViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	created := p

	err := r.observe("products.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO products (name, price, user_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			p.Name, p.Price, p.OwnerID, p.CreatedAt, p.UpdatedAt,
		).Scan(&created.ID)
	})

	if err != nil {
		// owner vanished between resolution and insert
		if isOwnerFKViolation(err) {
			return product.Product{}, user.ErrNotFound
		}

		return product.Product{}, err
	}

	return created, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id int64) (product.Product, error) {
	var p product.Product

	err := r.observe("products.get_by_id", func() error {
		var e error
		p, e = scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}

		return product.Product{}, err
	}

	return p, nil
}

func (r *ProductsRepo) List(ctx context.Context) ([]product.Product, error) {
	return r.listWhere(ctx, "products.list", productSelect+` ORDER BY p.id ASC`)
}

func (r *ProductsRepo) ListByOwner(ctx context.Context, ownerID int64) ([]product.Product, error) {
	return r.listWhere(ctx, "products.list_by_owner",
		productSelect+` WHERE p.user_id = $1 ORDER BY p.id ASC`, ownerID)
}

func (r *ProductsRepo) listWhere(ctx context.Context, op, query string, args ...interface{}) ([]product.Product, error) {
	var out []product.Product

	err := r.observe(op, func() error {
		rows, e := r.pool.Query(ctx, query, args...)

		if e != nil {
			return e
		}

		defer rows.Close()

		out = make([]product.Product, 0)

		for rows.Next() {
			p, e := scanProduct(rows)

			if e != nil {
				return e
			}

			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetForUpdate locks the product row (not the joined owner row) for the
// duration of the transaction.
func (r *ProductsRepo) GetForUpdate(ctx context.Context, tx service.Tx, id int64) (product.Product, error) {
	ptx, err := pgxTx(tx)

	if err != nil {
		return product.Product{}, err
	}

	var p product.Product

	err = r.observe("products.get_for_update", func() error {
		var e error
		p, e = scanProduct(ptx.QueryRow(ctx,
			productSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}

		return product.Product{}, err
	}

	return p, nil
}

func (r *ProductsRepo) UpdateTx(ctx context.Context, tx service.Tx, p product.Product) (product.Product, error) {
	ptx, err := pgxTx(tx)

	if err != nil {
		return product.Product{}, err
	}

	err = r.observe("products.update", func() error {
		tag, e := ptx.Exec(ctx,
			`UPDATE products
				SET name = $2,
						price = $3,
						user_id = $4,
						updated_at = $5
			 WHERE id = $1`,
			p.ID, p.Name, p.Price, p.OwnerID, p.UpdatedAt,
		)

		if e != nil {
			return e
		}

		if tag.RowsAffected() == 0 {
			return product.ErrNotFound
		}

		return nil
	})

	if err != nil {
		if isOwnerFKViolation(err) {
			return product.Product{}, user.ErrNotFound
		}

		return product.Product{}, err
	}

	return p, nil
}

func (r *ProductsRepo) DeleteTx(ctx context.Context, tx service.Tx, id int64) error {
	ptx, err := pgxTx(tx)

	if err != nil {
		return err
	}

	return r.observe("products.delete", func() error {
		tag, e := ptx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)

		if e != nil {
			return e
		}

		if tag.RowsAffected() == 0 {
			return product.ErrNotFound
		}

		return nil
	})
}
