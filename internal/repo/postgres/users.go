package postgres

import (
	"context"
	"errors"

	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/observability"
	"github.com/dmunozv/crudhub/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) BeginTx(ctx context.Context) (service.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

func pgxTx(tx service.Tx) (pgx.Tx, error) {
	ptx, ok := tx.(pgx.Tx)

	if !ok {
		return nil, errors.New("postgres: foreign transaction handle")
	}

	return ptx, nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	var created user.User

	err := r.observe("users.create", func() error {
		var e error
		created, e = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+userColumns,
			u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
		))
		return e
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return created, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list", func() error {
		rows, e := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY id ASC`)

		if e != nil {
			return e
		}

		defer rows.Close()

		out = make([]user.User, 0)

		for rows.Next() {
			u, e := scanUser(rows)

			if e != nil {
				return e
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetForUpdate locks the user row for the duration of the transaction.
func (r *UsersRepo) GetForUpdate(ctx context.Context, tx service.Tx, id int64) (user.User, error) {
	ptx, err := pgxTx(tx)

	if err != nil {
		return user.User{}, err
	}

	var u user.User

	err = r.observe("users.get_for_update", func() error {
		var e error
		u, e = scanUser(ptx.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdateTx(ctx context.Context, tx service.Tx, u user.User) (user.User, error) {
	ptx, err := pgxTx(tx)

	if err != nil {
		return user.User{}, err
	}

	var updated user.User

	err = r.observe("users.update", func() error {
		var e error
		updated, e = scanUser(ptx.QueryRow(ctx,
			`UPDATE users
				SET name = $2,
						email = $3,
						password_hash = $4,
						updated_at = $5
			 WHERE id = $1
			 RETURNING `+userColumns,
			u.ID, u.Name, u.Email, u.PasswordHash, u.UpdatedAt,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return updated, nil
}

// DeleteTx removes the user; products referencing it go with it via the
// ON DELETE CASCADE constraint.
func (r *UsersRepo) DeleteTx(ctx context.Context, tx service.Tx, id int64) error {
	ptx, err := pgxTx(tx)

	if err != nil {
		return err
	}

	return r.observe("users.delete", func() error {
		tag, e := ptx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if e != nil {
			return e
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}
