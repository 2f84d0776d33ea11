package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgCustomerRepository struct {
	pool *pgxpool.Pool
}

func NewPgCustomerRepository(pool *pgxpool.Pool) *PgCustomerRepository {
	return &PgCustomerRepository{pool: pool}
}

var _ Repository = (*PgCustomerRepository)(nil)

const customerColumns = `id::text, name, phone, accepts_promotions, address, created_at`

func (r *PgCustomerRepository) Create(ctx context.Context, in CreateInput) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone, accepts_promotions, address)
		VALUES ($1, $2, $3, $4)
		RETURNING `+customerColumns+`
	`, in.Name, in.Phone, in.AcceptsPromotions, in.Address)

	c, err := scanCustomer(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrPhoneTaken
	}
	return c, err
}

func (r *PgCustomerRepository) FindAll(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *PgCustomerRepository) FindByID(ctx context.Context, id string) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1::uuid`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *PgCustomerRepository) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *PgCustomerRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE phone = $1)`, phone).Scan(&exists)
	return exists, err
}

func (r *PgCustomerRepository) LastOrderByPhone(ctx context.Context, phone string) (*LastOrder, error) {
	var o LastOrder
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, total, status, created_at
		FROM orders
		WHERE customer_phone = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, phone).Scan(&o.ID, &o.Total, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.AcceptsPromotions, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
