package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRestaurantRepository struct {
	pool *pgxpool.Pool
}

func NewPgRestaurantRepository(pool *pgxpool.Pool) *PgRestaurantRepository {
	return &PgRestaurantRepository{pool: pool}
}

var _ Repository = (*PgRestaurantRepository)(nil)

const restaurantColumns = `id::text, name, email, password, phone, created_at`

func (r *PgRestaurantRepository) Create(ctx context.Context, name, email, passwordHash string, phone *string) (*Restaurant, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO restaurants (name, email, password, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+restaurantColumns+`
	`, name, email, passwordHash, phone)

	restaurant, err := scanRestaurant(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrEmailTaken
	}
	return restaurant, err
}

func (r *PgRestaurantRepository) FindByEmail(ctx context.Context, email string) (*Restaurant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE email = $1`, email)
	restaurant, err := scanRestaurant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return restaurant, err
}

func scanRestaurant(row pgx.Row) (*Restaurant, error) {
	var rst Restaurant
	err := row.Scan(&rst.ID, &rst.Name, &rst.Email, &rst.PasswordHash, &rst.Phone, &rst.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rst, nil
}
