package menu

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgMenuRepository struct {
	pool *pgxpool.Pool
}

func NewPgMenuRepository(pool *pgxpool.Pool) *PgMenuRepository {
	return &PgMenuRepository{pool: pool}
}

var _ Repository = (*PgMenuRepository)(nil)

const itemColumns = `id::text, name, description, price_real, price_current, category, image, available, created_at`

func (r *PgMenuRepository) Create(ctx context.Context, in CreateInput) (*Item, error) {
	available := true
	if in.Available != nil {
		available = *in.Available
	}

	// A new item sells at its list price until a promotion lowers it.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO menu_items (name, description, price_real, price_current, category, image, available)
		VALUES ($1, $2, $3, $3, $4, $5, $6)
		RETURNING `+itemColumns+`
	`, in.Name, in.Description, in.PriceReal, in.Category, in.Image, available)

	return scanItem(row)
}

func (r *PgMenuRepository) FindAll(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM menu_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *PgMenuRepository) FindByID(ctx context.Context, id string) (*Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE id = $1::uuid`, id)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

func (r *PgMenuRepository) Update(ctx context.Context, id string, in UpdateInput) (*Item, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.PriceReal != nil {
		add("price_real", *in.PriceReal)
	}
	if in.Category != nil {
		add("category", *in.Category)
	}
	if in.Image != nil {
		add("image", *in.Image)
	}
	if in.Available != nil {
		add("available", *in.Available)
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := `UPDATE menu_items SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + `::uuid RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

func (r *PgMenuRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgMenuRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM menu_items
		WHERE category <> ''
		ORDER BY category ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.PriceReal, &it.PriceCurrent,
		&it.Category, &it.Image, &it.Available, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}
