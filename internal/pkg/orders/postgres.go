package orders

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPgOrderRepository(pool *pgxpool.Pool) *PgOrderRepository {
	return &PgOrderRepository{pool: pool}
}

var _ Repository = (*PgOrderRepository)(nil)

const orderColumns = `id::text, customer_name, customer_phone, total, status, created_at, updated_at`

func (r *PgOrderRepository) Create(ctx context.Context, customerName, customerPhone string, total float64, items []Item) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (customer_name, customer_phone, total, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+orderColumns+`
	`, customerName, customerPhone, total, StatusNew)

	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	for i := range items {
		item := &items[i]
		item.OrderID = order.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, price, notes)
			VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6)
			RETURNING id::text
		`, order.ID, item.MenuItemID, item.Name, item.Quantity, item.Price, item.Notes).Scan(&item.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	order.Items = items
	return order, nil
}

func (r *PgOrderRepository) FindAll(ctx context.Context, filter Filter) ([]Order, error) {
	var conds []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if filter.Status != "" {
		add("status = ?", filter.Status)
	}
	if filter.CustomerPhone != "" {
		add("customer_phone LIKE ?", "%"+filter.CustomerPhone+"%")
	}
	if filter.DateFrom != nil {
		add("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("created_at <= ?", *filter.DateTo)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.loadItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *PgOrderRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1::uuid`, id)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	order.Items, err = r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PgOrderRepository) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE orders SET status = $1, updated_at = now()
		WHERE id = $2::uuid
		RETURNING `+orderColumns+`
	`, status, id)

	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	order.Items, err = r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PgOrderRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Items reference the order, so they go first.
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1::uuid`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *PgOrderRepository) Stats(ctx context.Context, dateFrom, dateTo *time.Time) (*Stats, error) {
	var conds []string
	var args []any
	if dateFrom != nil {
		args = append(args, *dateFrom)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if dateTo != nil {
		args = append(args, *dateTo)
		conds = append(conds, "created_at <= $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	stats := &Stats{}
	err := r.pool.QueryRow(ctx,
		`SELECT count(*), COALESCE(sum(total), 0) FROM orders`+where, args...,
	).Scan(&stats.TotalOrders, &stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT status, count(*) FROM orders`+where+` GROUP BY status ORDER BY status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		stats.ByStatus = append(stats.ByStatus, sc)
	}
	return stats, rows.Err()
}

func (r *PgOrderRepository) loadItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, order_id::text, menu_item_id::text, name, quantity, price, notes
		FROM order_items WHERE order_id = $1::uuid
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.Price, &it.Notes); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
