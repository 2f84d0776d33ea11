package promotions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/menu"
)

type PgPromotionRepository struct {
	pool *pgxpool.Pool
}

func NewPgPromotionRepository(pool *pgxpool.Pool) *PgPromotionRepository {
	return &PgPromotionRepository{pool: pool}
}

var _ Repository = (*PgPromotionRepository)(nil)

const promotionSelect = `
	SELECT p.id::text, p.menu_item_id::text, p.price_current, p.valid_from, p.valid_until, p.active, p.created_at,
	       m.id::text, m.name, m.description, m.price_real, m.price_current, m.category, m.image, m.available, m.created_at
	FROM promotions p
	JOIN menu_items m ON m.id = p.menu_item_id`

func (r *PgPromotionRepository) Create(ctx context.Context, in CreateInput) (*Promotion, error) {
	if !in.ValidFrom.Before(in.ValidUntil) {
		return nil, ErrDatesOutOfOrder
	}
	if in.PriceCurrent < 0 {
		return nil, ErrNegativePrice
	}

	item, err := r.findItem(ctx, in.MenuItemID)
	if err != nil {
		return nil, err
	}
	if in.PriceCurrent >= item.PriceReal {
		return nil, ErrPriceNotBelow
	}

	existing, err := r.FindByMenuItem(ctx, in.MenuItemID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Active {
		return nil, ErrAlreadyActive
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// An inactive leftover on the same item is replaced, not kept around.
	if existing != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM promotions WHERE id = $1::uuid`, existing.ID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE menu_items SET price_current = $1 WHERE id = $2::uuid`,
		in.PriceCurrent, in.MenuItemID,
	); err != nil {
		return nil, err
	}

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO promotions (menu_item_id, price_current, valid_from, valid_until, active)
		VALUES ($1::uuid, $2, $3, $4, true)
		RETURNING id::text
	`, in.MenuItemID, in.PriceCurrent, in.ValidFrom, in.ValidUntil).Scan(&id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *PgPromotionRepository) FindAll(ctx context.Context) ([]Promotion, error) {
	rows, err := r.pool.Query(ctx, promotionSelect+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPromotions(rows)
}

func (r *PgPromotionRepository) FindByID(ctx context.Context, id string) (*Promotion, error) {
	row := r.pool.QueryRow(ctx, promotionSelect+` WHERE p.id = $1::uuid`, id)
	p, err := scanPromotion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *PgPromotionRepository) FindByMenuItem(ctx context.Context, menuItemID string) (*Promotion, error) {
	row := r.pool.QueryRow(ctx, promotionSelect+` WHERE p.menu_item_id = $1::uuid`, menuItemID)
	p, err := scanPromotion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *PgPromotionRepository) FindActive(ctx context.Context, now time.Time) ([]Promotion, error) {
	rows, err := r.pool.Query(ctx, promotionSelect+`
		WHERE p.active AND p.valid_from <= $1 AND p.valid_until >= $1
		ORDER BY p.created_at DESC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPromotions(rows)
}

func (r *PgPromotionRepository) Update(ctx context.Context, id string, in UpdateInput) (*Promotion, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	targetItem := current.MenuItem
	movingItem := in.MenuItemID != nil && *in.MenuItemID != current.MenuItemID
	if movingItem {
		targetItem, err = r.findItem(ctx, *in.MenuItemID)
		if err != nil {
			return nil, err
		}
		other, err := r.FindByMenuItem(ctx, *in.MenuItemID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, ErrItemTaken
		}
	}

	from := current.ValidFrom
	until := current.ValidUntil
	if in.ValidFrom != nil {
		from = *in.ValidFrom
	}
	if in.ValidUntil != nil {
		until = *in.ValidUntil
	}
	if !from.Before(until) {
		return nil, ErrDatesOutOfOrder
	}

	if in.PriceCurrent != nil {
		if *in.PriceCurrent < 0 {
			return nil, ErrNegativePrice
		}
		if *in.PriceCurrent >= targetItem.PriceReal {
			return nil, ErrPriceNotBelow
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if movingItem {
		// The old item stops selling at the promotional price.
		if _, err := tx.Exec(ctx,
			`UPDATE menu_items SET price_current = price_real WHERE id = $1::uuid`,
			current.MenuItemID,
		); err != nil {
			return nil, err
		}
	}

	if in.PriceCurrent != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE menu_items SET price_current = $1 WHERE id = $2::uuid`,
			*in.PriceCurrent, targetItem.ID,
		); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE promotions
		SET menu_item_id = COALESCE($1::uuid, menu_item_id),
		    price_current = COALESCE($2, price_current),
		    valid_from = $3,
		    valid_until = $4
		WHERE id = $5::uuid
	`, in.MenuItemID, in.PriceCurrent, from, until, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *PgPromotionRepository) Remove(ctx context.Context, id string) error {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE menu_items SET price_current = price_real WHERE id = $1::uuid`,
		current.MenuItemID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM promotions WHERE id = $1::uuid`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgPromotionRepository) findItem(ctx context.Context, id string) (*menu.Item, error) {
	item, err := menu.NewPgMenuRepository(r.pool).FindByID(ctx, id)
	if errors.Is(err, menu.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, err
}

func scanPromotion(row pgx.Row) (*Promotion, error) {
	var p Promotion
	var it menu.Item
	err := row.Scan(
		&p.ID, &p.MenuItemID, &p.PriceCurrent, &p.ValidFrom, &p.ValidUntil, &p.Active, &p.CreatedAt,
		&it.ID, &it.Name, &it.Description, &it.PriceReal, &it.PriceCurrent, &it.Category, &it.Image, &it.Available, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.MenuItem = &it
	return &p, nil
}

func collectPromotions(rows pgx.Rows) ([]Promotion, error) {
	var out []Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
