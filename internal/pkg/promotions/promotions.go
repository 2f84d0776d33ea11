// Package promotions manages time-windowed discounts over menu items.
// A promotion lowers the item's current price for its validity window;
// removing or moving the promotion restores the item's list price. At
// most one promotion exists per item, enforced by a unique constraint.
package promotions

import (
	"context"
	"errors"
	"time"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/menu"
)

var (
	ErrNotFound        = errors.New("promotions: promotion not found")
	ErrItemNotFound    = errors.New("promotions: menu item not found")
	ErrDatesOutOfOrder = errors.New("promotions: valid_from must precede valid_until")
	ErrNegativePrice   = errors.New("promotions: price cannot be negative")
	ErrPriceNotBelow   = errors.New("promotions: discounted price must be below the list price")
	ErrAlreadyActive   = errors.New("promotions: item already has an active promotion")
	ErrItemTaken       = errors.New("promotions: item already has a promotion")
)

type Promotion struct {
	ID           string     `db:"id" json:"id"`
	MenuItemID   string     `db:"menu_item_id" json:"menuItemId"`
	PriceCurrent float64    `db:"price_current" json:"priceCurrent"`
	ValidFrom    time.Time  `db:"valid_from" json:"validFrom"`
	ValidUntil   time.Time  `db:"valid_until" json:"validUntil"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	MenuItem     *menu.Item `json:"menuItem,omitempty"`
}

type CreateInput struct {
	MenuItemID   string
	PriceCurrent float64
	ValidFrom    time.Time
	ValidUntil   time.Time
}

// UpdateInput applies only the non-nil fields.
type UpdateInput struct {
	MenuItemID   *string
	PriceCurrent *float64
	ValidFrom    *time.Time
	ValidUntil   *time.Time
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Promotion, error)
	FindAll(ctx context.Context) ([]Promotion, error)
	FindByID(ctx context.Context, id string) (*Promotion, error)
	FindByMenuItem(ctx context.Context, menuItemID string) (*Promotion, error)
	FindActive(ctx context.Context, now time.Time) ([]Promotion, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Promotion, error)
	Remove(ctx context.Context, id string) error
}
