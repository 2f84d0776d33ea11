// Package menu manages the restaurant menu: item CRUD, the distinct
// category listing, and the price pair other modules depend on. PriceReal
// is the list price; PriceCurrent is what orders charge and what
// promotions temporarily lower.
package menu

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("menu: item not found")

type Item struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description"`
	PriceReal    float64   `db:"price_real" json:"priceReal"`
	PriceCurrent float64   `db:"price_current" json:"priceCurrent"`
	Category     string    `db:"category" json:"category"`
	Image        *string   `db:"image" json:"image"`
	Available    bool      `db:"available" json:"available"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type CreateInput struct {
	Name        string
	Description *string
	PriceReal   float64
	Category    string
	Image       *string
	Available   *bool
}

// UpdateInput applies only the non-nil fields.
type UpdateInput struct {
	Name        *string
	Description *string
	PriceReal   *float64
	Category    *string
	Image       *string
	Available   *bool
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Item, error)
	FindAll(ctx context.Context) ([]Item, error)
	FindByID(ctx context.Context, id string) (*Item, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Item, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}
