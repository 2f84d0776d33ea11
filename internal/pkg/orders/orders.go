// Package orders covers the order lifecycle: creation priced off the
// current menu, status transitions mirrored to the realtime hub, and the
// aggregate queries the dashboard and financial modules build on.
package orders

import (
	"context"
	"errors"
	"time"
)

const (
	StatusNew       = "NEW"
	StatusPreparing = "PREPARING"
	StatusReady     = "READY"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

var (
	ErrNotFound       = errors.New("orders: order not found")
	ErrNoItems        = errors.New("orders: order must have at least one item")
	ErrBadQuantity    = errors.New("orders: item quantity must be at least 1")
	ErrItemUnresolved = errors.New("orders: menu item not found")
	ErrBadStatus      = errors.New("orders: invalid status")
)

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID            string    `db:"id" json:"id"`
	CustomerName  string    `db:"customer_name" json:"customerName"`
	CustomerPhone string    `db:"customer_phone" json:"customerPhone"`
	Total         float64   `db:"total" json:"total"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
	Items         []Item    `json:"items"`
}

type Item struct {
	ID         string  `db:"id" json:"id"`
	OrderID    string  `db:"order_id" json:"orderId"`
	MenuItemID *string `db:"menu_item_id" json:"menuItemId"`
	Name       string  `db:"name" json:"name"`
	Quantity   int     `db:"quantity" json:"quantity"`
	Price      float64 `db:"price" json:"price"`
	Notes      *string `db:"notes" json:"notes"`
}

// ItemInput references a menu item by id or by exact name.
type ItemInput struct {
	MenuItemID   string `json:"menuItemId"`
	MenuItemName string `json:"menuItemName"`
	Quantity     int    `json:"quantity"`
}

type CreateInput struct {
	CustomerName  string
	CustomerPhone string
	Items         []ItemInput
}

type Filter struct {
	Status        string
	CustomerPhone string
	DateFrom      *time.Time
	DateTo        *time.Time
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Stats struct {
	TotalOrders  int           `json:"totalOrders"`
	TotalRevenue float64       `json:"totalRevenue"`
	ByStatus     []StatusCount `json:"byStatus"`
}

type Repository interface {
	Create(ctx context.Context, customerName, customerPhone string, total float64, items []Item) (*Order, error)
	FindAll(ctx context.Context, filter Filter) ([]Order, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*Order, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, dateFrom, dateTo *time.Time) (*Stats, error)
}
