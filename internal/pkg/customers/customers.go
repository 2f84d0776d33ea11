// Package customers holds the customer directory: registration, lookup by
// phone, address and order-history helpers, and the existence check the
// webhook gateway routes on.
package customers

import (
	"context"
	"errors"
	"regexp"
	"time"
)

var ErrNotFound = errors.New("customers: not found")
var ErrPhoneTaken = errors.New("customers: phone already registered")
var ErrInvalidPhone = errors.New("customers: phone must contain 10 or 11 digits")

var phonePattern = regexp.MustCompile(`^\d{10,11}$`)

// Customer is keyed by its normalized phone; the phone is the join key
// against conversations and inbound payload senders.
type Customer struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Phone             string    `db:"phone" json:"phone"`
	AcceptsPromotions bool      `db:"accepts_promotions" json:"acceptsPromotions"`
	Address           *string   `db:"address" json:"address"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// LastOrder is the condensed view of a customer's most recent order.
type LastOrder struct {
	ID        string    `json:"id"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateInput carries the registration data.
type CreateInput struct {
	Name              string
	Phone             string
	AcceptsPromotions bool
	Address           *string
}

// ValidatePhone enforces the canonical 10-11 digit form.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// Repository defines persistence operations for the customer directory.
type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Customer, error)
	FindAll(ctx context.Context) ([]Customer, error)
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	LastOrderByPhone(ctx context.Context, phone string) (*LastOrder, error)
}
