package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/menu"
)

// Notifier mirrors order lifecycle events to connected dashboards.
type Notifier interface {
	EmitNewOrder(data any)
	EmitOrderUpdated(data any)
	EmitOrderStatusChanged(orderID, oldStatus, newStatus string)
}

type Service struct {
	repo     Repository
	menuRepo menu.Repository
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, menuRepo menu.Repository, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, menuRepo: menuRepo, notifier: notifier, logger: logger}
}

// Create resolves each requested item against the menu, by id first and
// by exact name otherwise, prices it at the item's current price and
// persists the order with a computed total.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}

	catalog, err := s.menuRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*menu.Item, len(catalog))
	byName := make(map[string]*menu.Item, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
		byName[catalog[i].Name] = &catalog[i]
	}

	items := make([]Item, 0, len(in.Items))
	var total float64
	for _, req := range in.Items {
		var resolved *menu.Item
		if req.MenuItemID != "" {
			resolved = byID[req.MenuItemID]
		}
		if resolved == nil && req.MenuItemName != "" {
			resolved = byName[req.MenuItemName]
		}
		if resolved == nil {
			ref := req.MenuItemID
			if ref == "" {
				ref = req.MenuItemName
			}
			return nil, fmt.Errorf("%w: %s", ErrItemUnresolved, ref)
		}
		if req.Quantity < 1 {
			return nil, fmt.Errorf("%w: %s", ErrBadQuantity, resolved.Name)
		}

		id := resolved.ID
		items = append(items, Item{
			MenuItemID: &id,
			Name:       resolved.Name,
			Quantity:   req.Quantity,
			Price:      resolved.PriceCurrent,
		})
		total += float64(req.Quantity) * resolved.PriceCurrent
	}

	order, err := s.repo.Create(ctx, in.CustomerName, in.CustomerPhone, total, items)
	if err != nil {
		return nil, err
	}

	s.notifier.EmitNewOrder(order)
	s.logger.Info("order created", "order_id", order.ID, "total", order.Total, "items", len(order.Items))
	return order, nil
}

func (s *Service) FindAll(ctx context.Context, filter Filter) ([]Order, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *Service) FindByID(ctx context.Context, id string) (*Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, status)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := current.Status

	order, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.notifier.EmitOrderUpdated(order)
	s.notifier.EmitOrderStatusChanged(order.ID, oldStatus, order.Status)
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Stats(ctx context.Context, dateFrom, dateTo *time.Time) (*Stats, error) {
	return s.repo.Stats(ctx, dateFrom, dateTo)
}
