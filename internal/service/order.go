package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/mykafka"
	"github.com/Skotchmaster/online_cafe/internal/repo"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events Publisher
	Now    func() time.Time
}

type UserDashboard struct {
	Orders       []models.Order `json:"orders"`
	ActiveOrders []models.Order `json:"active_orders"`
}

type ReceiptLine struct {
	ProductID uint         `json:"product_id"`
	Name      string       `json:"name"`
	Quantity  uint         `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
	LineTotal models.Money `json:"line_total"`
}

type Receipt struct {
	Order *models.Order `json:"order"`
	Lines []ReceiptLine `json:"lines"`
	Total models.Money  `json:"total"`
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Checkout prices the cart at current product prices and turns it into a pending order.
func (s *OrderService) Checkout(ctx context.Context, userID uint) (*models.Order, error) {
	order, err := s.Repo.Checkout(ctx, userID, s.now())
	if err != nil {
		var unavailable *repo.UnavailableError
		switch {
		case errors.Is(err, repo.ErrEmptyCart):
			return nil, ErrEmptyCart
		case errors.As(err, &unavailable):
			return nil, fmt.Errorf("%s: %w", unavailable.Error(), ErrValidation)
		default:
			return nil, fmt.Errorf("checkout: %v: %w", err, ErrTransaction)
		}
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(order.ID), 10), "order_placed", map[string]any{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"total_price": order.TotalPrice,
		"items":       len(order.Items),
	})
	return order, nil
}

func (s *OrderService) get(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("Order not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

// Confirmation returns the order only to the user who placed it.
func (s *OrderService) Confirmation(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("Order belongs to another user: %w", ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) Dashboard(ctx context.Context, userID uint) (*UserDashboard, error) {
	orders, err := s.Repo.ListOrders(ctx, repo.OrderFilter{UserID: &userID})
	if err != nil {
		return nil, err
	}

	d := &UserDashboard{Orders: orders, ActiveOrders: []models.Order{}}
	if d.Orders == nil {
		d.Orders = []models.Order{}
	}
	for _, o := range orders {
		if o.Status.Active() {
			d.ActiveOrders = append(d.ActiveOrders, o)
		}
	}
	return d, nil
}

func (s *OrderService) List(ctx context.Context, pendingOnly bool) ([]models.Order, error) {
	f := repo.OrderFilter{}
	if pendingOnly {
		f.Status = []models.OrderStatus{models.OrderStatusPending}
	}
	orders, err := s.Repo.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *OrderService) Details(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.get(ctx, orderID)
}

func (s *OrderService) Receipt(ctx context.Context, orderID uint) (*Receipt, error) {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	r := &Receipt{Order: order, Lines: make([]ReceiptLine, 0, len(order.Items)), Total: order.TotalPrice}
	for _, it := range order.Items {
		line := ReceiptLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			LineTotal: models.NewMoney(it.LineTotal()),
		}
		if it.Product != nil {
			line.Name = it.Product.Name
		}
		r.Lines = append(r.Lines, line)
	}
	return r, nil
}

// UpdateStatus moves an order along the status machine. Re-applying the current status is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if status == "" {
		return nil, fmt.Errorf("Status is required: %w", ErrValidation)
	}
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("Unknown status %q: %w", status, ErrValidation)
	}

	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("Cannot change status from %s to %s: %w", order.Status, next, ErrValidation)
	}

	prev := order.Status
	if err := s.Repo.UpdateOrderStatus(ctx, orderID, prev, next); err != nil {
		if errors.Is(err, repo.ErrStatusConflict) {
			return nil, fmt.Errorf("Order status changed, reload and retry: %w", ErrValidation)
		}
		return nil, err
	}
	order.Status = next

	publish(ctx, s.Events, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(order.ID), 10), "order_status_changed", map[string]any{
		"order_id": order.ID,
		"from":     prev,
		"to":       next,
	})
	return order, nil
}
