package service

import (
	"context"
	"errors"
	"strings"

	"boutique/internal/domain"
	"boutique/internal/repository"
)

var (
	ErrEmptyOrder      = errors.New("order must contain at least one line item")
	ErrMissingEmail    = errors.New("customer email is required")
	ErrInvalidQuantity = errors.New("line item quantity must be greater than zero")
	ErrInvalidStatus   = errors.New("unknown status")
)

// OrderService defines the interface for checkout and order-ledger logic.
type OrderService interface {
	// PlaceOrder validates the checkout request and creates the order
	// header, line items, and pending payment as one atomic unit. Each
	// item's price is snapshotted at creation time.
	PlaceOrder(ctx context.Context, email, method string, lines []domain.LineItem) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListPayments(ctx context.Context) ([]*domain.Payment, error)
	// UpdateOrderStatus records an external settlement event; it never
	// re-derives totals or items.
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
	UpdatePaymentStatus(ctx context.Context, id int64, status string) error
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

func (s *orderService) PlaceOrder(ctx context.Context, email, method string, lines []domain.LineItem) (*domain.Order, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrMissingEmail
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity <= 0 || line.ProductID <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if strings.TrimSpace(method) == "" {
		method = "card"
	}

	return s.orderRepo.PlaceOrder(ctx, email, method, lines)
}

func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.List(ctx)
}

func (s *orderService) ListPayments(ctx context.Context) ([]*domain.Payment, error) {
	return s.orderRepo.ListPayments(ctx)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	if !domain.ValidOrderStatus(status) {
		return ErrInvalidStatus
	}
	return s.orderRepo.UpdateStatus(ctx, id, status)
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	if !domain.ValidPaymentStatus(status) {
		return ErrInvalidStatus
	}
	return s.orderRepo.UpdatePaymentStatus(ctx, id, status)
}
