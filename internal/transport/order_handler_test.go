package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boutique/internal/domain"
	"boutique/internal/middleware"
	"boutique/internal/repository"
	"boutique/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type mockOrderRepository struct {
	prices map[int64]float64
	orders map[int64]*domain.Order
	nextID int64
}

func newMockOrderRepository(prices map[int64]float64) *mockOrderRepository {
	return &mockOrderRepository{
		prices: prices,
		orders: make(map[int64]*domain.Order),
	}
}

func (m *mockOrderRepository) PlaceOrder(ctx context.Context, email, method string, lines []domain.LineItem) (*domain.Order, error) {
	var total float64
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		price, ok := m.prices[line.ProductID]
		if !ok {
			return nil, repository.ErrProductNotFound
		}
		total += price * float64(line.Quantity)
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PriceAtTime: price,
		})
	}

	m.nextID++
	order := &domain.Order{
		ID:          m.nextID,
		UserEmail:   email,
		TotalAmount: total,
		Status:      domain.OrderStatusPending,
		Items:       items,
		CreatedAt:   time.Now().UTC(),
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *mockOrderRepository) ListPayments(ctx context.Context) ([]*domain.Payment, error) {
	return nil, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	return repository.ErrPaymentNotFound
}

func newOrderHandler(prices map[int64]float64) (*OrderHandler, *mockOrderRepository) {
	repo := newMockOrderRepository(prices)
	return NewOrderHandler(service.NewOrderService(repo), zap.NewNop()), repo
}

func TestPlaceOrderReturnsOrderID(t *testing.T) {
	handler, _ := newOrderHandler(map[int64]float64{1: 5100, 2: 5200})

	w := postJSON(t, handler.PlaceOrder, "/api/orders", PlaceOrderRequest{
		Email: "buyer@example.com",
		Items: []domain.LineItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool  `json:"success"`
		OrderID int64 `json:"orderId"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.OrderID == 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPlaceOrderRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		req  PlaceOrderRequest
	}{
		{"missing email", PlaceOrderRequest{Items: []domain.LineItem{{ProductID: 1, Quantity: 1}}}},
		{"no items", PlaceOrderRequest{Email: "buyer@example.com"}},
		{"zero quantity", PlaceOrderRequest{Email: "buyer@example.com", Items: []domain.LineItem{{ProductID: 1, Quantity: 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newOrderHandler(map[int64]float64{1: 5100})
			w := postJSON(t, handler.PlaceOrder, "/api/orders", tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	handler, _ := newOrderHandler(map[int64]float64{1: 5100})

	w := postJSON(t, handler.PlaceOrder, "/api/orders", PlaceOrderRequest{
		Email: "buyer@example.com",
		Items: []domain.LineItem{{ProductID: 999, Quantity: 1}},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp middleware.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error.Message != "order references an unknown product" {
		t.Errorf("unexpected error message: %q", resp.Error.Message)
	}
}

func patchStatus(t *testing.T, handler http.HandlerFunc, id, status string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(UpdateStatusRequest{Status: status})
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+id+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestUpdateOrderStatus(t *testing.T) {
	handler, repo := newOrderHandler(map[int64]float64{1: 5100})

	order, err := repo.PlaceOrder(context.Background(), "buyer@example.com", "card", []domain.LineItem{{ProductID: 1, Quantity: 1}})
	if err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	w := patchStatus(t, handler.UpdateOrderStatus, "1", domain.OrderStatusPaid)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if repo.orders[order.ID].Status != domain.OrderStatusPaid {
		t.Errorf("status not applied: %s", repo.orders[order.ID].Status)
	}
}

func TestUpdateOrderStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		status string
		want   int
	}{
		{"unknown order", "999", domain.OrderStatusPaid, http.StatusNotFound},
		{"invalid status value", "1", "teleported", http.StatusBadRequest},
		{"non-numeric id", "abc", domain.OrderStatusPaid, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newOrderHandler(map[int64]float64{1: 5100})
			_, err := repo.PlaceOrder(context.Background(), "buyer@example.com", "card", []domain.LineItem{{ProductID: 1, Quantity: 1}})
			if err != nil {
				t.Fatalf("seed order failed: %v", err)
			}

			w := patchStatus(t, handler.UpdateOrderStatus, tt.id, tt.status)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdatePaymentStatusNotFound(t *testing.T) {
	handler, _ := newOrderHandler(nil)

	w := patchStatus(t, handler.UpdatePaymentStatus, "1", domain.PaymentStatusConfirmed)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListOrdersReturnsJSON(t *testing.T) {
	handler, repo := newOrderHandler(map[int64]float64{1: 5100})

	_, err := repo.PlaceOrder(context.Background(), "buyer@example.com", "card", []domain.LineItem{{ProductID: 1, Quantity: 2}})
	if err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()
	handler.ListOrders(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var orders []*domain.Order
	if err := json.NewDecoder(w.Body).Decode(&orders); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 1 {
		t.Errorf("unexpected orders payload: %+v", orders)
	}
}
