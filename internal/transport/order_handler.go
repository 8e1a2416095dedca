package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"boutique/internal/database"
	"boutique/internal/domain"
	"boutique/internal/middleware"
	"boutique/internal/repository"
	"boutique/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PlaceOrderRequest represents the checkout payload
type PlaceOrderRequest struct {
	Email         string            `json:"email" validate:"required,email"`
	Items         []domain.LineItem `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"paymentMethod"`
}

// UpdateStatusRequest represents a settlement event
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for checkout and the admin ledgers
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// RegisterRoutes registers checkout (public) and ledger (admin) routes.
func (h *OrderHandler) RegisterRoutes(r chi.Router, auth, admin func(http.Handler) http.Handler) {
	r.Post("/api/orders", h.PlaceOrder)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(admin)
		r.Get("/api/orders", h.ListOrders)
		r.Patch("/api/orders/{id}/status", h.UpdateOrderStatus)
		r.Get("/api/payments", h.ListPayments)
		r.Patch("/api/payments/{id}/status", h.UpdatePaymentStatus)
	})
}

// PlaceOrder handles checkout: one atomic order + items + payment insert.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), req.Email, req.PaymentMethod, req.Items)
	if err != nil {
		h.respondOrderError(w, err, "failed to place order")
		return
	}

	h.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Float64("total", order.TotalAmount),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "orderId": order.ID})
}

// ListOrders returns every order with its items nested.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// ListPayments returns the payment ledger joined with order summaries.
func (h *OrderHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.orders.ListPayments(r.Context())
	if err != nil {
		h.logger.Error("Failed to list payments", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list payments")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, payments)
}

// UpdateOrderStatus records an external settlement event on an order.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.orders.UpdateOrderStatus)
}

// UpdatePaymentStatus records a settlement event on a payment row.
func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.orders.UpdatePaymentStatus)
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id int64, status string) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := apply(r.Context(), id, req.Status); err != nil {
		h.respondOrderError(w, err, "failed to update status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrMissingEmail),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusBadRequest, "order references an unknown product")
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, repository.ErrPaymentNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "payment not found")
	case errors.Is(err, database.ErrTransient):
		h.logger.Warn("Transient store error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "store temporarily unavailable")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
