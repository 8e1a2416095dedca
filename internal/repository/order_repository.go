package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"boutique/internal/database"
	"boutique/internal/domain"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

// OrderRepository defines the interface for order and payment-ledger data
// access. PlaceOrder is the only multi-table write in the system and runs
// as a single transaction.
type OrderRepository interface {
	PlaceOrder(ctx context.Context, email, method string, lines []domain.LineItem) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListPayments(ctx context.Context) ([]*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdatePaymentStatus(ctx context.Context, id int64, status string) error
}

type orderRepository struct {
	store database.Store
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(store database.Store) OrderRepository {
	return &orderRepository{store: store}
}

// PlaceOrder creates the order header, its line items, and the pending
// payment row as one atomic unit. Prices are resolved inside the
// transaction so every item snapshots a consistent price_at_time; any
// failure rolls everything back and no partial order is ever visible.
func (r *orderRepository) PlaceOrder(ctx context.Context, email, method string, lines []domain.LineItem) (*domain.Order, error) {
	order := &domain.Order{
		UserEmail: email,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	err := r.store.WithinTx(ctx, func(q database.Querier) error {
		total := 0.0
		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			var price float64
			var name string
			err := q.QueryRow(ctx, `SELECT price, name FROM products WHERE id = ?`, line.ProductID).
				Scan(&price, &name)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrProductNotFound
				}
				return err
			}

			items = append(items, domain.OrderItem{
				ProductID:   line.ProductID,
				ProductName: name,
				Quantity:    line.Quantity,
				PriceAtTime: price,
			})
			total += price * float64(line.Quantity)
		}
		order.TotalAmount = total

		orderID, err := q.Insert(ctx, `
			INSERT INTO orders (user_email, total_amount, status, created_at)
			VALUES (?, ?, ?, ?)
		`, order.UserEmail, order.TotalAmount, order.Status, order.CreatedAt)
		if err != nil {
			return err
		}
		order.ID = orderID

		for i := range items {
			items[i].OrderID = orderID
			itemID, err := q.Insert(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price_at_time)
				VALUES (?, ?, ?, ?)
			`, orderID, items[i].ProductID, items[i].Quantity, items[i].PriceAtTime)
			if err != nil {
				return err
			}
			items[i].ID = itemID
		}
		order.Items = items

		_, err = q.Insert(ctx, `
			INSERT INTO payments (order_id, method, status, amount, payer_email, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, orderID, method, domain.PaymentStatusPending, order.TotalAmount, order.UserEmail, order.CreatedAt)
		return err
	})

	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		if errors.Is(err, database.ErrTransient) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	return order, nil
}

// FindByID retrieves one order with its items.
func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT id, user_email, total_amount, status, created_at
		FROM orders
		WHERE id = ?
	`

	order := &domain.Order{}
	err := r.store.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserEmail,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	rows, err := r.store.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_time
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtTime); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, nil
}

// List retrieves all orders with their items nested, newest first. Items
// resolve the product name when the product still exists.
func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT o.id, o.user_email, o.total_amount, o.status, o.created_at,
		       oi.id, oi.product_id, p.name, oi.quantity, oi.price_at_time
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		ORDER BY o.created_at DESC, o.id DESC, oi.id
	`

	rows, err := r.store.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	byID := map[int64]*domain.Order{}
	for rows.Next() {
		var (
			order       domain.Order
			itemID      sql.NullInt64
			productID   sql.NullInt64
			productName sql.NullString
			quantity    sql.NullInt64
			priceAtTime sql.NullFloat64
		)
		err := rows.Scan(
			&order.ID,
			&order.UserEmail,
			&order.TotalAmount,
			&order.Status,
			&order.CreatedAt,
			&itemID,
			&productID,
			&productName,
			&quantity,
			&priceAtTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		existing, ok := byID[order.ID]
		if !ok {
			existing = &order
			existing.Items = []domain.OrderItem{}
			byID[order.ID] = existing
			orders = append(orders, existing)
		}

		if itemID.Valid {
			existing.Items = append(existing.Items, domain.OrderItem{
				ID:          itemID.Int64,
				OrderID:     existing.ID,
				ProductID:   productID.Int64,
				ProductName: productName.String,
				Quantity:    int(quantity.Int64),
				PriceAtTime: priceAtTime.Float64,
			})
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListPayments retrieves the payment ledger joined with an order summary.
func (r *orderRepository) ListPayments(ctx context.Context) ([]*domain.Payment, error) {
	query := `
		SELECT pm.id, pm.order_id, pm.method, pm.status, pm.amount, pm.payer_email, pm.created_at,
		       o.status, o.total_amount
		FROM payments pm
		JOIN orders o ON pm.order_id = o.id
		ORDER BY pm.created_at DESC, pm.id DESC
	`

	rows, err := r.store.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		payment := &domain.Payment{}
		err := rows.Scan(
			&payment.ID,
			&payment.OrderID,
			&payment.Method,
			&payment.Status,
			&payment.Amount,
			&payment.PayerEmail,
			&payment.CreatedAt,
			&payment.OrderStatus,
			&payment.OrderTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// UpdateStatus records an external settlement event on the order header.
// Items and totals are never touched after creation.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.store.Exec(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// UpdatePaymentStatus records a settlement event on one ledger row.
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	result, err := r.store.Exec(ctx, `UPDATE payments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}
