package domain

import "time"

// Order statuses. An order is created Pending; later transitions record
// external settlement events and never touch items or totals.
const (
	OrderStatusPending   = "Pending"
	OrderStatusPaid      = "Paid"
	OrderStatusCancelled = "Cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending   = "Pending"
	PaymentStatusConfirmed = "Confirmed"
	PaymentStatusFailed    = "Failed"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	return s == OrderStatusPending || s == OrderStatusPaid || s == OrderStatusCancelled
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	return s == PaymentStatusPending || s == PaymentStatusConfirmed || s == PaymentStatusFailed
}

// LineItem is a (product, quantity) pair submitted at checkout, before
// price snapshotting.
type LineItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"qty" validate:"required,gt=0"`
}

// Order is an order header with its line items. TotalAmount always equals
// the sum of item PriceAtTime * Quantity.
type Order struct {
	ID          int64       `json:"id" db:"id"`
	UserEmail   string      `json:"email" db:"user_email"`
	TotalAmount float64     `json:"total" db:"total_amount"`
	Status      string      `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"date" db:"created_at"`
	Items       []OrderItem `json:"items"`
}

// OrderItem references a product and snapshots its price at order creation.
// PriceAtTime is immutable thereafter, independent of later price edits.
type OrderItem struct {
	ID          int64   `json:"id" db:"id"`
	OrderID     int64   `json:"order_id" db:"order_id"`
	ProductID   int64   `json:"product_id" db:"product_id"`
	ProductName string  `json:"name"`
	Quantity    int     `json:"qty" db:"quantity"`
	PriceAtTime float64 `json:"price_at_time" db:"price_at_time"`
}

// Payment is one ledger row per order, created together with the order or
// not at all.
type Payment struct {
	ID         int64     `json:"id" db:"id"`
	OrderID    int64     `json:"order_id" db:"order_id"`
	Method     string    `json:"method" db:"method"`
	Status     string    `json:"status" db:"status"`
	Amount     float64   `json:"amount" db:"amount"`
	PayerEmail string    `json:"payer_email" db:"payer_email"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	// Order summary fields populated by the admin ledger listing.
	OrderStatus string  `json:"order_status,omitempty"`
	OrderTotal  float64 `json:"order_total,omitempty"`
}
