package domain

import "time"

// Product represents a catalog product. Price is the current list price;
// orders snapshot it at checkout time and stay immune to later edits.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Price       float64   `json:"price" db:"price"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductImage is an additional image attached to a product. Rows are
// removed together with their owning product.
type ProductImage struct {
	ID        int64  `json:"id" db:"id"`
	ProductID int64  `json:"product_id" db:"product_id"`
	URL       string `json:"url" db:"url"`
	Position  int    `json:"position" db:"position"`
}
