package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"boutique/internal/database"
	"boutique/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product with this name already exists")
)

// ProductRepository defines the interface for catalog data access.
// Products own their image rows; creating or replacing images happens in
// the same transaction as the product write.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product, replaceImages bool) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productRepository struct {
	store database.Store
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(store database.Store) ProductRepository {
	return &productRepository{store: store}
}

// Create inserts a product together with its image rows. product.Images
// holds the full ordered URL list, primary image first.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.store.WithinTx(ctx, func(q database.Querier) error {
		query := `
			INSERT INTO products (name, price, description, category, image_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`

		id, err := q.Insert(
			ctx,
			query,
			product.Name,
			product.Price,
			product.Description,
			product.Category,
			product.ImageURL,
			product.CreatedAt,
		)
		if err != nil {
			return err
		}
		product.ID = id

		return insertImages(ctx, q, id, product.Images)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update rewrites the product row; with replaceImages it also swaps the
// full image list for product.Images inside the same transaction.
func (r *productRepository) Update(ctx context.Context, product *domain.Product, replaceImages bool) error {
	err := r.store.WithinTx(ctx, func(q database.Querier) error {
		query := `
			UPDATE products
			SET name = ?, price = ?, description = ?, category = ?, image_url = ?
			WHERE id = ?
		`

		result, err := q.Exec(
			ctx,
			query,
			product.Name,
			product.Price,
			product.Description,
			product.Category,
			product.ImageURL,
			product.ID,
		)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrProductNotFound
		}

		if !replaceImages {
			return nil
		}

		if _, err := q.Exec(ctx, `DELETE FROM product_images WHERE product_id = ?`, product.ID); err != nil {
			return err
		}
		return insertImages(ctx, q, product.ID, product.Images)
	})

	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		if isUniqueViolation(err) {
			return ErrProductExists
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product; its image rows go with it via the cascade.
// Historical order items keep their product reference and price snapshot.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.store.Exec(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product with its full image list, primary first.
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, price, description, category, image_url, created_at
		FROM products
		WHERE id = ?
	`

	product := &domain.Product{}
	err := r.store.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Description,
		&product.Category,
		&product.ImageURL,
		&product.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	images, err := r.imagesByProduct(ctx)
	if err != nil {
		return nil, err
	}
	product.Images = images[product.ID]
	if len(product.Images) == 0 && product.ImageURL != "" {
		product.Images = []string{product.ImageURL}
	}

	return product, nil
}

// List retrieves all products, each resolved with its image list.
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, price, description, category, image_url, created_at
		FROM products
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.store.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Description,
			&product.Category,
			&product.ImageURL,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	images, err := r.imagesByProduct(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		p.Images = images[p.ID]
		if len(p.Images) == 0 && p.ImageURL != "" {
			p.Images = []string{p.ImageURL}
		}
	}

	return products, nil
}

// imagesByProduct loads every image URL grouped by product, ordered so
// the primary image (position 0) comes first.
func (r *productRepository) imagesByProduct(ctx context.Context) (map[int64][]string, error) {
	query := `
		SELECT product_id, url
		FROM product_images
		ORDER BY product_id, position
	`

	rows, err := r.store.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	images := map[int64][]string{}
	for rows.Next() {
		var productID int64
		var url string
		if err := rows.Scan(&productID, &url); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images[productID] = append(images[productID], url)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}

func insertImages(ctx context.Context, q database.Querier, productID int64, urls []string) error {
	for i, url := range urls {
		_, err := q.Insert(
			ctx,
			`INSERT INTO product_images (product_id, url, position) VALUES (?, ?, ?)`,
			productID,
			url,
			i,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
