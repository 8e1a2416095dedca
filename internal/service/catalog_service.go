package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"boutique/internal/domain"
	"boutique/internal/repository"
)

var (
	ErrMissingName  = errors.New("product name is required")
	ErrInvalidPrice = errors.New("product price must be a positive number")
)

// PlaceholderImageURL is used when a product is created without uploads.
const PlaceholderImageURL = "https://via.placeholder.com/400"

// ImageUpload carries raw image bytes and the client-supplied filename,
// used only for its extension.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ContentStore writes uploaded bytes and returns a URL for the stored
// file. Implementations must derive filenames from a collision-resistant
// identifier so concurrent uploads never clash.
type ContentStore interface {
	Save(data []byte, filename string) (string, error)
}

// ProductInput is the full set of product fields accepted by create and
// update. Images, when present, become the product's image list with the
// first upload as the primary.
type ProductInput struct {
	Name        string
	Price       float64
	Description string
	Category    string
	Images      []ImageUpload
}

// CatalogService defines the interface for product catalog logic.
type CatalogService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Product, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	content     ContentStore
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, content ContentStore) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		content:     content,
	}
}

// Create validates the input, stores the uploaded images, and inserts the
// product with its image list, primary image first.
func (s *catalogService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}

	urls, err := s.storeImages(input.Images)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		urls = []string{PlaceholderImageURL}
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		ImageURL:    urls[0],
		Images:      urls,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update rewrites the product fields; new uploads replace the existing
// image list, otherwise the current images are kept.
func (s *catalogService) Update(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}

	current, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		ImageURL:    current.ImageURL,
		Images:      current.Images,
		CreatedAt:   current.CreatedAt,
	}

	replaceImages := len(input.Images) > 0
	if replaceImages {
		urls, err := s.storeImages(input.Images)
		if err != nil {
			return nil, err
		}
		product.ImageURL = urls[0]
		product.Images = urls
	}

	if err := s.productRepo.Update(ctx, product, replaceImages); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product; image rows cascade with it.
func (s *catalogService) Delete(ctx context.Context, id int64) error {
	return s.productRepo.Delete(ctx, id)
}

// List returns the catalog with each product's image list resolved.
func (s *catalogService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *catalogService) storeImages(images []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := s.content.Save(img.Data, img.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// validateProduct enforces the catalog invariants before anything reaches
// storage: a name and a strictly positive price.
func validateProduct(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrMissingName
	}
	if input.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
