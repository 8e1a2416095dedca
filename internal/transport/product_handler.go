package transport

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"boutique/internal/database"
	"boutique/internal/middleware"
	"boutique/internal/repository"
	"boutique/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers catalog routes. Listing is public; mutations
// require an authenticated admin.
func (h *ProductHandler) RegisterRoutes(r chi.Router, auth, admin func(http.Handler) http.Handler) {
	r.Get("/api/products", h.List)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(admin)
		r.Post("/api/products", h.Create)
		r.Put("/api/products/{id}", h.Update)
		r.Delete("/api/products/{id}", h.Delete)
	})
}

// List returns every product with its image list, primary image first.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles product creation from a multipart form with optional
// image uploads.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseProductForm(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.Create(r.Context(), *input)
	if err != nil {
		h.respondCatalogError(w, err, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "id": product.ID})
}

// Update handles product edits; new uploads replace the image list.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	input, err := h.parseProductForm(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.catalog.Update(r.Context(), id, *input); err != nil {
		h.respondCatalogError(w, err, "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Delete removes a product and its images.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		h.respondCatalogError(w, err, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// parseProductForm reads the multipart fields (name, price, desc,
// category) and any uploaded image bytes.
func (h *ProductHandler) parseProductForm(r *http.Request) (*service.ProductInput, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("invalid multipart form")
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return nil, errors.New("price must be a number")
	}

	input := &service.ProductInput{
		Name:        r.FormValue("name"),
		Price:       price,
		Description: r.FormValue("desc"),
		Category:    r.FormValue("category"),
	}

	if r.MultipartForm == nil {
		return input, nil
	}

	for _, header := range r.MultipartForm.File["images"] {
		file, err := header.Open()
		if err != nil {
			return nil, errors.New("failed to read upload")
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, errors.New("failed to read upload")
		}
		input.Images = append(input.Images, service.ImageUpload{
			Filename: header.Filename,
			Data:     data,
		})
	}

	return input, nil
}

func (h *ProductHandler) respondCatalogError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrMissingName), errors.Is(err, service.ErrInvalidPrice):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrProductExists):
		middleware.RespondWithError(w, http.StatusConflict, "product with this name already exists")
	case errors.Is(err, database.ErrTransient):
		h.logger.Warn("Transient store error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "store temporarily unavailable")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
