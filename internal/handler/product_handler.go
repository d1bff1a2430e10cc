package handler

import (
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CatalogResponse wraps typed catalog products.
type CatalogResponse struct {
	Products []catalog.Product `json:"products"`
}

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/shopify/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, r, err, "failed to fetch products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ProductListResponse{Products: products})
}

// GetByHandle handles GET /api/shopify/products/{handle} requests.
func (h *ProductHandler) GetByHandle(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	if handle == "" {
		writeError(w, r, http.StatusBadRequest, "product handle is required", h.logger)
		return
	}

	products, err := h.service.GetByHandle(r.Context(), handle)
	if err != nil {
		respondError(w, r, err, "failed to fetch product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CatalogResponse{Products: products})
}
