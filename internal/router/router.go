package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// AdminPrefix is the path prefix guarded by the admin API key.
const AdminPrefix = "/api/admin/"

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Checkout   *handler.CheckoutHandler
	DraftOrder *handler.DraftOrderHandler
	Product    *handler.ProductHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// Admin routes are only mounted when adminAPIKey is set.
func New(h Handlers, adminAPIKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("POST /api/shopify/cart", h.Checkout.Cart)
	mux.HandleFunc("POST /api/shopify/checkout", h.Checkout.Checkout)
	mux.HandleFunc("POST /api/shopify/draft-order", h.DraftOrder.Create)
	mux.HandleFunc("GET /api/shopify/products", h.Product.List)
	mux.HandleFunc("GET /api/shopify/products/{handle}", h.Product.GetByHandle)

	if adminAPIKey != "" {
		mux.HandleFunc("POST /api/admin/draft-orders/{id}/send-invoice", h.DraftOrder.ResendInvoice)
		mux.HandleFunc("GET /api/admin/invoices/failed", h.DraftOrder.FailedInvoices)
	} else {
		logger.Info().Msg("admin routes disabled, ADMIN_API_KEY not set")
	}

	// Apply middleware in order: Recovery -> Logging -> RequestID -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	if adminAPIKey != "" {
		handler = middleware.APIKeyAuth(adminAPIKey, AdminPrefix, logger)(handler)
	}
	handler = middleware.CORS(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
