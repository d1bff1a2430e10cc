package service

import (
	"context"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/shopify"
)

// StorefrontGateway is the part of the Storefront API the services use.
type StorefrontGateway interface {
	CreateCart(ctx context.Context, input shopify.CartInput) (*shopify.CartCreateResult, error)
	ProductByHandle(ctx context.Context, handle string) (*shopify.ProductNode, error)
	Products(ctx context.Context, first int) ([]shopify.ProductNode, error)
}

// AdminGateway is the part of the Admin API the services use.
type AdminGateway interface {
	CreateDraftOrder(ctx context.Context, input shopify.DraftOrderInput) (*shopify.DraftOrder, error)
	SendInvoice(ctx context.Context, draftOrderID int64, invoice shopify.Invoice) error
	GetDraftOrder(ctx context.Context, draftOrderID int64) (*shopify.DraftOrder, error)
	ListProducts(ctx context.Context, status string) ([]shopify.AdminProduct, error)
}

// CheckoutService turns client carts into platform carts.
type CheckoutService interface {
	// CreateCheckout creates a platform cart and returns its checkout URL.
	// Platform validation failures are reported as model.ErrCheckoutRejected.
	CreateCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// CreateCart creates a platform cart for the legacy cart endpoint.
	CreateCart(ctx context.Context, req *model.CartRequest) (*model.CartResponse, error)
}

// DraftOrderService creates gift-bag draft orders and delivers their invoices.
type DraftOrderService interface {
	// CreateDraftOrder creates the draft order and sends its invoice.
	CreateDraftOrder(ctx context.Context, req *model.DraftOrderRequest) (*model.DraftOrderResponse, error)

	// ResendInvoice retries invoice delivery for an existing draft order.
	ResendInvoice(ctx context.Context, draftOrderID string) (*model.InvoiceResendResponse, error)

	// ListFailedInvoices lists draft orders whose invoice was never delivered.
	ListFailedInvoices(ctx context.Context, limit int) ([]model.LedgerEntry, error)
}

// ProductService reads the catalog.
type ProductService interface {
	// List returns the active products.
	List(ctx context.Context) ([]model.ProductSummary, error)

	// GetByHandle returns the typed products behind a handle. A bundle source
	// product expands into one product per flavour.
	GetByHandle(ctx context.Context, handle string) ([]catalog.Product, error)
}
