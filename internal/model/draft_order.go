package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BonusItem is a catalog variant added to a gift bag.
type BonusItem struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Title     string `json:"title,omitempty"`
}

// DraftOrderRequest is the payload of POST /api/shopify/draft-order.
type DraftOrderRequest struct {
	BagPrice     decimal.Decimal `json:"bagPrice"`
	DogName      string          `json:"dogName" validate:"required"`
	Note         string          `json:"note"`
	DeliveryInfo string          `json:"deliveryInfo" validate:"required"`
	BonusItems   []BonusItem     `json:"bonusItems" validate:"omitempty,dive"`
}

// DraftOrderResponse is returned after the invoice was sent.
type DraftOrderResponse struct {
	InvoiceURL string `json:"invoiceUrl"`
}

// DeliveryAddress is the address parsed from free-text delivery info.
type DeliveryAddress struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Ledger entry kinds.
const (
	LedgerKindCart       = "cart"
	LedgerKindDraftOrder = "draft_order"
)

// Invoice states recorded in the ledger.
const (
	InvoiceNotApplicable = "not_applicable"
	InvoiceSent          = "sent"
	InvoiceFailed        = "failed"
)

// LedgerEntry records a platform object created by this service.
type LedgerEntry struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Kind            string    `json:"kind" db:"kind"`
	PlatformID      string    `json:"platformId" db:"platform_id"`
	URL             string    `json:"url" db:"url"`
	LineCount       int       `json:"lineCount" db:"line_count"`
	InvoiceStatus   string    `json:"invoiceStatus" db:"invoice_status"`
	InvoiceAttempts int       `json:"invoiceAttempts" db:"invoice_attempts"`
	CorrelationID   string    `json:"correlationId,omitempty" db:"correlation_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// InvoiceResendResponse is returned by the admin resend endpoint.
type InvoiceResendResponse struct {
	DraftOrderID string `json:"draftOrderId"`
	InvoiceURL   string `json:"invoiceUrl"`
	Attempts     int    `json:"attempts"`
}

// LedgerListResponse wraps ledger entries.
type LedgerListResponse struct {
	Entries []LedgerEntry `json:"entries"`
}
