package repository

import (
	"context"

	"storefront/internal/model"
)

// LedgerRepository records the platform objects this service created.
type LedgerRepository interface {
	// Create inserts a new ledger entry. ID and timestamps are filled in
	// when zero.
	Create(ctx context.Context, entry *model.LedgerEntry) error

	// GetByPlatformID retrieves an entry by kind and platform id. A missing
	// entry returns nil, nil.
	GetByPlatformID(ctx context.Context, kind, platformID string) (*model.LedgerEntry, error)

	// UpdateInvoice records the outcome of an invoice delivery.
	UpdateInvoice(ctx context.Context, platformID, status string, attempts int) error

	// ListByInvoiceStatus lists draft-order entries with the given invoice
	// status, newest first.
	ListByInvoiceStatus(ctx context.Context, status string, limit int) ([]model.LedgerEntry, error)
}
