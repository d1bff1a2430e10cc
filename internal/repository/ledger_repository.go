package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrLedgerEntryNotFound is returned when an update matches no row.
var ErrLedgerEntryNotFound = errors.New("ledger entry not found")

// ledgerRepository implements LedgerRepository using PostgreSQL.
type ledgerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLedgerRepository creates a new PostgreSQL-backed ledger repository.
func NewLedgerRepository(pool *pgxpool.Pool, logger zerolog.Logger) LedgerRepository {
	return &ledgerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "ledger").Logger(),
	}
}

const ledgerColumns = `id, kind, platform_id, url, line_count, invoice_status, invoice_attempts, correlation_id, created_at, updated_at`

// Create inserts a new ledger entry.
func (r *ledgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = entry.CreatedAt
	if entry.InvoiceStatus == "" {
		entry.InvoiceStatus = model.InvoiceNotApplicable
	}

	query := `
		INSERT INTO order_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Kind,
		entry.PlatformID,
		entry.URL,
		entry.LineCount,
		entry.InvoiceStatus,
		entry.InvoiceAttempts,
		entry.CorrelationID,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("kind", entry.Kind).
			Str("platform_id", entry.PlatformID).
			Msg("failed to create ledger entry")
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	r.logger.Debug().
		Str("ledger_id", entry.ID.String()).
		Str("kind", entry.Kind).
		Msg("ledger entry created")

	return nil
}

// GetByPlatformID retrieves an entry by kind and platform id.
func (r *ledgerRepository) GetByPlatformID(ctx context.Context, kind, platformID string) (*model.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM order_ledger WHERE kind = $1 AND platform_id = $2`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, kind, platformID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("platform_id", platformID).Msg("ledger entry not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("platform_id", platformID).Msg("failed to query ledger entry")
		return nil, fmt.Errorf("failed to query ledger entry: %w", err)
	}
	return entry, nil
}

// UpdateInvoice records the outcome of an invoice delivery for a draft order.
func (r *ledgerRepository) UpdateInvoice(ctx context.Context, platformID, status string, attempts int) error {
	query := `
		UPDATE order_ledger
		SET invoice_status = $1,
		    invoice_attempts = invoice_attempts + $2,
		    updated_at = $3
		WHERE kind = $4 AND platform_id = $5
	`

	tag, err := r.pool.Exec(ctx, query, status, attempts, time.Now().UTC(), model.LedgerKindDraftOrder, platformID)
	if err != nil {
		r.logger.Error().Err(err).Str("platform_id", platformID).Msg("failed to update invoice status")
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLedgerEntryNotFound
	}
	return nil
}

// ListByInvoiceStatus lists draft-order entries with the given invoice status.
func (r *ledgerRepository) ListByInvoiceStatus(ctx context.Context, status string, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + ledgerColumns + `
		FROM order_ledger
		WHERE kind = $1 AND invoice_status = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.LedgerKindDraftOrder, status, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("invoice_status", status).Msg("failed to query ledger entries")
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.LedgerEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan ledger row")
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating ledger rows")
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

func scanEntry(row pgx.Row) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	err := row.Scan(
		&e.ID,
		&e.Kind,
		&e.PlatformID,
		&e.URL,
		&e.LineCount,
		&e.InvoiceStatus,
		&e.InvoiceAttempts,
		&e.CorrelationID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// nopLedgerRepository is used when the database is disabled.
type nopLedgerRepository struct{}

// NewNopLedgerRepository returns a ledger that records nothing.
func NewNopLedgerRepository() LedgerRepository {
	return nopLedgerRepository{}
}

func (nopLedgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) error {
	return nil
}

func (nopLedgerRepository) GetByPlatformID(ctx context.Context, kind, platformID string) (*model.LedgerEntry, error) {
	return nil, nil
}

func (nopLedgerRepository) UpdateInvoice(ctx context.Context, platformID, status string, attempts int) error {
	return nil
}

func (nopLedgerRepository) ListByInvoiceStatus(ctx context.Context, status string, limit int) ([]model.LedgerEntry, error) {
	return []model.LedgerEntry{}, nil
}
