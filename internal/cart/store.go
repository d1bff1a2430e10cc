// Package cart holds the shopper's cart and talks to the storefront checkout
// endpoint on its behalf.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotLoaded is returned by mutations issued before Load completed.
	ErrNotLoaded = errors.New("cart not loaded yet")

	// ErrInvalidLine is returned for lines without a product id or with a
	// negative quantity.
	ErrInvalidLine = errors.New("invalid cart line")
)

// Store is the shopper's cart. Every mutation is persisted to the storage
// before it returns.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	engine  *pricing.Engine
	logger  zerolog.Logger
	lines   []model.CartLineItem
	loaded  bool
}

// NewStore creates a cart store in the loading state.
func NewStore(storage Storage, engine *pricing.Engine, logger zerolog.Logger) *Store {
	if engine == nil {
		engine = pricing.Default()
	}
	return &Store{
		storage: storage,
		engine:  engine,
		logger:  logger.With().Str("component", "cart-store").Logger(),
	}
}

// Load reads the persisted cart once. A read failure leaves an empty cart.
func (s *Store) Load(ctx context.Context) {
	lines, err := s.storage.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load cart, starting empty")
		lines = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = normalise(lines)
	s.loaded = true

	s.logger.Debug().Int("line_count", len(s.lines)).Msg("cart loaded")
}

// Loaded reports whether Load has completed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Items returns a copy of the lines. ok is false while the cart is loading.
func (s *Store) Items() (lines []model.CartLineItem, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, false
	}
	return append([]model.CartLineItem{}, s.lines...), true
}

// Quantity returns the quantity of the matching line. ok is false while the
// cart is loading; a loaded cart without the line reports 0, true.
func (s *Store) Quantity(productID, title string) (quantity int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return 0, false
	}
	for _, l := range s.lines {
		if l.Matches(productID, title) {
			return l.Quantity, true
		}
	}
	return 0, true
}

// AddOrUpdate inserts line or overwrites the line with the same identity.
// A zero quantity removes the line.
func (s *Store) AddOrUpdate(ctx context.Context, line model.CartLineItem) error {
	if line.ProductID == "" || line.Quantity < 0 {
		return fmt.Errorf("%w: product %q quantity %d", ErrInvalidLine, line.ProductID, line.Quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	key := line.Key()
	idx := -1
	for i, l := range s.lines {
		if l.Key() == key {
			idx = i
			break
		}
	}

	updated := append([]model.CartLineItem{}, s.lines...)
	switch {
	case line.Quantity == 0 && idx >= 0:
		updated = append(updated[:idx], updated[idx+1:]...)
	case line.Quantity == 0:
		return nil
	case idx >= 0:
		updated[idx] = line
	default:
		updated = append(updated, line)
	}

	s.commit(ctx, updated)
	return nil
}

// Remove deletes the line with the given identity. The title is only used
// for variant-level lines.
func (s *Store) Remove(ctx context.Context, productID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	updated := make([]model.CartLineItem, 0, len(s.lines))
	for _, l := range s.lines {
		if !l.Matches(productID, title) {
			updated = append(updated, l)
		}
	}
	if len(updated) == len(s.lines) {
		return nil
	}

	s.commit(ctx, updated)
	return nil
}

// Reset empties the cart.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	s.commit(ctx, []model.CartLineItem{})
	return nil
}

// Total is the sum of effective line totals. A loading cart totals zero.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Total(s.lines)
}

// UnitPrice returns the effective unit price of the matching line.
func (s *Store) UnitPrice(productID, title string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lines {
		if l.Matches(productID, title) {
			return s.engine.EffectiveUnitPrice(s.lines, l), true
		}
	}
	return decimal.Zero, false
}

// commit swaps in the new lines and persists them. Persistence failures are
// logged; the in-memory cart stays authoritative for the session.
func (s *Store) commit(ctx context.Context, lines []model.CartLineItem) {
	s.lines = lines
	if err := s.storage.Save(ctx, lines); err != nil {
		s.logger.Error().Err(err).Int("line_count", len(lines)).Msg("failed to persist cart")
	}
}

// normalise drops zero-quantity lines and keeps the last line per identity.
func normalise(lines []model.CartLineItem) []model.CartLineItem {
	out := make([]model.CartLineItem, 0, len(lines))
	index := make(map[model.LineKey]int, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if i, ok := index[l.Key()]; ok {
			out[i] = l
			continue
		}
		index[l.Key()] = len(out)
		out = append(out, l)
	}
	return out
}
