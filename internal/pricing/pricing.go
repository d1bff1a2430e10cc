// Package pricing computes effective unit prices and totals for cart lines.
package pricing

import (
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultBundleUnitPrice is charged per bundle-tagged unit once the cart
// holds at least BundleMinQuantity of them.
var DefaultBundleUnitPrice = decimal.RequireFromString("1.50")

// BundleMinQuantity is the cart-wide bundle quantity that activates the
// bundle price.
const BundleMinQuantity = 2

// Engine applies bundle and bulk discount rules.
type Engine struct {
	bundleUnitPrice decimal.Decimal
}

// NewEngine creates an engine charging bundleUnitPrice for bundle lines.
// A zero price falls back to DefaultBundleUnitPrice.
func NewEngine(bundleUnitPrice decimal.Decimal) *Engine {
	if bundleUnitPrice.IsZero() {
		bundleUnitPrice = DefaultBundleUnitPrice
	}
	return &Engine{bundleUnitPrice: bundleUnitPrice}
}

// Default returns an engine using DefaultBundleUnitPrice.
func Default() *Engine {
	return NewEngine(DefaultBundleUnitPrice)
}

// BundleUnitPrice returns the configured bundle price.
func (e *Engine) BundleUnitPrice() decimal.Decimal {
	return e.bundleUnitPrice
}

// BundleQuantity sums the quantities of all bundle-tagged lines.
func BundleQuantity(lines []model.CartLineItem) int {
	total := 0
	for _, l := range lines {
		if l.IsBundleA {
			total += l.Quantity
		}
	}
	return total
}

// EffectiveUnitPrice returns the per-unit price to charge for target given
// the whole cart. Bundle pricing takes precedence over bulk pricing.
func (e *Engine) EffectiveUnitPrice(lines []model.CartLineItem, target model.CartLineItem) decimal.Decimal {
	if target.IsBundleA && BundleQuantity(lines) >= BundleMinQuantity {
		return e.bundleUnitPrice
	}
	if target.BulkDiscount != nil && target.Quantity >= target.BulkDiscount.Threshold {
		return target.BulkDiscount.UnitPrice
	}
	return target.UnitPrice
}

// LineTotal is the effective unit price multiplied by the line quantity.
func (e *Engine) LineTotal(lines []model.CartLineItem, target model.CartLineItem) decimal.Decimal {
	return e.EffectiveUnitPrice(lines, target).Mul(decimal.NewFromInt(int64(target.Quantity)))
}

// Total sums LineTotal over every line.
func (e *Engine) Total(lines []model.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(e.LineTotal(lines, l))
	}
	return total
}
