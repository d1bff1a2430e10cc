package model

import "github.com/shopspring/decimal"

// DefaultCurrency is used for lines persisted without a currency code.
const DefaultCurrency = "USD"

// BulkDiscount unlocks a lower per-unit price once a line's own quantity
// reaches Threshold.
type BulkDiscount struct {
	Threshold int             `json:"threshold"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CartLineItem is one entry of the shopper's cart.
type CartLineItem struct {
	ProductID    string          `json:"productId"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CurrencyCode string          `json:"currencyCode,omitempty"`
	Title        string          `json:"title"`
	// VariantLevel lines are identified by product id and title together.
	VariantLevel bool          `json:"variantLevel,omitempty"`
	IsBundleA    bool          `json:"isBundleA,omitempty"`
	BulkDiscount *BulkDiscount `json:"bulkDiscount,omitempty"`
}

// LineKey identifies a line in a cart.
type LineKey struct {
	ProductID string
	Title     string
}

// Key returns the identity of the line. Whole-product lines ignore the title.
func (l CartLineItem) Key() LineKey {
	if l.VariantLevel {
		return LineKey{ProductID: l.ProductID, Title: l.Title}
	}
	return LineKey{ProductID: l.ProductID}
}

// Matches reports whether the line has the identity described by productID
// and title. An empty title matches whole-product lines only.
func (l CartLineItem) Matches(productID, title string) bool {
	if l.ProductID != productID {
		return false
	}
	if l.VariantLevel {
		return l.Title == title
	}
	return true
}

// Currency returns the line currency, defaulting to USD.
func (l CartLineItem) Currency() string {
	if l.CurrencyCode == "" {
		return DefaultCurrency
	}
	return l.CurrencyCode
}
