// Package catalog turns raw storefront product payloads into typed products
// and builds cart lines from them.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/promotion"
	"storefront/internal/shopify"

	"github.com/shopspring/decimal"
)

// Kind tags how a product is sold.
type Kind int

const (
	// KindStandard is a product with a single purchasable variant.
	KindStandard Kind = iota
	// KindVariantBearing is a product whose variants are chosen by the shopper.
	KindVariantBearing
	// KindPromotionalBundle is a product priced by the cart-wide bundle rule.
	KindPromotionalBundle
)

func (k Kind) String() string {
	switch k {
	case KindVariantBearing:
		return "variant_bearing"
	case KindPromotionalBundle:
		return "promotional_bundle"
	default:
		return "standard"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "standard":
		*k = KindStandard
	case "variant_bearing":
		*k = KindVariantBearing
	case "promotional_bundle":
		*k = KindPromotionalBundle
	default:
		return fmt.Errorf("unknown product kind %q", text)
	}
	return nil
}

// Variant is a purchasable variant of a product.
type Variant struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Price            decimal.Decimal `json:"price"`
	CurrencyCode     string          `json:"currencyCode"`
	AvailableForSale bool            `json:"availableForSale"`
}

// Product is a typed catalog product.
type Product struct {
	Kind         Kind                `json:"kind"`
	ID           string              `json:"id"`
	Handle       string              `json:"handle"`
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	Price        decimal.Decimal     `json:"price"`
	CurrencyCode string              `json:"currencyCode"`
	Variants     []Variant           `json:"variants"`
	BulkDiscount *model.BulkDiscount `json:"bulkDiscount,omitempty"`
}

var (
	// ErrNoVariants is returned for products that cannot be bought.
	ErrNoVariants = errors.New("product has no variants")
	// ErrUnknownVariant is returned when a selected variant does not exist.
	ErrUnknownVariant = errors.New("unknown variant")
)

const (
	singleVariantTitle = "Single"
	bagVariantPrefix   = "Bag of "
)

var bagOfPattern = regexp.MustCompile(`^Bag of (\d+)`)

// Parser applies the promotion rules while typing products.
type Parser struct {
	rules *promotion.Rules
}

// NewParser creates a parser. Nil rules use promotion.DefaultRules.
func NewParser(rules *promotion.Rules) *Parser {
	if rules == nil {
		rules = promotion.DefaultRules()
	}
	return &Parser{rules: rules}
}

// Parse types a single product payload.
func (p *Parser) Parse(node shopify.ProductNode) (Product, error) {
	variants, err := parseVariants(node.VariantList())
	if err != nil {
		return Product{}, fmt.Errorf("product %s: %w", node.ID, err)
	}

	price, currency, err := parseMoney(node.PriceRange.MinVariantPrice)
	if err != nil {
		return Product{}, fmt.Errorf("product %s: %w", node.ID, err)
	}

	product := Product{
		ID:           node.ID,
		Handle:       node.Handle,
		Title:        node.Title,
		Description:  node.Description,
		Price:        price,
		CurrencyCode: currency,
		Variants:     variants,
	}

	switch {
	case p.rules.IsBundleTitle(node.Title):
		product.Kind = KindPromotionalBundle
	case len(variants) > 1:
		product.Kind = KindVariantBearing
		product.BulkDiscount = DeriveBulkDiscount(variants)
	default:
		product.Kind = KindStandard
	}
	return product, nil
}

// Expand types a product payload, splitting the bundle source product into
// one promotional-bundle product per variant.
func (p *Parser) Expand(node shopify.ProductNode) ([]Product, error) {
	if node.Title != p.rules.BundleSourceProduct {
		product, err := p.Parse(node)
		if err != nil {
			return nil, err
		}
		return []Product{product}, nil
	}

	variants, err := parseVariants(node.VariantList())
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", node.ID, err)
	}

	out := make([]Product, 0, len(variants))
	for _, v := range variants {
		out = append(out, Product{
			Kind:         KindPromotionalBundle,
			ID:           v.ID,
			Handle:       node.Handle,
			Title:        v.Title,
			Description:  node.Description,
			Price:        v.Price,
			CurrencyCode: v.CurrencyCode,
			Variants:     []Variant{v},
		})
	}
	return out, nil
}

// ExpandAll expands every payload and drops duplicate product ids, keeping
// the first occurrence.
func (p *Parser) ExpandAll(nodes []shopify.ProductNode) ([]Product, error) {
	seen := make(map[string]bool, len(nodes))
	var out []Product
	for _, node := range nodes {
		if seen[node.ID] {
			continue
		}
		seen[node.ID] = true

		products, err := p.Expand(node)
		if err != nil {
			return nil, err
		}
		out = append(out, products...)
	}
	return out, nil
}

// DeriveBulkDiscount recognises a "Single" plus "Bag of N" variant pair. The
// discount unlocks at N units at the bag price divided by N. The unit price is
// kept exact; N units cost the bag price once rounded for display.
func DeriveBulkDiscount(variants []Variant) *model.BulkDiscount {
	if len(variants) != 2 {
		return nil
	}

	var single, bag *Variant
	for i := range variants {
		switch {
		case variants[i].Title == singleVariantTitle:
			single = &variants[i]
		case strings.HasPrefix(variants[i].Title, bagVariantPrefix):
			bag = &variants[i]
		}
	}
	if single == nil || bag == nil {
		return nil
	}

	match := bagOfPattern.FindStringSubmatch(bag.Title)
	if match == nil {
		return nil
	}
	threshold, err := strconv.Atoi(match[1])
	if err != nil || threshold <= 0 {
		return nil
	}

	return &model.BulkDiscount{
		Threshold: threshold,
		UnitPrice: bag.Price.Div(decimal.NewFromInt(int64(threshold))),
	}
}

// Variant returns the variant with id, or the first variant when id is empty.
func (p Product) Variant(id string) (Variant, error) {
	if len(p.Variants) == 0 {
		return Variant{}, ErrNoVariants
	}
	if id == "" {
		return p.Variants[0], nil
	}
	for _, v := range p.Variants {
		if v.ID == id {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %s", ErrUnknownVariant, id)
}

// LineItem builds the cart line for quantity units of the product. variantID
// selects a variant of variant-bearing products and is ignored otherwise.
func (p Product) LineItem(variantID string, quantity int) (model.CartLineItem, error) {
	line := model.CartLineItem{
		Quantity:     quantity,
		CurrencyCode: p.CurrencyCode,
		Title:        p.Title,
	}

	switch {
	case p.Kind == KindPromotionalBundle:
		v, err := p.Variant("")
		if err != nil {
			return model.CartLineItem{}, err
		}
		line.ProductID = v.ID
		line.UnitPrice = v.Price
		line.IsBundleA = true

	case p.BulkDiscount != nil:
		single, err := p.singleVariant()
		if err != nil {
			return model.CartLineItem{}, err
		}
		line.ProductID = single.ID
		line.UnitPrice = single.Price
		discount := *p.BulkDiscount
		line.BulkDiscount = &discount

	case p.Kind == KindVariantBearing:
		v, err := p.Variant(variantID)
		if err != nil {
			return model.CartLineItem{}, err
		}
		line.ProductID = v.ID
		line.UnitPrice = v.Price
		line.Title = p.Title + " - " + v.Title
		line.VariantLevel = true

	default:
		v, err := p.Variant("")
		if err != nil {
			return model.CartLineItem{}, err
		}
		line.ProductID = v.ID
		line.UnitPrice = v.Price
	}
	return line, nil
}

func (p Product) singleVariant() (Variant, error) {
	for _, v := range p.Variants {
		if v.Title == singleVariantTitle {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %s", ErrUnknownVariant, singleVariantTitle)
}

func parseVariants(nodes []shopify.VariantNode) ([]Variant, error) {
	out := make([]Variant, 0, len(nodes))
	for _, n := range nodes {
		price, currency, err := parseMoney(n.Price)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", n.ID, err)
		}
		out = append(out, Variant{
			ID:               n.ID,
			Title:            n.Title,
			Price:            price,
			CurrencyCode:     currency,
			AvailableForSale: n.AvailableForSale,
		})
	}
	return out, nil
}

func parseMoney(m shopify.Money) (decimal.Decimal, string, error) {
	currency := m.CurrencyCode
	if currency == "" {
		currency = model.DefaultCurrency
	}
	if m.Amount == "" {
		return decimal.Zero, currency, nil
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid amount %q: %w", m.Amount, err)
	}
	return amount, currency, nil
}
