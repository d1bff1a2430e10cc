// Package promotion loads the store's promotion rules: the bundle price and
// which products take part in the bundle.
package promotion

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Default rule values.
var (
	DefaultBundleUnitPrice     = decimal.RequireFromString("1.50")
	DefaultBundleTitles        = []string{"Strawberry Shortcake", "Allergy Fighter"}
	DefaultBundleSourceProduct = "Organic Doggy Ice Cream"
)

// Rules describes the promotional bundle.
type Rules struct {
	BundleUnitPrice     decimal.Decimal `json:"bundleUnitPrice"`
	BundleTitles        []string        `json:"bundleTitles"`
	BundleSourceProduct string          `json:"bundleSourceProduct"`
}

// DefaultRules returns the built-in rules.
func DefaultRules() *Rules {
	return &Rules{
		BundleUnitPrice:     DefaultBundleUnitPrice,
		BundleTitles:        append([]string(nil), DefaultBundleTitles...),
		BundleSourceProduct: DefaultBundleSourceProduct,
	}
}

// Validate rejects negative prices and blank titles.
func (r *Rules) Validate() error {
	if r.BundleUnitPrice.IsNegative() {
		return errors.New("bundleUnitPrice must not be negative")
	}
	for i, title := range r.BundleTitles {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("bundleTitles[%d] is blank", i)
		}
	}
	return nil
}

// IsBundleTitle reports whether a product with this title is part of the
// bundle.
func (r *Rules) IsBundleTitle(title string) bool {
	for _, t := range r.BundleTitles {
		if t == title {
			return true
		}
	}
	return false
}

// Loader loads promotion rules from a location.
type Loader interface {
	// Load reads the rules document at path.
	Load(ctx context.Context, path string) (*Rules, error)
}

// decode reads a JSON rules document, transparently un-gzipping it. Fields
// missing from the document keep their default values.
func decode(r io.Reader) (*Rules, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	rules := DefaultRules()
	if err := json.NewDecoder(src).Decode(rules); err != nil {
		return nil, fmt.Errorf("failed to decode promotion rules: %w", err)
	}
	if rules.BundleUnitPrice.IsZero() {
		rules.BundleUnitPrice = DefaultBundleUnitPrice
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid promotion rules: %w", err)
	}
	return rules, nil
}
