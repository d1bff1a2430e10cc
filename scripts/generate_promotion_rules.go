//go:build ignore

// generate_promotion_rules writes sample promotion rule documents for local
// runs: a plain JSON file and a gzipped copy with a different bundle price.
//
//	go run scripts/generate_promotion_rules.go
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/promotion"

	"github.com/shopspring/decimal"
)

func main() {
	dataDir := "data/promotion"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	defaults := promotion.DefaultRules()

	summer := promotion.DefaultRules()
	summer.BundleUnitPrice = decimal.RequireFromString("1.25")
	summer.BundleTitles = append(summer.BundleTitles, "Blueberry Bliss")

	files := map[string]*promotion.Rules{
		"rules.json":           defaults,
		"rules-summer.json.gz": summer,
	}

	for filename, rules := range files {
		if err := rules.Validate(); err != nil {
			log.Fatalf("Invalid rules for %s: %v", filename, err)
		}

		filePath := filepath.Join(dataDir, filename)
		if err := writeRules(filePath, rules, filepath.Ext(filename) == ".gz"); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s (bundle price %s, %d bundle titles)\n",
			filePath, rules.BundleUnitPrice.StringFixed(2), len(rules.BundleTitles))
	}

	fmt.Println("\nPoint PROMOTION_RULES_PATH at one of these files to use it.")
}

func writeRules(filePath string, rules *promotion.Rules, compress bool) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if !compress {
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	}

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	if err := json.NewEncoder(gzipWriter).Encode(rules); err != nil {
		return fmt.Errorf("failed to write rules: %w", err)
	}
	return nil
}
