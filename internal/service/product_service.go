package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/shopify"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	admin      AdminGateway
	storefront StorefrontGateway
	parser     *catalog.Parser
	logger     zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(admin AdminGateway, storefront StorefrontGateway, parser *catalog.Parser, logger zerolog.Logger) ProductService {
	if parser == nil {
		parser = catalog.NewParser(nil)
	}
	return &productService{
		admin:      admin,
		storefront: storefront,
		parser:     parser,
		logger:     logger.With().Str("service", "product").Logger(),
	}
}

// List returns the active products with their first variant price.
func (s *productService) List(ctx context.Context) ([]model.ProductSummary, error) {
	products, err := s.admin.ListProducts(ctx, "active")
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	out := make([]model.ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, model.ProductSummary{
			ID:     strconv.FormatInt(p.ID, 10),
			Title:  p.Title,
			Price:  p.FirstVariantPrice(),
			Handle: p.Handle,
		})
	}

	s.logger.Debug().Int("count", len(out)).Msg("products listed")
	return out, nil
}

// GetByHandle returns the typed products behind handle.
func (s *productService) GetByHandle(ctx context.Context, handle string) ([]catalog.Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, model.ErrProductNotFound
	}

	node, err := s.storefront.ProductByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, shopify.ErrNotFound) {
			return nil, model.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("handle", handle).Msg("failed to fetch product")
		return nil, fmt.Errorf("failed to fetch product %s: %w", handle, err)
	}

	products, err := s.parser.Expand(*node)
	if err != nil {
		s.logger.Error().Err(err).Str("handle", handle).Msg("failed to parse product")
		return nil, fmt.Errorf("failed to parse product %s: %w", handle, err)
	}
	return products, nil
}
