package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/shopify"

	"github.com/rs/zerolog"
)

// NoShippingAttribute marks a cart whose items are not shipped.
var NoShippingAttribute = model.Attribute{Key: "_requires_shipping", Value: "false"}

// checkoutService implements CheckoutService.
type checkoutService struct {
	storefront StorefrontGateway
	ledger     repository.LedgerRepository
	logger     zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	storefront StorefrontGateway,
	ledger repository.LedgerRepository,
	logger zerolog.Logger,
) CheckoutService {
	if ledger == nil {
		ledger = repository.NewNopLedgerRepository()
	}
	return &checkoutService{
		storefront: storefront,
		ledger:     ledger,
		logger:     logger.With().Str("service", "checkout").Logger(),
	}
}

// CreateCheckout creates a platform cart and returns its checkout URL.
func (s *checkoutService) CreateCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if err := validateLines(req.Lines); err != nil {
		return nil, err
	}

	input := BuildCartInput(req.Lines, req.ShippingAddress, req.ShippingRequired())
	input.Attributes = append(append([]model.Attribute{}, req.Attributes...), input.Attributes...)

	result, err := s.storefront.CreateCart(ctx, input)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("correlation_id", model.CorrelationID(ctx)).
			Msg("cart creation failed")
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}

	if len(result.UserErrors) > 0 {
		s.logger.Warn().
			Str("correlation_id", model.CorrelationID(ctx)).
			Str("user_errors", joinUserErrors(result.UserErrors)).
			Msg("checkout rejected by platform")
		return nil, model.ErrCheckoutRejected
	}

	s.record(ctx, result, len(req.Lines))

	s.logger.Info().
		Str("cart_id", result.CartID).
		Int("line_count", len(req.Lines)).
		Msg("checkout created")

	return &model.CheckoutResponse{
		CheckoutURL: result.CheckoutURL,
		CartID:      result.CartID,
		Cart: &model.Cart{
			ID:          result.CartID,
			CheckoutURL: result.CheckoutURL,
		},
	}, nil
}

// CreateCart creates a platform cart. Every failure, platform validation
// included, is reported as an internal error.
func (s *checkoutService) CreateCart(ctx context.Context, req *model.CartRequest) (*model.CartResponse, error) {
	if err := validateLines(req.Items); err != nil {
		return nil, err
	}

	result, err := s.storefront.CreateCart(ctx, BuildCartInput(req.Items, nil, true))
	if err != nil {
		s.logger.Error().Err(err).Msg("cart creation failed")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if len(result.UserErrors) > 0 {
		s.logger.Error().
			Str("user_errors", joinUserErrors(result.UserErrors)).
			Msg("cart creation rejected by platform")
		return nil, fmt.Errorf("cart creation rejected: %s", joinUserErrors(result.UserErrors))
	}

	s.record(ctx, result, len(req.Items))

	return &model.CartResponse{CheckoutURL: result.CheckoutURL}, nil
}

// record writes the cart to the ledger. Failures are logged only.
func (s *checkoutService) record(ctx context.Context, result *shopify.CartCreateResult, lineCount int) {
	entry := &model.LedgerEntry{
		Kind:          model.LedgerKindCart,
		PlatformID:    result.CartID,
		URL:           result.CheckoutURL,
		LineCount:     lineCount,
		InvoiceStatus: model.InvoiceNotApplicable,
		CorrelationID: model.CorrelationID(ctx),
	}
	if err := s.ledger.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("cart_id", result.CartID).Msg("failed to record cart")
	}
}

// BuildCartInput maps checkout lines onto a cartCreate input. A delivery
// address is only attached when shipping is required; carts that are not
// shipped carry NoShippingAttribute.
func BuildCartInput(lines []model.CheckoutLine, address *model.ShippingAddress, requiresShipping bool) shopify.CartInput {
	input := shopify.CartInput{Lines: make([]shopify.CartLineInput, 0, len(lines))}
	for _, l := range lines {
		input.Lines = append(input.Lines, shopify.CartLineInput{
			MerchandiseID: shopify.NormalizeVariantID(l.ID()),
			Quantity:      l.Quantity,
			Attributes:    l.Attributes,
		})
	}

	switch {
	case !requiresShipping:
		input.Attributes = []model.Attribute{NoShippingAttribute}
	case address != nil:
		country := address.Country
		if country == "" {
			country = defaultCountry
		}
		input.BuyerIdentity = &shopify.BuyerIdentity{
			DeliveryAddressPreferences: []shopify.DeliveryAddressPreference{{
				DeliveryAddress: shopify.MailingAddressInput{
					FirstName: address.FirstName,
					LastName:  address.LastName,
					Address1:  address.Address1,
					Address2:  address.Address2,
					City:      address.City,
					Province:  address.Province,
					Zip:       address.Zip,
					Country:   country,
					Phone:     address.Phone,
				},
			}},
		}
	}
	return input
}

func validateLines(lines []model.CheckoutLine) error {
	if len(lines) == 0 {
		return model.ErrEmptyCheckout
	}
	for i, l := range lines {
		if strings.TrimSpace(l.ID()) == "" {
			return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("lines[%d].merchandiseId is required", i))
		}
		if l.Quantity < 1 {
			return model.ErrInvalidQuantity
		}
	}
	return nil
}

func joinUserErrors(errs []shopify.UserError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
