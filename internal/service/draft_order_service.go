package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/shopify"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	defaultCountry = "US"

	giftBagTitle       = "Puppy Palentines Bag"
	needToFindMarker   = "Need to find:"
	defaultFailedLimit = 50
)

// InvoiceSettings controls invoice delivery.
type InvoiceSettings struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Recipient   string
}

// InvoiceError is returned when every invoice attempt failed.
type InvoiceError struct {
	DraftOrderID int64
	Attempts     int
	Err          error
}

func (e *InvoiceError) Error() string {
	return fmt.Sprintf("invoice for draft order %d not sent after %d attempts: %v", e.DraftOrderID, e.Attempts, e.Err)
}

func (e *InvoiceError) Unwrap() error {
	return e.Err
}

// DraftOrderOption configures a draft order service.
type DraftOrderOption func(*draftOrderService)

// WithRetryTimer replaces the timer used between invoice attempts.
func WithRetryTimer(newTimer func() backoff.Timer) DraftOrderOption {
	return func(s *draftOrderService) {
		s.newTimer = newTimer
	}
}

// draftOrderService implements DraftOrderService.
type draftOrderService struct {
	admin    AdminGateway
	ledger   repository.LedgerRepository
	settings InvoiceSettings
	newTimer func() backoff.Timer
	logger   zerolog.Logger
}

// NewDraftOrderService creates a new draft order service.
func NewDraftOrderService(
	admin AdminGateway,
	ledger repository.LedgerRepository,
	settings InvoiceSettings,
	logger zerolog.Logger,
	opts ...DraftOrderOption,
) DraftOrderService {
	if ledger == nil {
		ledger = repository.NewNopLedgerRepository()
	}
	if settings.MaxAttempts < 1 {
		settings.MaxAttempts = 1
	}
	s := &draftOrderService{
		admin:    admin,
		ledger:   ledger,
		settings: settings,
		newTimer: func() backoff.Timer { return nil },
		logger:   logger.With().Str("service", "draft-order").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDraftOrder creates the gift-bag draft order and sends its invoice.
// The draft order always exists before the first invoice attempt.
func (s *draftOrderService) CreateDraftOrder(ctx context.Context, req *model.DraftOrderRequest) (*model.DraftOrderResponse, error) {
	if err := validateDraftOrderRequest(req); err != nil {
		return nil, err
	}

	address, requiresShipping, err := ParseDeliveryInfo(req.DeliveryInfo)
	if err != nil {
		s.logger.Warn().Str("delivery_info", req.DeliveryInfo).Msg("unparseable delivery info")
		return nil, err
	}

	input := BuildDraftOrder(req, address, requiresShipping)
	draft, err := s.admin.CreateDraftOrder(ctx, input)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("correlation_id", model.CorrelationID(ctx)).
			Msg("draft order creation failed")
		return nil, fmt.Errorf("failed to create draft order: %w", err)
	}

	s.logger.Info().
		Int64("draft_order_id", draft.ID).
		Int("line_count", len(input.LineItems)).
		Bool("requires_shipping", requiresShipping).
		Msg("draft order created")

	attempts, sendErr := s.sendInvoice(ctx, draft.ID, orderInvoice(s.settings.Recipient, req.DogName))

	status := model.InvoiceSent
	if sendErr != nil {
		status = model.InvoiceFailed
	}
	entry := &model.LedgerEntry{
		Kind:            model.LedgerKindDraftOrder,
		PlatformID:      strconv.FormatInt(draft.ID, 10),
		URL:             draft.InvoiceURL,
		LineCount:       len(input.LineItems),
		InvoiceStatus:   status,
		InvoiceAttempts: attempts,
		CorrelationID:   model.CorrelationID(ctx),
	}
	if err := s.ledger.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Int64("draft_order_id", draft.ID).Msg("failed to record draft order")
	}

	if sendErr != nil {
		return nil, sendErr
	}
	return &model.DraftOrderResponse{InvoiceURL: draft.InvoiceURL}, nil
}

// ResendInvoice retries invoice delivery for a draft order whose invoice has
// not been sent.
func (s *draftOrderService) ResendInvoice(ctx context.Context, draftOrderID string) (*model.InvoiceResendResponse, error) {
	platformID := shopify.NumericID(strings.TrimSpace(draftOrderID))
	id, err := strconv.ParseInt(platformID, 10, 64)
	if err != nil || id <= 0 {
		return nil, model.ErrDraftNotFound
	}

	entry, err := s.ledger.GetByPlatformID(ctx, model.LedgerKindDraftOrder, platformID)
	if err != nil {
		s.logger.Error().Err(err).Int64("draft_order_id", id).Msg("ledger lookup failed")
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if entry != nil && entry.InvoiceStatus == model.InvoiceSent {
		return nil, model.ErrInvoiceNotPending
	}

	draft, err := s.admin.GetDraftOrder(ctx, id)
	if err != nil {
		if errors.Is(err, shopify.ErrNotFound) {
			return nil, model.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to fetch draft order: %w", err)
	}
	if draft.Status == shopify.DraftOrderInvoiceSent || draft.Status == shopify.DraftOrderCompleted {
		return nil, model.ErrInvoiceNotPending
	}

	subject := draft.Note
	if subject == "" {
		subject = "Puppy Palentines Order"
	}
	invoice := shopify.Invoice{
		To:            s.settings.Recipient,
		Subject:       subject,
		CustomMessage: "Invoice resent for " + subject,
	}

	attempts, sendErr := s.sendInvoice(ctx, id, invoice)

	status := model.InvoiceSent
	if sendErr != nil {
		status = model.InvoiceFailed
	}
	if err := s.ledger.UpdateInvoice(ctx, platformID, status, attempts); err != nil && !errors.Is(err, repository.ErrLedgerEntryNotFound) {
		s.logger.Error().Err(err).Int64("draft_order_id", id).Msg("failed to update ledger")
	}

	if sendErr != nil {
		return nil, sendErr
	}

	s.logger.Info().Int64("draft_order_id", id).Int("attempts", attempts).Msg("invoice resent")
	return &model.InvoiceResendResponse{
		DraftOrderID: platformID,
		InvoiceURL:   draft.InvoiceURL,
		Attempts:     attempts,
	}, nil
}

// ListFailedInvoices lists draft orders whose invoice delivery failed.
func (s *draftOrderService) ListFailedInvoices(ctx context.Context, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		limit = defaultFailedLimit
	}
	entries, err := s.ledger.ListByInvoiceStatus(ctx, model.InvoiceFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list failed invoices: %w", err)
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	return entries, nil
}

// sendInvoice sends the invoice, retrying failures. Retry k waits
// BaseDelay * 2^(k-1). It returns the number of attempts made.
func (s *draftOrderService) sendInvoice(ctx context.Context, draftOrderID int64, invoice shopify.Invoice) (int, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.settings.BaseDelay
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxInterval = time.Duration(math.MaxInt64)
	expo.MaxElapsedTime = 0
	expo.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(s.settings.MaxAttempts-1)), ctx)

	attempts := 0
	operation := func() error {
		attempts++
		return s.admin.SendInvoice(ctx, draftOrderID, invoice)
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn().
			Err(err).
			Int64("draft_order_id", draftOrderID).
			Int("attempt", attempts).
			Dur("retry_in", wait).
			Msg("invoice attempt failed")
	}

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, s.newTimer()); err != nil {
		s.logger.Error().
			Err(err).
			Int64("draft_order_id", draftOrderID).
			Int("attempts", attempts).
			Msg("invoice delivery failed")
		return attempts, &InvoiceError{DraftOrderID: draftOrderID, Attempts: attempts, Err: err}
	}

	s.logger.Info().Int64("draft_order_id", draftOrderID).Int("attempts", attempts).Msg("invoice sent")
	return attempts, nil
}

func validateDraftOrderRequest(req *model.DraftOrderRequest) error {
	if strings.TrimSpace(req.DogName) == "" {
		return model.NewDomainError(model.ErrCodeValidation, "dogName is required")
	}
	if strings.TrimSpace(req.DeliveryInfo) == "" {
		return model.NewDomainError(model.ErrCodeValidation, "deliveryInfo is required")
	}
	if !req.BagPrice.IsPositive() {
		return model.NewDomainError(model.ErrCodeValidation, "bagPrice must be greater than 0")
	}
	for i, item := range req.BonusItems {
		if strings.TrimSpace(item.VariantID) == "" {
			return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("bonusItems[%d].variantId is required", i))
		}
		if item.Quantity < 1 {
			return model.ErrInvalidQuantity
		}
	}
	return nil
}

// ParseDeliveryInfo reads "street, city, STATE ZIP". Delivery info marked
// "Need to find:" has no address and is not shipped.
func ParseDeliveryInfo(info string) (*model.DeliveryAddress, bool, error) {
	if strings.Contains(info, needToFindMarker) {
		return nil, false, nil
	}

	segments := strings.Split(info, ",")
	if len(segments) < 3 {
		return nil, true, model.ErrInvalidDelivery
	}

	address := &model.DeliveryAddress{
		Address1: strings.TrimSpace(segments[0]),
		City:     strings.TrimSpace(segments[1]),
		Country:  defaultCountry,
	}
	stateZip := strings.Fields(segments[2])
	if len(stateZip) > 0 {
		address.Province = stateZip[0]
	}
	if len(stateZip) > 1 {
		address.Zip = stateZip[1]
	}
	if address.Address1 == "" || address.City == "" || address.Province == "" {
		return nil, true, model.ErrInvalidDelivery
	}
	return address, true, nil
}

// BuildDraftOrder maps a gift-bag request onto a draft order.
func BuildDraftOrder(req *model.DraftOrderRequest, address *model.DeliveryAddress, requiresShipping bool) shopify.DraftOrderInput {
	lines := make([]shopify.DraftOrderLineItem, 0, len(req.BonusItems)+1)
	lines = append(lines, shopify.DraftOrderLineItem{
		Title:    giftBagTitle,
		Price:    req.BagPrice.StringFixed(2),
		Quantity: 1,
		Custom:   true,
		Properties: []shopify.LineItemProperty{
			{Name: "Dog Name", Value: req.DogName},
			{Name: "Note", Value: req.Note},
			{Name: "Delivery Info", Value: req.DeliveryInfo},
		},
	})
	for _, item := range req.BonusItems {
		lines = append(lines, shopify.DraftOrderLineItem{
			VariantID: shopify.NumericID(item.VariantID),
			Quantity:  item.Quantity,
		})
	}

	input := shopify.DraftOrderInput{
		LineItems:        lines,
		Note:             "Puppy Palentines Order for " + req.DogName,
		RequiresShipping: requiresShipping,
	}
	if address != nil {
		input.ShippingAddress = &shopify.DraftOrderAddress{
			Address1: address.Address1,
			City:     address.City,
			Province: address.Province,
			Zip:      address.Zip,
			Country:  address.Country,
		}
	}
	return input
}

func orderInvoice(recipient, dogName string) shopify.Invoice {
	return shopify.Invoice{
		To:            recipient,
		Subject:       "Puppy Palentines Order for " + dogName,
		CustomMessage: fmt.Sprintf("New Puppy Palentines order received for %s!", dogName),
	}
}
