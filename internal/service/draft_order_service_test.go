package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/shopify"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestDraftOrderService(admin AdminGateway, ledger repository.LedgerRepository, attempts int) (DraftOrderService, *recordingTimer) {
	timer := newRecordingTimer()
	svc := NewDraftOrderService(admin, ledger, InvoiceSettings{
		MaxAttempts: attempts,
		BaseDelay:   100 * time.Millisecond,
		Recipient:   "orders@example.com",
	}, zerolog.Nop(), WithRetryTimer(func() backoff.Timer { return timer }))
	return svc, timer
}

func giftBagRequest() *model.DraftOrderRequest {
	return &model.DraftOrderRequest{
		BagPrice:     decimal.RequireFromString("45"),
		DogName:      "Biscuit",
		Note:         "No chicken please",
		DeliveryInfo: "123 Main St, Brooklyn, NY 11201",
		BonusItems: []model.BonusItem{
			{VariantID: "gid://shopify/ProductVariant/987", Quantity: 2},
		},
	}
}

func TestParseDeliveryInfo(t *testing.T) {
	tests := []struct {
		name         string
		info         string
		wantAddress  *model.DeliveryAddress
		wantShipping bool
		wantErr      error
	}{
		{
			name: "Street, city, state and zip",
			info: "123 Main St, Brooklyn, NY 11201",
			wantAddress: &model.DeliveryAddress{
				Address1: "123 Main St",
				City:     "Brooklyn",
				Province: "NY",
				Zip:      "11201",
				Country:  "US",
			},
			wantShipping: true,
		},
		{
			name:         "Need to find",
			info:         "Need to find: ask the owner at pickup",
			wantShipping: false,
		},
		{
			name:         "Too few segments",
			info:         "123 Main St, Brooklyn",
			wantShipping: true,
			wantErr:      model.ErrInvalidDelivery,
		},
		{
			name:         "Empty city",
			info:         "123 Main St, , NY 11201",
			wantShipping: true,
			wantErr:      model.ErrInvalidDelivery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, shipping, err := ParseDeliveryInfo(tt.info)

			assert.Equal(t, tt.wantShipping, shipping)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, address)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddress, address)
		})
	}
}

func TestBuildDraftOrder(t *testing.T) {
	req := giftBagRequest()
	address, shipping, err := ParseDeliveryInfo(req.DeliveryInfo)
	require.NoError(t, err)

	input := BuildDraftOrder(req, address, shipping)

	require.Len(t, input.LineItems, 2)
	bag := input.LineItems[0]
	assert.Equal(t, "Puppy Palentines Bag", bag.Title)
	assert.Equal(t, "45.00", bag.Price)
	assert.Equal(t, 1, bag.Quantity)
	assert.True(t, bag.Custom)
	assert.Equal(t, []shopify.LineItemProperty{
		{Name: "Dog Name", Value: "Biscuit"},
		{Name: "Note", Value: "No chicken please"},
		{Name: "Delivery Info", Value: "123 Main St, Brooklyn, NY 11201"},
	}, bag.Properties)

	bonus := input.LineItems[1]
	assert.Equal(t, "987", bonus.VariantID)
	assert.Equal(t, 2, bonus.Quantity)

	assert.Equal(t, "Puppy Palentines Order for Biscuit", input.Note)
	assert.True(t, input.RequiresShipping)
	require.NotNil(t, input.ShippingAddress)
	assert.Equal(t, "11201", input.ShippingAddress.Zip)

	t.Run("No address", func(t *testing.T) {
		input := BuildDraftOrder(req, nil, false)
		assert.Nil(t, input.ShippingAddress)
		assert.False(t, input.RequiresShipping)
	})
}

func TestDraftOrderService_CreateDraftOrder_Success(t *testing.T) {
	admin := new(MockAdminGateway)
	ledger := new(MockLedgerRepository)
	svc, timer := newTestDraftOrderService(admin, ledger, 3)

	admin.On("CreateDraftOrder", mock.Anything, mock.AnythingOfType("shopify.DraftOrderInput")).
		Return(&shopify.DraftOrder{ID: 555, InvoiceURL: "https://shop.test/invoices/555"}, nil)
	admin.On("SendInvoice", mock.Anything, int64(555), shopify.Invoice{
		To:            "orders@example.com",
		Subject:       "Puppy Palentines Order for Biscuit",
		CustomMessage: "New Puppy Palentines order received for Biscuit!",
	}).Return(nil).Once()
	ledger.On("Create", mock.Anything, mock.MatchedBy(func(e *model.LedgerEntry) bool {
		return e.Kind == model.LedgerKindDraftOrder &&
			e.PlatformID == "555" &&
			e.InvoiceStatus == model.InvoiceSent &&
			e.InvoiceAttempts == 1
	})).Return(nil)

	resp, err := svc.CreateDraftOrder(context.Background(), giftBagRequest())

	require.NoError(t, err)
	assert.Equal(t, "https://shop.test/invoices/555", resp.InvoiceURL)
	assert.Empty(t, timer.waits)
	admin.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestDraftOrderService_InvoiceRetry_FailTwiceThenSucceed(t *testing.T) {
	admin := new(MockAdminGateway)
	ledger := new(MockLedgerRepository)
	svc, timer := newTestDraftOrderService(admin, ledger, 3)

	admin.On("CreateDraftOrder", mock.Anything, mock.Anything).
		Return(&shopify.DraftOrder{ID: 1, InvoiceURL: "https://shop.test/invoices/1"}, nil)
	admin.On("SendInvoice", mock.Anything, int64(1), mock.Anything).
		Return(&shopify.TransportError{Status: 503, Body: "busy"}).Twice()
	admin.On("SendInvoice", mock.Anything, int64(1), mock.Anything).Return(nil).Once()
	ledger.On("Create", mock.Anything, mock.MatchedBy(func(e *model.LedgerEntry) bool {
		return e.InvoiceStatus == model.InvoiceSent && e.InvoiceAttempts == 3
	})).Return(nil)

	resp, err := svc.CreateDraftOrder(context.Background(), giftBagRequest())

	require.NoError(t, err)
	assert.Equal(t, "https://shop.test/invoices/1", resp.InvoiceURL)
	admin.AssertNumberOfCalls(t, "SendInvoice", 3)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, timer.waits)
	ledger.AssertExpectations(t)
}

func TestDraftOrderService_InvoiceRetry_Exhausted(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		wantWaits []time.Duration
	}{
		{name: "Single attempt", attempts: 1, wantWaits: nil},
		{name: "Three attempts", attempts: 3, wantWaits: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}},
		{name: "Four attempts", attempts: 4, wantWaits: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := new(MockAdminGateway)
			ledger := new(MockLedgerRepository)
			svc, timer := newTestDraftOrderService(admin, ledger, tt.attempts)

			sendErr := errors.New("smtp unavailable")
			admin.On("CreateDraftOrder", mock.Anything, mock.Anything).
				Return(&shopify.DraftOrder{ID: 9, InvoiceURL: "https://shop.test/invoices/9"}, nil)
			admin.On("SendInvoice", mock.Anything, int64(9), mock.Anything).Return(sendErr)
			ledger.On("Create", mock.Anything, mock.MatchedBy(func(e *model.LedgerEntry) bool {
				return e.InvoiceStatus == model.InvoiceFailed && e.InvoiceAttempts == tt.attempts
			})).Return(nil)

			resp, err := svc.CreateDraftOrder(context.Background(), giftBagRequest())

			assert.Nil(t, resp)
			var invoiceErr *InvoiceError
			require.ErrorAs(t, err, &invoiceErr)
			assert.Equal(t, tt.attempts, invoiceErr.Attempts)
			assert.ErrorIs(t, err, sendErr)
			assert.Contains(t, err.Error(), "after "+strconv.Itoa(tt.attempts)+" attempts")
			admin.AssertNumberOfCalls(t, "SendInvoice", tt.attempts)
			assert.Equal(t, tt.wantWaits, timer.waits)
			ledger.AssertExpectations(t)
		})
	}
}

func TestDraftOrderService_InvoiceRetry_ContextCancelled(t *testing.T) {
	admin := new(MockAdminGateway)
	svc := NewDraftOrderService(admin, nil, InvoiceSettings{
		MaxAttempts: 5,
		BaseDelay:   time.Hour,
		Recipient:   "orders@example.com",
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	admin.On("CreateDraftOrder", mock.Anything, mock.Anything).
		Return(&shopify.DraftOrder{ID: 3, InvoiceURL: "https://shop.test/invoices/3"}, nil)
	admin.On("SendInvoice", mock.Anything, int64(3), mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(errors.New("timeout"))

	_, err := svc.CreateDraftOrder(ctx, giftBagRequest())

	var invoiceErr *InvoiceError
	require.ErrorAs(t, err, &invoiceErr)
	assert.Equal(t, 1, invoiceErr.Attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDraftOrderService_CreateDraftOrder_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *model.DraftOrderRequest)
		wantCode string
	}{
		{
			name:     "Bad delivery info",
			mutate:   func(r *model.DraftOrderRequest) { r.DeliveryInfo = "somewhere" },
			wantCode: model.ErrCodeInvalidDelivery,
		},
		{
			name:     "Missing dog name",
			mutate:   func(r *model.DraftOrderRequest) { r.DogName = " " },
			wantCode: model.ErrCodeValidation,
		},
		{
			name:     "Zero bag price",
			mutate:   func(r *model.DraftOrderRequest) { r.BagPrice = decimal.Zero },
			wantCode: model.ErrCodeValidation,
		},
		{
			name:     "Bonus item without quantity",
			mutate:   func(r *model.DraftOrderRequest) { r.BonusItems[0].Quantity = 0 },
			wantCode: model.ErrCodeInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := new(MockAdminGateway)
			svc, _ := newTestDraftOrderService(admin, nil, 3)

			req := giftBagRequest()
			tt.mutate(req)
			_, err := svc.CreateDraftOrder(context.Background(), req)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
			admin.AssertNotCalled(t, "CreateDraftOrder", mock.Anything, mock.Anything)
		})
	}
}

func TestDraftOrderService_CreateDraftOrder_PlatformFailure(t *testing.T) {
	admin := new(MockAdminGateway)
	svc, _ := newTestDraftOrderService(admin, nil, 3)

	admin.On("CreateDraftOrder", mock.Anything, mock.Anything).
		Return(nil, &shopify.TransportError{Status: 422, Body: `{"errors":"bad"}`})

	_, err := svc.CreateDraftOrder(context.Background(), giftBagRequest())

	var transportErr *shopify.TransportError
	require.ErrorAs(t, err, &transportErr)
	admin.AssertNotCalled(t, "SendInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftOrderService_ResendInvoice(t *testing.T) {
	t.Run("Resends a failed invoice", func(t *testing.T) {
		admin := new(MockAdminGateway)
		ledger := new(MockLedgerRepository)
		svc, _ := newTestDraftOrderService(admin, ledger, 3)

		ledger.On("GetByPlatformID", mock.Anything, model.LedgerKindDraftOrder, "77").
			Return(&model.LedgerEntry{PlatformID: "77", InvoiceStatus: model.InvoiceFailed}, nil)
		admin.On("GetDraftOrder", mock.Anything, int64(77)).Return(&shopify.DraftOrder{
			ID:         77,
			InvoiceURL: "https://shop.test/invoices/77",
			Status:     shopify.DraftOrderOpen,
			Note:       "Puppy Palentines Order for Biscuit",
		}, nil)
		admin.On("SendInvoice", mock.Anything, int64(77), mock.MatchedBy(func(inv shopify.Invoice) bool {
			return inv.Subject == "Puppy Palentines Order for Biscuit" && inv.To == "orders@example.com"
		})).Return(nil)
		ledger.On("UpdateInvoice", mock.Anything, "77", model.InvoiceSent, 1).Return(nil)

		resp, err := svc.ResendInvoice(context.Background(), "gid://shopify/DraftOrder/77")

		require.NoError(t, err)
		assert.Equal(t, "77", resp.DraftOrderID)
		assert.Equal(t, "https://shop.test/invoices/77", resp.InvoiceURL)
		assert.Equal(t, 1, resp.Attempts)
		admin.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("Already sent in ledger", func(t *testing.T) {
		admin := new(MockAdminGateway)
		ledger := new(MockLedgerRepository)
		svc, _ := newTestDraftOrderService(admin, ledger, 3)

		ledger.On("GetByPlatformID", mock.Anything, model.LedgerKindDraftOrder, "77").
			Return(&model.LedgerEntry{InvoiceStatus: model.InvoiceSent}, nil)

		_, err := svc.ResendInvoice(context.Background(), "77")

		assert.Equal(t, model.ErrInvoiceNotPending, err)
		admin.AssertNotCalled(t, "GetDraftOrder", mock.Anything, mock.Anything)
	})

	t.Run("Completed on the platform", func(t *testing.T) {
		admin := new(MockAdminGateway)
		ledger := new(MockLedgerRepository)
		svc, _ := newTestDraftOrderService(admin, ledger, 3)

		ledger.On("GetByPlatformID", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		admin.On("GetDraftOrder", mock.Anything, int64(77)).
			Return(&shopify.DraftOrder{ID: 77, Status: shopify.DraftOrderCompleted}, nil)

		_, err := svc.ResendInvoice(context.Background(), "77")

		assert.Equal(t, model.ErrInvoiceNotPending, err)
	})

	t.Run("Unknown draft order", func(t *testing.T) {
		admin := new(MockAdminGateway)
		ledger := new(MockLedgerRepository)
		svc, _ := newTestDraftOrderService(admin, ledger, 3)

		ledger.On("GetByPlatformID", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		admin.On("GetDraftOrder", mock.Anything, int64(404)).Return(nil, shopify.ErrNotFound)

		_, err := svc.ResendInvoice(context.Background(), "404")
		assert.Equal(t, model.ErrDraftNotFound, err)

		_, err = svc.ResendInvoice(context.Background(), "not-a-number")
		assert.Equal(t, model.ErrDraftNotFound, err)
	})

	t.Run("Still failing", func(t *testing.T) {
		admin := new(MockAdminGateway)
		ledger := new(MockLedgerRepository)
		svc, _ := newTestDraftOrderService(admin, ledger, 2)

		ledger.On("GetByPlatformID", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		admin.On("GetDraftOrder", mock.Anything, int64(8)).
			Return(&shopify.DraftOrder{ID: 8, Status: shopify.DraftOrderOpen}, nil)
		admin.On("SendInvoice", mock.Anything, int64(8), mock.Anything).Return(errors.New("nope"))
		ledger.On("UpdateInvoice", mock.Anything, "8", model.InvoiceFailed, 2).
			Return(repository.ErrLedgerEntryNotFound)

		_, err := svc.ResendInvoice(context.Background(), "8")

		var invoiceErr *InvoiceError
		require.ErrorAs(t, err, &invoiceErr)
		assert.Equal(t, 2, invoiceErr.Attempts)
		ledger.AssertExpectations(t)
	})
}

func TestDraftOrderService_ListFailedInvoices(t *testing.T) {
	ledger := new(MockLedgerRepository)
	svc, _ := newTestDraftOrderService(new(MockAdminGateway), ledger, 3)

	ledger.On("ListByInvoiceStatus", mock.Anything, model.InvoiceFailed, 50).
		Return(nil, nil).Once()
	ledger.On("ListByInvoiceStatus", mock.Anything, model.InvoiceFailed, 5).
		Return([]model.LedgerEntry{{PlatformID: "1"}}, nil).Once()

	entries, err := svc.ListFailedInvoices(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	entries, err = svc.ListFailedInvoices(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
