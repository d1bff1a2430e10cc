package service

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/shopify"

	"github.com/stretchr/testify/mock"
)

// MockStorefrontGateway is a mock implementation of StorefrontGateway.
type MockStorefrontGateway struct {
	mock.Mock
}

func (m *MockStorefrontGateway) CreateCart(ctx context.Context, input shopify.CartInput) (*shopify.CartCreateResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.CartCreateResult), args.Error(1)
}

func (m *MockStorefrontGateway) ProductByHandle(ctx context.Context, handle string) (*shopify.ProductNode, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.ProductNode), args.Error(1)
}

func (m *MockStorefrontGateway) Products(ctx context.Context, first int) ([]shopify.ProductNode, error) {
	args := m.Called(ctx, first)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shopify.ProductNode), args.Error(1)
}

// MockAdminGateway is a mock implementation of AdminGateway.
type MockAdminGateway struct {
	mock.Mock
}

func (m *MockAdminGateway) CreateDraftOrder(ctx context.Context, input shopify.DraftOrderInput) (*shopify.DraftOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.DraftOrder), args.Error(1)
}

func (m *MockAdminGateway) SendInvoice(ctx context.Context, draftOrderID int64, invoice shopify.Invoice) error {
	args := m.Called(ctx, draftOrderID, invoice)
	return args.Error(0)
}

func (m *MockAdminGateway) GetDraftOrder(ctx context.Context, draftOrderID int64) (*shopify.DraftOrder, error) {
	args := m.Called(ctx, draftOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.DraftOrder), args.Error(1)
}

func (m *MockAdminGateway) ListProducts(ctx context.Context, status string) ([]shopify.AdminProduct, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shopify.AdminProduct), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByPlatformID(ctx context.Context, kind, platformID string) (*model.LedgerEntry, error) {
	args := m.Called(ctx, kind, platformID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) UpdateInvoice(ctx context.Context, platformID, status string, attempts int) error {
	args := m.Called(ctx, platformID, status, attempts)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByInvoiceStatus(ctx context.Context, status string, limit int) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LedgerEntry), args.Error(1)
}

// recordingTimer fires immediately and remembers every requested wait.
type recordingTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func newRecordingTimer() *recordingTimer {
	return &recordingTimer{c: make(chan time.Time, 1)}
}

func (t *recordingTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time {
	return t.c
}
