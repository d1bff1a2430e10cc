package handler

import (
	"context"

	"storefront/internal/catalog"
	"storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreateCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockCheckoutService) CreateCart(ctx context.Context, req *model.CartRequest) (*model.CartResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

// MockDraftOrderService is a mock implementation of DraftOrderService.
type MockDraftOrderService struct {
	mock.Mock
}

func (m *MockDraftOrderService) CreateDraftOrder(ctx context.Context, req *model.DraftOrderRequest) (*model.DraftOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DraftOrderResponse), args.Error(1)
}

func (m *MockDraftOrderService) ResendInvoice(ctx context.Context, draftOrderID string) (*model.InvoiceResendResponse, error) {
	args := m.Called(ctx, draftOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InvoiceResendResponse), args.Error(1)
}

func (m *MockDraftOrderService) ListFailedInvoices(ctx context.Context, limit int) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LedgerEntry), args.Error(1)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context) ([]model.ProductSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductSummary), args.Error(1)
}

func (m *MockProductService) GetByHandle(ctx context.Context, handle string) ([]catalog.Product, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}
