package mocks

import (
	"context"

	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderBook struct {
	mock.Mock
}

func (m *MockOrderBook) GetOrder(ctx context.Context, orderID string) (*oDomain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oDomain.Order), args.Error(1)
}

func (m *MockOrderBook) MarkPaid(ctx context.Context, orderID string, method oDomain.PaymentMethod, transactionID string) (*oDomain.Order, error) {
	args := m.Called(ctx, orderID, method, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oDomain.Order), args.Error(1)
}

type MockStripeGateway struct {
	mock.Mock
}

func (m *MockStripeGateway) CreatePaymentIntent(ctx context.Context, orderID string, amountCents int64, currency string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, orderID, amountCents, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *MockStripeGateway) RetrievePaymentIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *MockStripeGateway) ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, intentID, paymentMethodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

type MockAuthorizeNetGateway struct {
	mock.Mock
}

func (m *MockAuthorizeNetGateway) Charge(ctx context.Context, orderID string, amount decimal.Decimal, card domain.CardData) (*domain.AuthorizeNetResponse, error) {
	args := m.Called(ctx, orderID, amount, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthorizeNetResponse), args.Error(1)
}
