package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/ridloal/fashion-dropship-store/internal/payment/gateway"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
)

var (
	ErrOrderAlreadyPaid = errors.New("order has already been paid")
	ErrOrderNotPayable  = errors.New("order can no longer be paid")
)

// OrderBook is the slice of the order service payments need.
type OrderBook interface {
	GetOrder(ctx context.Context, orderID string) (*oDomain.Order, error)
	MarkPaid(ctx context.Context, orderID string, method oDomain.PaymentMethod, transactionID string) (*oDomain.Order, error)
}

type PaymentService interface {
	CreateStripeIntent(ctx context.Context, orderID string) (*domain.PaymentIntent, error)
	ConfirmStripePayment(ctx context.Context, intentID, paymentMethodID string) (*domain.Result, error)
	CreatePayPalOrder(ctx context.Context, orderID string) (*domain.PayPalOrder, error)
	CapturePayPalPayment(ctx context.Context, paypalOrderID string) (*domain.Result, error)
	ChargeAuthorizeNet(ctx context.Context, orderID string, card domain.CardData) (*domain.Result, error)
}

type paymentServiceImpl struct {
	orders       OrderBook
	stripe       gateway.StripeGateway
	paypal       gateway.PayPalGateway
	authorizeNet gateway.AuthorizeNetGateway
	currency     string
}

func NewPaymentService(orders OrderBook, stripe gateway.StripeGateway, paypal gateway.PayPalGateway, authorizeNet gateway.AuthorizeNetGateway, currency string) PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &paymentServiceImpl{
		orders:       orders,
		stripe:       stripe,
		paypal:       paypal,
		authorizeNet: authorizeNet,
		currency:     strings.ToLower(currency),
	}
}

// payableOrder loads an order that can still take a payment.
func (s *paymentServiceImpl) payableOrder(ctx context.Context, orderID string) (*oDomain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		return nil, ErrOrderAlreadyPaid
	}
	if order.Status != oDomain.StatusPending && order.Status != oDomain.StatusConfirmed {
		return nil, fmt.Errorf("%w: order is %s", ErrOrderNotPayable, order.Status)
	}
	return order, nil
}

// markPaid never fails the payment: the provider already holds the money.
func (s *paymentServiceImpl) markPaid(ctx context.Context, orderID string, method oDomain.PaymentMethod, transactionID string) {
	if orderID == "" {
		logger.Warn("Payment %s captured without an order reference", transactionID)
		return
	}
	if _, err := s.orders.MarkPaid(ctx, orderID, method, transactionID); err != nil {
		logger.Error("Payment "+transactionID+": failed to mark order "+orderID+" as paid", err)
	}
}

func (s *paymentServiceImpl) CreateStripeIntent(ctx context.Context, orderID string) (*domain.PaymentIntent, error) {
	order, err := s.payableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.stripe.CreatePaymentIntent(ctx, order.ID, money.ToCents(order.Total), s.currency)
}

func (s *paymentServiceImpl) ConfirmStripePayment(ctx context.Context, intentID, paymentMethodID string) (*domain.Result, error) {
	current, err := s.stripe.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	method := oDomain.MethodStripeCard
	if orderID := current.OrderID(); orderID != "" {
		order, err := s.payableOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		method = stripeMethod(order)
	}

	pi, err := s.stripe.ConfirmPaymentIntent(ctx, intentID, paymentMethodID)
	if err != nil {
		return nil, err
	}
	s.markPaid(ctx, pi.OrderID(), method, pi.ID)
	return &domain.Result{TransactionID: pi.ID, Status: "succeeded"}, nil
}

// stripeMethod keeps the wallet the customer chose at checkout, defaulting to card.
func stripeMethod(order *oDomain.Order) oDomain.PaymentMethod {
	switch order.PaymentMethod {
	case oDomain.MethodStripeCard, oDomain.MethodStripeApplePay, oDomain.MethodStripeGooglePay:
		return order.PaymentMethod
	}
	return oDomain.MethodStripeCard
}

func (s *paymentServiceImpl) CreatePayPalOrder(ctx context.Context, orderID string) (*domain.PayPalOrder, error) {
	order, err := s.payableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.paypal.CreateOrder(ctx, order.ID, order.Total, s.currency)
}

func (s *paymentServiceImpl) CapturePayPalPayment(ctx context.Context, paypalOrderID string) (*domain.Result, error) {
	ppOrder, err := s.paypal.GetOrder(ctx, paypalOrderID)
	if err != nil {
		return nil, err
	}
	if orderID := ppOrder.OrderID(); orderID != "" {
		if _, err := s.payableOrder(ctx, orderID); err != nil {
			return nil, err
		}
	}

	capture, err := s.paypal.CaptureOrder(ctx, paypalOrderID)
	if err != nil {
		return nil, err
	}
	s.markPaid(ctx, capture.OrderID, oDomain.MethodPayPal, capture.ID)
	return &domain.Result{TransactionID: capture.ID, Status: "completed"}, nil
}

func (s *paymentServiceImpl) ChargeAuthorizeNet(ctx context.Context, orderID string, card domain.CardData) (*domain.Result, error) {
	order, err := s.payableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res, err := s.authorizeNet.Charge(ctx, order.ID, order.Total, card)
	if err != nil {
		return nil, err
	}
	s.markPaid(ctx, order.ID, oDomain.MethodAuthorizeNet, res.TransID)
	return &domain.Result{TransactionID: res.TransID, Status: "approved", Details: res}, nil
}
