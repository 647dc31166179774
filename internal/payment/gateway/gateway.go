package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/shopspring/decimal"
)

// ErrProvider marks a request the payment provider refused. Anything else is an infrastructure failure.
var ErrProvider = errors.New("payment provider error")

var (
	ErrDeclined      = fmt.Errorf("%w: card declined", ErrProvider)
	ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero", ErrProvider)
	ErrUnknownObject = fmt.Errorf("%w: no such object", ErrProvider)
	ErrInvalidState  = fmt.Errorf("%w: object is not in a capturable state", ErrProvider)
	ErrInvalidCard   = fmt.Errorf("%w: invalid card data", ErrProvider)
)

type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, orderID string, amountCents int64, currency string) (*domain.PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*domain.PaymentIntent, error)
}

type PayPalGateway interface {
	CreateOrder(ctx context.Context, orderID string, amount decimal.Decimal, currency string) (*domain.PayPalOrder, error)
	GetOrder(ctx context.Context, paypalOrderID string) (*domain.PayPalOrder, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (*domain.PayPalCapture, error)
}

type AuthorizeNetGateway interface {
	Charge(ctx context.Context, orderID string, amount decimal.Decimal, card domain.CardData) (*domain.AuthorizeNetResponse, error)
}

// randomID returns n lowercase hex characters.
func randomID(n int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	for len(id) < n {
		id += strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return id[:n]
}
