package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type stripeLive struct {
	sc *client.API
}

// NewStripeLive talks to the real Stripe API with the given secret key.
func NewStripeLive(secretKey string) StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &stripeLive{sc: sc}
}

func (g *stripeLive) CreatePaymentIntent(ctx context.Context, orderID string, amountCents int64, currency string) (*domain.PaymentIntent, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(domain.MetadataOrderID, orderID)

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripeIntent(pi), nil
}

func (g *stripeLive) RetrievePaymentIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.sc.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripeIntent(pi), nil
}

func (g *stripeLive) ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}
	params.Context = ctx

	pi, err := g.sc.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment_intent %s is %s", ErrInvalidState, pi.ID, pi.Status)
	}
	return fromStripeIntent(pi), nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *domain.PaymentIntent {
	out := &domain.PaymentIntent{
		ID:           pi.ID,
		Object:       pi.Object,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
		Metadata:     pi.Metadata,
		Created:      pi.Created,
	}
	if pi.LatestCharge != nil {
		out.LatestCharge = pi.LatestCharge.ID
	}
	return out
}

// mapStripeError keeps network failures as-is and folds API rejections into ErrProvider.
func mapStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return err
	}
	if se.Type == stripe.ErrorTypeCard {
		return fmt.Errorf("%w: %s", ErrDeclined, se.Msg)
	}
	if se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 {
		return fmt.Errorf("%w: %s", ErrProvider, se.Msg)
	}
	return err
}
