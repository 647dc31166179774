package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
)

const (
	stripeStatusRequiresPaymentMethod = "requires_payment_method"
	stripeStatusSucceeded             = "succeeded"
)

// Stripe test payment methods that always decline.
var declinedPaymentMethods = map[string]bool{
	"pm_card_chargeDeclined":      true,
	"pm_card_visa_chargeDeclined": true,
}

type stripeSandbox struct {
	mu      sync.Mutex
	intents map[string]*domain.PaymentIntent
	now     func() time.Time
}

// NewStripeSandbox simulates the Stripe payment intent API in memory.
func NewStripeSandbox() StripeGateway {
	return &stripeSandbox{intents: make(map[string]*domain.PaymentIntent), now: time.Now}
}

func (g *stripeSandbox) CreatePaymentIntent(_ context.Context, orderID string, amountCents int64, currency string) (*domain.PaymentIntent, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	id := "pi_" + randomID(24)
	pi := &domain.PaymentIntent{
		ID:           id,
		Object:       "payment_intent",
		Amount:       amountCents,
		Currency:     strings.ToLower(currency),
		Status:       stripeStatusRequiresPaymentMethod,
		ClientSecret: id + "_secret_" + randomID(24),
		Metadata:     map[string]string{domain.MetadataOrderID: orderID},
		Created:      g.now().Unix(),
	}

	g.mu.Lock()
	g.intents[id] = pi
	g.mu.Unlock()

	logger.Info("Stripe sandbox: created intent %s for order %s (%d %s)", id, orderID, amountCents, pi.Currency)
	out := *pi
	return &out, nil
}

func (g *stripeSandbox) RetrievePaymentIntent(_ context.Context, intentID string) (*domain.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pi, ok := g.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: payment_intent %q", ErrUnknownObject, intentID)
	}
	out := *pi
	return &out, nil
}

func (g *stripeSandbox) ConfirmPaymentIntent(_ context.Context, intentID, paymentMethodID string) (*domain.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pi, ok := g.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: payment_intent %q", ErrUnknownObject, intentID)
	}
	if pi.Status == stripeStatusSucceeded {
		return nil, fmt.Errorf("%w: payment_intent %s has already succeeded", ErrInvalidState, intentID)
	}
	if paymentMethodID == "" {
		return nil, fmt.Errorf("%w: a payment method is required to confirm", ErrProvider)
	}
	if declinedPaymentMethods[paymentMethodID] {
		return nil, fmt.Errorf("%w: your card was declined", ErrDeclined)
	}

	pi.Status = stripeStatusSucceeded
	pi.LatestCharge = "ch_" + randomID(24)
	out := *pi
	return &out, nil
}
