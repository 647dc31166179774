package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	"github.com/shopspring/decimal"
)

const (
	paypalStatusCreated   = "CREATED"
	paypalStatusCompleted = "COMPLETED"
	paypalCheckoutURL     = "https://www.sandbox.paypal.com/checkoutnow?token="
)

type paypalSandbox struct {
	mu     sync.Mutex
	orders map[string]*domain.PayPalOrder
}

// NewPayPalSandbox simulates the PayPal Orders v2 API in memory.
func NewPayPalSandbox() PayPalGateway {
	return &paypalSandbox{orders: make(map[string]*domain.PayPalOrder)}
}

func (g *paypalSandbox) CreateOrder(_ context.Context, orderID string, amount decimal.Decimal, currency string) (*domain.PayPalOrder, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	id := money.RandomCode(17)
	o := &domain.PayPalOrder{
		ID:     id,
		Intent: "CAPTURE",
		Status: paypalStatusCreated,
		PurchaseUnits: []domain.PayPalPurchaseUnit{{
			ReferenceID: orderID,
			Amount:      domain.PayPalAmount{CurrencyCode: strings.ToUpper(currency), Value: amount.StringFixed(2)},
		}},
		Links: []domain.PayPalLink{
			{Href: paypalCheckoutURL + id, Rel: "approve", Method: "GET"},
			{Href: "/v2/checkout/orders/" + id + "/capture", Rel: "capture", Method: "POST"},
		},
	}

	g.mu.Lock()
	g.orders[id] = o
	g.mu.Unlock()

	logger.Info("PayPal sandbox: created order %s for %s", id, orderID)
	return clonePayPalOrder(o), nil
}

func (g *paypalSandbox) GetOrder(_ context.Context, paypalOrderID string) (*domain.PayPalOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.orders[paypalOrderID]
	if !ok {
		return nil, fmt.Errorf("%w: RESOURCE_NOT_FOUND order %q", ErrUnknownObject, paypalOrderID)
	}
	return clonePayPalOrder(o), nil
}

func (g *paypalSandbox) CaptureOrder(_ context.Context, paypalOrderID string) (*domain.PayPalCapture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.orders[paypalOrderID]
	if !ok {
		return nil, fmt.Errorf("%w: RESOURCE_NOT_FOUND order %q", ErrUnknownObject, paypalOrderID)
	}
	if o.Status == paypalStatusCompleted {
		return nil, fmt.Errorf("%w: ORDER_ALREADY_CAPTURED", ErrInvalidState)
	}
	o.Status = paypalStatusCompleted

	unit := o.PurchaseUnits[0]
	return &domain.PayPalCapture{
		ID:            money.RandomCode(17),
		PayPalOrderID: o.ID,
		OrderID:       unit.ReferenceID,
		Status:        paypalStatusCompleted,
		Amount:        unit.Amount,
	}, nil
}

func clonePayPalOrder(o *domain.PayPalOrder) *domain.PayPalOrder {
	out := *o
	out.PurchaseUnits = append([]domain.PayPalPurchaseUnit(nil), o.PurchaseUnits...)
	out.Links = append([]domain.PayPalLink(nil), o.Links...)
	return &out
}
