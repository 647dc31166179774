package service

import (
	"context"
	"errors"
	"testing"

	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
	oRepo "github.com/ridloal/fashion-dropship-store/internal/order/repository"
	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/ridloal/fashion-dropship-store/internal/payment/gateway"
	"github.com/ridloal/fashion-dropship-store/internal/payment/service/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingOrder(id string) *oDomain.Order {
	return &oDomain.Order{
		ID:            id,
		Status:        oDomain.StatusPending,
		PaymentStatus: oDomain.PaymentPending,
		PaymentMethod: oDomain.MethodStripeApplePay,
		Total:         decimal.RequireFromString("58.59"),
	}
}

func TestPaymentService_Stripe(t *testing.T) {
	ctx := context.TODO()
	orders := new(mocks.MockOrderBook)
	stripe := new(mocks.MockStripeGateway)
	svc := NewPaymentService(orders, stripe, gateway.NewPayPalSandbox(), nil, "USD")

	t.Run("Intent amount is the order total in cents", func(t *testing.T) {
		orders.On("GetOrder", ctx, "order_1").Return(pendingOrder("order_1"), nil).Once()
		stripe.On("CreatePaymentIntent", ctx, "order_1", int64(5859), "usd").
			Return(&domain.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, nil).Once()

		pi, err := svc.CreateStripeIntent(ctx, "order_1")

		require.NoError(t, err)
		assert.Equal(t, "pi_1", pi.ID)
		orders.AssertExpectations(t)
		stripe.AssertExpectations(t)
	})

	t.Run("Missing order", func(t *testing.T) {
		orders.On("GetOrder", ctx, "nope").Return(nil, oRepo.ErrOrderNotFound).Once()

		_, err := svc.CreateStripeIntent(ctx, "nope")

		assert.ErrorIs(t, err, oRepo.ErrOrderNotFound)
		stripe.AssertNotCalled(t, "CreatePaymentIntent", ctx, "nope", mock.Anything, mock.Anything)
	})

	t.Run("Paid order is refused", func(t *testing.T) {
		paid := pendingOrder("order_2")
		paid.PaymentStatus = oDomain.PaymentCompleted
		orders.On("GetOrder", ctx, "order_2").Return(paid, nil).Once()

		_, err := svc.CreateStripeIntent(ctx, "order_2")

		assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	})

	intentFor := func(id, orderID string) *domain.PaymentIntent {
		return &domain.PaymentIntent{ID: id, Status: "requires_payment_method", Metadata: map[string]string{domain.MetadataOrderID: orderID}}
	}

	t.Run("Confirm marks the order paid with the chosen wallet", func(t *testing.T) {
		stripe.On("RetrievePaymentIntent", ctx, "pi_1").Return(intentFor("pi_1", "order_1"), nil).Once()
		orders.On("GetOrder", ctx, "order_1").Return(pendingOrder("order_1"), nil).Once()
		stripe.On("ConfirmPaymentIntent", ctx, "pi_1", "pm_card_visa").
			Return(&domain.PaymentIntent{ID: "pi_1", Status: "succeeded", Metadata: map[string]string{domain.MetadataOrderID: "order_1"}}, nil).Once()
		orders.On("MarkPaid", ctx, "order_1", oDomain.MethodStripeApplePay, "pi_1").Return(pendingOrder("order_1"), nil).Once()

		res, err := svc.ConfirmStripePayment(ctx, "pi_1", "pm_card_visa")

		require.NoError(t, err)
		assert.Equal(t, &domain.Result{TransactionID: "pi_1", Status: "succeeded"}, res)
		orders.AssertExpectations(t)
		stripe.AssertExpectations(t)
	})

	t.Run("Marking failure keeps the transaction id", func(t *testing.T) {
		order := pendingOrder("order_9")
		order.PaymentMethod = oDomain.MethodPayPal
		stripe.On("RetrievePaymentIntent", ctx, "pi_9").Return(intentFor("pi_9", "order_9"), nil).Once()
		orders.On("GetOrder", ctx, "order_9").Return(order, nil).Once()
		stripe.On("ConfirmPaymentIntent", ctx, "pi_9", "pm_card_visa").
			Return(&domain.PaymentIntent{ID: "pi_9", Metadata: map[string]string{domain.MetadataOrderID: "order_9"}}, nil).Once()
		orders.On("MarkPaid", ctx, "order_9", oDomain.MethodStripeCard, "pi_9").Return(nil, errors.New("db down")).Once()

		res, err := svc.ConfirmStripePayment(ctx, "pi_9", "pm_card_visa")

		require.NoError(t, err)
		assert.Equal(t, "pi_9", res.TransactionID)
		orders.AssertExpectations(t)
	})

	t.Run("Confirm on a paid order never reaches Stripe", func(t *testing.T) {
		paid := pendingOrder("order_5")
		paid.Status = oDomain.StatusConfirmed
		paid.PaymentStatus = oDomain.PaymentCompleted
		stripe.On("RetrievePaymentIntent", ctx, "pi_5").Return(intentFor("pi_5", "order_5"), nil).Once()
		orders.On("GetOrder", ctx, "order_5").Return(paid, nil).Once()

		_, err := svc.ConfirmStripePayment(ctx, "pi_5", "pm_card_visa")

		assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
		stripe.AssertNotCalled(t, "ConfirmPaymentIntent", ctx, "pi_5", "pm_card_visa")
		orders.AssertNotCalled(t, "MarkPaid", ctx, "order_5", mock.Anything, mock.Anything)
	})

	t.Run("Unknown intent", func(t *testing.T) {
		stripe.On("RetrievePaymentIntent", ctx, "pi_missing").Return(nil, gateway.ErrUnknownObject).Once()

		_, err := svc.ConfirmStripePayment(ctx, "pi_missing", "pm_card_visa")

		assert.ErrorIs(t, err, gateway.ErrProvider)
		stripe.AssertNotCalled(t, "ConfirmPaymentIntent", ctx, "pi_missing", "pm_card_visa")
	})

	t.Run("Declined confirm", func(t *testing.T) {
		stripe.On("RetrievePaymentIntent", ctx, "pi_2").Return(intentFor("pi_2", "order_2"), nil).Once()
		orders.On("GetOrder", ctx, "order_2").Return(pendingOrder("order_2"), nil).Once()
		stripe.On("ConfirmPaymentIntent", ctx, "pi_2", "pm_card_chargeDeclined").Return(nil, gateway.ErrDeclined).Once()

		_, err := svc.ConfirmStripePayment(ctx, "pi_2", "pm_card_chargeDeclined")

		assert.ErrorIs(t, err, gateway.ErrProvider)
		orders.AssertNotCalled(t, "MarkPaid", ctx, "order_2", mock.Anything, mock.Anything)
	})
}

func TestPaymentService_PayPal(t *testing.T) {
	ctx := context.TODO()
	orders := new(mocks.MockOrderBook)
	svc := NewPaymentService(orders, nil, gateway.NewPayPalSandbox(), nil, "")

	orders.On("GetOrder", ctx, "order_1").Return(pendingOrder("order_1"), nil).Twice()
	ppOrder, err := svc.CreatePayPalOrder(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, "58.59", ppOrder.PurchaseUnits[0].Amount.Value)

	orders.On("MarkPaid", ctx, "order_1", oDomain.MethodPayPal, mock.AnythingOfType("string")).Return(pendingOrder("order_1"), nil).Once()
	res, err := svc.CapturePayPalPayment(ctx, ppOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Len(t, res.TransactionID, 17)
	orders.AssertExpectations(t)

	t.Run("Second capture fails", func(t *testing.T) {
		orders.On("GetOrder", ctx, "order_1").Return(pendingOrder("order_1"), nil).Once()

		_, err := svc.CapturePayPalPayment(ctx, ppOrder.ID)

		assert.ErrorIs(t, err, gateway.ErrProvider)
	})

	t.Run("Capture for an order paid another way", func(t *testing.T) {
		orders.On("GetOrder", ctx, "order_4").Return(pendingOrder("order_4"), nil).Once()
		other, err := svc.CreatePayPalOrder(ctx, "order_4")
		require.NoError(t, err)

		paid := pendingOrder("order_4")
		paid.Status = oDomain.StatusConfirmed
		paid.PaymentStatus = oDomain.PaymentCompleted
		orders.On("GetOrder", ctx, "order_4").Return(paid, nil).Once()

		_, err = svc.CapturePayPalPayment(ctx, other.ID)

		assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
		orders.AssertNotCalled(t, "MarkPaid", ctx, "order_4", mock.Anything, mock.Anything)
	})

	t.Run("Unknown PayPal order", func(t *testing.T) {
		_, err := svc.CapturePayPalPayment(ctx, "NOPE")
		assert.ErrorIs(t, err, gateway.ErrUnknownObject)
	})
}
func TestPaymentService_AuthorizeNet(t *testing.T) {
	ctx := context.TODO()
	orders := new(mocks.MockOrderBook)
	anet := new(mocks.MockAuthorizeNetGateway)
	svc := NewPaymentService(orders, nil, nil, anet, "usd")
	card := domain.CardData{CardNumber: "4111111111111111", ExpirationDate: "12/30", CardCode: "123"}

	t.Run("Approved", func(t *testing.T) {
		orders.On("GetOrder", ctx, "order_1").Return(pendingOrder("order_1"), nil).Once()
		anet.On("Charge", ctx, "order_1", mock.Anything, card).Return(&domain.AuthorizeNetResponse{TransID: "60012345678", ResponseCode: "1"}, nil).Once()
		orders.On("MarkPaid", ctx, "order_1", oDomain.MethodAuthorizeNet, "60012345678").Return(pendingOrder("order_1"), nil).Once()

		res, err := svc.ChargeAuthorizeNet(ctx, "order_1", card)

		require.NoError(t, err)
		assert.Equal(t, "60012345678", res.TransactionID)
		assert.Equal(t, "approved", res.Status)
		anet.AssertExpectations(t)
		orders.AssertExpectations(t)
	})

	t.Run("Cancelled order cannot be charged", func(t *testing.T) {
		cancelled := pendingOrder("order_3")
		cancelled.Status = oDomain.StatusCancelled
		orders.On("GetOrder", ctx, "order_3").Return(cancelled, nil).Once()

		_, err := svc.ChargeAuthorizeNet(ctx, "order_3", card)

		assert.ErrorIs(t, err, ErrOrderNotPayable)
		anet.AssertNotCalled(t, "Charge", ctx, "order_3", mock.Anything, card)
	})
}
