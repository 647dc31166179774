package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	oRepo "github.com/ridloal/fashion-dropship-store/internal/order/repository"
	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/ridloal/fashion-dropship-store/internal/payment/gateway"
	"github.com/ridloal/fashion-dropship-store/internal/payment/service"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
)

const (
	CodeOrderNotFound      = "ORDER_NOT_FOUND"
	CodeOrderAlreadyPaid   = "ORDER_ALREADY_PAID"
	CodeInvalidAction      = "INVALID_ACTION"
	CodePaymentIntentError = "PAYMENT_INTENT_ERROR"
	CodePaymentFailed      = "PAYMENT_FAILED"
	CodeStripeError        = "STRIPE_ERROR"
	CodePayPalOrderError   = "PAYPAL_ORDER_ERROR"
	CodePayPalCaptureError = "PAYPAL_CAPTURE_ERROR"
	CodePayPalError        = "PAYPAL_ERROR"
	CodeAuthorizeNetError  = "AUTHORIZE_NET_ERROR"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(ps service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	paymentRoutes := router.Group("/payments")
	{
		paymentRoutes.POST("/stripe", h.Stripe)
		paymentRoutes.POST("/paypal", h.PayPal)
		paymentRoutes.POST("/authorize-net", h.AuthorizeNet)
	}
}

// failure describes how one operation reports provider and unexpected errors.
type failure struct {
	op             string
	providerCode   string
	providerMsg    string
	unexpectedCode string
	unexpectedMsg  string
}

func (f failure) write(c *gin.Context, err error) {
	switch {
	case errors.Is(err, oRepo.ErrOrderNotFound):
		httpx.Fail(c, http.StatusNotFound, CodeOrderNotFound, "Order not found")
	case errors.Is(err, service.ErrOrderAlreadyPaid):
		httpx.Fail(c, http.StatusConflict, CodeOrderAlreadyPaid, "Order has already been paid")
	case errors.Is(err, service.ErrOrderNotPayable), errors.Is(err, gateway.ErrProvider):
		logger.Warn("%s Hdl: payment rejected: %v", f.op, err)
		msg := err.Error()
		if msg == "" {
			msg = f.providerMsg
		}
		httpx.Fail(c, http.StatusBadRequest, f.providerCode, msg)
	default:
		logger.Error(f.op+" Hdl: unexpected error", err)
		httpx.Fail(c, http.StatusInternalServerError, f.unexpectedCode, f.unexpectedMsg)
	}
}

func (h *PaymentHandler) Stripe(c *gin.Context) {
	var req domain.StripeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, CodeInvalidAction, "Invalid payment action")
		return
	}
	ctx := c.Request.Context()

	switch req.Action {
	case domain.ActionCreatePaymentIntent:
		pi, err := h.paymentService.CreateStripeIntent(ctx, req.OrderID)
		if err != nil {
			failure{"CreatePaymentIntent", CodePaymentIntentError, "Failed to create payment intent", CodeStripeError, "Stripe payment processing failed"}.write(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"paymentIntent": pi, "clientSecret": pi.ClientSecret})

	case domain.ActionConfirmPayment:
		res, err := h.paymentService.ConfirmStripePayment(ctx, req.PaymentIntentID, req.PaymentMethodID)
		if err != nil {
			failure{"ConfirmPayment", CodePaymentFailed, "Payment processing failed", CodeStripeError, "Stripe payment processing failed"}.write(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, res)

	default:
		httpx.Fail(c, http.StatusBadRequest, CodeInvalidAction, "Invalid payment action")
	}
}

func (h *PaymentHandler) PayPal(c *gin.Context) {
	var req domain.PayPalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, CodeInvalidAction, "Invalid PayPal action")
		return
	}
	ctx := c.Request.Context()

	switch req.Action {
	case domain.ActionCreateOrder:
		order, err := h.paymentService.CreatePayPalOrder(ctx, req.OrderID)
		if err != nil {
			failure{"CreatePayPalOrder", CodePayPalOrderError, "Failed to create PayPal order", CodePayPalError, "PayPal payment processing failed"}.write(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"paypalOrder": order, "orderId": order.ID})

	case domain.ActionCapturePayment:
		res, err := h.paymentService.CapturePayPalPayment(ctx, req.PayPalOrderID)
		if err != nil {
			failure{"CapturePayPal", CodePayPalCaptureError, "Failed to capture PayPal payment", CodePayPalError, "PayPal payment processing failed"}.write(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, res)

	default:
		httpx.Fail(c, http.StatusBadRequest, CodeInvalidAction, "Invalid PayPal action")
	}
}

func (h *PaymentHandler) AuthorizeNet(c *gin.Context) {
	var req domain.AuthorizeNetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.paymentService.ChargeAuthorizeNet(c.Request.Context(), req.OrderID, req.PaymentData)
	if err != nil {
		failure{"AuthorizeNet", CodeAuthorizeNetError, "Authorize.Net payment processing failed", CodeAuthorizeNetError, "Authorize.Net payment processing failed"}.write(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, res)
}
