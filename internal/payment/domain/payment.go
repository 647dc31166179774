package domain

import (
	"github.com/shopspring/decimal"
)

const (
	ActionCreatePaymentIntent = "create_payment_intent"
	ActionConfirmPayment      = "confirm_payment"
	ActionCreateOrder         = "create_order"
	ActionCapturePayment      = "capture_payment"

	// MetadataOrderID links a provider object back to the storefront order.
	MetadataOrderID = "order_id"
)

// PaymentIntent mirrors the Stripe payment intent object, so field names follow Stripe.
type PaymentIntent struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	LatestCharge string            `json:"latest_charge,omitempty"`
	Metadata     map[string]string `json:"metadata"`
	Created      int64             `json:"created"`
}

func (pi *PaymentIntent) OrderID() string {
	return pi.Metadata[MetadataOrderID]
}

type PayPalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PayPalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id"`
	Amount      PayPalAmount `json:"amount"`
}

type PayPalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type PayPalOrder struct {
	ID            string               `json:"id"`
	Intent        string               `json:"intent"`
	Status        string               `json:"status"`
	PurchaseUnits []PayPalPurchaseUnit `json:"purchase_units"`
	Links         []PayPalLink         `json:"links"`
}

// OrderID is the storefront order carried in the first purchase unit.
func (o *PayPalOrder) OrderID() string {
	if len(o.PurchaseUnits) == 0 {
		return ""
	}
	return o.PurchaseUnits[0].ReferenceID
}

type PayPalCapture struct {
	ID            string       `json:"id"`
	PayPalOrderID string       `json:"paypalOrderId"`
	OrderID       string       `json:"orderId"`
	Status        string       `json:"status"`
	Amount        PayPalAmount `json:"amount"`
}

// CardData is the card payload the Authorize.Net endpoint accepts.
type CardData struct {
	CardNumber     string `json:"cardNumber" binding:"required"`
	ExpirationDate string `json:"expirationDate" binding:"required"` // MM/YY, MMYY atau YYYY-MM
	CardCode       string `json:"cardCode"`
}

type AuthorizeNetMessage struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// AuthorizeNetResponse follows the transactionResponse block of the Authorize.Net API.
type AuthorizeNetResponse struct {
	ResponseCode  string                `json:"responseCode"`
	AuthCode      string                `json:"authCode"`
	AVSResultCode string                `json:"avsResultCode"`
	CVVResultCode string                `json:"cvvResultCode"`
	TransID       string                `json:"transId"`
	RefTransID    string                `json:"refTransID"`
	AccountNumber string                `json:"accountNumber"`
	AccountType   string                `json:"accountType"`
	Amount        decimal.Decimal       `json:"amount"`
	Messages      []AuthorizeNetMessage `json:"messages"`
}

// Result is what a successful capture returns to the client.
type Result struct {
	TransactionID string      `json:"transactionId"`
	Status        string      `json:"status"`
	Details       interface{} `json:"details,omitempty"`
}

type StripeRequest struct {
	Action          string `json:"action"`
	OrderID         string `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type PayPalRequest struct {
	Action        string `json:"action"`
	OrderID       string `json:"orderId"`
	PayPalOrderID string `json:"paypalOrderId"`
}

type AuthorizeNetRequest struct {
	OrderID     string   `json:"orderId" binding:"required"`
	PaymentData CardData `json:"paymentData" binding:"required"`
}
