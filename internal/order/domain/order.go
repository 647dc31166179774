package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentProcessing        PaymentStatus = "processing"
	PaymentCompleted         PaymentStatus = "completed"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

type PaymentMethod string

const (
	MethodStripeCard      PaymentMethod = "stripe_card"
	MethodStripeApplePay  PaymentMethod = "stripe_apple_pay"
	MethodStripeGooglePay PaymentMethod = "stripe_google_pay"
	MethodPayPal          PaymentMethod = "paypal"
	MethodAuthorizeNet    PaymentMethod = "authorize_net"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodStripeCard, MethodStripeApplePay, MethodStripeGooglePay, MethodPayPal, MethodAuthorizeNet:
		return true
	}
	return false
}

// transitions lists the statuses an order may move to from each status.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusShipped, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// progress orders the fulfilment statuses. Terminal side branches have no rank.
var progress = map[OrderStatus]int{
	StatusPending:    1,
	StatusConfirmed:  2,
	StatusProcessing: 3,
	StatusShipped:    4,
	StatusDelivered:  5,
}

// Advances reports whether moving to next is forward progress along the fulfilment path.
func (s OrderStatus) Advances(next OrderStatus) bool {
	cur, ok1 := progress[s]
	nxt, ok2 := progress[next]
	return ok1 && ok2 && nxt > cur
}

type Address struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1" binding:"required"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	ZipCode   string `json:"zipCode" binding:"required"`
	Country   string `json:"country" binding:"required"`
	Phone     string `json:"phone,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	OrderNumber     string          `json:"orderNumber"`
	Status          OrderStatus     `json:"status"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentID       string          `json:"paymentId"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	SupplierOrderID string          `json:"supplierOrderId,omitempty"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentCompleted
}

type OrderItem struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"productId"`
	ProductName         string          `json:"productName"`
	ProductImage        string          `json:"productImage,omitempty"`
	Size                string          `json:"size"`
	Color               string          `json:"color"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"` // harga satuan saat checkout
	SupplierProductID   string          `json:"supplierProductId,omitempty"`
	SupplierSKU         string          `json:"supplierSku,omitempty"`
	SupplierOrderItemID string          `json:"supplierOrderItemId,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Untuk request pembuatan order. Harga selalu diambil dari katalog.
type CreateOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	UserID          string                   `json:"-"` // dari token, bukan dari body
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   PaymentMethod            `json:"paymentMethod" binding:"required"`
	ShippingAddress Address                  `json:"shippingAddress" binding:"required"`
	BillingAddress  *Address                 `json:"billingAddress"`
	Notes           string                   `json:"notes"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// SupplierUpdate is a supplier-side order status change relayed to the storefront order.
type SupplierUpdate struct {
	SupplierOrderID string
	OrderID         string
	Status          string
	TrackingNumber  string
}

type SalesAnalytics struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalOrders       int             `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}
