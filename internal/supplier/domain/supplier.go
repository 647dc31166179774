package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	// webhook dari supplier bisa langsung shipped tanpa confirm
	StatusPending:   {StatusConfirmed, StatusShipped, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ShippingInfo struct {
	Weight     float64    `json:"weight"` // kg
	Dimensions Dimensions `json:"dimensions"`
}

type Attributes struct {
	Sizes    []string `json:"sizes"`
	Colors   []string `json:"colors"`
	Material string   `json:"material"`
	Care     string   `json:"care"`
}

// Product is an item in the supplier catalog. Price is the wholesale price.
type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	Attributes  Attributes      `json:"attributes"`
	Shipping    ShippingInfo    `json:"shipping"`
}

type OrderItem struct {
	ProductID string          `json:"productId"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID             string          `json:"id"`
	OrderID        string          `json:"orderId"` // order di storefront
	Items          []OrderItem     `json:"items"`
	Status         OrderStatus     `json:"status"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

type CreateOrderItem struct {
	ProductID   string
	SKU         string
	Quantity    int
	RetailPrice decimal.Decimal
}

type CreateOrderRequest struct {
	OrderID      string
	Items        []CreateOrderItem
	ShippingCost decimal.Decimal
}

type Availability struct {
	Available bool            `json:"available"`
	Stock     int             `json:"stock"`
	Price     decimal.Decimal `json:"price"`
}

type SyncResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

type StockLevel struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

// StatusChange is emitted whenever a supplier order moves to a new status.
type StatusChange struct {
	SupplierOrderID string      `json:"supplierOrderId"`
	OrderID         string      `json:"orderId"`
	From            OrderStatus `json:"from"`
	To              OrderStatus `json:"to"`
	TrackingNumber  string      `json:"trackingNumber,omitempty"`
	At              time.Time   `json:"at"`
}

// Webhook event types sent by the supplier.
const (
	WebhookOrderShipped     = "order.shipped"
	WebhookOrderDelivered   = "order.delivered"
	WebhookOrderCancelled   = "order.cancelled"
	WebhookInventoryUpdated = "inventory.updated"
)

type WebhookEvent struct {
	ID   string          `json:"id,omitempty"`
	Type string          `json:"type" binding:"required"`
	Data json.RawMessage `json:"data"`
}

// OrderWebhookData carries the supplier order id in orderId.
type OrderWebhookData struct {
	OrderID        string `json:"orderId"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

type InventoryUpdate struct {
	ProductID string           `json:"productId"`
	Stock     int              `json:"stock"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

type InventoryWebhookData struct {
	Products []InventoryUpdate `json:"products"`
}

type WebhookResult struct {
	Processed bool   `json:"processed"`
	Message   string `json:"message"`
}

type ShippingItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type ShippingQuoteRequest struct {
	Items   []ShippingItem `json:"items" binding:"required,min=1,dive"`
	Country string         `json:"country" binding:"required"`
}

type ShippingQuote struct {
	Cost    decimal.Decimal `json:"cost"`
	Weight  float64         `json:"weight"`
	Country string          `json:"country"`
}

type Metrics struct {
	OrderFulfillmentRate  float64 `json:"orderFulfillmentRate"`
	AverageProcessingTime float64 `json:"averageProcessingTime"` // hari
	InventoryAccuracy     float64 `json:"inventoryAccuracy"`
	ShippingAccuracy      float64 `json:"shippingAccuracy"`
}
