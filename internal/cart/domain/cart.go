package domain

import (
	"time"

	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Product   pDomain.Product `json:"product"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// SameLine reports whether two items describe the same product variant.
func (i CartItem) SameLine(productID, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}

type Cart struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId,omitempty"`
	SessionID string          `json:"sessionId"`
	Items     []CartItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (c Cart) Clone() Cart {
	c.Items = append([]CartItem(nil), c.Items...)
	return c
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

type CheckoutRequest struct {
	PaymentMethod   oDomain.PaymentMethod `json:"paymentMethod" binding:"required"`
	ShippingAddress oDomain.Address       `json:"shippingAddress" binding:"required"`
	BillingAddress  *oDomain.Address      `json:"billingAddress"`
	Notes           string                `json:"notes"`
}
