package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/order/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// MutateFunc edits an order in place inside UpdateOrder. Returning an error aborts the update.
type MutateFunc func(o *domain.Order) error

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrderBySupplierOrderID(ctx context.Context, supplierOrderID string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	GetPendingOrdersOlderThan(ctx context.Context, duration time.Duration) ([]domain.Order, error)

	// UpdateOrder applies fn to the current order and persists the result atomically.
	UpdateOrder(ctx context.Context, orderID string, fn MutateFunc) (*domain.Order, error)
}
