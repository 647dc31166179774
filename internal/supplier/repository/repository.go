package repository

import (
	"context"
	"errors"

	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
)

var (
	ErrSupplierProductNotFound = errors.New("supplier product not found")
	ErrSupplierOrderNotFound   = errors.New("supplier order not found")
)

// ProductMutateFunc and OrderMutateFunc run under the repository lock. Returning an error aborts the write.
type (
	ProductMutateFunc func(p *domain.Product) error
	OrderMutateFunc   func(o *domain.Order) error
)

type SupplierRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, fn ProductMutateFunc) (*domain.Product, error)

	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, supplierOrderID string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, supplierOrderID string, fn OrderMutateFunc) (*domain.Order, error)
}
