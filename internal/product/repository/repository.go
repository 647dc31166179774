package repository

import (
	"context"
	"errors"

	"github.com/ridloal/fashion-dropship-store/internal/product/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductRepository interface {
	ListProducts(ctx context.Context, q domain.ListQuery) (*domain.ListResult, error)
	ListActiveProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	// UpdateProduct writes every column except stock and loads the stored stock back into p.
	UpdateProduct(ctx context.Context, p *domain.Product) error
	SetStock(ctx context.Context, id string, stock int) (int, error)
	// AdjustStock menambah/mengurangi stok secara atomik. Stok tidak boleh negatif.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
	// SetStockBySupplierID returns how many products were updated.
	SetStockBySupplierID(ctx context.Context, supplierProductID string, stock int) (int, error)
}
