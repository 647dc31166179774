package mocks

import (
	"context"

	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"

	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListProducts(ctx context.Context, q pDomain.ListQuery) (*pDomain.ListResult, error) {
	args := m.Called(ctx, q)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.ListResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) ListActiveProducts(ctx context.Context) ([]pDomain.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id string) (*pDomain.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, p *pDomain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, p *pDomain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) SetStock(ctx context.Context, id string, stock int) (int, error) {
	args := m.Called(ctx, id, stock)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) SetStockBySupplierID(ctx context.Context, supplierProductID string, stock int) (int, error) {
	args := m.Called(ctx, supplierProductID, stock)
	return args.Int(0), args.Error(1)
}
