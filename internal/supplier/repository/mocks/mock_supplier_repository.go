package mocks

import (
	"context"

	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/repository"
	"github.com/stretchr/testify/mock"
)

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSupplierRepository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateProduct applies fn to a copy of the product configured in Return.
func (m *MockSupplierRepository) UpdateProduct(ctx context.Context, productID string, fn repository.ProductMutateFunc) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	p := args.Get(0).(*domain.Product)
	work := *p
	if err := fn(&work); err != nil {
		return nil, err
	}
	*p = work
	return &work, nil
}

func (m *MockSupplierRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSupplierRepository) GetOrder(ctx context.Context, supplierOrderID string) (*domain.Order, error) {
	args := m.Called(ctx, supplierOrderID)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSupplierRepository) UpdateOrder(ctx context.Context, supplierOrderID string, fn repository.OrderMutateFunc) (*domain.Order, error) {
	args := m.Called(ctx, supplierOrderID)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	o := args.Get(0).(*domain.Order)
	work := o.Clone()
	if err := fn(&work); err != nil {
		return nil, err
	}
	*o = work
	cp := work.Clone()
	return &cp, nil
}
