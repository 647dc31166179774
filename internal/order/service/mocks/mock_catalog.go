package mocks

import (
	"context"

	"github.com/ridloal/fashion-dropship-store/internal/order/domain"
	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/stretchr/testify/mock"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProductDetails(ctx context.Context, productID string) (*pDomain.Product, error) {
	args := m.Called(ctx, productID)
	if p := args.Get(0); p != nil {
		return p.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalog) ReserveStock(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockCatalog) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

type MockFulfillment struct {
	mock.Mock
}

func (m *MockFulfillment) PlaceSupplierOrder(ctx context.Context, order *domain.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}
