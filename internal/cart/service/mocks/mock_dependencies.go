package mocks

import (
	"context"

	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
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

type MockOrderPlacer struct {
	mock.Mock
}

func (m *MockOrderPlacer) CreateOrder(ctx context.Context, req oDomain.CreateOrderRequest) (*oDomain.Order, error) {
	args := m.Called(ctx, req)
	if o := args.Get(0); o != nil {
		return o.(*oDomain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}
