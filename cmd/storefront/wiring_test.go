package main

import (
	"context"
	"testing"

	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
	orderService "github.com/ridloal/fashion-dropship-store/internal/order/service"
	"github.com/ridloal/fashion-dropship-store/internal/platform/events"
	"github.com/ridloal/fashion-dropship-store/internal/platform/idempotency"
	productRepository "github.com/ridloal/fashion-dropship-store/internal/product/repository"
	productService "github.com/ridloal/fashion-dropship-store/internal/product/service"
	sDomain "github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/outbox"
	supplierRepository "github.com/ridloal/fashion-dropship-store/internal/supplier/repository"
	supplierService "github.com/ridloal/fashion-dropship-store/internal/supplier/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupplier() supplierService.SupplierService {
	return supplierService.NewSupplierService(
		supplierRepository.NewMemorySupplierRepository(supplierRepository.DefaultCatalog()),
		outbox.NewMemoryQueue(), idempotency.NewMemoryStore(), events.NewLogPublisher(), supplierService.Config{})
}

func TestSupplierFulfillment(t *testing.T) {
	ctx := context.Background()
	supplier := newSupplier()
	f := supplierFulfillment{supplier: supplier}

	t.Run("Maps supplier items", func(t *testing.T) {
		order := &oDomain.Order{
			ID:       "order_1",
			Shipping: decimal.RequireFromString("9.99"),
			Items: []oDomain.OrderItem{
				{ProductID: "p1", SupplierProductID: "SP_TOP_003", SupplierSKU: "SSB-003", Quantity: 2, Price: decimal.RequireFromString("69.99")},
				{ProductID: "p2", Quantity: 1, Price: decimal.NewFromInt(10)},
			},
		}

		id, err := f.PlaceSupplierOrder(ctx, order)
		require.NoError(t, err)

		so, err := supplier.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "order_1", so.OrderID)
		require.Len(t, so.Items, 1)
		assert.Equal(t, "SP_TOP_003", so.Items[0].ProductID)
		assert.Equal(t, "35.00", so.Items[0].Price.StringFixed(2))
		assert.Equal(t, "9.99", so.ShippingCost.StringFixed(2))
	})

	t.Run("No supplier items", func(t *testing.T) {
		_, err := f.PlaceSupplierOrder(ctx, &oDomain.Order{ID: "order_2", Items: []oDomain.OrderItem{{ProductID: "p2", Quantity: 1}}})
		assert.Error(t, err)
	})
}

type recordingOrders struct {
	orderService.OrderService
	updates []oDomain.SupplierUpdate
}

func (r *recordingOrders) ApplySupplierUpdate(_ context.Context, u oDomain.SupplierUpdate) (*oDomain.Order, error) {
	r.updates = append(r.updates, u)
	return nil, nil
}

func TestRelayStatus(t *testing.T) {
	orders := &recordingOrders{}
	relayStatus(orders)(context.Background(), sDomain.StatusChange{
		SupplierOrderID: "SUP-1-ABCDEF",
		OrderID:         "order_1",
		From:            sDomain.StatusConfirmed,
		To:              sDomain.StatusShipped,
		TrackingNumber:  "1ZABCDEF123456",
	})

	require.Len(t, orders.updates, 1)
	assert.Equal(t, oDomain.SupplierUpdate{
		SupplierOrderID: "SUP-1-ABCDEF",
		OrderID:         "order_1",
		Status:          "shipped",
		TrackingNumber:  "1ZABCDEF123456",
	}, orders.updates[0])
}

func TestRelayInventory(t *testing.T) {
	ctx := context.Background()
	repo := productRepository.NewMemoryProductRepository()
	_, err := productRepository.Seed(ctx, repo)
	require.NoError(t, err)
	products := productService.NewProductService(repo)

	relayInventory(products)(ctx, []sDomain.StockLevel{{ProductID: "SP_BOTTOM_004", Stock: 3}})

	all, err := repo.ListActiveProducts(ctx)
	require.NoError(t, err)
	for _, p := range all {
		if p.SupplierProductID == "SP_BOTTOM_004" {
			assert.Equal(t, 3, p.Stock)
		}
	}
}
