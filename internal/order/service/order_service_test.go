package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/order/domain"
	oRepo "github.com/ridloal/fashion-dropship-store/internal/order/repository"

	// mocks for order repo
	"github.com/ridloal/fashion-dropship-store/internal/order/repository/mocks"
	// mocks for catalog and fulfillment used by order service
	svcMocks "github.com/ridloal/fashion-dropship-store/internal/order/service/mocks"
	"github.com/ridloal/fashion-dropship-store/internal/platform/events"
	eventMocks "github.com/ridloal/fashion-dropship-store/internal/platform/events/mocks"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"
	pRepo "github.com/ridloal/fashion-dropship-store/internal/product/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(repo oRepo.OrderRepository, catalog Catalog, f Fulfillment, timeout time.Duration) OrderService {
	return NewOrderService(repo, catalog, f, events.NewLogPublisher(), money.DefaultRules(), timeout)
}

func testAddress() domain.Address {
	return domain.Address{FirstName: "Ana", LastName: "Lee", Address1: "1 Main St", City: "Austin", State: "TX", ZipCode: "73301", Country: "US"}
}

func TestOrderService_CreateOrder(t *testing.T) {
	mockOrderRepo := new(mocks.MockOrderRepository)
	mockCatalog := new(svcMocks.MockCatalog)
	orderServiceInstance := newTestService(mockOrderRepo, mockCatalog, nil, time.Minute)

	ctx := context.TODO()
	prod1 := &pDomain.Product{ID: "prod1", Name: "Dress", Price: decimal.NewFromInt(10), IsActive: true,
		Sizes: []pDomain.SizeOption{{Size: pDomain.SizeM, Available: true}, {Size: pDomain.SizeL, Available: false}}}
	prod2 := &pDomain.Product{ID: "prod2", Name: "Top", Price: decimal.NewFromInt(25), IsActive: true, SupplierProductID: "SP_TOP_003"}

	createOrderReq := domain.CreateOrderRequest{
		UserID: "user123",
		Items: []domain.CreateOrderItemRequest{
			{ProductID: "prod1", Size: "M", Quantity: 2},
			{ProductID: "prod2", Quantity: 1},
		},
		PaymentMethod:   domain.MethodStripeCard,
		ShippingAddress: testAddress(),
	}

	t.Run("Successful order creation", func(t *testing.T) {
		mockCatalog.On("GetProductDetails", ctx, "prod1").Return(prod1, nil).Once()
		mockCatalog.On("GetProductDetails", ctx, "prod2").Return(prod2, nil).Once()
		mockCatalog.On("ReserveStock", ctx, "prod1", 2).Return(nil).Once()
		mockCatalog.On("ReserveStock", ctx, "prod2", 1).Return(nil).Once()
		mockOrderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

		order, err := orderServiceInstance.CreateOrder(ctx, createOrderReq)

		require.NoError(t, err)
		assert.Contains(t, order.ID, "order_")
		assert.Regexp(t, `^ORD-\d+-[A-Z0-9]{4}$`, order.OrderNumber)
		assert.Equal(t, domain.StatusPending, order.Status)
		assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
		assert.Equal(t, "45", order.Subtotal.String())
		assert.Equal(t, "3.6", order.Tax.String())
		assert.Equal(t, "9.99", order.Shipping.String())
		assert.Equal(t, "58.59", order.Total.String())
		assert.Equal(t, "SP_TOP_003", order.Items[1].SupplierProductID)
		assert.Equal(t, testAddress(), order.BillingAddress) // default ke alamat pengiriman
		mockOrderRepo.AssertExpectations(t)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("Unavailable size is rejected before reserving", func(t *testing.T) {
		mockCatalog.On("GetProductDetails", ctx, "prod1").Return(prod1, nil).Once()

		req := createOrderReq
		req.Items = []domain.CreateOrderItemRequest{{ProductID: "prod1", Size: "L", Quantity: 1}}
		order, err := orderServiceInstance.CreateOrder(ctx, req)

		assert.Nil(t, order)
		assert.ErrorIs(t, err, ErrProductUnavailable)
		mockCatalog.AssertNotCalled(t, "ReserveStock", ctx, "prod1", 1)
	})

	t.Run("Unknown product", func(t *testing.T) {
		mockCatalog.On("GetProductDetails", ctx, "ghost").Return(nil, pRepo.ErrProductNotFound).Once()

		req := createOrderReq
		req.Items = []domain.CreateOrderItemRequest{{ProductID: "ghost", Quantity: 1}}
		_, err := orderServiceInstance.CreateOrder(ctx, req)

		assert.ErrorIs(t, err, pRepo.ErrProductNotFound)
	})

	t.Run("Invalid payment method", func(t *testing.T) {
		req := createOrderReq
		req.PaymentMethod = "bitcoin"
		_, err := orderServiceInstance.CreateOrder(ctx, req)

		assert.ErrorIs(t, err, ErrInvalidOrder)
	})

	t.Run("Stock reservation failed for one item, ensure rollback", func(t *testing.T) {
		mockCatalog.On("GetProductDetails", ctx, "prod1").Return(prod1, nil).Once()
		mockCatalog.On("GetProductDetails", ctx, "prod2").Return(prod2, nil).Once()
		mockCatalog.On("ReserveStock", ctx, "prod1", 2).Return(nil).Once()                                 // Sukses item pertama
		mockCatalog.On("ReserveStock", ctx, "prod2", 1).Return(pRepo.ErrInsufficientStock).Once()          // Gagal item kedua
		mockCatalog.On("ReleaseStock", context.Background(), "prod1", 2).Return(nil).Once()               // rollback best-effort

		order, err := orderServiceInstance.CreateOrder(ctx, createOrderReq)

		assert.Nil(t, order)
		assert.ErrorIs(t, err, ErrStockReservationFailed)
		assert.Contains(t, err.Error(), "prod2") // Error message should mention the failing product
		mockCatalog.AssertExpectations(t)
	})

	t.Run("CreateOrder fails after stock reservation releases stock", func(t *testing.T) {
		mockCatalog.On("GetProductDetails", ctx, "prod1").Return(prod1, nil).Once()
		mockCatalog.On("GetProductDetails", ctx, "prod2").Return(prod2, nil).Once()
		mockCatalog.On("ReserveStock", ctx, "prod1", 2).Return(nil).Once()
		mockCatalog.On("ReserveStock", ctx, "prod2", 1).Return(nil).Once()
		repoErr := errors.New("db transaction error")
		mockOrderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(repoErr).Once()
		mockCatalog.On("ReleaseStock", context.Background(), "prod1", 2).Return(nil).Once()
		mockCatalog.On("ReleaseStock", context.Background(), "prod2", 1).Return(nil).Once()

		order, err := orderServiceInstance.CreateOrder(ctx, createOrderReq)

		assert.Nil(t, order)
		assert.ErrorIs(t, err, ErrOrderCreationFailed)
		assert.Contains(t, err.Error(), repoErr.Error())
		mockOrderRepo.AssertExpectations(t)
		mockCatalog.AssertExpectations(t)
	})
}

func TestOrderService_MarkPaid(t *testing.T) {
	ctx := context.TODO()
	orderID := "order-paid-123"
	newPending := func() *domain.Order {
		return &domain.Order{
			ID:            orderID,
			Status:        domain.StatusPending,
			PaymentStatus: domain.PaymentPending,
			PaymentMethod: domain.MethodStripeCard,
			Total:         decimal.RequireFromString("58.59"),
		}
	}

	t.Run("Successful payment hands order to supplier", func(t *testing.T) {
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockFulfillment := new(svcMocks.MockFulfillment)
		mockPublisher := new(eventMocks.MockPublisher)
		svc := NewOrderService(mockOrderRepo, new(svcMocks.MockCatalog), mockFulfillment, mockPublisher, money.DefaultRules(), time.Minute)

		stored := newPending()
		mockOrderRepo.On("UpdateOrder", ctx, orderID).Return(stored, nil).Twice()
		mockPublisher.On("Publish", ctx, events.EventOrderPaid, orderID, mock.Anything).Return(nil).Once()
		mockPublisher.On("Publish", ctx, events.EventOrderStatusChanged, orderID, mock.Anything).Return(nil).Once()
		mockFulfillment.On("PlaceSupplierOrder", ctx, mock.MatchedBy(func(o *domain.Order) bool {
			return o.IsPaid() && o.Status == domain.StatusConfirmed
		})).Return("SUP-1-ABCDEF", nil).Once()

		order, err := svc.MarkPaid(ctx, orderID, domain.MethodPayPal, "CAPTURE-123")

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, order.PaymentStatus)
		assert.Equal(t, "CAPTURE-123", order.PaymentID)
		assert.Equal(t, domain.MethodPayPal, order.PaymentMethod)
		assert.Equal(t, "SUP-1-ABCDEF", order.SupplierOrderID)
		mockOrderRepo.AssertExpectations(t)
		mockFulfillment.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("Supplier failure keeps the payment", func(t *testing.T) {
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockFulfillment := new(svcMocks.MockFulfillment)
		svc := newTestService(mockOrderRepo, new(svcMocks.MockCatalog), mockFulfillment, time.Minute)

		mockOrderRepo.On("UpdateOrder", ctx, orderID).Return(newPending(), nil).Once()
		mockFulfillment.On("PlaceSupplierOrder", ctx, mock.Anything).Return("", errors.New("supplier down")).Once()

		order, err := svc.MarkPaid(ctx, orderID, "", "pi_123")

		require.NoError(t, err)
		assert.True(t, order.IsPaid())
		assert.Empty(t, order.SupplierOrderID)
		assert.Equal(t, domain.MethodStripeCard, order.PaymentMethod)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("Already paid", func(t *testing.T) {
		mockOrderRepo := new(mocks.MockOrderRepository)
		svc := newTestService(mockOrderRepo, new(svcMocks.MockCatalog), nil, time.Minute)

		paid := newPending()
		paid.PaymentStatus = domain.PaymentCompleted
		mockOrderRepo.On("UpdateOrder", ctx, orderID).Return(paid, nil).Once()

		_, err := svc.MarkPaid(ctx, orderID, domain.MethodStripeCard, "pi_456")
		assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	})

	t.Run("Cancelled order cannot be paid", func(t *testing.T) {
		mockOrderRepo := new(mocks.MockOrderRepository)
		svc := newTestService(mockOrderRepo, new(svcMocks.MockCatalog), nil, time.Minute)

		cancelled := newPending()
		cancelled.Status = domain.StatusCancelled
		mockOrderRepo.On("UpdateOrder", ctx, orderID).Return(cancelled, nil).Once()

		_, err := svc.MarkPaid(ctx, orderID, domain.MethodStripeCard, "pi_789")
		assert.ErrorIs(t, err, ErrOrderNotPayable)
	})

	t.Run("Order not found", func(t *testing.T) {
		mockOrderRepo := new(mocks.MockOrderRepository)
		svc := newTestService(mockOrderRepo, new(svcMocks.MockCatalog), nil, time.Minute)
		mockOrderRepo.On("UpdateOrder", ctx, orderID).Return(nil, oRepo.ErrOrderNotFound).Once()

		order, err := svc.MarkPaid(ctx, orderID, domain.MethodStripeCard, "pi_000")
		assert.Nil(t, order)
		assert.ErrorIs(t, err, oRepo.ErrOrderNotFound)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.TODO()

	t.Run("Valid transition", func(t *testing.T) {
		mockOrderRepo := new(mocks.MockOrderRepository)
		svc := newTestService(mockOrderRepo, new(svcMocks.MockCatalog), nil, time.Minute)
		mockOrderRepo.On("UpdateOrder", ctx, "o1").Return(&domain.Order{ID: "o1", Status: domain.StatusShipped}, nil).Once()

		order, err := svc.UpdateStatus(ctx, "o1", domain.StatusDelivered)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusDelivered, order.Status)
	})

	t.Run("Invalid transition", func(t *testing.T) {
		mockOrderRepo := new(mocks.MockOrderRepository)
		svc := newTestService(mockOrderRepo, new(svcMocks.MockCatalog), nil, time.Minute)
		mockOrderRepo.On("UpdateOrder", ctx, "o1").Return(&domain.Order{ID: "o1", Status: domain.StatusPending}, nil).Once()

		_, err := svc.UpdateStatus(ctx, "o1", domain.StatusDelivered)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Unknown status", func(t *testing.T) {
		svc := newTestService(new(mocks.MockOrderRepository), new(svcMocks.MockCatalog), nil, time.Minute)
		_, err := svc.UpdateStatus(ctx, "o1", "lost")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Cancel releases stock", func(t *testing.T) {
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockCatalog := new(svcMocks.MockCatalog)
		svc := newTestService(mockOrderRepo, mockCatalog, nil, time.Minute)
		stored := &domain.Order{ID: "o2", Status: domain.StatusConfirmed, PaymentStatus: domain.PaymentPending,
			Items: []domain.OrderItem{{ProductID: "prodA", Quantity: 3}}}
		mockOrderRepo.On("UpdateOrder", ctx, "o2").Return(stored, nil).Once()
		mockCatalog.On("ReleaseStock", context.Background(), "prodA", 3).Return(nil).Once()

		order, err := svc.UpdateStatus(ctx, "o2", domain.StatusCancelled)

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentFailed, order.PaymentStatus)
		mockCatalog.AssertExpectations(t)
	})
}

func TestOrderService_ApplySupplierUpdate(t *testing.T) {
	ctx := context.TODO()
	repo := oRepo.NewMemoryOrderRepository()
	svc := newTestService(repo, new(svcMocks.MockCatalog), nil, time.Minute)

	require.NoError(t, repo.CreateOrder(ctx, &domain.Order{
		ID: "o1", Status: domain.StatusConfirmed, PaymentStatus: domain.PaymentCompleted, SupplierOrderID: "SUP-1-AAAAAA",
	}))

	t.Run("Supplier confirmation moves order to processing", func(t *testing.T) {
		order, err := svc.ApplySupplierUpdate(ctx, domain.SupplierUpdate{SupplierOrderID: "SUP-1-AAAAAA", Status: "confirmed"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessing, order.Status)
	})

	t.Run("Shipment records tracking and replays are no-ops", func(t *testing.T) {
		update := domain.SupplierUpdate{SupplierOrderID: "SUP-1-AAAAAA", Status: "shipped", TrackingNumber: "1ZABCDEF123456"}
		order, err := svc.ApplySupplierUpdate(ctx, update)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusShipped, order.Status)
		assert.Equal(t, "1ZABCDEF123456", order.TrackingNumber)
		firstUpdate := order.UpdatedAt

		order, err = svc.ApplySupplierUpdate(ctx, update)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusShipped, order.Status)
		assert.Equal(t, firstUpdate, order.UpdatedAt)
	})

	t.Run("Stale status is dropped", func(t *testing.T) {
		order, err := svc.ApplySupplierUpdate(ctx, domain.SupplierUpdate{SupplierOrderID: "SUP-1-AAAAAA", Status: "confirmed"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusShipped, order.Status)
	})

	t.Run("Unknown supplier order", func(t *testing.T) {
		_, err := svc.ApplySupplierUpdate(ctx, domain.SupplierUpdate{SupplierOrderID: "SUP-404", Status: "shipped"})
		assert.ErrorIs(t, err, oRepo.ErrOrderNotFound)
	})
}

func TestOrderService_ProcessPaymentTimeouts(t *testing.T) {
	mockOrderRepo := new(mocks.MockOrderRepository)
	mockCatalog := new(svcMocks.MockCatalog)
	timeoutDuration := 30 * time.Minute
	orderServiceInstance := newTestService(mockOrderRepo, mockCatalog, nil, timeoutDuration)

	ctx := context.Background() // Sesuai penggunaan di service
	newTimedOut := func() *domain.Order {
		return &domain.Order{
			ID: "timeout1", UserID: "userA", Status: domain.StatusPending, PaymentStatus: domain.PaymentPending,
			CreatedAt: time.Now().Add(-timeoutDuration * 2),
			Items: []domain.OrderItem{
				{ProductID: "prodX", Quantity: 1},
				{ProductID: "prodY", Quantity: 2},
			},
		}
	}

	t.Run("Successfully process one timed-out order", func(t *testing.T) {
		stored := newTimedOut()
		mockOrderRepo.On("GetPendingOrdersOlderThan", ctx, timeoutDuration).Return([]domain.Order{*stored}, nil).Once()
		mockOrderRepo.On("UpdateOrder", ctx, stored.ID).Return(stored, nil).Once()
		mockCatalog.On("ReleaseStock", ctx, "prodX", 1).Return(nil).Once()
		mockCatalog.On("ReleaseStock", ctx, "prodY", 2).Return(nil).Once()

		orderServiceInstance.ProcessPaymentTimeouts(ctx) // Ini void method

		assert.Equal(t, domain.StatusCancelled, stored.Status)
		assert.Equal(t, domain.PaymentFailed, stored.PaymentStatus)
		mockOrderRepo.AssertExpectations(t)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("No orders past payment timeout", func(t *testing.T) {
		mockOrderRepo.On("GetPendingOrdersOlderThan", ctx, timeoutDuration).Return([]domain.Order{}, nil).Once()

		orderServiceInstance.ProcessPaymentTimeouts(ctx)

		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("Order paid meanwhile is skipped", func(t *testing.T) {
		stored := newTimedOut()
		stored.PaymentStatus = domain.PaymentCompleted
		mockOrderRepo.On("GetPendingOrdersOlderThan", ctx, timeoutDuration).Return([]domain.Order{*newTimedOut()}, nil).Once()
		mockOrderRepo.On("UpdateOrder", ctx, stored.ID).Return(stored, nil).Once()

		orderServiceInstance.ProcessPaymentTimeouts(ctx)

		assert.Equal(t, domain.StatusPending, stored.Status)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("Failed to release stock for an item", func(t *testing.T) {
		stored := newTimedOut()
		mockOrderRepo.On("GetPendingOrdersOlderThan", ctx, timeoutDuration).Return([]domain.Order{*stored}, nil).Once()
		mockOrderRepo.On("UpdateOrder", ctx, stored.ID).Return(stored, nil).Once()
		mockCatalog.On("ReleaseStock", ctx, "prodX", 1).Return(errors.New("catalog error")).Once() // Gagal rilis prodX
		mockCatalog.On("ReleaseStock", ctx, "prodY", 2).Return(nil).Once()                        // prodY tetap dirilis

		orderServiceInstance.ProcessPaymentTimeouts(ctx)

		// Order tetap dibatalkan
		assert.Equal(t, domain.StatusCancelled, stored.Status)
		mockOrderRepo.AssertExpectations(t)
		mockCatalog.AssertExpectations(t)
	})
}

func TestOrderService_SalesAnalytics(t *testing.T) {
	mockOrderRepo := new(mocks.MockOrderRepository)
	svc := newTestService(mockOrderRepo, new(svcMocks.MockCatalog), nil, time.Minute)
	ctx := context.TODO()

	t.Run("Averages delivered orders", func(t *testing.T) {
		mockOrderRepo.On("ListOrdersByStatus", ctx, domain.StatusDelivered).Return([]domain.Order{
			{Total: decimal.RequireFromString("100.00")},
			{Total: decimal.RequireFromString("50.01")},
			{Total: decimal.RequireFromString("25.00")},
		}, nil).Once()

		res, err := svc.SalesAnalytics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, res.TotalOrders)
		assert.Equal(t, "175.01", res.TotalRevenue.StringFixed(2))
		assert.Equal(t, "58.34", res.AverageOrderValue.StringFixed(2))
	})

	t.Run("No delivered orders", func(t *testing.T) {
		mockOrderRepo.On("ListOrdersByStatus", ctx, domain.StatusDelivered).Return([]domain.Order{}, nil).Once()

		res, err := svc.SalesAnalytics(ctx)

		require.NoError(t, err)
		assert.True(t, res.AverageOrderValue.IsZero())
		mockOrderRepo.AssertExpectations(t)
	})
}
