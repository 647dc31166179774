package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/order/domain"
	"github.com/ridloal/fashion-dropship-store/internal/order/repository"
	"github.com/ridloal/fashion-dropship-store/internal/platform/events"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderCreationFailed    = errors.New("order creation failed")
	ErrStockReservationFailed = errors.New("stock reservation failed for one or more items")
	ErrInvalidOrder           = errors.New("invalid order")
	ErrProductUnavailable     = errors.New("product unavailable")
	ErrInvalidTransition      = errors.New("invalid order status transition")
	ErrOrderAlreadyPaid       = errors.New("order already paid")
	ErrOrderNotPayable        = errors.New("order cannot be paid in its current status")

	errNoChange = errors.New("no change")
)

// Catalog is the part of the product service that checkout depends on.
type Catalog interface {
	GetProductDetails(ctx context.Context, productID string) (*pDomain.Product, error)
	ReserveStock(ctx context.Context, productID string, quantity int) error
	ReleaseStock(ctx context.Context, productID string, quantity int) error
}

// Fulfillment places the supplier order for a paid order and returns the supplier order id.
type Fulfillment interface {
	PlaceSupplierOrder(ctx context.Context, order *domain.Order) (string, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error)
	MarkPaid(ctx context.Context, orderID string, method domain.PaymentMethod, transactionID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	ApplySupplierUpdate(ctx context.Context, update domain.SupplierUpdate) (*domain.Order, error)
	SalesAnalytics(ctx context.Context) (*domain.SalesAnalytics, error)

	ProcessPaymentTimeouts(ctx context.Context) // Fungsi untuk scheduler
	StartScheduler(spec string) error
	StopScheduler()
}

type orderServiceImpl struct {
	orderRepo              repository.OrderRepository
	catalog                Catalog
	fulfillment            Fulfillment
	publisher              events.Publisher
	pricing                money.Rules
	scheduler              *cron.Cron
	paymentTimeoutDuration time.Duration
	now                    func() time.Time
}

func NewOrderService(or repository.OrderRepository, catalog Catalog, fulfillment Fulfillment, publisher events.Publisher, pricing money.Rules, paymentTimeout time.Duration) OrderService {
	if publisher == nil {
		publisher = events.NewLogPublisher()
	}
	return &orderServiceImpl{
		orderRepo:              or,
		catalog:                catalog,
		fulfillment:            fulfillment,
		publisher:              publisher,
		pricing:                pricing,
		scheduler:              cron.New(cron.WithSeconds()), // Menggunakan opsi WithSeconds() jika perlu granularitas detik
		paymentTimeoutDuration: paymentTimeout,
		now:                    time.Now,
	}
}

func (s *orderServiceImpl) StartScheduler(spec string) error {
	if spec == "" {
		spec = "*/30 * * * * *"
	}
	_, err := s.scheduler.AddFunc(spec, func() {
		// Gunakan context.Background() karena ini adalah background job
		s.ProcessPaymentTimeouts(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule payment timeouts: %w", err)
	}
	s.scheduler.Start()
	logger.Info("Payment timeout scheduler initialized with spec '%s' and timeout duration %v", spec, s.paymentTimeoutDuration)
	return nil
}

func (s *orderServiceImpl) StopScheduler() {
	<-s.scheduler.Stop().Done()
}

func newOrderID() string {
	return "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func newItemID() string {
	return "item_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func (s *orderServiceImpl) releaseItems(items []domain.OrderItem, orderID string) bool {
	allReleased := true
	for _, item := range items {
		// Gunakan background context: ctx request bisa sudah selesai
		if err := s.catalog.ReleaseStock(context.Background(), item.ProductID, item.Quantity); err != nil {
			// Ini masalah jika pelepasan gagal, bisa menyebabkan inkonsistensi
			logger.Error(fmt.Sprintf("CRITICAL: Failed to release stock for ProductID: %s, OrderID: %s", item.ProductID, orderID), err)
			allReleased = false
		}
	}
	return allReleased
}

func (s *orderServiceImpl) buildItem(ctx context.Context, req domain.CreateOrderItemRequest) (domain.OrderItem, error) {
	p, err := s.catalog.GetProductDetails(ctx, req.ProductID)
	if err != nil {
		return domain.OrderItem{}, err
	}
	if !p.IsActive {
		return domain.OrderItem{}, fmt.Errorf("%w: %s is no longer sold", ErrProductUnavailable, p.ID)
	}
	if req.Size != "" && !p.SizeAvailable(pDomain.Size(req.Size)) {
		return domain.OrderItem{}, fmt.Errorf("%w: size %s of %s", ErrProductUnavailable, req.Size, p.ID)
	}
	if req.Color != "" && !p.ColorAvailable(req.Color) {
		return domain.OrderItem{}, fmt.Errorf("%w: color %s of %s", ErrProductUnavailable, req.Color, p.ID)
	}

	item := domain.OrderItem{
		ID:                newItemID(),
		ProductID:         p.ID,
		ProductName:       p.Name,
		Size:              req.Size,
		Color:             req.Color,
		Quantity:          req.Quantity,
		Price:             p.Price,
		SupplierProductID: p.SupplierProductID,
		SupplierSKU:       p.SupplierSKU,
	}
	item.ProductImage = p.MainImage()
	return item, nil
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidOrder)
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, req.PaymentMethod)
	}

	// 1. Validasi produk dan ambil harga terbaru dari katalog
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		if itemReq.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidOrder)
		}
		item, err := s.buildItem(ctx, itemReq)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	// 2. Reservasi stok untuk setiap item. Jika salah satu gagal, seluruh order gagal.
	successfullyReservedItems := []domain.OrderItem{}
	for _, item := range items {
		err := s.catalog.ReserveStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			logger.Warn("Failed to reserve stock for ProductID: %s: %v", item.ProductID, err)

			// PENTING: Melepaskan stok yang sudah berhasil direservasi untuk item sebelumnya dalam order ini
			if len(successfullyReservedItems) > 0 {
				logger.Info("Rolling back reservations for %d successfully reserved items due to failure on ProductID: %s", len(successfullyReservedItems), item.ProductID)
				s.releaseItems(successfullyReservedItems, "")
			}
			return nil, fmt.Errorf("%w: product_id %s, quantity %d. %v", ErrStockReservationFailed, item.ProductID, item.Quantity, err)
		}
		successfullyReservedItems = append(successfullyReservedItems, item) // Tambahkan ke daftar yang berhasil
	}

	// 3. Hitung total
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	totals := s.pricing.Totals(subtotal)

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	// 4. Simpan order
	now := s.now().UTC()
	newOrder := &domain.Order{
		ID:              newOrderID(),
		UserID:          req.UserID,
		OrderNumber:     money.GenerateOrderNumber(now),
		Status:          domain.StatusPending, // Status awal
		Items:           items,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Total:           totals.Total,
		PaymentStatus:   domain.PaymentPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       now,
	}

	if err := s.orderRepo.CreateOrder(ctx, newOrder); err != nil {
		logger.Error("CreateOrder: failed to save order to repository", err)
		s.releaseItems(items, newOrder.ID)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}

	logger.Info("Order %s (%s) created, total %s", newOrder.ID, newOrder.OrderNumber, money.FormatPrice(newOrder.Total))
	return newOrder, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *orderServiceImpl) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.ListOrdersByUserID(ctx, userID)
}

func (s *orderServiceImpl) publishStatus(ctx context.Context, o *domain.Order, from domain.OrderStatus) {
	payload := map[string]interface{}{
		"orderId":     o.ID,
		"orderNumber": o.OrderNumber,
		"from":        from,
		"to":          o.Status,
	}
	if err := s.publisher.Publish(ctx, events.EventOrderStatusChanged, o.ID, payload); err != nil {
		logger.Warn("Order %s: publish status change failed: %v", o.ID, err)
	}
}

// MarkPaid records a captured payment and hands the order to the supplier.
func (s *orderServiceImpl) MarkPaid(ctx context.Context, orderID string, method domain.PaymentMethod, transactionID string) (*domain.Order, error) {
	var from domain.OrderStatus
	order, err := s.orderRepo.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		if o.IsPaid() {
			return ErrOrderAlreadyPaid
		}
		if o.Status != domain.StatusPending && o.Status != domain.StatusConfirmed {
			return fmt.Errorf("%w: %s", ErrOrderNotPayable, o.Status)
		}
		from = o.Status
		o.PaymentStatus = domain.PaymentCompleted
		o.PaymentID = transactionID
		if method != "" {
			o.PaymentMethod = method
		}
		o.Status = domain.StatusConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Order %s paid via %s (transaction %s)", order.ID, order.PaymentMethod, transactionID)

	if err := s.publisher.Publish(ctx, events.EventOrderPaid, order.ID, map[string]interface{}{
		"orderId":       order.ID,
		"transactionId": transactionID,
		"total":         order.Total,
	}); err != nil {
		logger.Warn("Order %s: publish paid event failed: %v", order.ID, err)
	}
	if from != order.Status {
		s.publishStatus(ctx, order, from)
	}

	if s.fulfillment == nil {
		return order, nil
	}
	supplierOrderID, err := s.fulfillment.PlaceSupplierOrder(ctx, order)
	if err != nil {
		// Pembayaran sudah berhasil; order tetap confirmed dan bisa diproses ulang manual
		logger.Error("MarkPaid: failed to place supplier order for "+order.ID, err)
		return order, nil
	}
	updated, err := s.orderRepo.UpdateOrder(ctx, order.ID, func(o *domain.Order) error {
		o.SupplierOrderID = supplierOrderID
		return nil
	})
	if err != nil {
		logger.Error("MarkPaid: failed to record supplier order "+supplierOrderID, err)
		return order, nil
	}
	return updated, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	var from domain.OrderStatus
	order, err := s.orderRepo.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		from = o.Status
		if o.Status == status {
			return errNoChange
		}
		if !o.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
		}
		o.Status = status
		switch status {
		case domain.StatusRefunded:
			o.PaymentStatus = domain.PaymentRefunded
		case domain.StatusCancelled:
			if !o.IsPaid() {
				o.PaymentStatus = domain.PaymentFailed
			}
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return s.orderRepo.GetOrderByID(ctx, orderID)
	}
	if err != nil {
		return nil, err
	}

	if status == domain.StatusCancelled {
		s.releaseItems(order.Items, order.ID)
	}
	s.publishStatus(ctx, order, from)
	return order, nil
}

// supplierTargets maps supplier order statuses onto storefront order statuses.
var supplierTargets = map[string]domain.OrderStatus{
	"confirmed": domain.StatusProcessing,
	"shipped":   domain.StatusShipped,
	"delivered": domain.StatusDelivered,
	"cancelled": domain.StatusCancelled,
}

// ApplySupplierUpdate is idempotent: replays and stale updates leave the order untouched.
func (s *orderServiceImpl) ApplySupplierUpdate(ctx context.Context, update domain.SupplierUpdate) (*domain.Order, error) {
	target, ok := supplierTargets[update.Status]
	if !ok {
		logger.Debug("ApplySupplierUpdate: ignoring supplier status %q", update.Status)
		return nil, nil
	}

	orderID := update.OrderID
	if orderID == "" {
		o, err := s.orderRepo.GetOrderBySupplierOrderID(ctx, update.SupplierOrderID)
		if err != nil {
			return nil, err
		}
		orderID = o.ID
	}

	var from domain.OrderStatus
	order, err := s.orderRepo.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		from = o.Status
		if update.SupplierOrderID != "" && o.SupplierOrderID == "" {
			o.SupplierOrderID = update.SupplierOrderID
		}
		changed := false
		if update.TrackingNumber != "" && o.TrackingNumber != update.TrackingNumber {
			o.TrackingNumber = update.TrackingNumber
			changed = true
		}
		switch {
		case o.Status == target:
		case target == domain.StatusCancelled && o.Status.CanTransitionTo(domain.StatusCancelled):
			o.Status = target
			changed = true
		case o.Status.Advances(target) && o.Status != domain.StatusPending:
			o.Status = target
			changed = true
		default:
			logger.Warn("ApplySupplierUpdate: order %s is %s, dropping supplier status %s", o.ID, o.Status, update.Status)
		}
		if !changed {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return s.orderRepo.GetOrderByID(ctx, orderID)
	}
	if err != nil {
		return nil, err
	}

	if from != order.Status {
		if order.Status == domain.StatusCancelled {
			s.releaseItems(order.Items, order.ID)
		}
		s.publishStatus(ctx, order, from)
		logger.Info("Order %s moved %s -> %s from supplier order %s", order.ID, from, order.Status, update.SupplierOrderID)
	}
	return order, nil
}

func (s *orderServiceImpl) ProcessPaymentTimeouts(ctx context.Context) {
	orders, err := s.orderRepo.GetPendingOrdersOlderThan(ctx, s.paymentTimeoutDuration)
	if err != nil {
		logger.Error("ProcessPaymentTimeouts: failed to get pending orders", err)
		return
	}
	if len(orders) == 0 {
		logger.Debug("ProcessPaymentTimeouts: No orders found past payment timeout.")
		return
	}

	logger.Info("ProcessPaymentTimeouts: Found %d orders to process for timeout.", len(orders))

	for _, candidate := range orders {
		// 1. Tandai order dulu supaya stok tidak dilepas dua kali
		order, err := s.orderRepo.UpdateOrder(ctx, candidate.ID, func(o *domain.Order) error {
			if o.Status != domain.StatusPending || o.IsPaid() {
				return errNoChange
			}
			o.Status = domain.StatusCancelled
			o.PaymentStatus = domain.PaymentFailed
			return nil
		})
		if errors.Is(err, errNoChange) {
			continue
		}
		if err != nil {
			logger.Error(fmt.Sprintf("ProcessPaymentTimeouts: Failed to update order status for %s", candidate.ID), err)
			continue
		}

		// 2. Lepaskan stok untuk setiap item
		if s.releaseItems(order.Items, order.ID) {
			logger.Info("Order %s cancelled after payment timeout and stock released.", order.ID)
		} else {
			logger.Warn("Order %s cancelled after payment timeout, but some stock items may not have been released successfully. Needs review.", order.ID)
		}
		s.publishStatus(ctx, order, domain.StatusPending)
	}
}

func (s *orderServiceImpl) SalesAnalytics(ctx context.Context) (*domain.SalesAnalytics, error) {
	delivered, err := s.orderRepo.ListOrdersByStatus(ctx, domain.StatusDelivered)
	if err != nil {
		return nil, err
	}
	res := &domain.SalesAnalytics{TotalRevenue: decimal.Zero, AverageOrderValue: decimal.Zero}
	for _, o := range delivered {
		res.TotalRevenue = res.TotalRevenue.Add(o.Total)
	}
	res.TotalOrders = len(delivered)
	if res.TotalOrders > 0 {
		res.AverageOrderValue = res.TotalRevenue.Div(decimal.NewFromInt(int64(res.TotalOrders))).Round(2)
	}
	return res, nil
}
