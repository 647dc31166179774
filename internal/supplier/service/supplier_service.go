package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/platform/events"
	"github.com/ridloal/fashion-dropship-store/internal/platform/idempotency"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/outbox"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/repository"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder      = errors.New("invalid supplier order")
	ErrInvalidTransition = errors.New("invalid supplier order status transition")
	ErrInvalidWebhook    = errors.New("invalid webhook payload")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")

	errNoChange = errors.New("status unchanged")
)

var (
	wholesaleRatio      = decimal.RequireFromString("0.5")
	baseShipping        = decimal.RequireFromString("5.99")
	perKgShipping       = decimal.RequireFromString("2.50")
	internationalCharge = decimal.NewFromInt(15)
)

const (
	includedWeightKg = 2.0
	webhookScope     = "supplier-webhook"
	syncSwing        = 10
)

var carrierPrefixes = []string{"1Z", "1T", "94"} // UPS, FedEx, USPS

type (
	StatusListener    func(ctx context.Context, change domain.StatusChange)
	InventoryListener func(ctx context.Context, levels []domain.StockLevel)
)

type Config struct {
	Latency      time.Duration
	ConfirmDelay time.Duration
	ShipDelay    time.Duration
}

type SupplierService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	CheckAvailability(ctx context.Context, productID string, quantity int) (*domain.Availability, error)
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, supplierOrderID string) (*domain.Order, error)
	SyncInventory(ctx context.Context) (*domain.SyncResult, error)
	HandleWebhook(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookResult, error)
	CalculateShipping(ctx context.Context, items []domain.ShippingItem, country string) (*domain.ShippingQuote, error)
	Metrics(ctx context.Context) (*domain.Metrics, error)

	// Outbox handler untuk task konfirmasi dan pengiriman
	ProcessTask(ctx context.Context, task domain.Task) error

	OnStatusChange(fn StatusListener)
	OnInventoryChange(fn InventoryListener)

	StartScheduler(syncSpec string) error
	StopScheduler()
}

type supplierServiceImpl struct {
	repo      repository.SupplierRepository
	queue     outbox.Queue
	dedup     idempotency.Store
	publisher events.Publisher
	cfg       Config
	scheduler *cron.Cron

	mu                 sync.RWMutex
	statusListeners    []StatusListener
	inventoryListeners []InventoryListener

	now    func() time.Time
	randIn func(n int) int
}

func NewSupplierService(repo repository.SupplierRepository, queue outbox.Queue, dedup idempotency.Store, publisher events.Publisher, cfg Config) SupplierService {
	return &supplierServiceImpl{
		repo:      repo,
		queue:     queue,
		dedup:     dedup,
		publisher: publisher,
		cfg:       cfg,
		scheduler: cron.New(cron.WithSeconds()),
		now:       time.Now,
		randIn:    rand.Intn,
	}
}

func (s *supplierServiceImpl) OnStatusChange(fn StatusListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusListeners = append(s.statusListeners, fn)
}

func (s *supplierServiceImpl) OnInventoryChange(fn InventoryListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventoryListeners = append(s.inventoryListeners, fn)
}

// simulateLatency stands in for the round trip to the supplier API.
func (s *supplierServiceImpl) simulateLatency(ctx context.Context) error {
	if s.cfg.Latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.cfg.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *supplierServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	inStock := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Stock > 0 {
			inStock = append(inStock, p)
		}
	}
	return inStock, nil
}

func (s *supplierServiceImpl) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, productID)
}

// CheckAvailability reports zeros for products the supplier does not carry.
func (s *supplierServiceImpl) CheckAvailability(ctx context.Context, productID string, quantity int) (*domain.Availability, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProduct(ctx, productID)
	if errors.Is(err, repository.ErrSupplierProductNotFound) {
		return &domain.Availability{Price: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Availability{Available: p.Stock >= quantity, Stock: p.Stock, Price: p.Price}, nil
}

func NewSupplierOrderID(now time.Time) string {
	return fmt.Sprintf("SUP-%d-%s", now.UnixMilli(), money.RandomCode(6))
}

// GenerateTrackingNumber returns a carrier prefix followed by 12 characters.
func GenerateTrackingNumber() string {
	return carrierPrefixes[rand.Intn(len(carrierPrefixes))] + money.RandomCode(12)
}

func (s *supplierServiceImpl) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidOrder)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no supplier items", ErrInvalidOrder)
	}
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:           NewSupplierOrderID(now),
		OrderID:      req.OrderID,
		Status:       domain.StatusPending,
		ShippingCost: req.ShippingCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", ErrInvalidOrder, it.ProductID)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			Price:     it.RetailPrice.Mul(wholesaleRatio).Round(2),
		})
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		logger.Error("Supplier.CreateOrder: repo error", err, map[string]interface{}{"order_id": req.OrderID})
		return nil, err
	}
	logger.Info("Supplier order %s created for order %s", order.ID, order.OrderID)

	s.schedule(ctx, domain.TaskConfirmOrder, order.ID, s.cfg.ConfirmDelay)
	return order, nil
}

func (s *supplierServiceImpl) schedule(ctx context.Context, kind domain.TaskKind, supplierOrderID string, delay time.Duration) {
	task := domain.Task{
		ID:              uuid.NewString(),
		Kind:            kind,
		SupplierOrderID: supplierOrderID,
		DueAt:           s.now().Add(delay),
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		// Order tetap ada; status bisa dilanjutkan lewat webhook
		logger.Error("Supplier: failed to enqueue "+string(kind)+" for "+supplierOrderID, err)
	}
}

func (s *supplierServiceImpl) GetOrder(ctx context.Context, supplierOrderID string) (*domain.Order, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, supplierOrderID)
}

// transition moves a supplier order to status. Moving to the current status returns errNoChange.
func (s *supplierServiceImpl) transition(ctx context.Context, supplierOrderID string, to domain.OrderStatus, tracking string) (*domain.Order, error) {
	var from domain.OrderStatus
	order, err := s.repo.UpdateOrder(ctx, supplierOrderID, func(o *domain.Order) error {
		if o.Status == to {
			return errNoChange
		}
		if !o.Status.CanTransitionTo(to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
		}
		from = o.Status
		o.Status = to
		if tracking != "" {
			o.TrackingNumber = tracking
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Supplier order %s: %s -> %s", order.ID, from, to)

	change := domain.StatusChange{
		SupplierOrderID: order.ID,
		OrderID:         order.OrderID,
		From:            from,
		To:              to,
		TrackingNumber:  order.TrackingNumber,
		At:              order.UpdatedAt,
	}
	s.notifyStatus(ctx, change)
	if err := s.publisher.Publish(ctx, events.EventSupplierOrderStatusChanged, order.OrderID, change); err != nil {
		logger.Warn("Supplier order %s: publish status event failed: %v", order.ID, err)
	}
	return order, nil
}

func (s *supplierServiceImpl) notifyStatus(ctx context.Context, change domain.StatusChange) {
	s.mu.RLock()
	listeners := append([]StatusListener(nil), s.statusListeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, change)
	}
}

func (s *supplierServiceImpl) notifyInventory(ctx context.Context, levels []domain.StockLevel) {
	if len(levels) == 0 {
		return
	}
	s.mu.RLock()
	listeners := append([]InventoryListener(nil), s.inventoryListeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, levels)
	}
	if err := s.publisher.Publish(ctx, events.EventSupplierInventoryUpdated, "inventory", levels); err != nil {
		logger.Warn("Supplier: publish inventory event failed: %v", err)
	}
}

func (s *supplierServiceImpl) ProcessTask(ctx context.Context, task domain.Task) error {
	var (
		to       domain.OrderStatus
		tracking string
	)
	switch task.Kind {
	case domain.TaskConfirmOrder:
		to = domain.StatusConfirmed
	case domain.TaskShipOrder:
		to = domain.StatusShipped
		tracking = GenerateTrackingNumber()
	default:
		return fmt.Errorf("%w: unknown task kind %q", outbox.ErrPermanent, task.Kind)
	}

	_, err := s.transition(ctx, task.SupplierOrderID, to, tracking)
	switch {
	case errors.Is(err, errNoChange):
		return nil
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, repository.ErrSupplierOrderNotFound):
		return fmt.Errorf("%w: %v", outbox.ErrPermanent, err)
	case err != nil:
		return err
	}

	if task.Kind == domain.TaskConfirmOrder {
		s.schedule(ctx, domain.TaskShipOrder, task.SupplierOrderID, s.cfg.ShipDelay)
	}
	return nil
}

func (s *supplierServiceImpl) SyncInventory(ctx context.Context) (*domain.SyncResult, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to sync inventory with supplier: %w", err)
	}

	result := &domain.SyncResult{Errors: []string{}}
	levels := make([]domain.StockLevel, 0, len(products))
	for _, p := range products {
		delta := s.randIn(2*syncSwing+1) - syncSwing
		updated, err := s.repo.UpdateProduct(ctx, p.ID, func(sp *domain.Product) error {
			sp.Stock += delta
			if sp.Stock < 0 {
				sp.Stock = 0
			}
			return nil
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to update %s: %v", p.SKU, err))
			continue
		}
		result.Updated++
		levels = append(levels, domain.StockLevel{ProductID: updated.ID, Stock: updated.Stock})
	}
	logger.Info("Supplier inventory sync completed: updated=%d errors=%d", result.Updated, len(result.Errors))

	s.notifyInventory(ctx, levels)
	return result, nil
}

func (s *supplierServiceImpl) HandleWebhook(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookResult, error) {
	if event.ID != "" {
		first, err := s.dedup.Claim(ctx, webhookScope, event.ID, idempotency.DefaultTTL)
		if err != nil {
			return nil, err
		}
		if !first {
			logger.Info("Supplier webhook %s already processed", event.ID)
			return &domain.WebhookResult{Processed: true, Message: "Duplicate webhook ignored"}, nil
		}
	}

	res, err := s.handleWebhook(ctx, event)
	if err != nil && event.ID != "" {
		// boleh dikirim ulang oleh supplier
		if relErr := s.dedup.Release(ctx, webhookScope, event.ID); relErr != nil {
			logger.Error("Supplier webhook: release claim failed for "+event.ID, relErr)
		}
	}
	return res, err
}

func (s *supplierServiceImpl) handleWebhook(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookResult, error) {
	logger.Info("Processing supplier webhook: %s", event.Type)

	switch event.Type {
	case domain.WebhookOrderShipped:
		return s.orderWebhook(ctx, event, domain.StatusShipped, "Order shipping status updated")
	case domain.WebhookOrderDelivered:
		return s.orderWebhook(ctx, event, domain.StatusDelivered, "Order delivery status updated")
	case domain.WebhookOrderCancelled:
		return s.orderWebhook(ctx, event, domain.StatusCancelled, "Order cancellation processed")
	case domain.WebhookInventoryUpdated:
		return s.inventoryWebhook(ctx, event)
	}
	return &domain.WebhookResult{Processed: false, Message: "Unknown webhook type"}, nil
}

func (s *supplierServiceImpl) orderWebhook(ctx context.Context, event domain.WebhookEvent, to domain.OrderStatus, message string) (*domain.WebhookResult, error) {
	var data domain.OrderWebhookData
	if err := json.Unmarshal(event.Data, &data); err != nil || data.OrderID == "" {
		return nil, fmt.Errorf("%w: %s requires data.orderId", ErrInvalidWebhook, event.Type)
	}

	_, err := s.transition(ctx, data.OrderID, to, data.TrackingNumber)
	switch {
	case err == nil, errors.Is(err, errNoChange):
		return &domain.WebhookResult{Processed: true, Message: message}, nil
	case errors.Is(err, repository.ErrSupplierOrderNotFound):
		logger.Warn("Supplier webhook %s: unknown supplier order %s", event.Type, data.OrderID)
		return &domain.WebhookResult{Processed: false, Message: "Supplier order not found"}, nil
	case errors.Is(err, ErrInvalidTransition):
		logger.Warn("Supplier webhook %s: %v", event.Type, err)
		return &domain.WebhookResult{Processed: false, Message: "Status transition not allowed"}, nil
	}
	return nil, err
}

func (s *supplierServiceImpl) inventoryWebhook(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookResult, error) {
	var data domain.InventoryWebhookData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	for _, u := range data.Products {
		if u.Stock < 0 {
			return nil, fmt.Errorf("%w: negative stock for %s", ErrInvalidWebhook, u.ProductID)
		}
		if u.Price != nil && u.Price.IsNegative() {
			return nil, fmt.Errorf("%w: negative price for %s", ErrInvalidWebhook, u.ProductID)
		}
	}

	levels := make([]domain.StockLevel, 0, len(data.Products))
	for _, u := range data.Products {
		update := u
		p, err := s.repo.UpdateProduct(ctx, update.ProductID, func(sp *domain.Product) error {
			sp.Stock = update.Stock
			if update.Price != nil {
				sp.Price = *update.Price
			}
			return nil
		})
		if errors.Is(err, repository.ErrSupplierProductNotFound) {
			logger.Warn("Supplier webhook: unknown product %s", update.ProductID)
			continue
		}
		if err != nil {
			return nil, err
		}
		levels = append(levels, domain.StockLevel{ProductID: p.ID, Stock: p.Stock})
	}
	s.notifyInventory(ctx, levels)
	return &domain.WebhookResult{Processed: true, Message: "Inventory updated successfully"}, nil
}

// CalculateShipping: 5.99 base, 2.50 per kg above 2kg, 15.00 outside the US.
func (s *supplierServiceImpl) CalculateShipping(ctx context.Context, items []domain.ShippingItem, country string) (*domain.ShippingQuote, error) {
	weight := 0.0
	for _, it := range items {
		p, err := s.repo.GetProduct(ctx, it.ProductID)
		if errors.Is(err, repository.ErrSupplierProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		weight += p.Shipping.Weight * float64(it.Quantity)
	}

	cost := baseShipping
	if weight > includedWeightKg {
		cost = cost.Add(decimal.NewFromFloat(weight - includedWeightKg).Mul(perKgShipping))
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country != "US" {
		cost = cost.Add(internationalCharge)
	}
	return &domain.ShippingQuote{
		Cost:    cost.Round(2),
		Weight:  decimal.NewFromFloat(weight).Round(3).InexactFloat64(),
		Country: country,
	}, nil
}

func (s *supplierServiceImpl) Metrics(ctx context.Context) (*domain.Metrics, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	return &domain.Metrics{
		OrderFulfillmentRate:  98.5,
		AverageProcessingTime: 1.8,
		InventoryAccuracy:     96.2,
		ShippingAccuracy:      97.8,
	}, nil
}

func (s *supplierServiceImpl) StartScheduler(syncSpec string) error {
	if syncSpec == "" {
		syncSpec = "@every 1h"
	}
	_, err := s.scheduler.AddFunc(syncSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.SyncInventory(ctx); err != nil {
			logger.Error("Scheduled inventory sync failed", err)
		}
	})
	if err != nil {
		logger.Error("Supplier: invalid inventory sync schedule "+syncSpec, err)
		return err
	}
	s.scheduler.Start()
	logger.Info("Supplier inventory sync scheduled (%s)", syncSpec)
	return nil
}

func (s *supplierServiceImpl) StopScheduler() {
	<-s.scheduler.Stop().Done()
	logger.Info("Supplier inventory sync stopped")
}
