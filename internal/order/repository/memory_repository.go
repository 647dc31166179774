package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/order/domain"
)

type memoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	now    func() time.Time
}

func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepository{orders: make(map[string]*domain.Order), now: time.Now}
}

func (r *memoryOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	cp := order.Clone()
	r.orders[order.ID] = &cp
	return nil
}

func (r *memoryOrderRepository) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := o.Clone()
	return &cp, nil
}

func (r *memoryOrderRepository) GetOrderBySupplierOrderID(_ context.Context, supplierOrderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if supplierOrderID != "" && o.SupplierOrderID == supplierOrderID {
			cp := o.Clone()
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *memoryOrderRepository) filter(keep func(o *domain.Order) bool) []domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Order{}
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (r *memoryOrderRepository) ListOrdersByUserID(_ context.Context, userID string) ([]domain.Order, error) {
	orders := r.filter(func(o *domain.Order) bool { return o.UserID == userID })
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (r *memoryOrderRepository) ListOrdersByStatus(_ context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	orders := r.filter(func(o *domain.Order) bool { return o.Status == status })
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (r *memoryOrderRepository) GetPendingOrdersOlderThan(_ context.Context, duration time.Duration) ([]domain.Order, error) {
	threshold := r.now().Add(-duration)
	orders := r.filter(func(o *domain.Order) bool {
		return o.Status == domain.StatusPending && !o.IsPaid() && o.CreatedAt.Before(threshold)
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (r *memoryOrderRepository) UpdateOrder(_ context.Context, orderID string, fn MutateFunc) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	work := o.Clone()
	if err := fn(&work); err != nil {
		return nil, err
	}
	work.ID = o.ID
	work.UpdatedAt = r.now().UTC()
	r.orders[orderID] = &work

	cp := work.Clone()
	return &cp, nil
}
