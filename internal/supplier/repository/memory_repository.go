package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
)

type memorySupplierRepository struct {
	mu       sync.RWMutex
	order    []string // urutan katalog
	products map[string]*domain.Product
	orders   map[string]*domain.Order
	now      func() time.Time
}

// NewMemorySupplierRepository holds the supplier catalog and orders in memory, starting from catalog.
func NewMemorySupplierRepository(catalog []domain.Product) SupplierRepository {
	r := &memorySupplierRepository{
		products: make(map[string]*domain.Product, len(catalog)),
		orders:   make(map[string]*domain.Order),
		now:      time.Now,
	}
	for i := range catalog {
		p := cloneProduct(catalog[i])
		r.order = append(r.order, p.ID)
		r.products[p.ID] = &p
	}
	return r
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Attributes.Sizes = append([]string(nil), p.Attributes.Sizes...)
	p.Attributes.Colors = append([]string(nil), p.Attributes.Colors...)
	return p
}

func (r *memorySupplierRepository) ListProducts(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneProduct(*r.products[id]))
	}
	return out, nil
}

func (r *memorySupplierRepository) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[productID]
	if !ok {
		return nil, ErrSupplierProductNotFound
	}
	cp := cloneProduct(*p)
	return &cp, nil
}

func (r *memorySupplierRepository) UpdateProduct(_ context.Context, productID string, fn ProductMutateFunc) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return nil, ErrSupplierProductNotFound
	}
	work := cloneProduct(*p)
	if err := fn(&work); err != nil {
		return nil, err
	}
	*p = work
	cp := cloneProduct(work)
	return &cp, nil
}

func (r *memorySupplierRepository) CreateOrder(_ context.Context, order *domain.Order) error {
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

func (r *memorySupplierRepository) GetOrder(_ context.Context, supplierOrderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[supplierOrderID]
	if !ok {
		return nil, ErrSupplierOrderNotFound
	}
	cp := o.Clone()
	return &cp, nil
}

func (r *memorySupplierRepository) UpdateOrder(_ context.Context, supplierOrderID string, fn OrderMutateFunc) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[supplierOrderID]
	if !ok {
		return nil, ErrSupplierOrderNotFound
	}
	work := o.Clone()
	if err := fn(&work); err != nil {
		return nil, err
	}
	work.UpdatedAt = r.now().UTC()
	*o = work
	cp := work.Clone()
	return &cp, nil
}
