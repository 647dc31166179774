package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/product/domain"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	order    []string // urutan insert, supaya listing stabil
}

func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{products: make(map[string]*domain.Product)}
}

func (r *memoryProductRepository) ListProducts(_ context.Context, q domain.ListQuery) (*domain.ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(q.Search))
	matched := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		p := r.products[id]
		if !p.IsActive {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if q.Featured && !p.IsFeatured {
			continue
		}
		matched = append(matched, p.Clone())
	}

	total := len(matched)
	start := q.Offset
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < total {
		end = start + q.Limit
	}
	return &domain.ListResult{Products: matched[start:end], Total: total}, nil
}

func (r *memoryProductRepository) ListActiveProducts(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		if p := r.products[id]; p.IsActive {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *memoryProductRepository) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := p.Clone()
	return &cp, nil
}

func (r *memoryProductRepository) CreateProduct(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := p.Clone()
	if _, exists := r.products[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.products[p.ID] = &cp
	return nil
}

func (r *memoryProductRepository) UpdateProduct(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[p.ID]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock = current.Stock
	p.UpdatedAt = time.Now().UTC()
	cp := p.Clone()
	r.products[p.ID] = &cp
	return nil
}

func (r *memoryProductRepository) SetStock(_ context.Context, id string, stock int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, ErrProductNotFound
	}
	if stock < 0 {
		return p.Stock, ErrInsufficientStock
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

func (r *memoryProductRepository) AdjustStock(_ context.Context, id string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return p.Stock, ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

func (r *memoryProductRepository) SetStockBySupplierID(_ context.Context, supplierProductID string, stock int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stock < 0 {
		stock = 0
	}
	updated := 0
	for _, p := range r.products {
		if p.SupplierProductID == supplierProductID {
			p.Stock = stock
			p.UpdatedAt = time.Now().UTC()
			updated++
		}
	}
	return updated, nil
}
