package repository

import (
	"context"
	"sync"

	"github.com/ridloal/fashion-dropship-store/internal/cart/domain"
)

type memoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewMemoryCartRepository() CartRepository {
	return &memoryCartRepository{carts: make(map[string]domain.Cart)}
}

func (r *memoryCartRepository) GetCart(_ context.Context, sessionID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[sessionID]
	if !ok {
		return nil, ErrCartNotFound
	}
	cp := c.Clone()
	return &cp, nil
}

func (r *memoryCartRepository) SaveCart(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.SessionID] = cart.Clone()
	return nil
}

func (r *memoryCartRepository) DeleteCart(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}
