package repository

import (
	"context"
	"errors"

	"github.com/ridloal/fashion-dropship-store/internal/cart/domain"
)

var ErrCartNotFound = errors.New("cart not found")

type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, sessionID string) error
}
