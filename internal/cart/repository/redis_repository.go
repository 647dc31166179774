package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ridloal/fashion-dropship-store/internal/cart/domain"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
)

// DefaultCartTTL is how long an untouched cart survives in Redis.
const DefaultCartTTL = 7 * 24 * time.Hour

type redisCartRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartRepository(rdb *redis.Client, ttl time.Duration) CartRepository {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &redisCartRepository{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (r *redisCartRepository) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	raw, err := r.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartNotFound
		}
		logger.Error("GetCart: redis get failed", err, map[string]interface{}{"session_id": sessionID})
		return nil, err
	}
	var c domain.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *redisCartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, cartKey(cart.SessionID), raw, r.ttl).Err(); err != nil {
		logger.Error("SaveCart: redis set failed", err, map[string]interface{}{"session_id": cart.SessionID})
		return err
	}
	return nil
}

func (r *redisCartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, cartKey(sessionID)).Err()
}
