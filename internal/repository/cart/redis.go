package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shopbuilder/internal/domain"
)

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a Repository backed by redis. Carts expire after ttl of
// inactivity; every save refreshes the clock.
func NewRedis(client *redis.Client, ttl time.Duration) Repository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisRepo{client: client, ttl: ttl}
}

func redisKey(shopID, sessionID string) string {
	return fmt.Sprintf("cart:%s:%s", shopID, sessionID)
}

func (r *redisRepo) Get(ctx context.Context, shopID, sessionID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, redisKey(shopID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &domain.Cart{ShopID: shopID, SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	cart.ShopID = shopID
	cart.SessionID = sessionID
	return &cart, nil
}

func (r *redisRepo) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(cart.ShopID, cart.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, shopID, sessionID string) error {
	if err := r.client.Del(ctx, redisKey(shopID, sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
