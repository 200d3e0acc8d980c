package refresher

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListingsClient abstracts the reference-data provider
type ListingsClient interface {
	TopListings(ctx context.Context, limit int) ([]CMCCoin, error)
}

// RedisClient abstracts the store operations used by the refresher
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}
