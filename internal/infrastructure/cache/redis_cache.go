package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &RedisCache{
		client: client,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Report cache keys are scoped by month (and year where the report takes
// one) so a key identifies exactly one report shape.

func StatisticsKey(month, year int) string {
	return fmt.Sprintf("report:stats:%d:%d", year, month)
}

func PriceRangesKey(month, year int) string {
	return fmt.Sprintf("report:price:%d:%d", year, month)
}

func CategoriesKey(month int) string {
	return fmt.Sprintf("report:category:%d", month)
}
