package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/config"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

const scanBatch = 200

type RedisSearchCache struct {
	keys
	client *redis.Client
}

// NewRedisSearchCache creates a new Redis-based search cache.
func NewRedisSearchCache(cfg config.RedisConfig, prefix string) (*RedisSearchCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSearchCache{
		keys:   keys{prefix: prefix},
		client: client,
	}, nil
}

func (c *RedisSearchCache) get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get from redis: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return nil
}

func (c *RedisSearchCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisSearchCache) GetResult(ctx context.Context, key string) (*domain.AggregatedSearchResult, error) {
	var result domain.AggregatedSearchResult
	if err := c.get(ctx, key, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisSearchCache) SetResult(ctx context.Context, key string, result *domain.AggregatedSearchResult, ttl time.Duration) error {
	return c.set(ctx, key, result, ttl)
}

func (c *RedisSearchCache) GetSuggestions(ctx context.Context, key string) ([]domain.Suggestion, error) {
	var suggestions []domain.Suggestion
	if err := c.get(ctx, key, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (c *RedisSearchCache) SetSuggestions(ctx context.Context, key string, suggestions []domain.Suggestion, ttl time.Duration) error {
	return c.set(ctx, key, suggestions, ttl)
}

func (c *RedisSearchCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix using SCAN, so it
// never blocks the server the way KEYS would.
func (c *RedisSearchCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to delete from redis: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete from redis: %w", err)
		}
	}
	return nil
}

func (c *RedisSearchCache) Close() error {
	return c.client.Close()
}
