package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kevinaaaquil/novels/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisDialTimeout  = 3 * time.Second
	redisReadTimeout  = 2 * time.Second
	redisWriteTimeout = 2 * time.Second

	catalogGenerationKey = "catalog:generation"
)

// NewRedisClient parses redisURL and pings the server before returning.
func NewRedisClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid url: %w", err)
	}
	opts.DialTimeout = redisDialTimeout
	opts.ReadTimeout = redisReadTimeout
	opts.WriteTimeout = redisWriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	logger.Info("connected to redis", slog.String("addr", opts.Addr))
	return client, nil
}

// CatalogCache keeps rendered catalog pages in Redis for a short TTL. Every
// key embeds a generation counter; Invalidate bumps the counter so stale
// pages are never read again and simply expire.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// Get returns the cached page for key. On a miss it returns the slot the
// page belongs in under the generation current at the time of the read; a
// page computed after the miss must be stored with Set under that slot, so
// an Invalidate in between leaves it unreachable.
func (c *CatalogCache) Get(ctx context.Context, key string) (*models.CatalogPage, string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, "", err
	}
	slot := catalogPageKey(gen, key)
	raw, err := c.client.Get(ctx, slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, slot, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("redis: get catalog page: %w", err)
	}
	var page models.CatalogPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, "", fmt.Errorf("redis: decode catalog page: %w", err)
	}
	return &page, "", nil
}

// Set stores page under a slot returned by Get.
func (c *CatalogCache) Set(ctx context.Context, slot string, page *models.CatalogPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, slot, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set catalog page: %w", err)
	}
	return nil
}

// Invalidate drops every cached page at once.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, catalogGenerationKey).Err(); err != nil {
		return fmt.Errorf("redis: bump catalog generation: %w", err)
	}
	return nil
}

func (c *CatalogCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, catalogGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis: read catalog generation: %w", err)
	}
	return gen, nil
}

func catalogPageKey(gen int64, key string) string {
	return fmt.Sprintf("catalog:%d:%s", gen, key)
}
