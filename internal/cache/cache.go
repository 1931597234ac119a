// Package cache keeps recently read form configurations out of the
// database. Configurations change rarely and are read on every form load.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"FIN-COACH/internal/models"

	"github.com/go-redis/redis/v8"
)

type ConfigCache interface {
	Get(ctx context.Context, id string) (*models.FormConfiguration, bool)
	Set(ctx context.Context, cfg *models.FormConfiguration)
	Invalidate(ctx context.Context, id string)
}

// Noop never stores anything. It is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.FormConfiguration, bool) { return nil, false }
func (Noop) Set(context.Context, *models.FormConfiguration)                {}
func (Noop) Invalidate(context.Context, string)                            {}

type RedisConfigCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisConfigCache(addr, password string, db int, ttl time.Duration) *RedisConfigCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisConfigCache{client: rdb, ttl: ttl}
}

func configKey(id string) string {
	return fmt.Sprintf("form_config:%s", id)
}

// Ping checks the connection once at startup.
func (c *RedisConfigCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get treats every redis failure as a miss so the caller falls back to the
// database.
func (c *RedisConfigCache) Get(ctx context.Context, id string) (*models.FormConfiguration, bool) {
	data, err := c.client.Get(ctx, configKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Warning: config cache read failed for %s: %v", id, err)
		}
		return nil, false
	}

	var cfg models.FormConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("Warning: dropping corrupt cache entry %s: %v", id, err)
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &cfg, true
}

func (c *RedisConfigCache) Set(ctx context.Context, cfg *models.FormConfiguration) {
	data, err := json.Marshal(cfg)
	if err != nil {
		log.Printf("Warning: failed to encode config %s for cache: %v", cfg.ID, err)
		return
	}
	if err := c.client.Set(ctx, configKey(cfg.ID), data, c.ttl).Err(); err != nil {
		log.Printf("Warning: config cache write failed for %s: %v", cfg.ID, err)
	}
}

func (c *RedisConfigCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, configKey(id)).Err(); err != nil {
		log.Printf("Warning: config cache invalidation failed for %s: %v", id, err)
	}
}

func (c *RedisConfigCache) Close() error {
	return c.client.Close()
}

var (
	_ ConfigCache = Noop{}
	_ ConfigCache = (*RedisConfigCache)(nil)
)
