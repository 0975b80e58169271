package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playlist-exporter/infrastructure/configuration"
	"playlist-exporter/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "playlist-exporter:csv:"

// NewRedisClient connects to the configured redis. It returns nil when no host is set
// or the server is unreachable, which disables the export cache.
func NewRedisClient(ctx context.Context, cfg configuration.RedisClient) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis unreachable, export cache disabled")
		_ = rdb.Close()
		return nil
	}
	logger.GetLogger().WithField("addr", rdb.Options().Addr).Info("Redis connected, export cache enabled")
	return rdb
}

// ExportCache keeps finished CSV payloads per playlist for ttl
type ExportCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewExportCache(client redis.Cmdable, ttl time.Duration) *ExportCache {
	return &ExportCache{client: client, ttl: ttl}
}

func key(playlistID string) string {
	return keyPrefix + playlistID
}

func (c *ExportCache) Get(ctx context.Context, playlistID string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key(playlistID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *ExportCache) Set(ctx context.Context, playlistID string, payload []byte) error {
	return c.client.Set(ctx, key(playlistID), payload, c.ttl).Err()
}
