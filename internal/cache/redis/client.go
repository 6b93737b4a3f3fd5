package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
	"github.com/saadtariq57/richtv-chatbot/pkg/utils"
)

// Client caches finished responses keyed by a hash of the query text.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis cache initialized", zap.String("addr", addr))
	return &Client{rdb: rdb, ttl: ttl}, nil
}

func key(query string) string {
	return "response:" + utils.HashQuery(query)
}

// GetResponse loads a cached response into dst. Returns false on a miss or
// any decode problem; cache failures never affect the request.
func (c *Client) GetResponse(ctx context.Context, query string, dst interface{}) bool {
	raw, err := c.rdb.Get(ctx, key(query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cache read failed", zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("cache entry corrupt, ignoring", zap.Error(err))
		return false
	}
	return true
}

func (c *Client) SetResponse(ctx context.Context, query string, response interface{}) {
	raw, err := json.Marshal(response)
	if err != nil {
		logger.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key(query), raw, c.ttl).Err(); err != nil {
		logger.Warn("cache write failed", zap.Error(err))
	}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
