package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"pos-service/internal/models"
)

const statsKey = "invoices:statistics"

// Client caches derived read models: the invoice statistics summary and
// low-stock flags raised by the stock worker. The service layer treats
// a nil *Client as "cache disabled".
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheInvoiceStatistics stores the statistics summary with a TTL
func (c *Client) CacheInvoiceStatistics(ctx context.Context, stats *models.InvoiceStatistics, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statsKey, data, ttl).Err()
}

// GetCachedInvoiceStatistics returns the cached summary, or nil on a miss
func (c *Client) GetCachedInvoiceStatistics(ctx context.Context) (*models.InvoiceStatistics, error) {
	data, err := c.rdb.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats models.InvoiceStatistics
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// InvalidateInvoiceStatistics drops the cached summary
func (c *Client) InvalidateInvoiceStatistics(ctx context.Context) error {
	return c.rdb.Del(ctx, statsKey).Err()
}

// FlagLowStock records that a product fell to or below the alert level
func (c *Client) FlagLowStock(ctx context.Context, productID int64, stock int, ttl time.Duration) error {
	key := fmt.Sprintf("stock:alert:%d", productID)
	return c.rdb.Set(ctx, key, stock, ttl).Err()
}

// ClearLowStock removes a product's low stock flag
func (c *Client) ClearLowStock(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("stock:alert:%d", productID)).Err()
}
