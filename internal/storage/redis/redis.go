// Package redis stores scored wallets in Redis for fast per-wallet lookups.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client for dependency injection.
type Client struct {
	*goredis.Client
}

// NewClient connects to the Redis server at url (redis://[:password@]host:port/db).
func NewClient(ctx context.Context, url string) (*Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	c := goredis.NewClient(opts)

	// Verify connection
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{Client: c}, nil
}

// Close closes the client.
func (c *Client) Close() error {
	return c.Client.Close()
}
