// Package cache wraps the Redis client configured by REDIS_URL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client is a thin handle over go-redis.
type Client struct {
	rdb *redis.Client
}

// New parses url and builds a client. No connection is made until first use.
func New(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 2 * time.Second
	}
	return NewFromClient(redis.NewClient(opts)), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.rdb.Options().Addr
}

// DB returns the selected database index.
func (c *Client) DB() int {
	return c.rdb.Options().DB
}

// Ping checks the server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
