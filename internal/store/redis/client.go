package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client owns the connection shared by the OTP store and the rate limiter.
type Client struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Client{client: client}, nil
}

// Wrap adopts an existing connection.
func Wrap(client *redis.Client) *Client {
	return &Client{client: client}
}

// Raw returns the underlying go-redis client.
func (c *Client) Raw() *redis.Client {
	return c.client
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.Client.Ping: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis.Client.Close: %w", err)
	}
	return nil
}
