package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/zeptools/pledgedesk/db/kvdb"

	lowimpl "github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

type Client struct {
	Conf *kvdb.Conf

	// implementation details, not exported
	internal *lowimpl.Client
}

// Ensure redis.Client implements kvdb.Client interface
var _ kvdb.Client = (*Client)(nil)

func New(conf *kvdb.Conf) *Client {
	return &Client{Conf: conf}
}

// Init connects and pings, so a wrong address fails at startup rather than at first login
func (c *Client) Init() error {
	c.internal = lowimpl.NewClient(&lowimpl.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Conf.Host, c.Conf.Port),
		Password: c.Conf.PW,
		DB:       c.Conf.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := c.internal.Ping(ctx).Err(); err != nil {
		_ = c.internal.Close()
		c.internal = nil
		return fmt.Errorf("redis ping %s:%d: %w", c.Conf.Host, c.Conf.Port, err)
	}
	log.Printf("[INFO][KVDB] redis connected %s:%d db=%d", c.Conf.Host, c.Conf.Port, c.Conf.DB)
	return nil
}

func (c *Client) Close() error {
	if c.internal == nil {
		return nil
	}
	return c.internal.Close()
}

func (c *Client) GetConf() *kvdb.Conf {
	return c.Conf
}

//--- Key Ops ----

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if c.internal == nil {
		return false, kvdb.ErrNotInitialized
	}
	n, err := c.internal.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	if c.internal == nil {
		return 0, kvdb.ErrNotInitialized
	}
	return c.internal.Del(ctx, keys...).Result()
}

func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	if c.internal == nil {
		return false, kvdb.ErrNotInitialized
	}
	// Redis EXPIRE returns true if key existed and TTL was set, false if key does not exist
	return c.internal.Expire(ctx, key, expiration).Result()
}

//---- Single-value Ops ----

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	if c.internal == nil {
		return "", false, kvdb.ErrNotInitialized
	}
	val, err := c.internal.Get(ctx, key).Result()
	if errors.Is(err, lowimpl.Nil) {
		return "", false, nil // redis.Nil -> ok: false, err: nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *Client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if c.internal == nil {
		return kvdb.ErrNotInitialized
	}
	return c.internal.Set(ctx, key, value, expiration).Err()
}
