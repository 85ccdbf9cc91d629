// Package memory is the in-process kvdb backend. Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/zeptools/pledgedesk/db/kvdb"
)

type entry struct {
	val       string
	expiresAt time.Time // zero = no expiration
}

type Client struct {
	Conf *kvdb.Conf
	Now  func() time.Time // replaceable clock

	mu   sync.Mutex
	data map[string]entry
}

var _ kvdb.Client = (*Client)(nil)

func New() *Client {
	return &Client{Conf: &kvdb.Conf{Type: kvdb.TypeMemory}}
}

func (c *Client) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]entry)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	return nil
}

func (c *Client) GetConf() *kvdb.Conf {
	return c.Conf
}

// liveLocked returns the entry, dropping it when expired
func (c *Client) liveLocked(key string) (entry, bool) {
	e, ok := c.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !c.Now().Before(e.expiresAt) {
		delete(c.data, key)
		return entry{}, false
	}
	return e, true
}

func (c *Client) expiry(expiration time.Duration) time.Time {
	if expiration <= 0 {
		return time.Time{}
	}
	return c.Now().Add(expiration)
}

func (c *Client) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return false, kvdb.ErrNotInitialized
	}
	_, ok := c.liveLocked(key)
	return ok, nil
}

func (c *Client) Delete(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return 0, kvdb.ErrNotInitialized
	}
	var n int64
	for _, key := range keys {
		if _, ok := c.liveLocked(key); ok {
			delete(c.data, key)
			n++
		}
	}
	return n, nil
}

func (c *Client) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return false, kvdb.ErrNotInitialized
	}
	e, ok := c.liveLocked(key)
	if !ok {
		return false, nil
	}
	if expiration <= 0 { // same as redis: non-positive TTL deletes
		delete(c.data, key)
		return true, nil
	}
	e.expiresAt = c.expiry(expiration)
	c.data[key] = e
	return true, nil
}

func (c *Client) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return kvdb.ErrNotInitialized
	}
	c.data[key] = entry{val: value, expiresAt: c.expiry(expiration)}
	return nil
}

func (c *Client) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return "", false, kvdb.ErrNotInitialized
	}
	e, ok := c.liveLocked(key)
	return e.val, ok, nil
}
