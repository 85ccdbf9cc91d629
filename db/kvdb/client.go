package kvdb

import (
	"context"
	"errors"
	"time"
)

// Client is the small key/value surface web sessions need.
// Values are opaque strings with an optional expiration.
type Client interface {
	Init() error
	Close() error
	GetConf() *Conf

	//---- Key Ops ----

	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) (int64, error)
	// Expire sets/updates expiration for a key
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) // found & updated, err

	//---- Single-value Ops ----

	// Set with expiration 0 keeps the value until deleted
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error) // val, found, err
}

var ErrNotInitialized = errors.New("kvdb: client not initialized")
