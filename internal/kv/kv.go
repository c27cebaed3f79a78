// Package kv is the small key-value layer behind per-profile collections.
// Values are opaque bytes addressed by (namespace, key).
package kv

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("kv: not found")

type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Backend string

	DBPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the backend named by cfg.Backend. Empty means sqlite.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendSQLite:
		st, err := OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendRedis:
		st, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", cfg.Backend)
	}
}
