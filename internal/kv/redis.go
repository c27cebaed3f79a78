package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "reelscout"

type Redis struct {
	client *redis.Client
}

func OpenRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			return nil, errors.Join(fmt.Errorf("connect to redis: %w", err), cerr)
		}
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	slog.Info("connected to redis", slog.String("addr", addr))
	return &Redis{client: client}, nil
}

func redisKey(namespace, key string) string {
	return redisPrefix + ":" + namespace + ":" + key
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s/%s: %w", namespace, key, err)
	}
	return val, nil
}

func (r *Redis) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKey(namespace, key), value, 0).Err(); err != nil {
		return fmt.Errorf("kv put %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	if err := r.client.Del(ctx, redisKey(namespace, key)).Err(); err != nil {
		return fmt.Errorf("kv delete %s/%s: %w", namespace, key, err)
	}
	return nil
}
