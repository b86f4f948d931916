package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyPrefixRedis namespaces fallback keys inside a shared Redis database.
const KeyPrefixRedis = "pinned:local:"

const maxTxRetries = 5

// RedisKV keeps fallback values in Redis. Quota caps each value in bytes;
// zero means unlimited.
type RedisKV struct {
	client *redis.Client
	quota  int
}

// NewRedisKV wraps an established client.
func NewRedisKV(client *redis.Client, quota int) *RedisKV {
	return &RedisKV{client: client, quota: quota}
}

func (k *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := k.client.Get(ctx, KeyPrefixRedis+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read local key: %w", err)
	}
	return data, true, nil
}

// Update runs fn inside an optimistic WATCH transaction, retrying when a
// concurrent writer touched the key.
func (k *RedisKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	rkey := KeyPrefixRedis + key

	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, rkey).Bytes()
		ok := true
		if errors.Is(err, redis.Nil) {
			ok = false
		} else if err != nil {
			return err
		}

		next, err := fn(old, ok)
		if err != nil {
			return err
		}
		if k.quota > 0 && len(next) > k.quota {
			return ErrQuotaExceeded
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rkey, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := k.client.Watch(ctx, txf, rkey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrCorrupt) {
			return err
		}
		return fmt.Errorf("failed to update local key: %w", err)
	}
	return fmt.Errorf("failed to update local key %s: too much contention", key)
}
