package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSlotStore keeps state slots as plain Redis keys, no expiry.
type RedisSlotStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSlotStore constructs a RedisSlotStore. Keys are "<prefix>:<slot>".
func NewRedisSlotStore(client *redis.Client, prefix string) *RedisSlotStore {
	if prefix == "" {
		prefix = "starlink"
	}
	return &RedisSlotStore{client: client, prefix: prefix}
}

// Load implements SlotStore.
func (r *RedisSlotStore) Load(ctx context.Context, slot string) ([]byte, error) {
	payload, err := r.client.Get(ctx, r.key(slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("persist/redis: get %s: %w", slot, err)
	}
	return payload, nil
}

// Save implements SlotStore with overwrite semantics.
func (r *RedisSlotStore) Save(ctx context.Context, slot string, payload []byte) error {
	if err := r.client.Set(ctx, r.key(slot), payload, 0).Err(); err != nil {
		return fmt.Errorf("persist/redis: set %s: %w", slot, err)
	}
	return nil
}

func (r *RedisSlotStore) key(slot string) string {
	return r.prefix + ":" + slot
}
