package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/livingdw67/ira-analysis/internal/scenario"
)

const keyPrefix = "ira:scenario:"

// RedisStore shares scenarios between API replicas. Values are JSON with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and pings it once.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	log.Printf("[Store] Using redis at %s (ttl %s)", addr, ttl)
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Put(ctx context.Context, res *scenario.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode scenario %s: %w", res.ID, err)
	}
	return s.client.Set(ctx, keyPrefix+res.ID, raw, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*scenario.Result, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var res scenario.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", id, err)
	}
	return &res, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
