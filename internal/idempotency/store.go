package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store guards payment mutations against duplicate submissions. Every
// mutating request carries a client-generated request id; the first
// submission claims it, replays are rejected until the TTL expires.
type Store interface {
	// Claim returns true if the request id was newly claimed, false if a
	// request with the same id was already processed.
	Claim(ctx context.Context, requestID string) (bool, error)

	// Release frees a claimed request id so a failed operation can be retried.
	Release(ctx context.Context, requestID string) error
}

type redisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{
		client:    client,
		keyPrefix: "payment:request:",
		ttl:       ttl,
	}
}

// Claim uses SETNX so claiming is a single atomic operation even with
// several API instances sharing the store.
func (s *redisStore) Claim(ctx context.Context, requestID string) (bool, error) {
	return s.client.SetNX(ctx, s.keyPrefix+requestID, "1", s.ttl).Result()
}

func (s *redisStore) Release(ctx context.Context, requestID string) error {
	return s.client.Del(ctx, s.keyPrefix+requestID).Err()
}
