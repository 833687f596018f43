// Package revocation tracks logged-out token IDs in Redis until their
// natural expiry, so stateless bearer tokens can still be invalidated.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a Redis-backed token denylist keyed by JWT ID.
type Store struct {
	client    *redis.Client
	namespace string
}

// New constructs a Store.
func New(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) key(jti string) string {
	return fmt.Sprintf("%s:revoked:%s", s.namespace, jti)
}

// Revoke marks a token id as revoked until ttl elapses.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(jti), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
