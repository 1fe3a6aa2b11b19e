package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore implements usecase.RefreshTokenStore using Redis. Each live
// refresh token is a key scoped under the owning user so RevokeAll can sweep
// one user's sessions without touching anyone else's.
type TokenStore struct {
	client *redis.Client
	prefix string
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{
		client: client,
		prefix: "refresh:",
	}
}

func (s *TokenStore) key(userID, tokenID string) string {
	return s.prefix + userID + ":" + tokenID
}

// Save registers a refresh token as live until its TTL expires.
func (s *TokenStore) Save(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(userID, tokenID), "1", ttl).Err()
}

// Exists reports whether a refresh token is still live.
func (s *TokenStore) Exists(ctx context.Context, userID, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke removes a single refresh token. Revoking an absent token is a no-op.
func (s *TokenStore) Revoke(ctx context.Context, userID, tokenID string) error {
	return s.client.Del(ctx, s.key(userID, tokenID)).Err()
}

// RevokeAll removes every live refresh token for a user.
func (s *TokenStore) RevokeAll(ctx context.Context, userID string) error {
	pattern := s.prefix + userID + ":*"

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
