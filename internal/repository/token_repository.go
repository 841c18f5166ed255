package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepository keeps the access-token denylist in Redis so revocations
// survive restarts and are shared across instances. Entries expire with
// the token itself, so the set never needs pruning.
type TokenRepository struct {
	client *redis.Client
}

// NewTokenRepository constructs a TokenRepository.
func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{client: client}
}

func denylistKey(jti string) string {
	return "auth:denylist:" + jti
}

// Revoke records the token identifier for the token's remaining lifetime.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, denylistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

// IsRevoked reports whether the token identifier has been denylisted.
func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := r.client.Get(ctx, denylistKey(jti)).Err(); err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("check token %s: %w", jti, err)
	}
	return true, nil
}
