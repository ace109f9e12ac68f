package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenPrefix = "session:"

// TokenStore keeps bearer tokens in Redis so a restart does not
// invalidate active logins.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore with the given session lifetime.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenStore{client: client, ttl: ttl}
}

// TTL reports the configured session lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// Issue mints a fresh token mapped to the user.
func (s *TokenStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, tokenPrefix+token, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: issue token: %w", err)
	}
	return token, nil
}

// Resolve returns the user behind a token, refreshing its lifetime.
func (s *TokenStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := s.client.Get(ctx, tokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrTokenInvalid
		}
		return uuid.Nil, fmt.Errorf("auth: resolve token: %w", err)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	_ = s.client.Expire(ctx, tokenPrefix+token, s.ttl).Err()
	return userID, nil
}

// Revoke deletes the token.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenPrefix+token).Err()
}
