package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrInvalidRefreshToken is returned for unknown, expired or revoked tokens.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

const refreshKeyPrefix = "refresh:"

// RefreshStore keeps opaque refresh tokens in Redis, each mapping to a user
// id with a TTL. Tokens are single use.
type RefreshStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRefreshStore(client *redis.Client, ttl time.Duration) *RefreshStore {
	return &RefreshStore{client: client, ttl: ttl}
}

func (s *RefreshStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, refreshKeyPrefix+token, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return token, nil
}

// Rotate consumes token and issues a replacement for the same user.
func (s *RefreshStore) Rotate(ctx context.Context, token string) (uuid.UUID, string, error) {
	raw, err := s.client.GetDel(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, "", ErrInvalidRefreshToken
	}
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("consume refresh token: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", ErrInvalidRefreshToken
	}

	next, err := s.Issue(ctx, userID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, next, nil
}

// Revoke deletes token. Revoking an unknown token is not an error.
func (s *RefreshStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKeyPrefix+token).Err()
}
