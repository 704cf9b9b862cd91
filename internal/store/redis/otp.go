package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/postpata/pata/internal/domain"
)

// OTPStore keeps verification codes under expiring keys.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(c *Client) *OTPStore {
	return &OTPStore{client: c.client}
}

func (s *OTPStore) Save(ctx context.Context, profileID uuid.UUID, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, OTPKey(profileID), code, ttl).Err(); err != nil {
		return fmt.Errorf("redis.OTPStore.Save: %w", err)
	}
	return nil
}

// Consume reads and deletes the code in one round trip.
func (s *OTPStore) Consume(ctx context.Context, profileID uuid.UUID) (string, error) {
	code, err := s.client.GetDel(ctx, OTPKey(profileID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis.OTPStore.Consume: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("redis.OTPStore.Consume: %w", err)
	}
	return code, nil
}

// OTPKey returns the Redis key holding a profile's pending code.
func OTPKey(profileID uuid.UUID) string {
	return "otp:" + profileID.String()
}
