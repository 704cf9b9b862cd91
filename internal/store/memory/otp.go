package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/domain"
)

// OTPStore keeps verification codes in process memory.
type OTPStore struct {
	mu    sync.Mutex
	codes map[uuid.UUID]otpEntry
	now   func() time.Time
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

func NewOTPStore() *OTPStore {
	return &OTPStore{codes: make(map[uuid.UUID]otpEntry), now: time.Now}
}

func (s *OTPStore) Save(_ context.Context, profileID uuid.UUID, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[profileID] = otpEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *OTPStore) Consume(_ context.Context, profileID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[profileID]
	delete(s.codes, profileID)
	if !ok || !s.now().Before(e.expiresAt) {
		return "", fmt.Errorf("otpStore.Consume: %w", domain.ErrNotFound)
	}
	return e.code, nil
}
