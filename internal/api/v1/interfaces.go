package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
)

// AccountService abstracts account operations for handler testing.
// *auth.Service satisfies this interface.
type AccountService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*domain.Profile, auth.Tokens, error)
	Login(ctx context.Context, contact, password string) (*domain.Profile, auth.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	VerifyOTP(ctx context.Context, contact, code string) (*domain.Profile, error)
	Profile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd auth.ProfileUpdate) (*domain.Profile, error)
}
