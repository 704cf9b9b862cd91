package v1_test

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"

	v1 "github.com/postpata/pata/internal/api/v1"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/server/middleware"
	"github.com/postpata/pata/internal/server/respond"
)

// ---------------------------------------------------------------------------
// Context helpers: inject a verified identity for DoCtx
// ---------------------------------------------------------------------------

func identityCtx(id uuid.UUID, role domain.Role) context.Context {
	return middleware.WithIdentity(context.Background(), auth.Identity{
		SubjectID: id,
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	})
}

func newAPI(t *testing.T, accounts v1.AccountService) humatest.TestAPI {
	t.Helper()

	v1.UseEnvelopeErrors(respond.New(false))
	_, api := humatest.New(t)
	v1.RegisterAuthRoutes(api, accounts)
	v1.RegisterUserRoutes(api, accounts)
	return api
}

// ---------------------------------------------------------------------------
// Mock AccountService
// ---------------------------------------------------------------------------

type mockAccounts struct {
	registerFunc      func(ctx context.Context, in auth.RegisterInput) (*domain.Profile, auth.Tokens, error)
	loginFunc         func(ctx context.Context, contact, password string) (*domain.Profile, auth.Tokens, error)
	refreshFunc       func(ctx context.Context, refreshToken string) (string, error)
	verifyOTPFunc     func(ctx context.Context, contact, code string) (*domain.Profile, error)
	profileFunc       func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	updateProfileFunc func(ctx context.Context, id uuid.UUID, upd auth.ProfileUpdate) (*domain.Profile, error)
}

func (m *mockAccounts) Register(ctx context.Context, in auth.RegisterInput) (*domain.Profile, auth.Tokens, error) {
	return m.registerFunc(ctx, in)
}

func (m *mockAccounts) Login(ctx context.Context, contact, password string) (*domain.Profile, auth.Tokens, error) {
	return m.loginFunc(ctx, contact, password)
}

func (m *mockAccounts) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshFunc(ctx, refreshToken)
}

func (m *mockAccounts) VerifyOTP(ctx context.Context, contact, code string) (*domain.Profile, error) {
	return m.verifyOTPFunc(ctx, contact, code)
}

func (m *mockAccounts) Profile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return m.profileFunc(ctx, id)
}

func (m *mockAccounts) UpdateProfile(ctx context.Context, id uuid.UUID, upd auth.ProfileUpdate) (*domain.Profile, error) {
	return m.updateProfileFunc(ctx, id, upd)
}
