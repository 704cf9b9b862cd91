package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details struct {
		Errors []apperr.Violation `json:"errors"`
	} `json:"details"`
}

func fixtureProfile() *domain.Profile {
	now := time.Now().UTC()
	return &domain.Profile{
		ID:        uuid.New(),
		FullName:  "Wanjiru Kamau",
		Email:     "wanjiru@example.com",
		Role:      domain.RoleLandlord,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ---------------------------------------------------------------------------
// POST /auth/register
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		profile := fixtureProfile()
		api := newAPI(t, &mockAccounts{
			registerFunc: func(_ context.Context, in auth.RegisterInput) (*domain.Profile, auth.Tokens, error) {
				assert.Equal(t, "Wanjiru Kamau", in.FullName)
				assert.Equal(t, "wanjiru@example.com", in.Contact)
				assert.Equal(t, "secret12", in.Password)
				assert.Equal(t, "landlord", in.Role)
				return profile, auth.Tokens{AccessToken: "access-tok", RefreshToken: "refresh-tok"}, nil
			},
		})

		resp := api.Post("/auth/register", map[string]any{
			"fullName":     "Wanjiru Kamau",
			"emailOrPhone": "wanjiru@example.com",
			"password":     "secret12",
			"role":         "landlord",
		})

		require.Equal(t, http.StatusCreated, resp.Code)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				User         map[string]any `json:"user"`
				AccessToken  string         `json:"accessToken"`
				RefreshToken string         `json:"refreshToken"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Equal(t, "wanjiru@example.com", body.Data.User["email"])
		assert.NotContains(t, body.Data.User, "passwordHash")
		assert.Equal(t, "access-tok", body.Data.AccessToken)
		assert.Equal(t, "refresh-tok", body.Data.RefreshToken)
	})

	t.Run("schema_violations_are_400_envelopes", func(t *testing.T) {
		t.Parallel()

		api := newAPI(t, &mockAccounts{})

		resp := api.Post("/auth/register", map[string]any{
			"fullName":     "Al",
			"emailOrPhone": "wanjiru@example.com",
			"password":     "abc",
			"role":         "superuser",
		})

		require.Equal(t, http.StatusBadRequest, resp.Code)

		var body errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "Validation failed", body.Error)

		fields := make([]string, 0, len(body.Details.Errors))
		for _, v := range body.Details.Errors {
			assert.Equal(t, "body", v.Location)
			fields = append(fields, v.Field)
		}
		assert.Contains(t, fields, "fullName")
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "role")
	})

	t.Run("user_already_exists", func(t *testing.T) {
		t.Parallel()

		api := newAPI(t, &mockAccounts{
			registerFunc: func(_ context.Context, _ auth.RegisterInput) (*domain.Profile, auth.Tokens, error) {
				return nil, auth.Tokens{}, apperr.Wrap(apperr.Conflict, auth.ErrUserAlreadyExists, "User already exists")
			},
		})

		resp := api.Post("/auth/register", map[string]any{
			"fullName":     "Wanjiru Kamau",
			"emailOrPhone": "wanjiru@example.com",
			"password":     "secret12",
			"role":         "tenant",
		})

		require.Equal(t, http.StatusConflict, resp.Code)

		var body errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "User already exists", body.Error)
	})

	t.Run("unclassified_failure_is_masked", func(t *testing.T) {
		t.Parallel()

		api := newAPI(t, &mockAccounts{
			registerFunc: func(_ context.Context, _ auth.RegisterInput) (*domain.Profile, auth.Tokens, error) {
				return nil, auth.Tokens{}, errors.New("pgx: connection reset")
			},
		})

		resp := api.Post("/auth/register", map[string]any{
			"fullName":     "Wanjiru Kamau",
			"emailOrPhone": "+254712345678",
			"password":     "secret12",
			"role":         "tenant",
		})

		require.Equal(t, http.StatusInternalServerError, resp.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Internal Server Error", body["error"])
		assert.NotContains(t, resp.Body.String(), "connection reset")
	})
}

// ---------------------------------------------------------------------------
// POST /auth/login, /auth/refresh, /auth/verify-otp
// ---------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		profile := fixtureProfile()
		api := newAPI(t, &mockAccounts{
			loginFunc: func(_ context.Context, contact, password string) (*domain.Profile, auth.Tokens, error) {
				assert.Equal(t, "wanjiru@example.com", contact)
				assert.Equal(t, "secret12", password)
				return profile, auth.Tokens{AccessToken: "a", RefreshToken: "r"}, nil
			},
		})

		resp := api.Post("/auth/login", map[string]any{
			"emailOrPhone": "wanjiru@example.com",
			"password":     "secret12",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"accessToken":"a"`)
	})

	t.Run("invalid_credentials", func(t *testing.T) {
		t.Parallel()

		api := newAPI(t, &mockAccounts{
			loginFunc: func(_ context.Context, _, _ string) (*domain.Profile, auth.Tokens, error) {
				return nil, auth.Tokens{}, apperr.Wrap(apperr.Unauthenticated,
					fmt.Errorf("auth.Login: %w", auth.ErrInvalidCredentials), "Invalid credentials")
			},
		})

		resp := api.Post("/auth/login", map[string]any{
			"emailOrPhone": "wanjiru@example.com",
			"password":     "wrong",
		})

		require.Equal(t, http.StatusUnauthorized, resp.Code)

		var body errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "Invalid credentials", body.Error)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	api := newAPI(t, &mockAccounts{
		refreshFunc: func(_ context.Context, token string) (string, error) {
			if token != "good" {
				return "", apperr.New(apperr.Unauthenticated, auth.MsgTokenInvalid)
			}
			return "new-access", nil
		},
	})

	resp := api.Post("/auth/refresh", map[string]any{"refreshToken": "good"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"accessToken":"new-access"`)

	resp = api.Post("/auth/refresh", map[string]any{"refreshToken": "bad"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestVerifyOTP(t *testing.T) {
	t.Parallel()

	profile := fixtureProfile()
	api := newAPI(t, &mockAccounts{
		verifyOTPFunc: func(_ context.Context, contact, code string) (*domain.Profile, error) {
			assert.Equal(t, "wanjiru@example.com", contact)
			if code != "123456" {
				e := apperr.Wrap(apperr.ValidationFailed, auth.ErrInvalidCode, "Invalid or expired code")
				e.Violations = []apperr.Violation{{Field: "code", Location: "body", Message: "Invalid or expired code"}}
				return nil, e
			}
			verified := *profile
			verified.IsVerified = true
			return &verified, nil
		},
	})

	resp := api.Post("/auth/verify-otp", map[string]any{"emailOrPhone": "wanjiru@example.com", "otp": "123456"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"isVerified":true`)
	assert.Contains(t, resp.Body.String(), `"message":"OTP verified"`)

	resp = api.Post("/auth/verify-otp", map[string]any{"emailOrPhone": "wanjiru@example.com", "otp": "000000"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/auth/verify-otp", map[string]any{"emailOrPhone": "wanjiru@example.com", "otp": "12ab"})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "schema rejects non-numeric codes")
}

// ---------------------------------------------------------------------------
// /users/*
// ---------------------------------------------------------------------------

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	profile := fixtureProfile()
	api := newAPI(t, &mockAccounts{
		profileFunc: func(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
			if id != profile.ID {
				return nil, apperr.Wrap(apperr.NotFound, domain.ErrNotFound, "User not found")
			}
			return profile, nil
		},
	})

	t.Run("returns_caller_profile", func(t *testing.T) {
		t.Parallel()

		resp := api.GetCtx(identityCtx(profile.ID, domain.RoleLandlord), "/users/current")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), profile.ID.String())
	})

	t.Run("missing_identity_is_401", func(t *testing.T) {
		t.Parallel()

		resp := api.Get("/users/current")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("deleted_profile_is_404", func(t *testing.T) {
		t.Parallel()

		resp := api.GetCtx(identityCtx(uuid.New(), domain.RoleTenant), "/users/current")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	profile := fixtureProfile()
	api := newAPI(t, &mockAccounts{
		updateProfileFunc: func(_ context.Context, id uuid.UUID, upd auth.ProfileUpdate) (*domain.Profile, error) {
			assert.Equal(t, profile.ID, id)
			require.NotNil(t, upd.FullName)
			assert.Nil(t, upd.Contact)
			updated := *profile
			updated.FullName = *upd.FullName
			return &updated, nil
		},
	})

	resp := api.PutCtx(identityCtx(profile.ID, domain.RoleLandlord), "/users/profile", map[string]any{
		"fullName": "Wanjiru K.",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"fullName":"Wanjiru K."`)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	api := newAPI(t, &mockAccounts{})

	resp := api.PostCtx(identityCtx(uuid.New(), domain.RoleTenant), "/auth/logout")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Logged out successfully")
}
