package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/server/middleware"
)

// Envelope is the success body shared with the chi routes.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type Session struct {
	User         *domain.Profile `json:"user"`
	AccessToken  string          `json:"accessToken"`  //nolint:gosec // G117: auth response DTO
	RefreshToken string          `json:"refreshToken"` //nolint:gosec // G117: auth response DTO
}

type AccessToken struct {
	AccessToken string `json:"accessToken"` //nolint:gosec // G117: auth response DTO
}

type RegisterInput struct {
	Body struct {
		FullName     string `json:"fullName" minLength:"3" maxLength:"50" doc:"Full name"`
		EmailOrPhone string `json:"emailOrPhone" minLength:"3" maxLength:"255" doc:"Email address or phone number"`
		Password     string `json:"password" minLength:"6" maxLength:"50" doc:"Password with at least one letter and one digit"` //nolint:gosec // G117: login credential DTO
		Role         string `json:"role" enum:"tenant,landlord,admin" doc:"Account role"`
	}
}

type SessionOutput struct {
	Body Envelope[Session]
}

type LoginInput struct {
	Body struct {
		EmailOrPhone string `json:"emailOrPhone" minLength:"3" maxLength:"255" doc:"Email address or phone number"`
		Password     string `json:"password" minLength:"1" maxLength:"50" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refreshToken" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body Envelope[AccessToken]
}

type VerifyOTPInput struct {
	Body struct {
		EmailOrPhone string `json:"emailOrPhone" minLength:"3" maxLength:"255" doc:"Email address or phone number"`
		OTP          string `json:"otp" pattern:"^[0-9]{6}$" doc:"Six digit verification code"`
	}
}

type ProfileOutput struct {
	Body Envelope[*domain.Profile]
}

type UpdateProfileInput struct {
	Body struct {
		FullName     *string `json:"fullName,omitempty" minLength:"3" maxLength:"50" required:"false" doc:"Full name"`
		EmailOrPhone *string `json:"emailOrPhone,omitempty" minLength:"3" maxLength:"255" required:"false" doc:"New email address or phone number"`
	}
}

type MessageOutput struct {
	Body Envelope[any]
}

// RegisterAuthRoutes mounts the unauthenticated account operations.
func RegisterAuthRoutes(api huma.API, accounts AccountService) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register a new account",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterInput) (*SessionOutput, error) {
		p, tokens, err := accounts.Register(ctx, auth.RegisterInput{
			FullName: input.Body.FullName,
			Contact:  input.Body.EmailOrPhone,
			Password: input.Body.Password,
			Role:     input.Body.Role,
		})
		if err != nil {
			return nil, fail(ctx, err)
		}
		return sessionOutput(p, tokens), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email or phone and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
		p, tokens, err := accounts.Login(ctx, input.Body.EmailOrPhone, input.Body.Password)
		if err != nil {
			return nil, fail(ctx, err)
		}
		return sessionOutput(p, tokens), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Refresh access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		access, err := accounts.Refresh(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, fail(ctx, err)
		}
		out := &RefreshOutput{}
		out.Body.Success = true
		out.Body.Data = AccessToken{AccessToken: access}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "verify-otp",
		Method:      http.MethodPost,
		Path:        "/auth/verify-otp",
		Summary:     "Verify an account with a one-time code",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *VerifyOTPInput) (*ProfileOutput, error) {
		p, err := accounts.VerifyOTP(ctx, input.Body.EmailOrPhone, input.Body.OTP)
		if err != nil {
			return nil, fail(ctx, err)
		}
		out := &ProfileOutput{}
		out.Body.Success = true
		out.Body.Data = p
		out.Body.Message = "OTP verified"
		return out, nil
	})
}

// RegisterUserRoutes mounts operations on the caller's own account. The API
// must sit behind the access gate.
func RegisterUserRoutes(api huma.API, accounts AccountService) {
	huma.Register(api, huma.Operation{
		OperationID: "current-user",
		Method:      http.MethodGet,
		Path:        "/users/current",
		Summary:     "Get the caller's profile",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, fail(ctx, err)
		}
		p, err := accounts.Profile(ctx, id.SubjectID)
		if err != nil {
			return nil, fail(ctx, err)
		}
		out := &ProfileOutput{}
		out.Body.Success = true
		out.Body.Data = p
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPut,
		Path:        "/users/profile",
		Summary:     "Update the caller's profile",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, fail(ctx, err)
		}
		p, err := accounts.UpdateProfile(ctx, id.SubjectID, auth.ProfileUpdate{
			FullName: input.Body.FullName,
			Contact:  input.Body.EmailOrPhone,
		})
		if err != nil {
			return nil, fail(ctx, err)
		}
		out := &ProfileOutput{}
		out.Body.Success = true
		out.Body.Data = p
		return out, nil
	})

	// Tokens are stateless; logout only confirms the caller held a valid one.
	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Logout",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
		if _, err := caller(ctx); err != nil {
			return nil, fail(ctx, err)
		}
		out := &MessageOutput{}
		out.Body.Success = true
		out.Body.Message = "Logged out successfully"
		return out, nil
	})
}

func caller(ctx context.Context) (auth.Identity, error) {
	id, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, apperr.New(apperr.Unauthenticated, auth.MsgTokenRequired)
	}
	return id, nil
}

func sessionOutput(p *domain.Profile, tokens auth.Tokens) *SessionOutput {
	out := &SessionOutput{}
	out.Body.Success = true
	out.Body.Data = Session{
		User:         p,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	return out
}
