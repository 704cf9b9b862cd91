package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidCode        = errors.New("auth: invalid or expired code")
)

const (
	defaultOTPTTL = 10 * time.Minute
	otpDigits     = 6
)

// OTPStore keeps one pending verification code per profile.
type OTPStore interface {
	Save(ctx context.Context, profileID uuid.UUID, code string, ttl time.Duration) error
	// Consume returns and deletes the pending code, or domain.ErrNotFound.
	Consume(ctx context.Context, profileID uuid.UUID) (string, error)
}

// CodeSender delivers a verification code, valid for ttl, to a profile's
// contact address.
type CodeSender interface {
	SendCode(ctx context.Context, p *domain.Profile, code string, ttl time.Duration) error
}

// Tokens is a freshly issued credential pair.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterInput struct {
	FullName string
	Contact  string // email or phone
	Password string
	Role     string
}

// ProfileUpdate is a partial profile change. Role is not updatable.
type ProfileUpdate struct {
	FullName *string
	Contact  *string
}

// Service provides account and token operations.
type Service struct {
	profiles   domain.ProfileRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration

	otps        OTPStore
	sender      CodeSender
	otpTTL      time.Duration
	adminSignup bool
}

type Option func(*Service)

// WithOTP enables verification codes on registration and contact changes.
func WithOTP(store OTPStore, sender CodeSender, ttl time.Duration) Option {
	return func(s *Service) {
		s.otps = store
		s.sender = sender
		if ttl > 0 {
			s.otpTTL = ttl
		}
	}
}

// WithAdminSignup allows self-registration with the admin role.
func WithAdminSignup(allow bool) Option {
	return func(s *Service) { s.adminSignup = allow }
}

// NewService creates a new auth service.
func NewService(profiles domain.ProfileRepository, jwtSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		profiles:   profiles,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		otpTTL:     defaultOTPTTL,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates a profile and signs it in. The password is hashed with
// argon2id before storage.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Profile, Tokens, error) {
	var violations []apperr.Violation

	fullName := strings.TrimSpace(in.FullName)
	if n := len([]rune(fullName)); n < 3 || n > 50 {
		violations = append(violations, apperr.Violation{Field: "fullName", Location: "body", Message: "Full name must be between 3 and 50 characters"})
	}

	email, phone, ok := splitContact(in.Contact)
	if !ok {
		violations = append(violations, apperr.Violation{Field: "contact", Location: "body", Message: "Please provide a valid email or phone number"})
	}

	if msg := passwordProblem(in.Password); msg != "" {
		violations = append(violations, apperr.Violation{Field: "password", Location: "body", Message: msg})
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		violations = append(violations, apperr.Violation{Field: "role", Location: "body", Message: "Role must be tenant, landlord or admin"})
	}

	if len(violations) > 0 {
		return nil, Tokens{}, apperr.Validation(violations)
	}

	if role == domain.RoleAdmin && !s.adminSignup {
		return nil, Tokens{}, apperr.New(apperr.Forbidden, "Admin registration is disabled")
	}

	if existing, _ := s.lookup(ctx, email, phone); existing != nil {
		return nil, Tokens{}, apperr.Wrap(apperr.Conflict, ErrUserAlreadyExists, "User already exists")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, Tokens{}, apperr.Wrap(apperr.Internal, fmt.Errorf("auth.Register: %w", err), "Registration failed")
	}

	now := time.Now().UTC()
	p := &domain.Profile{
		ID:           uuid.New(),
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, Tokens{}, apperr.Wrap(apperr.Conflict, err, "User already exists")
		}
		return nil, Tokens{}, apperr.Wrap(apperr.Internal, fmt.Errorf("auth.Register: %w", err), "Registration failed")
	}

	s.sendCode(ctx, p)

	tokens, err := s.issue(p)
	if err != nil {
		return nil, Tokens{}, apperr.Wrap(apperr.Internal, fmt.Errorf("auth.Register: %w", err), "Registration failed")
	}

	return p, tokens, nil
}

// Login checks contact/password and returns a fresh token pair.
func (s *Service) Login(ctx context.Context, contact, password string) (*domain.Profile, Tokens, error) {
	email, phone, ok := splitContact(contact)
	if !ok {
		return nil, Tokens{}, apperr.Wrap(apperr.Unauthenticated, ErrInvalidCredentials, "Invalid credentials")
	}

	p, err := s.lookup(ctx, email, phone)
	if err != nil {
		return nil, Tokens{}, apperr.Wrap(apperr.Unauthenticated, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials), "Invalid credentials")
	}

	if !verifyPassword(password, p.PasswordHash) {
		return nil, Tokens{}, apperr.Wrap(apperr.Unauthenticated, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials), "Invalid credentials")
	}

	tokens, err := s.issue(p)
	if err != nil {
		return nil, Tokens{}, apperr.Wrap(apperr.Internal, fmt.Errorf("auth.Login: %w", err), "Login failed")
	}

	return p, tokens, nil
}

// Refresh validates a refresh token and issues a new access token carrying
// the profile's current role.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", apperr.Wrap(apperr.Unauthenticated, fmt.Errorf("auth.Refresh: %w", err), MsgTokenInvalid)
	}

	id, err := identityFrom(claims, tokenTypeRefresh)
	if err != nil {
		return "", err
	}

	p, err := s.profiles.GetByID(ctx, id.SubjectID)
	if err != nil {
		return "", apperr.Wrap(apperr.Unauthenticated, fmt.Errorf("auth.Refresh: %w: %w", ErrUserNotFound, err), MsgTokenInvalid)
	}

	access, err := IssueAccessToken(s.jwtSecret, p.ID, p.Role, s.accessTTL)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, fmt.Errorf("auth.Refresh: %w", err), "Token refresh failed")
	}

	return access, nil
}

// VerifyOTP consumes the pending code for contact and marks the profile
// verified. A code is single-use whether or not it matched.
func (s *Service) VerifyOTP(ctx context.Context, contact, code string) (*domain.Profile, error) {
	if s.otps == nil {
		return nil, apperr.New(apperr.NotFound, "Verification is not enabled")
	}

	email, phone, ok := splitContact(contact)
	if !ok {
		return nil, invalidCode()
	}

	p, err := s.lookup(ctx, email, phone)
	if err != nil {
		return nil, invalidCode()
	}

	stored, err := s.otps.Consume(ctx, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalidCode()
		}
		return nil, apperr.Wrap(apperr.Internal, fmt.Errorf("auth.VerifyOTP: %w", err), "Verification failed")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		return nil, invalidCode()
	}

	if err := s.profiles.SetVerified(ctx, p.ID); err != nil {
		return nil, apperr.Wrap(apperr.Internal, fmt.Errorf("auth.VerifyOTP: %w", err), "Verification failed")
	}
	p.IsVerified = true

	return p, nil
}

// Profile returns the profile for an authenticated subject.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, err, "User not found")
		}
		return nil, apperr.Wrap(apperr.Internal, fmt.Errorf("auth.Profile: %w", err), "Failed to load profile")
	}
	return p, nil
}

// UpdateProfile applies a partial change. A new contact address resets the
// verified flag and triggers a fresh code.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*domain.Profile, error) {
	p, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	var violations []apperr.Violation
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if n := len([]rune(name)); n < 3 || n > 50 {
			violations = append(violations, apperr.Violation{Field: "fullName", Location: "body", Message: "Full name must be between 3 and 50 characters"})
		}
		p.FullName = name
	}

	contactChanged := false
	if upd.Contact != nil {
		email, phone, ok := splitContact(*upd.Contact)
		if !ok {
			violations = append(violations, apperr.Violation{Field: "contact", Location: "body", Message: "Please provide a valid email or phone number"})
		} else if email != p.Email || phone != p.Phone {
			if other, _ := s.lookup(ctx, email, phone); other != nil && other.ID != p.ID {
				return nil, apperr.Wrap(apperr.Conflict, ErrUserAlreadyExists, "Contact already in use")
			}
			p.Email, p.Phone = email, phone
			p.IsVerified = false
			contactChanged = true
		}
	}

	if len(violations) > 0 {
		return nil, apperr.Validation(violations)
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, apperr.Wrap(apperr.Conflict, err, "Contact already in use")
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperr.Wrap(apperr.NotFound, err, "User not found")
		}
		return nil, apperr.Wrap(apperr.Internal, fmt.Errorf("auth.UpdateProfile: %w", err), "Failed to update profile")
	}

	if contactChanged {
		s.sendCode(ctx, p)
	}

	return p, nil
}

func (s *Service) issue(p *domain.Profile) (Tokens, error) {
	access, err := IssueAccessToken(s.jwtSecret, p.ID, p.Role, s.accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := IssueRefreshToken(s.jwtSecret, p.ID, p.Role, s.refreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) lookup(ctx context.Context, email, phone string) (*domain.Profile, error) {
	if email != "" {
		return s.profiles.GetByEmail(ctx, email)
	}
	return s.profiles.GetByPhone(ctx, phone)
}

// sendCode issues a verification code. Delivery failures are logged and do
// not fail the surrounding operation.
func (s *Service) sendCode(ctx context.Context, p *domain.Profile) {
	if s.otps == nil || s.sender == nil {
		return
	}

	code, err := generateCode()
	if err != nil {
		log.Error().Err(err).Str("profile_id", p.ID.String()).Msg("auth: generate verification code")
		return
	}

	if err := s.otps.Save(ctx, p.ID, code, s.otpTTL); err != nil {
		log.Error().Err(err).Str("profile_id", p.ID.String()).Msg("auth: store verification code")
		return
	}

	if err := s.sender.SendCode(ctx, p, code, s.otpTTL); err != nil {
		log.Warn().Err(err).Str("profile_id", p.ID.String()).Msg("auth: deliver verification code")
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("auth.generateCode: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// splitContact classifies a login identifier as an email or a phone number.
// Emails are lower-cased; phones are normalized to "+digits".
func splitContact(contact string) (email, phone string, ok bool) {
	c := strings.TrimSpace(contact)
	if domain.IsEmail(c) {
		return strings.ToLower(c), "", true
	}
	if p, ok := domain.NormalizePhone(c); ok && domain.IsPhone(p) {
		return "", p, true
	}
	return "", "", false
}

func invalidCode() error {
	e := apperr.Wrap(apperr.ValidationFailed, ErrInvalidCode, "Invalid or expired code")
	e.Violations = []apperr.Violation{{Field: "code", Location: "body", Message: "Invalid or expired code"}}
	return e
}
