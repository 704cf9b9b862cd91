package domain

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is an account holder. Exactly one of Email and Phone is set.
// Role never changes after creation.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	IsVerified   bool      `json:"isVerified"`
	PasswordHash string    `json:"-"` // argon2id
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Contact returns the address used to reach the profile holder.
func (p *Profile) Contact() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Phone
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{8,14}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsPhone reports whether s looks like an international phone number.
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// NormalizePhone strips formatting and returns "+digits". The boolean is false
// when the result is not between 9 and 15 digits.
func NormalizePhone(s string) (string, bool) {
	digits := nonDigits.ReplaceAllString(strings.TrimSpace(s), "")
	if len(digits) < 9 || len(digits) > 15 {
		return "", false
	}
	return "+" + digits, true
}

type ProfileRepository interface {
	// Create returns ErrConflict when the email or phone is already taken.
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	GetByPhone(ctx context.Context, phone string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	SetVerified(ctx context.Context, id uuid.UUID) error
}
