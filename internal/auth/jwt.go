package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/domain"
)

const issuer = "pata"

// Claims holds the JWT token payload.
type Claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	TokenType string `json:"typ"` // "access" or "refresh"
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Client-facing messages for credential failures.
const (
	MsgTokenRequired = "Authorization token required"
	MsgTokenInvalid  = "Invalid or expired token"
)

// ErrInvalidToken is returned when a JWT cannot be parsed or has expired.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Identity is the verified claim attached to an authenticated request.
type Identity struct {
	SubjectID uuid.UUID
	Role      domain.Role
	ExpiresAt time.Time
}

// IssueAccessToken creates a signed JWT access token.
func IssueAccessToken(secret string, subject uuid.UUID, role domain.Role, ttl time.Duration) (string, error) {
	return issueToken(secret, subject, role, tokenTypeAccess, ttl)
}

// IssueRefreshToken creates a signed JWT refresh token.
func IssueRefreshToken(secret string, subject uuid.UUID, role domain.Role, ttl time.Duration) (string, error) {
	return issueToken(secret, subject, role, tokenTypeRefresh, ttl)
}

func issueToken(secret string, subject uuid.UUID, role domain.Role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
		Role:      string(role),
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.issueToken: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT token string. Returns the embedded claims.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	return claims, nil
}

// Verifier turns bearer tokens into identities. It holds no state besides
// the signing secret.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify accepts only unexpired access tokens signed with the verifier's
// secret that name a known role. Every failure is Unauthenticated.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.New(apperr.Unauthenticated, MsgTokenRequired)
	}

	claims, err := ValidateToken(v.secret, token)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.Unauthenticated, err, MsgTokenInvalid)
	}
	return identityFrom(claims, tokenTypeAccess)
}

func identityFrom(claims *Claims, wantType string) (Identity, error) {
	if claims.TokenType != wantType {
		return Identity{}, apperr.Wrap(apperr.Unauthenticated,
			fmt.Errorf("auth: token type %q, want %q: %w", claims.TokenType, wantType, ErrInvalidToken), MsgTokenInvalid)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.Unauthenticated, fmt.Errorf("auth: subject: %w", err), MsgTokenInvalid)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.Unauthenticated, err, MsgTokenInvalid)
	}

	id := Identity{SubjectID: subject, Role: role}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
