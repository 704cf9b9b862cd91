package middleware

import (
	"fmt"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
)

// ErrorWriter renders a failure response.
type ErrorWriter interface {
	Error(w http.ResponseWriter, r *http.Request, err error)
}

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Gate builds access-control middleware around one verifier.
type Gate struct {
	verifier TokenVerifier
	errs     ErrorWriter
}

func NewGate(verifier TokenVerifier, errs ErrorWriter) *Gate {
	return &Gate{verifier: verifier, errs: errs}
}

// Authorize verifies the bearer token and checks it against policy. A missing
// or bad token is 401; a valid token outside the policy is 403.
func (g *Gate) Authorize(policy AccessPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := g.verifier.Verify(extractBearer(r))
			if err != nil {
				g.reject(w, r, err)
				return
			}

			if !policy.Permits(id) {
				g.reject(w, r, apperr.Wrap(apperr.Forbidden,
					fmt.Errorf("middleware.Authorize: role %q not permitted", id.Role),
					"Access denied. Required roles: "+joinRoles(policy.Accepted())))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Authorize is shorthand for NewGate(verifier, errs).Authorize(policy).
func Authorize(verifier TokenVerifier, errs ErrorWriter, policy AccessPolicy) func(http.Handler) http.Handler {
	return NewGate(verifier, errs).Authorize(policy)
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Stack().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("middleware: access denied")
	g.errs.Error(w, r, err)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func joinRoles(roles []domain.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
