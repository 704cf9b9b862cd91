package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/ratelimit"
)

// MsgRateLimited is the client-facing message for rejected requests.
const MsgRateLimited = "Too many requests, please try again later."

// RateLimit applies one process-wide limiter to every request. Rejected
// requests get 429 through errs.
func RateLimit(limiter ratelimit.Limiter, errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Allow(r.Context())

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			reset := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
			reset = max(reset, 0)
			h.Set("RateLimit-Reset", strconv.Itoa(reset))

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(max(reset, 1)))
				errs.Error(w, r, apperr.New(apperr.RateLimited, MsgRateLimited))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
