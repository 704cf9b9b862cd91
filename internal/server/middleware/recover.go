package middleware

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Recover turns a handler panic into an Internal error written through errs.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func Recover(errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				errs.Error(w, r, pkgerrors.WithStack(fmt.Errorf("panic: %w", err)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
