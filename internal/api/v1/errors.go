package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/server/respond"
)

// EnvelopeError is a huma status error rendered with the API envelope.
type EnvelopeError struct {
	respond.Envelope
	status int
}

func (e *EnvelopeError) Error() string  { return e.Envelope.Error }
func (e *EnvelopeError) GetStatus() int { return e.status }

var (
	envelopeOnce sync.Once
	translator   = respond.New(false)
)

// UseEnvelopeErrors makes huma report every failure, including its own
// schema validation errors, with the API envelope. Only the first call
// takes effect because huma.NewError is process-wide.
func UseEnvelopeErrors(t *respond.Translator) {
	envelopeOnce.Do(func() {
		translator = t
		huma.NewError = newEnvelopeError
	})
}

func newEnvelopeError(status int, msg string, errs ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity || (status == http.StatusBadRequest && len(errs) > 0) {
		return toEnvelope(apperr.Validation(violationsFrom(errs)))
	}

	kind := kindFor(status)
	if status >= http.StatusInternalServerError {
		msg = "Internal Server Error"
	}
	e := toEnvelope(apperr.New(kind, msg))
	e.status = status
	return e
}

// fail converts a service error into the envelope error huma writes.
func fail(ctx context.Context, err error) error {
	e := toEnvelope(err)

	level := zerolog.DebugLevel
	if e.status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	log.WithLevel(level).Stack().Err(err).
		Str("request_id", chimw.GetReqID(ctx)).
		Int("status", e.status).
		Msg("v1: request failed")

	return e
}

func toEnvelope(err error) *EnvelopeError {
	p := translator.Normalize(err)
	return &EnvelopeError{Envelope: p.Body, status: p.Status}
}

// violationsFrom turns huma error details such as "body.fullName" into
// field violations.
func violationsFrom(errs []error) []apperr.Violation {
	out := make([]apperr.Violation, 0, len(errs))
	for _, err := range errs {
		var d huma.ErrorDetailer
		if !errors.As(err, &d) {
			out = append(out, apperr.Violation{Field: "body", Location: "body", Message: err.Error()})
			continue
		}
		detail := d.ErrorDetail()
		loc, field, ok := strings.Cut(detail.Location, ".")
		if !ok {
			field = loc
		}
		out = append(out, apperr.Violation{Field: field, Location: loc, Message: detail.Message})
	}
	return out
}

func kindFor(status int) apperr.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.ValidationFailed
	case http.StatusUnauthorized:
		return apperr.Unauthenticated
	case http.StatusForbidden:
		return apperr.Forbidden
	case http.StatusNotFound:
		return apperr.NotFound
	case http.StatusConflict:
		return apperr.Conflict
	case http.StatusTooManyRequests:
		return apperr.RateLimited
	default:
		return apperr.Internal
	}
}
