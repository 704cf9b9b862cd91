// Package respond is the single place where request failures become HTTP
// responses. Every error body and every success body share one envelope.
package respond

import (
	"errors"
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/domain"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Problem is a normalized failure ready to be written.
type Problem struct {
	Status int
	Kind   apperr.Kind
	Body   Envelope
}

// Translator converts errors into envelopes. In development mode unclassified
// failures expose their original message and stack.
type Translator struct {
	dev bool
}

func New(dev bool) *Translator {
	return &Translator{dev: dev}
}

// Normalize classifies err and builds the response body for it.
func (t *Translator) Normalize(err error) Problem {
	ae, ok := apperr.As(err)
	if !ok {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			ae = apperr.Wrap(apperr.NotFound, err, "Resource not found")
		case errors.Is(err, domain.ErrConflict):
			ae = apperr.Wrap(apperr.Conflict, err, "Resource already exists")
		}
	}

	if ae == nil {
		details := map[string]any{}
		p := Problem{
			Status: http.StatusInternalServerError,
			Kind:   apperr.Internal,
			Body:   Envelope{Error: "Internal Server Error", Details: details},
		}
		if t.dev {
			details["originalError"] = err.Error()
			p.Body.Stack = stackOf(err)
		}
		return p
	}

	details := make(map[string]any, len(ae.Details)+1)
	for k, v := range ae.Details {
		details[k] = v
	}
	if len(ae.Violations) > 0 {
		details["errors"] = ae.Violations
	}

	p := Problem{
		Status: ae.Kind.Status(),
		Kind:   ae.Kind,
		Body:   Envelope{Error: ae.Message, Details: details},
	}
	if t.dev && p.Status >= http.StatusInternalServerError {
		if cause := ae.Unwrap(); cause != nil {
			details["originalError"] = cause.Error()
		}
		p.Body.Stack = stackOf(err)
	}
	return p
}

// Error writes the envelope for err. Nothing is written when the response
// has already been started.
func (t *Translator) Error(w http.ResponseWriter, r *http.Request, err error) {
	p := t.Normalize(err)

	log.WithLevel(logLevel(p.Status)).Stack().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", p.Status).
		Str("kind", p.Kind.String()).
		Msg("respond: request failed")

	if sw, ok := w.(interface{ Status() int }); ok && sw.Status() != 0 {
		log.Warn().
			Str("path", r.URL.Path).
			Int("sent_status", sw.Status()).
			Msg("respond: response already sent, dropping error body")
		return
	}

	write(w, r, p.Status, p.Body)
}

// Handle adapts an error-returning handler. A returned error is translated
// unless the handler already wrote a response.
func (t *Translator) Handle(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww, ok := w.(chimw.WrapResponseWriter)
		if !ok {
			ww = chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		}
		if err := fn(ww, r); err != nil {
			t.Error(ww, r, err)
		}
	}
}

// OK writes a 200 envelope around data.
func (t *Translator) OK(w http.ResponseWriter, r *http.Request, data any) {
	write(w, r, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 envelope around data.
func (t *Translator) Created(w http.ResponseWriter, r *http.Request, data any) {
	write(w, r, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message writes a 200 envelope carrying only a message.
func (t *Translator) Message(w http.ResponseWriter, r *http.Request, msg string) {
	write(w, r, http.StatusOK, Envelope{Success: true, Message: msg})
}

// Dev reports whether development diagnostics are enabled.
func (t *Translator) Dev() bool { return t.dev }

func write(w http.ResponseWriter, r *http.Request, status int, body Envelope) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

func stackOf(err error) string {
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	var st stackTracer
	if errors.As(err, &st) {
		return fmt.Sprintf("%s%+v", err.Error(), st.StackTrace())
	}
	return err.Error()
}

func logLevel(status int) zerolog.Level {
	if status >= http.StatusInternalServerError {
		return zerolog.ErrorLevel
	}
	return zerolog.DebugLevel
}
