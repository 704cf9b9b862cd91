package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/server/respond"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"unauthenticated", apperr.New(apperr.Unauthenticated, "Access denied. No token provided."), http.StatusUnauthorized, "Access denied. No token provided."},
		{"forbidden", apperr.New(apperr.Forbidden, "Access denied"), http.StatusForbidden, "Access denied"},
		{"not found", apperr.Wrap(apperr.NotFound, domain.ErrNotFound, "Property not found"), http.StatusNotFound, "Property not found"},
		{"wrapped classified", fmt.Errorf("handler: %w", apperr.New(apperr.Conflict, "User already exists")), http.StatusConflict, "User already exists"},
		{"bare not found", fmt.Errorf("repo: %w", domain.ErrNotFound), http.StatusNotFound, "Resource not found"},
		{"bare conflict", domain.ErrConflict, http.StatusConflict, "Resource already exists"},
		{"lifecycle", apperr.Wrap(apperr.Lifecycle, errors.New("tx aborted"), "Failed to approve properties"), http.StatusInternalServerError, "Failed to approve properties"},
		{"unclassified", errors.New("dial tcp: refused"), http.StatusInternalServerError, "Internal Server Error"},
	}

	tr := respond.New(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := tr.Normalize(tt.err)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantError, p.Body.Error)
			assert.False(t, p.Body.Success)
			assert.Empty(t, p.Body.Stack)
		})
	}
}

func TestNormalize_Violations(t *testing.T) {
	t.Parallel()

	err := apperr.Validation([]apperr.Violation{
		{Field: "title", Location: "body", Message: "Title is required"},
		{Field: "price", Location: "body", Message: "Price must be a number"},
	})
	p := respond.New(false).Normalize(err)

	assert.Equal(t, http.StatusBadRequest, p.Status)
	details, ok := p.Body.Details.(map[string]any)
	require.True(t, ok)
	assert.Len(t, details["errors"], 2)
}

func TestNormalize_DevModeExposesOrigin(t *testing.T) {
	t.Parallel()

	cause := errors.New("pq: relation does not exist")
	prod := respond.New(false).Normalize(cause)
	dev := respond.New(true).Normalize(cause)

	assert.Equal(t, map[string]any{}, prod.Body.Details)
	assert.Empty(t, prod.Body.Stack)

	details, ok := dev.Body.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pq: relation does not exist", details["originalError"])
	assert.NotEmpty(t, dev.Body.Stack)

	wrapped := respond.New(true).Normalize(apperr.Wrap(apperr.Internal, cause, "Failed to fetch property"))
	assert.Equal(t, "Failed to fetch property", wrapped.Body.Error)
	assert.Contains(t, wrapped.Body.Stack, "respond_test")

	client := respond.New(true).Normalize(apperr.New(apperr.NotFound, "Property not found"))
	assert.Empty(t, client.Body.Stack, "client errors never carry a stack")
}

func TestError_WritesEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respond.New(false).Error(rec, httptest.NewRequest(http.MethodGet, "/properties/x", nil),
		apperr.New(apperr.NotFound, "Property not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Property not found", body["error"])
}

func TestHandle_SkipsErrorAfterWrite(t *testing.T) {
	t.Parallel()

	tr := respond.New(false)
	h := tr.Handle(func(w http.ResponseWriter, r *http.Request) error {
		tr.OK(w, r, map[string]string{"id": "1"})
		return errors.New("late failure")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, rec.Body.String(), "Internal Server Error")
}

func TestHandle_TranslatesError(t *testing.T) {
	t.Parallel()

	tr := respond.New(false)
	h := tr.Handle(func(http.ResponseWriter, *http.Request) error {
		return apperr.New(apperr.Forbidden, "Access denied")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSuccessEnvelopes(t *testing.T) {
	t.Parallel()

	tr := respond.New(false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	tr.Created(rec, req, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "data": map[string]any{"n": float64(1)}}, decode(t, rec))

	rec = httptest.NewRecorder()
	tr.Message(rec, req, "Property deleted successfully")
	assert.Equal(t, map[string]any{"success": true, "message": "Property deleted successfully"}, decode(t, rec))
}
