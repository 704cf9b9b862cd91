package validate_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/server/respond"
	"github.com/postpata/pata/internal/validate"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details struct {
		Errors []apperr.Violation `json:"errors"`
	} `json:"details"`
}

func jsonRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func violations(t *testing.T, err error) []apperr.Violation {
	t.Helper()

	ae, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T", err)
	require.Equal(t, apperr.ValidationFailed, ae.Kind)
	return ae.Violations
}

func propertyRules() []validate.FieldRule {
	title := validate.BodyField("title")
	price := validate.BodyField("price")
	return []validate.FieldRule{
		title.Required("Title is required"),
		title.Length(3, 100, "Title must be between 3 and 100 characters"),
		price.Required("Price is required"),
		price.Range(0, 1_000_000, "Price must be between 0 and 1,000,000"),
		price.Type(validate.Decimal, "Price must be a number"),
	}
}

// ---------------------------------------------------------------------------
// Check
// ---------------------------------------------------------------------------

func TestCheck_ReportsEveryViolation(t *testing.T) {
	t.Parallel()

	req := jsonRequest(t, http.MethodPost, "/properties/add", `{"price": -4}`)
	_, err := validate.Check(req, propertyRules()...)

	got := violations(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, apperr.Violation{Field: "title", Location: "body", Message: "Title is required"}, got[0])
	assert.Equal(t, "price", got[1].Field)
	assert.Equal(t, "Price must be between 0 and 1,000,000", got[1].Message)
}

func TestCheck_OrderFollowsRules(t *testing.T) {
	t.Parallel()

	var rules []validate.FieldRule
	for _, f := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		rules = append(rules, validate.BodyField(f).Required(f+" is required"))
	}

	for range 20 {
		_, err := validate.Check(jsonRequest(t, http.MethodPost, "/", `{}`), rules...)
		got := violations(t, err)
		require.Len(t, got, len(rules))
		for i, v := range got {
			assert.Equal(t, rules[i].Field, v.Field)
		}
	}
}

func TestCheck_CoercesValues(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	r := chi.NewRouter()
	var values *validate.Values
	r.Post("/properties/{id}", func(_ http.ResponseWriter, r *http.Request) {
		var err error
		r, err = validate.Check(r,
			validate.PathField("id").Type(validate.UUID, "Invalid property ID"),
			validate.BodyField("price").Type(validate.Decimal, "Price must be a number"),
			validate.BodyField("bedrooms").Type(validate.Int, "Bedrooms must be an integer"),
			validate.BodyField("available").Type(validate.Bool, "Availability must be a boolean"),
			validate.QueryField("page").Type(validate.Int, "Page must be an integer"),
		)
		require.NoError(t, err)
		values = validate.ValuesFrom(r.Context())
	})

	req := jsonRequest(t, http.MethodPost, "/properties/"+id.String()+"?page=2",
		`{"price": "1200.50", "bedrooms": 3, "available": "true"}`)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, values)
	gotID, ok := values.UUID(validate.Path, "id")
	require.True(t, ok)
	assert.Equal(t, id, gotID)

	price, ok := values.Decimal(validate.Body, "price")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("1200.5")))

	beds, ok := values.Int(validate.Body, "bedrooms")
	require.True(t, ok)
	assert.Equal(t, 3, beds)

	avail, ok := values.Bool(validate.Body, "available")
	require.True(t, ok)
	assert.True(t, avail)

	page, ok := values.Int(validate.Query, "page")
	require.True(t, ok)
	assert.Equal(t, 2, page)

	_, ok = values.String(validate.Body, "missing")
	assert.False(t, ok)
}

func TestCheck_RuleKinds(t *testing.T) {
	t.Parallel()

	phone := regexp.MustCompile(`^\+254\d{9}$`)
	even := func(v any) bool {
		d, err := validate.ToDecimal(v)
		return err == nil && d.Mod(decimal.NewFromInt(2)).IsZero()
	}

	tests := []struct {
		name string
		body string
		rule validate.FieldRule
		ok   bool
	}{
		{"required blank", `{"x": "  "}`, validate.BodyField("x").Required("m"), false},
		{"required null", `{"x": null}`, validate.BodyField("x").Required("m"), false},
		{"required zero", `{"x": 0}`, validate.BodyField("x").Required("m"), true},
		{"absent optional", `{}`, validate.BodyField("x").Range(1, 2, "m"), true},
		{"range numeric string", `{"x": "1.5"}`, validate.BodyField("x").Range(1, 2, "m"), true},
		{"range inclusive", `{"x": 2}`, validate.BodyField("x").Range(1, 2, "m"), true},
		{"range above", `{"x": 2.01}`, validate.BodyField("x").Range(1, 2, "m"), false},
		{"range not a number", `{"x": "abc"}`, validate.BodyField("x").Min(0, "m"), false},
		{"length runes", `{"x": "ñañ"}`, validate.BodyField("x").Length(3, 3, "m"), true},
		{"length list", `{"x": []}`, validate.BodyField("x").Length(1, 10, "m"), false},
		{"pattern", `{"x": "+254712345678"}`, validate.BodyField("x").Pattern(phone, "m"), true},
		{"pattern mismatch", `{"x": "0712"}`, validate.BodyField("x").Pattern(phone, "m"), false},
		{"custom", `{"x": 4}`, validate.BodyField("x").Custom(even, "m"), true},
		{"custom fails", `{"x": 3}`, validate.BodyField("x").Custom(even, "m"), false},
		{"one of", `{"x": "resolved"}`, validate.BodyField("x").OneOf([]string{"pending", "resolved"}, "m"), true},
		{"one of rejects", `{"x": "done"}`, validate.BodyField("x").OneOf([]string{"pending", "resolved"}, "m"), false},
		{"int rejects fraction", `{"x": 2.5}`, validate.BodyField("x").Type(validate.Int, "m"), false},
		{"uuid list", `{"x": ["` + uuid.NewString() + `"]}`, validate.BodyField("x").Type(validate.UUIDList, "m"), true},
		{"uuid list bad item", `{"x": ["nope"]}`, validate.BodyField("x").Type(validate.UUIDList, "m"), false},
		{"date only", `{"x": "2026-04-01"}`, validate.BodyField("x").Type(validate.Time, "m"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := validate.Check(jsonRequest(t, http.MethodPost, "/", tt.body), tt.rule)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Len(t, violations(t, err), 1)
			}
		})
	}
}

func TestCheck_MalformedBody(t *testing.T) {
	t.Parallel()

	_, err := validate.Check(jsonRequest(t, http.MethodPost, "/", `{"title":`), propertyRules()...)
	got := violations(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "body", got[0].Field)
}

func TestCheck_BodyRemainsReadable(t *testing.T) {
	t.Parallel()

	req := jsonRequest(t, http.MethodPost, "/", `{"title": "Loft", "price": 10}`)
	req, err := validate.Check(req, propertyRules()...)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
	assert.Equal(t, "Loft", body["title"])
}

func TestCheck_FormBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("title=Loft&price=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := validate.Check(req, propertyRules()...)
	got := violations(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "price", got[0].Field)
	assert.Equal(t, "price", got[1].Field)
}

// ---------------------------------------------------------------------------
// Pipeline middleware
// ---------------------------------------------------------------------------

func TestPipeline_Validate(t *testing.T) {
	t.Parallel()

	pipe := validate.New(respond.New(false))
	reached := false
	h := pipe.Validate(propertyRules()...)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/", `{"price": 2000000}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, reached)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.Len(t, env.Details.Errors, 2)
	assert.Equal(t, "title", env.Details.Errors[0].Field)
	assert.Equal(t, "price", env.Details.Errors[1].Field)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/", `{"title": "Loft", "price": 900}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, reached)
}

func TestPipeline_AttachedRulesLaterWins(t *testing.T) {
	t.Parallel()

	pipe := validate.New(respond.New(false))
	title := validate.BodyField("title")
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	h := validate.Attach(title.Length(10, 100, "route rule"))(
		validate.Attach(title.Length(1, 100, "controller rule"), validate.BodyField("price").Required("Price is required"))(
			pipe.Validate()(ok)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/", `{"title": "Loft"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Details.Errors, 1, "route rule for title was replaced")
	assert.Equal(t, "price", env.Details.Errors[0].Field)
}

func TestPipeline_NoRulesPassesThrough(t *testing.T) {
	t.Parallel()

	pipe := validate.New(respond.New(false))
	rec := httptest.NewRecorder()
	pipe.Validate()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/", `not json`))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
