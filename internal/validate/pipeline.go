package validate

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/postpata/pata/internal/apperr"
)

// ErrorWriter renders a failure. The error translator satisfies it.
type ErrorWriter interface {
	Error(w http.ResponseWriter, r *http.Request, err error)
}

// Pipeline builds validation middleware.
type Pipeline struct {
	errs ErrorWriter
}

func New(errs ErrorWriter) *Pipeline {
	return &Pipeline{errs: errs}
}

// Validate checks the request against rules. With no rules it falls back to
// the set stored by Attach; with neither it passes the request through.
func (p *Pipeline) Validate(rules ...FieldRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			active := rules
			if len(active) == 0 {
				active = Attached(r.Context())
			}
			r, err := Check(r, active...)
			if err != nil {
				p.errs.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Attach stores rules on the request for a later Validate with no rules of
// its own. Successive sets merge; a later set replaces every earlier rule for
// the same field and location.
func Attach(rules ...FieldRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			merged := merge(Attached(r.Context()), rules)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), attachedKey, merged)))
		})
	}
}

// Attached returns the rules stored by Attach.
func Attached(ctx context.Context) []FieldRule {
	rules, _ := ctx.Value(attachedKey).([]FieldRule)
	return rules
}

func merge(base, over []FieldRule) []FieldRule {
	replaced := make(map[fieldKey]struct{}, len(over))
	for _, r := range over {
		replaced[r.key()] = struct{}{}
	}
	out := make([]FieldRule, 0, len(base)+len(over))
	for _, r := range base {
		if _, ok := replaced[r.key()]; !ok {
			out = append(out, r)
		}
	}
	return append(out, over...)
}

type outcome struct {
	violation *apperr.Violation
	value     any
	coerced   bool
}

// Check evaluates rules concurrently and returns the request carrying the
// coerced values. The error lists every violation in rule order.
func Check(r *http.Request, rules ...FieldRule) (*http.Request, error) {
	if len(rules) == 0 {
		return r, nil
	}

	snap, err := takeSnapshot(r)
	if errors.Is(err, errMalformedBody) {
		return r, apperr.Validation([]apperr.Violation{{
			Field: "body", Location: string(Body), Message: "Malformed request body",
		}})
	}
	if err != nil {
		return r, apperr.Wrap(apperr.Internal, err, "Failed to read request")
	}

	results := make([]outcome, len(rules))
	g, _ := errgroup.WithContext(r.Context())
	for i, rule := range rules {
		g.Go(func() error {
			results[i] = evaluate(snap, rule)
			return nil
		})
	}
	_ = g.Wait()

	var violations []apperr.Violation
	values := make(map[fieldKey]any)
	for i, res := range results {
		if res.violation != nil {
			violations = append(violations, *res.violation)
			continue
		}
		if res.coerced {
			values[rules[i].key()] = res.value
		}
	}

	r = r.WithContext(withValues(r.Context(), values))
	if len(violations) > 0 {
		return r, apperr.Validation(violations)
	}
	return r, nil
}

func evaluate(s *snapshot, rule FieldRule) outcome {
	v, present := s.lookup(rule.Location, rule.Field)
	fail := outcome{violation: &apperr.Violation{
		Field: rule.Field, Location: string(rule.Location), Message: rule.Message,
	}}

	if rule.Kind == KindRequired {
		if !present || absent(v) {
			return fail
		}
		return outcome{}
	}
	if !present {
		return outcome{}
	}

	switch rule.Kind {
	case KindType:
		c, err := coerce(v, rule.typ)
		if err != nil {
			return fail
		}
		return outcome{value: c, coerced: true}

	case KindRange:
		var n float64
		if rule.measure == measureLength {
			l, ok := length(v)
			if !ok {
				return fail
			}
			n = float64(l)
		} else {
			f, ok := toFloat(v)
			if !ok {
				return fail
			}
			n = f
		}
		if n < rule.min || n > rule.max {
			return fail
		}

	case KindPattern:
		str, ok := scalarString(v)
		if !ok || !rule.pattern.MatchString(str) {
			return fail
		}

	case KindCustom:
		if !rule.check(v) {
			return fail
		}
	}
	return outcome{}
}
