package validate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type contextKey string

const (
	valuesKey   contextKey = "validated_values"
	attachedKey contextKey = "attached_rules"
)

// Values holds the coerced results of Type rules for one request.
type Values struct {
	m map[fieldKey]any
}

// ValuesFrom returns the coerced values stored on ctx. It never returns nil.
func ValuesFrom(ctx context.Context) *Values {
	if v, ok := ctx.Value(valuesKey).(*Values); ok {
		return v
	}
	return &Values{m: map[fieldKey]any{}}
}

func withValues(ctx context.Context, add map[fieldKey]any) context.Context {
	prev := ValuesFrom(ctx)
	merged := make(map[fieldKey]any, len(prev.m)+len(add))
	for k, v := range prev.m {
		merged[k] = v
	}
	for k, v := range add {
		merged[k] = v
	}
	return context.WithValue(ctx, valuesKey, &Values{m: merged})
}

func (v *Values) Get(loc Location, field string) (any, bool) {
	x, ok := v.m[fieldKey{loc, field}]
	return x, ok
}

func (v *Values) String(loc Location, field string) (string, bool) {
	x, ok := v.Get(loc, field)
	s, ok2 := x.(string)
	return s, ok && ok2
}

func (v *Values) Int(loc Location, field string) (int, bool) {
	x, ok := v.Get(loc, field)
	n, ok2 := x.(int)
	return n, ok && ok2
}

func (v *Values) Float(loc Location, field string) (float64, bool) {
	x, ok := v.Get(loc, field)
	f, ok2 := x.(float64)
	return f, ok && ok2
}

func (v *Values) Decimal(loc Location, field string) (decimal.Decimal, bool) {
	x, ok := v.Get(loc, field)
	d, ok2 := x.(decimal.Decimal)
	return d, ok && ok2
}

func (v *Values) Bool(loc Location, field string) (bool, bool) {
	x, ok := v.Get(loc, field)
	b, ok2 := x.(bool)
	return b, ok && ok2
}

func (v *Values) UUID(loc Location, field string) (uuid.UUID, bool) {
	x, ok := v.Get(loc, field)
	id, ok2 := x.(uuid.UUID)
	return id, ok && ok2
}

func (v *Values) UUIDs(loc Location, field string) ([]uuid.UUID, bool) {
	x, ok := v.Get(loc, field)
	ids, ok2 := x.([]uuid.UUID)
	return ids, ok && ok2
}

func (v *Values) Time(loc Location, field string) (time.Time, bool) {
	x, ok := v.Get(loc, field)
	ts, ok2 := x.(time.Time)
	return ts, ok && ok2
}
