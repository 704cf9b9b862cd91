package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// scalarString returns the textual form of a scalar value.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	default:
		return "", false
	}
}

func absent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func length(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(strings.TrimSpace(x)), true
	case []any:
		return len(x), true
	default:
		return 0, false
	}
}

// coerce converts a raw request value to t.
func coerce(v any, t ValueType) (any, error) {
	switch t {
	case String:
		s, ok := scalarString(v)
		if !ok {
			return nil, fmt.Errorf("not a string: %T", v)
		}
		return strings.TrimSpace(s), nil

	case Int:
		if n, ok := v.(json.Number); ok {
			return strconv.Atoi(n.String())
		}
		if f, ok := v.(float64); ok {
			if f != float64(int(f)) {
				return nil, fmt.Errorf("not an integer: %v", f)
			}
			return int(f), nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("not an integer: %T", v)
		}
		return strconv.Atoi(strings.TrimSpace(s))

	case Float:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("not a number: %v", v)
		}
		return f, nil

	case Decimal:
		s, ok := scalarString(v)
		if !ok {
			return nil, fmt.Errorf("not a number: %T", v)
		}
		return decimal.NewFromString(strings.TrimSpace(s))

	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("not a boolean: %T", v)
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("not a boolean: %q", s)

	case UUID:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("not a uuid: %T", v)
		}
		return uuid.Parse(strings.TrimSpace(s))

	case UUIDList:
		var items []any
		switch x := v.(type) {
		case []any:
			items = x
		case string:
			items = []any{x}
		default:
			return nil, fmt.Errorf("not a list: %T", v)
		}
		ids := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("not a uuid: %T", it)
			}
			id, err := uuid.Parse(strings.TrimSpace(s))
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil

	case Time:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("not a time: %T", v)
		}
		s = strings.TrimSpace(s)
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts, nil
		}
		return time.Parse(time.DateOnly, s)

	default:
		return nil, fmt.Errorf("unknown value type %d", t)
	}
}

// ToDecimal coerces a raw request value to a decimal. Custom rules use it to
// inspect numeric fields.
func ToDecimal(v any) (decimal.Decimal, error) {
	d, err := coerce(v, Decimal)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.(decimal.Decimal), nil
}
