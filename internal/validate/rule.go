// Package validate evaluates declarative field rules against an incoming
// request and reports every failure at once.
package validate

import (
	"math"
	"regexp"
)

// Location is the part of the request a field is read from.
type Location string

const (
	Body  Location = "body"
	Query Location = "query"
	Path  Location = "path"
)

// RuleKind tags the variant of a FieldRule.
type RuleKind int

const (
	KindRequired RuleKind = iota
	KindType
	KindRange
	KindPattern
	KindCustom
)

// ValueType is the target of a Type rule's coercion.
type ValueType int

const (
	String ValueType = iota
	Int
	Float
	Decimal
	Bool
	UUID
	UUIDList
	Time
)

// measure selects what a Range rule bounds.
type measure int

const (
	measureValue measure = iota
	measureLength
)

// FieldRule is one check against one field. Every kind except KindRequired
// passes when the field is absent.
type FieldRule struct {
	Location Location
	Field    string
	Kind     RuleKind
	Message  string

	typ      ValueType
	min, max float64
	measure  measure
	pattern  *regexp.Regexp
	check    func(v any) bool
}

type fieldKey struct {
	loc   Location
	field string
}

func (fr FieldRule) key() fieldKey { return fieldKey{fr.Location, fr.Field} }

// Field names a request field. Use its methods to build rules.
type Field struct {
	loc  Location
	name string
}

func BodyField(name string) Field  { return Field{Body, name} }
func QueryField(name string) Field { return Field{Query, name} }
func PathField(name string) Field  { return Field{Path, name} }

func (f Field) rule(kind RuleKind, msg string) FieldRule {
	return FieldRule{Location: f.loc, Field: f.name, Kind: kind, Message: msg}
}

// Required fails when the field is missing, null or blank.
func (f Field) Required(msg string) FieldRule {
	return f.rule(KindRequired, msg)
}

// Type fails when the value cannot be coerced to t. The coerced value is
// published through ValuesFrom.
func (f Field) Type(t ValueType, msg string) FieldRule {
	r := f.rule(KindType, msg)
	r.typ = t
	return r
}

// Range bounds a numeric value, inclusive on both ends. Numeric strings are
// accepted.
func (f Field) Range(lo, hi float64, msg string) FieldRule {
	r := f.rule(KindRange, msg)
	r.min, r.max = lo, hi
	return r
}

// Min is a Range with no upper bound.
func (f Field) Min(lo float64, msg string) FieldRule {
	return f.Range(lo, math.Inf(1), msg)
}

// Length bounds the rune length of a string or the size of a list.
func (f Field) Length(lo, hi int, msg string) FieldRule {
	r := f.rule(KindRange, msg)
	r.min, r.max = float64(lo), float64(hi)
	r.measure = measureLength
	return r
}

// Pattern fails when the string form of the value does not match re.
func (f Field) Pattern(re *regexp.Regexp, msg string) FieldRule {
	r := f.rule(KindPattern, msg)
	r.pattern = re
	return r
}

// Custom fails when fn returns false. fn receives the raw value.
func (f Field) Custom(fn func(v any) bool, msg string) FieldRule {
	r := f.rule(KindCustom, msg)
	r.check = fn
	return r
}

// OneOf is a Custom rule accepting only the listed string values.
func (f Field) OneOf(allowed []string, msg string) FieldRule {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return f.Custom(func(v any) bool {
		s, ok := scalarString(v)
		if !ok {
			return false
		}
		_, ok = set[s]
		return ok
	}, msg)
}
