// Package value describes the kinds of values a property animation can carry.
package value

import (
	"fmt"
	"reflect"
)

// Kind is the semantic category of an animated value.
type Kind uint8

const (
	Invalid Kind = iota
	Int
	Float
	Double
	Other
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	case Other:
		return "other"
	}
	return "invalid"
}

// Numeric reports whether values of this kind can be interpolated by a built-in evaluator.
func (k Kind) Numeric() bool {
	return k == Int || k == Float || k == Double
}

// ParseKind reads a kind from its configuration name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int", "integer":
		return Int, nil
	case "float":
		return Float, nil
	case "double":
		return Double, nil
	case "other", "object":
		return Other, nil
	}
	return Invalid, fmt.Errorf("unknown value kind %q", s)
}

// KindOf classifies a runtime value. int64 values map to Int, the same way long values
// are animated through the integer path.
func KindOf(v any) Kind {
	if v == nil {
		return Invalid
	}
	return KindOfType(reflect.TypeOf(v))
}

// KindOfType classifies a static type, such as a getter's result type.
func KindOfType(t reflect.Type) Kind {
	if t == nil {
		return Invalid
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32:
		return Float
	case reflect.Float64:
		return Double
	}
	return Other
}

// Float64 widens a numeric value.
func Float64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
