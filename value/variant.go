package value

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotConvertible is returned when a value cannot be passed as a setter argument.
var ErrNotConvertible = errors.New("value not convertible")

var (
	intType     = reflect.TypeFor[int]()
	float32Type = reflect.TypeFor[float32]()
	float64Type = reflect.TypeFor[float64]()
	anyType     = reflect.TypeFor[any]()
)

// A Variant is one parameter type a setter may be declared with, together with the
// kind the property takes on when that setter is the one found.
type Variant struct {
	Type reflect.Type
	Kind Kind
}

// Boxed variants take the value through an interface parameter.
func (v Variant) Boxed() bool {
	return v.Type != nil && v.Type.Kind() == reflect.Interface
}

// Callers may hand over values in a type that does not match the setter, such as
// integers 0 and 1 for a floating point alpha, so these are tried in order.
var variants = map[Kind][]Variant{
	Float: {
		{float32Type, Float},
		{anyType, Float},
		{float64Type, Double},
		{intType, Int},
		{anyType, Double},
		{anyType, Int},
	},
	Int: {
		{intType, Int},
		{anyType, Int},
		{float32Type, Float},
		{float64Type, Double},
		{anyType, Float},
		{anyType, Double},
	},
	Double: {
		{float64Type, Double},
		{anyType, Double},
		{float32Type, Float},
		{intType, Int},
		{anyType, Float},
		{anyType, Int},
	},
}

// Variants returns the setter parameter types to try for a declared kind, in priority
// order. Other kinds only match their own runtime type.
func Variants(declared Kind, other reflect.Type) []Variant {
	if vs, ok := variants[declared]; ok {
		return vs
	}

	if other == nil {
		return nil
	}
	return []Variant{{other, Other}}
}

// Convert prepares v to be passed as an argument of type t.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil for %s: %w", t, ErrNotConvertible)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		if rv.Type() == t {
			return rv, nil
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}

	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%s to %s: %w", rv.Type(), t, ErrNotConvertible)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
