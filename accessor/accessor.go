// Package accessor resolves and caches the functions used to read and write a named
// property on a target. A property named "hue" is read by GetHue and written by SetHue.
package accessor

import (
	"errors"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/matt-g-everett/ledanim/value"
)

var (
	// ErrNotFound is returned, and cached, when no accessor matches a property.
	ErrNotFound = errors.New("accessor not found")

	// ErrInvocation is returned when a resolved accessor fails while being called.
	ErrInvocation = errors.New("accessor invocation failed")

	// ErrMalformed is returned when a function cannot serve as an accessor.
	ErrMalformed = errors.New("malformed accessor function")
)

// Role selects between reading and writing a property.
type Role uint8

const (
	Getter Role = iota
	Setter
)

func (r Role) String() string {
	if r == Setter {
		return "setter"
	}
	return "getter"
}

// Prefix is the member name prefix for the role.
func (r Role) Prefix() string {
	if r == Setter {
		return "Set"
	}
	return "Get"
}

// MemberName derives the member implementing a property for the given prefix.
func MemberName(prefix, property string) string {
	first, size := utf8.DecodeRuneInString(property)
	if first == utf8.RuneError {
		return prefix
	}
	return prefix + string(unicode.ToUpper(first)) + property[size:]
}

// An Accessor is a resolved getter or setter. It is immutable once built and may be
// shared between holders.
type Accessor struct {
	Owner    reflect.Type
	Property string
	Member   string
	Role     Role

	// Kind is the value kind the accessor works with. For setters found through the
	// variant search this is the winning variant's kind.
	Kind value.Kind

	// Param is the setter argument type or the getter result type.
	Param reflect.Type

	fn reflect.Value
}

// Get reads the property from target.
func (a *Accessor) Get(target any) (result any, err error) {
	if a.Role != Getter {
		return nil, fmt.Errorf("%s is a %s: %w", a.Member, a.Role, ErrInvocation)
	}

	recv, err := a.receiver(target)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s.%s: %v: %w", a.Owner, a.Member, r, ErrInvocation)
		}
	}()

	out := a.fn.Call([]reflect.Value{recv})
	return out[0].Interface(), nil
}

// Set writes v to the property of target, converting numeric values to the setter's
// parameter type.
func (a *Accessor) Set(target any, v any) (err error) {
	if a.Role != Setter {
		return fmt.Errorf("%s is a %s: %w", a.Member, a.Role, ErrInvocation)
	}

	recv, err := a.receiver(target)
	if err != nil {
		return err
	}

	arg, err := value.Convert(v, a.Param)
	if err != nil {
		return fmt.Errorf("%s.%s: %w: %w", a.Owner, a.Member, err, ErrInvocation)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s.%s: %v: %w", a.Owner, a.Member, r, ErrInvocation)
		}
	}()

	a.fn.Call([]reflect.Value{recv, arg})
	return nil
}

func (a *Accessor) receiver(target any) (reflect.Value, error) {
	recv := reflect.ValueOf(target)
	if !recv.IsValid() {
		return recv, fmt.Errorf("%s on nil target: %w", a.Member, ErrInvocation)
	}

	if !recv.Type().AssignableTo(a.Owner) {
		return recv, fmt.Errorf("%s bound to %s, target is %s: %w",
			a.Member, a.Owner, recv.Type(), ErrInvocation)
	}

	return recv, nil
}

// NewGetter wraps a typed function as the getter for property on T.
func NewGetter[T, V any](property string, get func(T) V) *Accessor {
	result := reflect.TypeFor[V]()
	return &Accessor{
		Owner:    reflect.TypeFor[T](),
		Property: property,
		Member:   MemberName(Getter.Prefix(), property),
		Role:     Getter,
		Kind:     value.KindOfType(result),
		Param:    result,
		fn:       reflect.ValueOf(get),
	}
}

// NewSetter wraps a typed function as the setter for property on T.
func NewSetter[T, V any](property string, set func(T, V)) *Accessor {
	param := reflect.TypeFor[V]()
	return &Accessor{
		Owner:    reflect.TypeFor[T](),
		Property: property,
		Member:   MemberName(Setter.Prefix(), property),
		Role:     Setter,
		Kind:     value.KindOfType(param),
		Param:    param,
		fn:       reflect.ValueOf(set),
	}
}

// FromFunc builds an accessor from an untyped function whose first argument is the
// target. Getters take no further argument and return the value; setters take the value.
func FromFunc(property string, role Role, fn any) (*Accessor, error) {
	rv := reflect.ValueOf(fn)
	if err := checkFunc(rv, role); err != nil {
		return nil, err
	}

	ty := rv.Type()
	return newAccessor(ty.In(0), property, role, rv, value.Invalid), nil
}

func checkFunc(fn reflect.Value, role Role) error {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return fmt.Errorf("accessor must be a function: %w", ErrMalformed)
	}

	ty := fn.Type()
	switch role {
	case Getter:
		if ty.NumIn() != 1 || ty.NumOut() != 1 {
			return fmt.Errorf("getter must be func(target) value, got %s: %w", ty, ErrMalformed)
		}
	case Setter:
		if ty.NumIn() != 2 {
			return fmt.Errorf("setter must be func(target, value), got %s: %w", ty, ErrMalformed)
		}
	}

	return nil
}

// newAccessor wraps fn, whose first argument is the receiver. A zero kind is derived
// from the parameter type.
func newAccessor(owner reflect.Type, property string, role Role, fn reflect.Value, kind value.Kind) *Accessor {
	var param reflect.Type
	if role == Setter {
		param = fn.Type().In(1)
	} else {
		param = fn.Type().Out(0)
	}

	if kind == value.Invalid {
		kind = value.KindOfType(param)
	}

	return &Accessor{
		Owner:    owner,
		Property: property,
		Member:   MemberName(role.Prefix(), property),
		Role:     role,
		Kind:     kind,
		Param:    param,
		fn:       fn,
	}
}
