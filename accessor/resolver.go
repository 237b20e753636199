package accessor

import (
	"fmt"
	"reflect"
	"sync"
)

// A Resolver finds the function implementing member on owner. Setters are looked up
// with the parameter type they must accept, getters with a nil param. The returned
// function takes the receiver as its first argument.
type Resolver interface {
	Lookup(owner reflect.Type, member string, param reflect.Type) (reflect.Value, bool)
}

// ReflectResolver finds accessors in the method set of the target type.
type ReflectResolver struct{}

func (ReflectResolver) Lookup(owner reflect.Type, member string, param reflect.Type) (reflect.Value, bool) {
	method, ok := owner.MethodByName(member)
	if !ok {
		return reflect.Value{}, false
	}

	// method types include the receiver
	ty := method.Type
	if param == nil {
		if ty.NumIn() != 1 || ty.NumOut() != 1 {
			return reflect.Value{}, false
		}
		return method.Func, true
	}

	if ty.NumIn() != 2 || ty.In(1) != param {
		return reflect.Value{}, false
	}

	return method.Func, true
}

type registryKey struct {
	owner  reflect.Type
	member string
}

// Registry resolves accessors that were registered explicitly, for targets that do not
// follow the method naming convention. A setter may be registered for more than one
// parameter type; the variant search decides which one is used.
type Registry struct {
	mu      sync.RWMutex
	members map[registryKey][]reflect.Value
}

func NewRegistry() *Registry {
	r := new(Registry)
	r.members = make(map[registryKey][]reflect.Value)
	return r
}

// Register adds fn as the accessor for property. The first argument of fn is the target.
func (r *Registry) Register(property string, role Role, fn any) error {
	rv := reflect.ValueOf(fn)
	if err := checkFunc(rv, role); err != nil {
		return fmt.Errorf("register %s %s: %w", property, role, err)
	}

	key := registryKey{
		owner:  rv.Type().In(0),
		member: MemberName(role.Prefix(), property),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[key] = append(r.members[key], rv)
	return nil
}

func (r *Registry) Lookup(owner reflect.Type, member string, param reflect.Type) (reflect.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, fn := range r.members[registryKey{owner, member}] {
		ty := fn.Type()
		if param == nil && ty.NumIn() == 1 {
			return fn, true
		}

		if param != nil && ty.NumIn() == 2 && ty.In(1) == param {
			return fn, true
		}
	}

	return reflect.Value{}, false
}

// RegisterGetter is a typed shortcut for Registry.Register.
func RegisterGetter[T, V any](r *Registry, property string, get func(T) V) {
	_ = r.Register(property, Getter, get)
}

// RegisterSetter is a typed shortcut for Registry.Register.
func RegisterSetter[T, V any](r *Registry, property string, set func(T, V)) {
	_ = r.Register(property, Setter, set)
}

// Resolvers tries each resolver in turn.
type Resolvers []Resolver

func (rs Resolvers) Lookup(owner reflect.Type, member string, param reflect.Type) (reflect.Value, bool) {
	for _, r := range rs {
		if fn, ok := r.Lookup(owner, member, param); ok {
			return fn, true
		}
	}
	return reflect.Value{}, false
}
