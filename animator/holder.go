package animator

import (
	"fmt"
	"reflect"

	"github.com/go-logr/logr"

	"github.com/matt-g-everett/ledanim/accessor"
	"github.com/matt-g-everett/ledanim/value"
)

// A Holder animates one named property. It owns the property's keyframes and, once
// bound to a target, the accessors used to read and write the property on it.
//
// A driver binds the holder and fills missing keyframe values once per run, then calls
// ComputeValue and ApplyValue every frame. A Holder is not safe for concurrent use; only
// its accessor cache is shared.
type Holder struct {
	propertyName string
	kind         value.Kind
	valueType    reflect.Type
	keyframes    *KeyframeSet

	evaluator         Evaluator
	explicitEvaluator bool

	setter         *accessor.Accessor
	getter         *accessor.Accessor
	explicitSetter bool
	explicitGetter bool
	boundType      reflect.Type

	animatedValue any

	cache  *accessor.Cache
	logger logr.Logger
}

func newHolder(propertyName string) *Holder {
	h := new(Holder)
	h.propertyName = propertyName
	h.cache = accessor.Default
	h.logger = logr.Discard()
	return h
}

func OfInts(propertyName string, values ...int) (*Holder, error) {
	h := newHolder(propertyName)
	if err := h.SetIntValues(values...); err != nil {
		return nil, err
	}
	return h, nil
}

func OfInt64s(propertyName string, values ...int64) (*Holder, error) {
	h := newHolder(propertyName)
	if err := h.SetInt64Values(values...); err != nil {
		return nil, err
	}
	return h, nil
}

func OfFloats(propertyName string, values ...float32) (*Holder, error) {
	h := newHolder(propertyName)
	if err := h.SetFloatValues(values...); err != nil {
		return nil, err
	}
	return h, nil
}

func OfDoubles(propertyName string, values ...float64) (*Holder, error) {
	h := newHolder(propertyName)
	if err := h.SetDoubleValues(values...); err != nil {
		return nil, err
	}
	return h, nil
}

// OfObjects animates values of any kind with the given evaluator, which is required.
func OfObjects(propertyName string, evaluator Evaluator, values ...any) (*Holder, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("property %q: %w", propertyName, ErrNoEvaluator)
	}

	h := newHolder(propertyName)
	h.SetEvaluator(evaluator)
	if err := h.SetObjectValues(values...); err != nil {
		return nil, err
	}
	return h, nil
}

// OfKeyframes takes ownership of the given keyframes. Keyframes of a non numeric kind
// need an evaluator set before the holder is bound.
func OfKeyframes(propertyName string, keyframes ...*Keyframe) (*Holder, error) {
	h := newHolder(propertyName)
	if err := h.SetKeyframes(keyframes...); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Holder) SetIntValues(values ...int) error {
	return h.setKeyframeSet(IntKeyframeSet(values...))
}

func (h *Holder) SetInt64Values(values ...int64) error {
	return h.setKeyframeSet(Int64KeyframeSet(values...))
}

func (h *Holder) SetFloatValues(values ...float32) error {
	return h.setKeyframeSet(FloatKeyframeSet(values...))
}

func (h *Holder) SetDoubleValues(values ...float64) error {
	return h.setKeyframeSet(DoubleKeyframeSet(values...))
}

func (h *Holder) SetObjectValues(values ...any) error {
	return h.setKeyframeSet(ObjectKeyframeSet(values...))
}

func (h *Holder) SetKeyframes(keyframes ...*Keyframe) error {
	return h.setKeyframeSet(NewKeyframeSet(keyframes...))
}

func (h *Holder) setKeyframeSet(ks *KeyframeSet, err error) error {
	if err != nil {
		return fmt.Errorf("property %q: %w", h.propertyName, err)
	}

	h.keyframes = ks
	h.kind = ks.Kind()
	h.valueType = nil
	for _, kf := range ks.keyframes {
		if v, ok := kf.Value(); ok {
			h.valueType = reflect.TypeOf(v)
			break
		}
	}

	if !h.explicitEvaluator {
		h.evaluator = nil
	}

	return nil
}

// BindTarget prepares the holder to animate target. Unless a setter was set explicitly,
// one is resolved for the target's type; when none exists the holder only computes
// values. The returned error reports configuration problems only.
func (h *Holder) BindTarget(target any) error {
	if target == nil {
		return fmt.Errorf("property %q: %w", h.propertyName, ErrNilTarget)
	}

	ty := reflect.TypeOf(target)
	h.retarget(ty)

	if h.setter == nil && !h.explicitSetter {
		setter, err := h.cache.Resolve(ty, h.propertyName, accessor.Setter, h.kind, h.valueType)
		if err != nil {
			h.logger.Error(err, "property will not be written", "property", h.propertyName, "type", ty.String())
		} else {
			h.setter = setter
			h.adoptKind(setter.Kind)
		}
	}

	return h.initEvaluator()
}

// FillMissingKeyframeValues reads the current value of the property from target into
// every keyframe that has none. It must run before the first ComputeValue of a run.
func (h *Holder) FillMissingKeyframeValues(target any) {
	for _, kf := range h.keyframes.keyframes {
		if kf.HasValue() {
			continue
		}

		getter := h.resolveGetter(target)
		if getter == nil {
			return
		}

		v, err := getter.Get(target)
		if err != nil {
			h.logger.Error(err, "reading start value", "property", h.propertyName)
			continue
		}

		if err := kf.SetValue(v); err != nil {
			h.logger.Error(err, "filling keyframe", "property", h.propertyName, "fraction", kf.Fraction())
		}
	}
}

// ComputeValue evaluates the keyframes at fraction and records the result as the
// animated value. It does not touch any target.
func (h *Holder) ComputeValue(fraction float64) (any, error) {
	if err := h.initEvaluator(); err != nil {
		return nil, err
	}

	v, err := h.keyframes.ValueAt(fraction, h.evaluator)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", h.propertyName, err)
	}

	h.animatedValue = v
	return v, nil
}

// ApplyValue writes the last computed value to target. Without a setter, or before a
// value was computed, this does nothing.
func (h *Holder) ApplyValue(target any) {
	if h.setter == nil || h.animatedValue == nil {
		return
	}

	if err := h.setter.Set(target, h.animatedValue); err != nil {
		h.logger.Error(err, "writing animated value", "property", h.propertyName)
	}
}

// AnimatedValue is the result of the last ComputeValue, or nil.
func (h *Holder) AnimatedValue() any {
	return h.animatedValue
}

// retarget forgets resolved accessors when the target type changes.
func (h *Holder) retarget(ty reflect.Type) {
	if ty == h.boundType {
		return
	}

	if !h.explicitSetter {
		h.setter = nil
	}
	if !h.explicitGetter {
		h.getter = nil
	}
	h.boundType = ty
}

func (h *Holder) resolveGetter(target any) *accessor.Accessor {
	if target == nil {
		h.logger.Error(ErrNilTarget, "reading start value", "property", h.propertyName)
		return nil
	}

	h.retarget(reflect.TypeOf(target))
	if h.getter != nil {
		return h.getter
	}

	getter, err := h.cache.Resolve(h.boundType, h.propertyName, accessor.Getter, value.Invalid, nil)
	if err != nil {
		h.logger.Error(err, "start value stays unset", "property", h.propertyName, "type", h.boundType.String())
		return nil
	}

	h.getter = getter
	return getter
}

// adoptKind switches to the kind of the setter variant that was found.
func (h *Holder) adoptKind(kind value.Kind) {
	if kind == value.Invalid || kind == h.kind {
		return
	}

	h.logger.V(1).Info("value kind changed by setter", "property", h.propertyName, "from", h.kind.String(), "to", kind.String())
	h.kind = kind
	if !h.explicitEvaluator {
		h.evaluator = nil
	}
}

func (h *Holder) initEvaluator() error {
	if h.evaluator != nil {
		return nil
	}

	evaluator, err := DefaultEvaluator(h.kind)
	if err != nil {
		return fmt.Errorf("property %q: %w", h.propertyName, err)
	}

	h.evaluator = evaluator
	return nil
}

// SetEvaluator overrides the evaluator. nil restores the default for numeric kinds.
func (h *Holder) SetEvaluator(evaluator Evaluator) {
	h.evaluator = evaluator
	h.explicitEvaluator = evaluator != nil
}

func (h *Holder) Evaluator() Evaluator {
	return h.evaluator
}

// SetPropertyName renames the property. Accessors that were resolved for the old name
// are dropped.
func (h *Holder) SetPropertyName(propertyName string) {
	if propertyName == h.propertyName {
		return
	}

	h.propertyName = propertyName
	h.boundType = nil
	if !h.explicitSetter {
		h.setter = nil
	}
	if !h.explicitGetter {
		h.getter = nil
	}
}

func (h *Holder) PropertyName() string {
	return h.propertyName
}

// SetSetter overrides setter resolution. nil re-enables it.
func (h *Holder) SetSetter(setter *accessor.Accessor) {
	h.setter = setter
	h.explicitSetter = setter != nil
}

func (h *Holder) Setter() *accessor.Accessor {
	return h.setter
}

// SetGetter overrides getter resolution. nil re-enables it.
func (h *Holder) SetGetter(getter *accessor.Accessor) {
	h.getter = getter
	h.explicitGetter = getter != nil
}

func (h *Holder) Getter() *accessor.Accessor {
	return h.getter
}

// SetCache sets the accessor cache used for resolution. It defaults to accessor.Default.
func (h *Holder) SetCache(cache *accessor.Cache) {
	if cache != nil {
		h.cache = cache
	}
}

func (h *Holder) SetLogger(logger logr.Logger) {
	h.logger = logger
}

func (h *Holder) Kind() value.Kind {
	return h.kind
}

func (h *Holder) Keyframes() *KeyframeSet {
	return h.keyframes
}

// Clone returns a holder with its own copy of the keyframes and the same name, evaluator
// and accessors. Resolved accessors are immutable and shared.
func (h *Holder) Clone() *Holder {
	c := *h
	c.keyframes = h.keyframes.Clone()
	c.animatedValue = nil
	return &c
}
