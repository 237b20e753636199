package animator

import (
	"fmt"
	"math"
	"sort"

	"github.com/matt-g-everett/ledanim/value"
)

// A KeyframeSet is the ordered sequence of keyframes of one property, spanning the
// fractions 0 to 1.
type KeyframeSet struct {
	keyframes []*Keyframe
	kind      value.Kind
}

// NewKeyframeSet validates the keyframes and takes ownership of them. When the first
// keyframe is after 0 or the last one before 1, an empty keyframe is added at that end
// so its value can be read from the target.
func NewKeyframeSet(keyframes ...*Keyframe) (*KeyframeSet, error) {
	if len(keyframes) == 0 {
		return nil, ErrNoKeyframes
	}

	kind := value.Invalid
	for _, kf := range keyframes {
		if kf == nil {
			return nil, fmt.Errorf("nil keyframe: %w", ErrNoKeyframes)
		}
		if kind == value.Invalid {
			kind = kf.Kind()
		}
	}

	kfs := make([]*Keyframe, 0, len(keyframes)+2)
	if keyframes[0].Fraction() > 0 {
		kfs = append(kfs, NewEmptyKeyframe(0, kind))
	}
	kfs = append(kfs, keyframes...)
	if keyframes[len(keyframes)-1].Fraction() < 1 {
		kfs = append(kfs, NewEmptyKeyframe(1, kind))
	}

	prev := 0.0
	for idx, kf := range kfs {
		f := kf.Fraction()
		if math.IsNaN(f) || f < 0 || f > 1 || f < prev {
			return nil, fmt.Errorf("keyframe %d at %g: %w", idx, f, ErrInvalidFraction)
		}
		prev = f

		inner := idx > 0 && idx < len(kfs)-1
		if inner && !kf.HasValue() {
			return nil, fmt.Errorf("keyframe %d at %g: %w", idx, f, ErrMissingValue)
		}
	}

	ks := new(KeyframeSet)
	ks.keyframes = kfs
	ks.kind = kind
	return ks, nil
}

// ofValues spaces values uniformly. A single value becomes the end keyframe after an
// empty start keyframe.
func ofValues[T any](kind value.Kind, values []T) (*KeyframeSet, error) {
	if len(values) == 0 {
		return nil, ErrNoKeyframes
	}

	if len(values) == 1 {
		return NewKeyframeSet(NewEmptyKeyframe(0, kind), NewKeyframe(1, values[0]))
	}

	kfs := make([]*Keyframe, len(values))
	last := len(values) - 1
	for idx, v := range values {
		fraction := float64(idx) / float64(last)
		if idx == last {
			fraction = 1
		}
		kfs[idx] = NewKeyframe(fraction, v)
	}

	return NewKeyframeSet(kfs...)
}

func IntKeyframeSet(values ...int) (*KeyframeSet, error) {
	return ofValues(value.Int, values)
}

// Int64KeyframeSet animates 64 bit values through the integer kind.
func Int64KeyframeSet(values ...int64) (*KeyframeSet, error) {
	ints := make([]int, len(values))
	for idx, v := range values {
		ints[idx] = int(v)
	}
	return ofValues(value.Int, ints)
}

func FloatKeyframeSet(values ...float32) (*KeyframeSet, error) {
	return ofValues(value.Float, values)
}

func DoubleKeyframeSet(values ...float64) (*KeyframeSet, error) {
	return ofValues(value.Double, values)
}

// ObjectKeyframeSet builds a set of arbitrary values, which need an explicit evaluator.
func ObjectKeyframeSet(values ...any) (*KeyframeSet, error) {
	for _, v := range values {
		if v == nil {
			return nil, fmt.Errorf("nil object value: %w", ErrMissingValue)
		}
	}

	kind := value.Invalid
	if len(values) > 0 {
		kind = value.KindOf(values[0])
	}
	return ofValues(kind, values)
}

// ValueAt returns the value at the given overall fraction. Fractions at or beyond the
// ends return the end values verbatim. A fraction equal to a keyframe's fraction returns
// that keyframe's value, the later one if several share it.
func (ks *KeyframeSet) ValueAt(fraction float64, eval Evaluator) (any, error) {
	first := ks.keyframes[0]
	last := ks.keyframes[len(ks.keyframes)-1]

	if math.IsNaN(fraction) {
		return nil, fmt.Errorf("value at %g: %w", fraction, ErrInvalidFraction)
	}

	if fraction <= 0 {
		return valueOf(first)
	}

	if fraction >= 1 {
		return valueOf(last)
	}

	// first keyframe after fraction; exists as the last one is at 1
	idx := sort.Search(len(ks.keyframes), func(i int) bool {
		return ks.keyframes[i].Fraction() > fraction
	})

	prev := ks.keyframes[idx-1]
	next := ks.keyframes[idx]

	if prev.Fraction() == fraction {
		return valueOf(prev)
	}

	if next.Fraction() == prev.Fraction() {
		return valueOf(next)
	}

	start, err := valueOf(prev)
	if err != nil {
		return nil, err
	}

	end, err := valueOf(next)
	if err != nil {
		return nil, err
	}

	if eval == nil {
		return nil, fmt.Errorf("%s: %w", ks.kind, ErrNoEvaluator)
	}

	local := (fraction - prev.Fraction()) / (next.Fraction() - prev.Fraction())
	if interpolator := next.Interpolator(); interpolator != nil {
		local = interpolator(local)
	}

	return eval.Evaluate(local, start, end), nil
}

func valueOf(kf *Keyframe) (any, error) {
	v, ok := kf.Value()
	if !ok {
		return nil, fmt.Errorf("at fraction %g: %w", kf.Fraction(), ErrMissingValue)
	}
	return v, nil
}

// Kind is the kind of the first keyframe that had a value or a declared kind.
func (ks *KeyframeSet) Kind() value.Kind {
	return ks.kind
}

func (ks *KeyframeSet) Len() int {
	return len(ks.keyframes)
}

func (ks *KeyframeSet) Keyframe(i int) *Keyframe {
	return ks.keyframes[i]
}

// Keyframes returns the keyframes in order. The slice is a copy, the keyframes are not.
func (ks *KeyframeSet) Keyframes() []*Keyframe {
	out := make([]*Keyframe, len(ks.keyframes))
	copy(out, ks.keyframes)
	return out
}

// Clone deep copies the set.
func (ks *KeyframeSet) Clone() *KeyframeSet {
	c := new(KeyframeSet)
	c.kind = ks.kind
	c.keyframes = make([]*Keyframe, len(ks.keyframes))
	for idx, kf := range ks.keyframes {
		c.keyframes[idx] = kf.Clone()
	}
	return c
}
