// Package animator computes animated property values from keyframes and writes them
// to targets through resolved accessors.
package animator

import (
	"fmt"

	"github.com/matt-g-everett/ledanim/value"
)

// An Interpolator remaps the progress within a keyframe segment. The functions of
// github.com/fogleman/ease can be used directly.
type Interpolator func(t float64) float64

// A Keyframe is a fraction/value pair. Only the first and last keyframe of a set may be
// created without a value; it is filled from the target before the animation starts.
type Keyframe struct {
	fraction     float64
	value        any
	hasValue     bool
	kind         value.Kind
	interpolator Interpolator
}

// NewKeyframe creates a keyframe holding v at the given fraction.
func NewKeyframe(fraction float64, v any) *Keyframe {
	k := new(Keyframe)
	k.fraction = fraction
	k.value = v
	k.hasValue = v != nil
	k.kind = value.KindOf(v)
	return k
}

// NewEmptyKeyframe creates a keyframe of the given kind that has no value yet.
func NewEmptyKeyframe(fraction float64, kind value.Kind) *Keyframe {
	k := new(Keyframe)
	k.fraction = fraction
	k.kind = kind
	return k
}

func IntKeyframe(fraction float64, v int) *Keyframe { return NewKeyframe(fraction, v) }

func FloatKeyframe(fraction float64, v float32) *Keyframe { return NewKeyframe(fraction, v) }

func DoubleKeyframe(fraction float64, v float64) *Keyframe { return NewKeyframe(fraction, v) }

func (k *Keyframe) Fraction() float64 {
	return k.fraction
}

// Value returns the keyframe's value and whether it has one.
func (k *Keyframe) Value() (any, bool) {
	return k.value, k.hasValue
}

func (k *Keyframe) HasValue() bool {
	return k.hasValue
}

func (k *Keyframe) Kind() value.Kind {
	return k.kind
}

// SetValue fills a keyframe that has no value yet.
func (k *Keyframe) SetValue(v any) error {
	if k.hasValue {
		return fmt.Errorf("at fraction %g: %w", k.fraction, ErrValueAlreadySet)
	}

	if v == nil {
		return fmt.Errorf("at fraction %g: nil value: %w", k.fraction, ErrMissingValue)
	}

	k.value = v
	k.hasValue = true
	if k.kind == value.Invalid {
		k.kind = value.KindOf(v)
	}
	return nil
}

// Interpolator returns the progress remapping for the segment ending at this keyframe,
// or nil for linear progress.
func (k *Keyframe) Interpolator() Interpolator {
	return k.interpolator
}

func (k *Keyframe) SetInterpolator(i Interpolator) {
	k.interpolator = i
}

// Clone returns an independent copy. Values are copied shallowly; they are treated as
// immutable once set.
func (k *Keyframe) Clone() *Keyframe {
	c := *k
	return &c
}
