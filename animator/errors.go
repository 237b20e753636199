package animator

import "errors"

var (
	// ErrNoKeyframes is returned when a keyframe set would be built from nothing.
	ErrNoKeyframes = errors.New("no keyframes")

	// ErrInvalidFraction is returned for fractions outside [0, 1] or out of order.
	ErrInvalidFraction = errors.New("invalid keyframe fraction")

	// ErrMissingValue is returned when a keyframe without a value is evaluated, or
	// when an inner keyframe has no value.
	ErrMissingValue = errors.New("keyframe has no value")

	// ErrValueAlreadySet is returned when filling a keyframe that already has a value.
	ErrValueAlreadySet = errors.New("keyframe value already set")

	// ErrNoEvaluator is the configuration error of a non numeric holder without an evaluator.
	ErrNoEvaluator = errors.New("no evaluator for value kind")

	// ErrNilTarget is returned when binding a holder to nil.
	ErrNilTarget = errors.New("nil target")
)
