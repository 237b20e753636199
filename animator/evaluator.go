package animator

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledanim/value"
)

// An Evaluator interpolates between the values of two keyframes. fraction is the
// progress within the segment. Start and end must be of a kind the evaluator handles;
// anything else is a programming error and panics.
type Evaluator interface {
	Evaluate(fraction float64, start, end any) any
}

// EvaluatorFunc adapts a function to an Evaluator.
type EvaluatorFunc func(fraction float64, start, end any) any

func (f EvaluatorFunc) Evaluate(fraction float64, start, end any) any {
	return f(fraction, start, end)
}

// Typed adapts an interpolation over values of type T.
func Typed[T any](lerp func(fraction float64, start, end T) T) Evaluator {
	return EvaluatorFunc(func(fraction float64, start, end any) any {
		return lerp(fraction, start.(T), end.(T))
	})
}

// The built-in evaluators accept any numeric endpoints, as the kind of a property can
// change when its setter is found through a different variant than it was declared with.
var (
	// IntEvaluator floors start + fraction*(end-start).
	IntEvaluator Evaluator = EvaluatorFunc(func(fraction float64, start, end any) any {
		s := number(start)
		return int(math.Floor(s + fraction*(number(end)-s)))
	})

	FloatEvaluator Evaluator = EvaluatorFunc(func(fraction float64, start, end any) any {
		f := float32(fraction)
		return (1-f)*float32(number(start)) + f*float32(number(end))
	})

	DoubleEvaluator Evaluator = EvaluatorFunc(func(fraction float64, start, end any) any {
		return lerp(fraction, number(start), number(end))
	})
)

// Colour evaluators blend colorful.Color values in different colour spaces.
var (
	HclEvaluator = Typed(func(fraction float64, start, end colorful.Color) colorful.Color {
		return start.BlendHcl(end, fraction).Clamped()
	})

	LabEvaluator = Typed(func(fraction float64, start, end colorful.Color) colorful.Color {
		return start.BlendLab(end, fraction)
	})

	RgbEvaluator = Typed(func(fraction float64, start, end colorful.Color) colorful.Color {
		return start.BlendRgb(end, fraction)
	})
)

// DefaultEvaluator returns the built-in evaluator for a numeric kind.
func DefaultEvaluator(kind value.Kind) (Evaluator, error) {
	switch kind {
	case value.Int:
		return IntEvaluator, nil
	case value.Float:
		return FloatEvaluator, nil
	case value.Double:
		return DoubleEvaluator, nil
	}
	return nil, fmt.Errorf("%s: %w", kind, ErrNoEvaluator)
}

// lerp is exact at both ends.
func lerp(fraction, start, end float64) float64 {
	return (1-fraction)*start + fraction*end
}

func number(v any) float64 {
	f, ok := value.Float64(v)
	if !ok {
		panic(fmt.Sprintf("animator: %T is not numeric", v))
	}
	return f
}
