package stream

import (
	"fmt"
	"math"
	"strings"

	"github.com/matt-g-everett/ledanim/animator"
)

// GradientPoint is a hue keypoint at a position in [0, 1].
type GradientPoint struct {
	Hue float64 `yaml:"hue"`
	Pos float64 `yaml:"pos"`
}

// GradientTable stores a look-up table of colours interpolated by hue.
type GradientTable struct {
	keyframes *animator.KeyframeSet
}

// NewGradientTable builds a table from keypoints ordered by position.
func NewGradientTable(points ...GradientPoint) (*GradientTable, error) {
	kfs := make([]*animator.Keyframe, 0, len(points))
	for _, p := range points {
		kfs = append(kfs, animator.DoubleKeyframe(p.Pos, p.Hue))
	}

	ks, err := animator.NewKeyframeSet(kfs...)
	if err != nil {
		return nil, fmt.Errorf("gradient: %w", err)
	}

	// Keypoints must cover the whole range, no value can be read from a target.
	for _, kf := range ks.Keyframes() {
		if !kf.HasValue() {
			return nil, fmt.Errorf("gradient must span 0 to 1: %w", animator.ErrMissingValue)
		}
	}

	g := new(GradientTable)
	g.keyframes = ks
	return g, nil
}

// RainbowGradient walks the hue circle, lingering on the warm colours.
func RainbowGradient() *GradientTable {
	g, err := NewGradientTable(
		GradientPoint{0.0, 0.0},
		GradientPoint{6.0, 0.04},   // Pink
		GradientPoint{87.0, 0.14},  // Red
		GradientPoint{88.0, 0.28},  // Orange
		GradientPoint{98.0, 0.42},  // Yellow
		GradientPoint{180.0, 0.56}, // Green
		GradientPoint{190.0, 0.70}, // Turquoise
		GradientPoint{320.0, 0.84}, // Blue
		GradientPoint{328.0, 0.91}, // Violet
		GradientPoint{360.0, 1.0},  // Pink wrap
	)
	if err != nil {
		panic(err)
	}
	return g
}

// NamedGradient returns a built-in gradient by name.
func NamedGradient(name string) (*GradientTable, error) {
	switch strings.ToLower(name) {
	case "rainbow":
		return RainbowGradient(), nil
	}
	return nil, fmt.Errorf("unknown gradient %q: %w", name, ErrConfig)
}

// Hue gets the hue at t, which wraps into [0, 1].
func (g *GradientTable) Hue(t float64) float64 {
	t -= math.Floor(t)
	v, err := g.keyframes.ValueAt(t, animator.DoubleEvaluator)
	if err != nil {
		// Unreachable, every keypoint has a value.
		panic(err)
	}
	return v.(float64)
}
