package stream

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledanim/accessor"
	"github.com/matt-g-everett/ledanim/animator"
	"github.com/matt-g-everett/ledanim/util"
	"github.com/matt-g-everett/ledanim/value"
)

// Builder turns animation config into PropertyAnimations. All holders share one
// accessor cache.
type Builder struct {
	cache     *accessor.Cache
	logger    logr.Logger
	numPixels int
}

// NewBuilder creates a Builder for frames of numPixels pixels.
func NewBuilder(cache *accessor.Cache, numPixels int, logger logr.Logger) *Builder {
	b := new(Builder)
	b.cache = cache
	b.numPixels = numPixels
	b.logger = logger
	return b
}

// BuildAll builds every configured animation.
func (b *Builder) BuildAll(configs []AnimationConfig) ([]*PropertyAnimation, error) {
	animations := make([]*PropertyAnimation, 0, len(configs))
	for _, cfg := range configs {
		a, err := b.Build(cfg)
		if err != nil {
			return nil, err
		}
		animations = append(animations, a)
	}
	return animations, nil
}

// Build builds one animation.
func (b *Builder) Build(cfg AnimationConfig) (*PropertyAnimation, error) {
	strip, err := NewStrip(cfg.Strip)
	if err != nil {
		return nil, fmt.Errorf("animation %q: strip: %w", cfg.Name, err)
	}

	switch {
	case len(cfg.Gradient) > 0:
		gradient, err := NewGradientTable(cfg.Gradient...)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", cfg.Name, err)
		}
		strip.SetGradient(gradient)
	case cfg.GradientName != "":
		gradient, err := NamedGradient(cfg.GradientName)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", cfg.Name, err)
		}
		strip.SetGradient(gradient)
	}

	logger := b.logger.WithName(cfg.Name)
	holders := make([]*animator.Holder, 0, len(cfg.Properties))
	for _, pc := range cfg.Properties {
		h, err := BuildHolder(pc)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", cfg.Name, err)
		}
		h.SetCache(b.cache)
		h.SetLogger(logger)
		holders = append(holders, h)
	}

	return NewPropertyAnimation(cfg.Name, strip, cfg.DurationMs, b.numPixels, logger, holders...), nil
}

// BuildHolder creates the holder for one property. Colour properties take hex strings
// and blend in the space named by Blend (hcl, lab or rgb).
func BuildHolder(pc PropertyConfig) (*animator.Holder, error) {
	keyframes, kind, err := buildKeyframes(pc)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", pc.Name, err)
	}

	h, err := animator.OfKeyframes(pc.Name, keyframes...)
	if err != nil {
		return nil, err
	}

	if kind == value.Other {
		evaluator, err := blendEvaluator(pc.Blend)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", pc.Name, err)
		}
		h.SetEvaluator(evaluator)
	}
	return h, nil
}

func buildKeyframes(pc PropertyConfig) ([]*animator.Keyframe, value.Kind, error) {
	kind := value.Other
	if !isColour(pc.Kind) {
		k, err := value.ParseKind(strings.ToLower(pc.Kind))
		if err != nil {
			return nil, value.Invalid, err
		}
		if !k.Numeric() {
			return nil, value.Invalid, fmt.Errorf("kind %q cannot be configured: %w", pc.Kind, ErrConfig)
		}
		kind = k
	}

	ease, err := util.Ease(pc.Ease)
	if err != nil {
		return nil, value.Invalid, err
	}

	var keyframes []*animator.Keyframe
	if len(pc.Keyframes) > 0 {
		for _, kc := range pc.Keyframes {
			kf, err := buildKeyframe(kind, kc.Fraction, kc.Value)
			if err != nil {
				return nil, value.Invalid, err
			}
			if kc.Ease != "" {
				kfEase, err := util.Ease(kc.Ease)
				if err != nil {
					return nil, value.Invalid, err
				}
				kf.SetInterpolator(kfEase)
			} else if pc.Ease != "" {
				kf.SetInterpolator(ease)
			}
			keyframes = append(keyframes, kf)
		}
	} else {
		keyframes, err = spreadValues(kind, pc.Values)
		if err != nil {
			return nil, value.Invalid, err
		}
		if pc.Ease != "" {
			for _, kf := range keyframes {
				kf.SetInterpolator(ease)
			}
		}
	}

	return keyframes, kind, nil
}

// spreadValues spaces values uniformly like the holder factories do. A single value is
// the end of a run that starts from the strip's current state.
func spreadValues(kind value.Kind, values []interface{}) ([]*animator.Keyframe, error) {
	if len(values) == 1 {
		kf, err := buildKeyframe(kind, 1, values[0])
		if err != nil {
			return nil, err
		}
		return []*animator.Keyframe{kf}, nil
	}

	keyframes := make([]*animator.Keyframe, 0, len(values))
	for i, v := range values {
		kf, err := buildKeyframe(kind, float64(i)/float64(len(values)-1), v)
		if err != nil {
			return nil, err
		}
		keyframes = append(keyframes, kf)
	}
	return keyframes, nil
}

func buildKeyframe(kind value.Kind, fraction float64, raw interface{}) (*animator.Keyframe, error) {
	if raw == nil {
		return animator.NewEmptyKeyframe(fraction, kind), nil
	}

	if kind == value.Other {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("colour %v is not a hex string: %w", raw, ErrConfig)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("colour %q: %w", s, err)
		}
		return animator.NewKeyframe(fraction, c), nil
	}

	n, ok := value.Float64(raw)
	if !ok {
		return nil, fmt.Errorf("value %v is not a number: %w", raw, ErrConfig)
	}

	switch kind {
	case value.Int:
		return animator.IntKeyframe(fraction, int(n)), nil
	case value.Float:
		return animator.FloatKeyframe(fraction, float32(n)), nil
	default:
		return animator.DoubleKeyframe(fraction, n), nil
	}
}

func isColour(kind string) bool {
	switch strings.ToLower(kind) {
	case "color", "colour":
		return true
	}
	return false
}

func blendEvaluator(blend string) (animator.Evaluator, error) {
	switch strings.ToLower(blend) {
	case "", "hcl":
		return animator.HclEvaluator, nil
	case "lab":
		return animator.LabEvaluator, nil
	case "rgb":
		return animator.RgbEvaluator, nil
	}
	return nil, fmt.Errorf("unknown blend %q: %w", blend, ErrConfig)
}
