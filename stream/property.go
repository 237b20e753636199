package stream

import (
	"github.com/go-logr/logr"

	"github.com/matt-g-everett/ledanim/animator"
)

// PropertyAnimation animates the properties of a Strip through holders and renders the
// strip every frame. It loops every durationMs.
type PropertyAnimation struct {
	name       string
	strip      *Strip
	templates  []*animator.Holder
	holders    []*animator.Holder
	durationMs int64
	numPixels  int
	startMs    int64
	started    bool
	logger     logr.Logger
}

// NewPropertyAnimation creates an instance of a PropertyAnimation. The holders are kept
// as templates and cloned each time the animation starts.
func NewPropertyAnimation(name string, strip *Strip, durationMs int64, numPixels int,
	logger logr.Logger, holders ...*animator.Holder) *PropertyAnimation {

	a := new(PropertyAnimation)
	a.name = name
	a.strip = strip
	a.templates = holders
	a.durationMs = durationMs
	a.numPixels = numPixels
	a.logger = logger
	return a
}

// Name identifies the animation.
func (a *PropertyAnimation) Name() string {
	return a.name
}

// Strip is the animated target.
func (a *PropertyAnimation) Strip() *Strip {
	return a.strip
}

// Start begins a run at runtimeMs. Holders are bound to the strip and keyframes without
// a value take the strip's current state.
func (a *PropertyAnimation) Start(runtimeMs int64) {
	a.holders = make([]*animator.Holder, 0, len(a.templates))
	for _, t := range a.templates {
		h := t.Clone()
		if err := h.BindTarget(a.strip); err != nil {
			a.logger.Error(err, "property skipped", "property", h.PropertyName())
			continue
		}
		h.FillMissingKeyframeValues(a.strip)
		a.holders = append(a.holders, h)
	}

	a.startMs = runtimeMs
	a.started = true
	a.logger.V(1).Info("started", "properties", len(a.holders), "runtimeMs", runtimeMs)
}

// Fraction is how far through the current loop the animation is at runtimeMs.
func (a *PropertyAnimation) Fraction(runtimeMs int64) float64 {
	if a.durationMs <= 0 {
		return 1
	}

	elapsed := runtimeMs - a.startMs
	if elapsed < 0 {
		return 0
	}
	return float64(elapsed%a.durationMs) / float64(a.durationMs)
}

// CalculateFrame applies every property at runtimeMs and renders the strip.
func (a *PropertyAnimation) CalculateFrame(runtimeMs int64) *Frame {
	if !a.started {
		a.Start(runtimeMs)
	}

	fraction := a.Fraction(runtimeMs)
	for _, h := range a.holders {
		if _, err := h.ComputeValue(fraction); err != nil {
			a.logger.Error(err, "computing value", "property", h.PropertyName())
			continue
		}
		h.ApplyValue(a.strip)
	}

	f := NewFrame(a.numPixels)
	a.strip.Render(f)
	return f
}
