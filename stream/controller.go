package stream

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Controller that manages animations. It cycles through its animations every
// animationTime, cross-fading from one to the next.
type Controller struct {
	mu                  sync.Mutex
	animations          []*PropertyAnimation
	current             int
	next                int
	animation           *PropertyAnimation
	nextAnimation       *PropertyAnimation
	animationTime       time.Duration
	runtimeMs           int64
	frameRate           float64
	transition          float64
	transitionIncrement float64
	logger              logr.Logger
}

// NewController creates an instance of a Controller. It needs at least one animation.
func NewController(animations []*PropertyAnimation, frameRate float64, animationTime,
	transitionTime time.Duration, logger logr.Logger) *Controller {

	c := new(Controller)
	c.animations = animations
	c.current = 0
	c.animation = animations[0]
	c.nextAnimation = nil
	c.animationTime = animationTime
	c.logger = logger

	c.frameRate = frameRate
	c.transition = 0.0
	c.transitionIncrement = 1.0
	if secs := transitionTime.Seconds(); secs > 0 {
		c.transitionIncrement = 1.0 / (c.frameRate * secs)
	}

	return c
}

// CalculateFrame renders the current animation, blended with the next one during a
// transition.
func (c *Controller) CalculateFrame(runtimeMs int64) *Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	var f *Frame
	c.runtimeMs = runtimeMs
	if c.nextAnimation != nil {
		f1 := c.animation.CalculateFrame(runtimeMs)
		f2 := c.nextAnimation.CalculateFrame(runtimeMs)
		f = f1.InterpolateFrame(f2, c.transition)
		c.transition += c.transitionIncrement

		if c.transition >= 1.0 {
			c.animation = c.nextAnimation
			c.current = c.next
			c.nextAnimation = nil
			c.transition = 0.0
		}
	} else {
		f = c.animation.CalculateFrame(runtimeMs)
	}

	return f
}

// Current is the name of the animation on display.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.animation.Name()
}

// Names lists the animations in play order.
func (c *Controller) Names() []string {
	names := make([]string, 0, len(c.animations))
	for _, a := range c.animations {
		names = append(names, a.Name())
	}
	return names
}

// Cycle starts the transition to the next animation. It does nothing while a
// transition is running or when there is only one animation.
func (c *Controller) Cycle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nextAnimation != nil || len(c.animations) < 2 {
		return
	}

	c.next = (c.current + 1) % len(c.animations)
	c.nextAnimation = c.animations[c.next]
	c.nextAnimation.Start(c.runtimeMs)
	c.logger.Info("cycling animation", "from", c.animation.Name(), "to", c.nextAnimation.Name())
}

// Run causes the Controller to cycle through animations until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	cycleTimer := time.NewTicker(c.animationTime)
	defer cycleTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cycleTimer.C:
			c.Cycle()
		}
	}
}
