package stream

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrConfig is wrapped by every configuration validation failure.
var ErrConfig = errors.New("invalid config")

type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		ClientID string `yaml:"clientID"`
		Topics   struct {
			Stream string `yaml:"stream"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Stream struct {
		Pixels         int     `yaml:"pixels"`
		FrameRate      float64 `yaml:"frameRate"`
		AnimationSecs  float64 `yaml:"animationSecs"`
		TransitionSecs float64 `yaml:"transitionSecs"`
	} `yaml:"stream"`
	API struct {
		Listen string `yaml:"listen"`
		Static string `yaml:"static"`
	} `yaml:"api"`
	Animations []AnimationConfig `yaml:"animations"`
}

// AnimationConfig describes one animation of a Strip. GradientName picks a built-in
// gradient instead of listing Gradient points.
type AnimationConfig struct {
	Name         string           `yaml:"name"`
	DurationMs   int64            `yaml:"durationMs"`
	Strip        StripConfig      `yaml:"strip"`
	Gradient     []GradientPoint  `yaml:"gradient"`
	GradientName string           `yaml:"gradientName"`
	Properties   []PropertyConfig `yaml:"properties"`
}

// PropertyConfig animates one Strip property, either through evenly spaced values or
// explicit keyframes. A null value is read from the strip when the animation starts.
type PropertyConfig struct {
	Name      string           `yaml:"name"`
	Kind      string           `yaml:"kind"`
	Blend     string           `yaml:"blend"`
	Ease      string           `yaml:"ease"`
	Values    []interface{}    `yaml:"values"`
	Keyframes []KeyframeConfig `yaml:"keyframes"`
}

type KeyframeConfig struct {
	Fraction float64     `yaml:"fraction"`
	Value    interface{} `yaml:"value"`
	Ease     string      `yaml:"ease"`
}

// ReadConfig reads a YAML config file.
func ReadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return DecodeConfig(f)
}

// DecodeConfig decodes and validates a YAML config, filling in defaults.
func DecodeConfig(r io.Reader) (Config, error) {
	var c Config
	decoder := yaml.NewDecoder(r)
	decoder.SetStrict(true)
	if err := decoder.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	c.setDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Mqtt.Topics.Stream == "" {
		c.Mqtt.Topics.Stream = "home/xmastree/stream"
	}
	if c.Stream.Pixels == 0 {
		c.Stream.Pixels = 500
	}
	if c.Stream.FrameRate == 0 {
		c.Stream.FrameRate = 30
	}
	if c.Stream.AnimationSecs == 0 {
		c.Stream.AnimationSecs = 60
	}
	if c.Stream.TransitionSecs == 0 {
		c.Stream.TransitionSecs = 5
	}
	if c.API.Listen == "" {
		c.API.Listen = ":3000"
	}
	for i := range c.Animations {
		if c.Animations[i].Strip.Brightness == 0 {
			c.Animations[i].Strip.Brightness = 1
		}
	}
}

// Validate checks the parts of the config that decoding cannot.
func (c *Config) Validate() error {
	if c.Stream.Pixels < 0 || c.Stream.Pixels > 0xffff {
		return fmt.Errorf("stream.pixels %d out of range: %w", c.Stream.Pixels, ErrConfig)
	}
	if c.Stream.FrameRate < 0 {
		return fmt.Errorf("stream.frameRate %g: %w", c.Stream.FrameRate, ErrConfig)
	}
	if len(c.Animations) == 0 {
		return fmt.Errorf("no animations: %w", ErrConfig)
	}

	for _, a := range c.Animations {
		if a.Name == "" {
			return fmt.Errorf("animation without a name: %w", ErrConfig)
		}
		if len(a.Gradient) > 0 && a.GradientName != "" {
			return fmt.Errorf("animation %q: set either gradient or gradientName: %w", a.Name, ErrConfig)
		}
		if a.DurationMs <= 0 {
			return fmt.Errorf("animation %q: durationMs must be positive: %w", a.Name, ErrConfig)
		}
		for _, p := range a.Properties {
			if p.Name == "" {
				return fmt.Errorf("animation %q: property without a name: %w", a.Name, ErrConfig)
			}
			if (len(p.Values) == 0) == (len(p.Keyframes) == 0) {
				return fmt.Errorf("animation %q property %q: set either values or keyframes: %w", a.Name, p.Name, ErrConfig)
			}
		}
	}

	return nil
}

// AnimationTime is how long each animation plays before the next one fades in.
func (c *Config) AnimationTime() time.Duration {
	return time.Duration(c.Stream.AnimationSecs * float64(time.Second))
}

// TransitionTime is how long a cross-fade takes.
func (c *Config) TransitionTime() time.Duration {
	return time.Duration(c.Stream.TransitionSecs * float64(time.Second))
}
