package stream

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// StripConfig is the state of a Strip before any property is animated.
type StripConfig struct {
	Hue        float64 `yaml:"hue"`
	Saturation float64 `yaml:"saturation"`
	Luminance  float64 `yaml:"luminance"`
	Offset     float32 `yaml:"offset"`
	Width      int     `yaml:"width"`
	Tint       string  `yaml:"tint"`
	Brightness float64 `yaml:"brightness"`
}

// Strip is the animated target. A band of Width pixels starts at Offset (a fraction of
// the strip) and is drawn over a Tint background. Every property has a Get and Set
// method so holders can animate it by name.
type Strip struct {
	hue        float64
	saturation float64
	luminance  float64
	offset     float32
	width      int
	tint       colorful.Color
	brightness float64
	gradient   *GradientTable
}

// NewStrip creates a Strip from its configured starting state.
func NewStrip(cfg StripConfig) (*Strip, error) {
	s := new(Strip)
	s.hue = cfg.Hue
	s.saturation = cfg.Saturation
	s.luminance = cfg.Luminance
	s.offset = cfg.Offset
	s.width = cfg.Width
	s.brightness = cfg.Brightness

	if cfg.Tint != "" {
		tint, err := colorful.Hex(cfg.Tint)
		if err != nil {
			return nil, err
		}
		s.tint = tint
	}

	return s, nil
}

func (s *Strip) GetHue() float64              { return s.hue }
func (s *Strip) SetHue(v float64)             { s.hue = v }
func (s *Strip) GetSaturation() float64       { return s.saturation }
func (s *Strip) SetSaturation(v float64)      { s.saturation = v }
func (s *Strip) GetLuminance() float64        { return s.luminance }
func (s *Strip) SetLuminance(v float64)       { s.luminance = v }
func (s *Strip) GetOffset() float32           { return s.offset }
func (s *Strip) SetOffset(v float32)          { s.offset = v }
func (s *Strip) GetWidth() int                { return s.width }
func (s *Strip) SetWidth(v int)               { s.width = v }
func (s *Strip) GetTint() colorful.Color      { return s.tint }
func (s *Strip) SetTint(v colorful.Color)     { s.tint = v }
func (s *Strip) GetBrightness() float64       { return s.brightness }
func (s *Strip) SetBrightness(v float64)      { s.brightness = v }
func (s *Strip) SetGradient(g *GradientTable) { s.gradient = g }

// Render draws the strip into f.
func (s *Strip) Render(f *Frame) {
	n := f.Len()
	if n == 0 {
		return
	}

	brightness := math.Max(0, math.Min(1, s.brightness))
	f.Fill(scale(s.tint, brightness))

	offset := float64(s.offset)
	start := int(math.Floor((offset - math.Floor(offset)) * float64(n)))
	width := s.width
	if width > n {
		width = n
	}

	for j := 0; j < width; j++ {
		hue := s.hue
		if s.gradient != nil {
			hue += s.gradient.Hue(float64(j) / float64(width))
		}
		hue = math.Mod(hue, 360)
		if hue < 0 {
			hue += 360
		}

		c := colorful.Hcl(hue, s.saturation, s.luminance).Clamped()
		f.SetPixel((start+j)%n, scale(c, brightness))
	}
}

func scale(c colorful.Color, factor float64) colorful.Color {
	return colorful.Color{R: c.R * factor, G: c.G * factor, B: c.B * factor}
}
