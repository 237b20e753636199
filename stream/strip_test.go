package stream

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripRender(t *testing.T) {
	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{}

	tests := []struct {
		name   string
		offset float32
		lit    []int
	}{
		{"middle", 0.5, []int{2, 3}},
		{"wraps", 0.75, []int{3, 0}},
		{"negative", -0.25, []int{3, 0}},
		{"start", 0, []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStrip(StripConfig{Width: 2, Offset: tt.offset, Luminance: 1, Brightness: 1})
			require.NoError(t, err)

			f := NewFrame(4)
			s.Render(f)
			for i := 0; i < f.Len(); i++ {
				want := black
				for _, l := range tt.lit {
					if l == i {
						want = white
					}
				}
				assert.True(t, f.Pixel(i).AlmostEqualRgb(want), "pixel %d: %v", i, f.Pixel(i))
			}
		})
	}
}

func TestStripTintAndBrightness(t *testing.T) {
	s, err := NewStrip(StripConfig{Tint: "#ff0000", Brightness: 0.5})
	require.NoError(t, err)

	f := NewFrame(3)
	s.Render(f)
	for i := 0; i < f.Len(); i++ {
		assert.Equal(t, colorful.Color{R: 0.5}, f.Pixel(i))
	}

	s.SetBrightness(2)
	s.Render(f)
	assert.Equal(t, colorful.Color{R: 1}, f.Pixel(0))
}

func TestStripWidthLimitedToFrame(t *testing.T) {
	s, err := NewStrip(StripConfig{Width: 10, Luminance: 1, Brightness: 1})
	require.NoError(t, err)

	f := NewFrame(3)
	assert.NotPanics(t, func() { s.Render(f) })
	assert.NotPanics(t, func() { s.Render(NewFrame(0)) })
}

func TestStripBadTint(t *testing.T) {
	_, err := NewStrip(StripConfig{Tint: "red"})
	assert.Error(t, err)
}
