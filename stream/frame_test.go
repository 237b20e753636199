package stream

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameMarshalBinary(t *testing.T) {
	f := NewFrame(3)
	f.SetPixel(0, colorful.Color{R: 1})
	f.SetPixel(2, colorful.Color{R: 2, G: -1, B: 1})

	data, err := f.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0, 255, 0, 0, 0, 0, 0, 255, 0, 255}, data)
}

func TestFrameTooLarge(t *testing.T) {
	_, err := NewFrame(70000).MarshalBinary()
	assert.Error(t, err)
}

func TestFrameFill(t *testing.T) {
	blue := colorful.Color{B: 1}
	f := NewFrame(4)
	f.Fill(blue)
	assert.Equal(t, 4, f.Len())
	for i := 0; i < f.Len(); i++ {
		assert.Equal(t, blue, f.Pixel(i))
	}
}

func TestInterpolateFrame(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}

	f1 := NewFrame(2)
	f1.Fill(red)
	f2 := NewFrame(2)
	f2.Fill(blue)

	start := f1.InterpolateFrame(f2, 0)
	end := f1.InterpolateFrame(f2, 1)
	for i := 0; i < 2; i++ {
		assert.True(t, start.Pixel(i).AlmostEqualRgb(red), "start %d: %v", i, start.Pixel(i))
		assert.True(t, end.Pixel(i).AlmostEqualRgb(blue), "end %d: %v", i, end.Pixel(i))
	}
}
