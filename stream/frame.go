package stream

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Frame represents a frame of RGB pixels to display on an ledrx device.
type Frame struct {
	pixels []colorful.Color
}

// NewFrame creates a new Frame instance with numPixels black pixels.
func NewFrame(numPixels int) *Frame {
	f := new(Frame)
	f.pixels = make([]colorful.Color, numPixels)
	return f
}

// Len is the number of pixels in the frame.
func (f *Frame) Len() int {
	return len(f.pixels)
}

// Pixel gets the colour at index i.
func (f *Frame) Pixel(i int) colorful.Color {
	return f.pixels[i]
}

// SetPixel sets the colour at index i.
func (f *Frame) SetPixel(i int, c colorful.Color) {
	f.pixels[i] = c
}

// Fill sets every pixel to c.
func (f *Frame) Fill(c colorful.Color) {
	for i := range f.pixels {
		f.pixels[i] = c
	}
}

// InterpolateFrame merges two frames of the same length.
func (f *Frame) InterpolateFrame(f2 *Frame, transitionPoint float64) *Frame {
	out := NewFrame(len(f.pixels))
	for i := 0; i < len(f.pixels) && i < len(f2.pixels); i++ {
		out.pixels[i] = f.pixels[i].BlendHcl(f2.pixels[i], transitionPoint).Clamped()
	}

	return out
}

// MarshalBinary converts a Frame into binary data: a little endian pixel count followed
// by 3 bytes per pixel.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	if len(f.pixels) > math.MaxUint16 {
		return nil, fmt.Errorf("frame has %d pixels, at most %d fit", len(f.pixels), math.MaxUint16)
	}

	data = make([]byte, 2, (len(f.pixels)*3)+2)
	binary.LittleEndian.PutUint16(data, uint16(len(f.pixels)))
	for _, p := range f.pixels {
		r, g, b := p.Clamped().RGB255()
		data = append(data, r, g, b)
	}

	return data, nil
}
