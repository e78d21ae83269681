package field

import "fmt"

// Shape describes the dimensions of a normal field
type Shape struct {
	Width    int
	Height   int
	Channels int
}

// String returns the shape as "WxHxC"
func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.Channels)
}

// Field is a dense grid of per-pixel vectors with component values in the
// nominal range [-1, 1]. Samples are stored row-major and channel-interleaved,
// so the component c of pixel (x, y) lives at Pix[(y*Width+x)*Channels+c].
//
// A 3-channel field holds surface normals; a 1-channel field holds a grayscale
// height or slope signal treated as a degenerate single-component vector.
type Field struct {
	Width    int
	Height   int
	Channels int
	Pix      []float32
}

// New creates a zero-filled field with the given dimensions
func New(width, height, channels int) *Field {
	return &Field{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}
}

// Shape returns the field dimensions
func (f *Field) Shape() Shape {
	return Shape{Width: f.Width, Height: f.Height, Channels: f.Channels}
}

// At returns component c of the vector at pixel (x, y)
func (f *Field) At(x, y, c int) float32 {
	return f.Pix[(y*f.Width+x)*f.Channels+c]
}

// Set stores component c of the vector at pixel (x, y)
func (f *Field) Set(x, y, c int, v float32) {
	f.Pix[(y*f.Width+x)*f.Channels+c] = v
}

// Clone returns a deep copy of the field
func (f *Field) Clone() *Field {
	out := New(f.Width, f.Height, f.Channels)
	copy(out.Pix, f.Pix)
	return out
}
