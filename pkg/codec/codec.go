// Package codec decodes raster images into normal fields and encodes corrected
// fields back to disk.
//
// Inputs may arrive in any of the common container formats (PNG, JPEG, TIFF,
// BMP, WebP) at 8 or 16 bits per sample, grayscale or RGB. All of them map into
// the same in-memory representation: a float32 field with components remapped
// from the native integer range into [-1, 1]. Output is deliberately uniform
// regardless of the source format: a 16-bit TIFF, the fixed-point format the
// downstream photogrammetry tooling re-imports.
package codec

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"golang.org/x/image/tiff"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/normalmap-corrector/pkg/field"
)

// PixelFormat identifies the sample layout of a decoded image
type PixelFormat int

const (
	Gray8 PixelFormat = iota
	Gray16
	RGB8
	RGB16
)

// String returns a human-readable name for the pixel format
func (p PixelFormat) String() string {
	switch p {
	case Gray8:
		return "8-bit grayscale"
	case Gray16:
		return "16-bit grayscale"
	case RGB8:
		return "8-bit RGB"
	case RGB16:
		return "16-bit RGB"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(p))
}

// Channels returns the number of samples per pixel for the format
func (p PixelFormat) Channels() int {
	if p == Gray8 || p == Gray16 {
		return 1
	}
	return 3
}

// Decode loads a normal map image and remaps it to a float field in [-1, 1].
//
// Each integer sample s in [0, 2^depth-1] maps to 2*s/(2^depth-1) - 1. The
// result is not guaranteed to contain unit-length vectors; raw captures often
// do not.
func Decode(path string) (*field.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		// Fallback: explicit WebP decode for files the registered
		// decoders reject
		if _, serr := f.Seek(0, 0); serr == nil {
			if wimg, werr := webp.Decode(f); werr == nil {
				img = wimg
			}
		}
		if img == nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
	}

	return fromImage(path, img)
}

// classify maps the decoded concrete image type to a pixel-format tag.
// JPEG decodes to YCbCr, which carries 8-bit color and is treated as RGB8.
func classify(img image.Image) (PixelFormat, bool) {
	switch img.(type) {
	case *image.Gray:
		return Gray8, true
	case *image.Gray16:
		return Gray16, true
	case *image.NRGBA, *image.RGBA, *image.YCbCr:
		return RGB8, true
	case *image.NRGBA64, *image.RGBA64:
		return RGB16, true
	}
	return 0, false
}

func fromImage(path string, img image.Image) (*field.Field, error) {
	pf, ok := classify(img)
	if !ok {
		return nil, &UnsupportedFormatError{Path: path, Format: fmt.Sprintf("%T", img)}
	}

	b := img.Bounds()
	out := field.New(b.Dx(), b.Dy(), pf.Channels())

	i := 0
	switch pf {
	case Gray8:
		g := img.(*image.Gray)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Pix[i] = remap(uint32(g.GrayAt(x, y).Y), 0xff)
				i++
			}
		}
	case Gray16:
		g := img.(*image.Gray16)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Pix[i] = remap(uint32(g.Gray16At(x, y).Y), 0xffff)
				i++
			}
		}
	case RGB8:
		// RGBA() yields 16-bit-scaled samples for every 8-bit source type
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				out.Pix[i] = remap(r>>8, 0xff)
				out.Pix[i+1] = remap(g>>8, 0xff)
				out.Pix[i+2] = remap(bl>>8, 0xff)
				i += 3
			}
		}
	case RGB16:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				out.Pix[i] = remap(r, 0xffff)
				out.Pix[i+1] = remap(g, 0xffff)
				out.Pix[i+2] = remap(bl, 0xffff)
				i += 3
			}
		}
	}

	return out, nil
}

// remap converts an integer sample in [0, max] to a float in [-1, 1]
func remap(s, max uint32) float32 {
	return float32(s)/float32(max)*2 - 1
}

// Encode writes a normal field as a 16-bit TIFF, creating parent directories
// as needed. Component values are expected in [-1, 1]; values outside that
// range are clamped (blend overshoot at frequency boundaries is normal, not an
// error). One-channel fields are written as 16-bit grayscale, three-channel
// fields as 16-bit RGB with opaque alpha.
func Encode(path string, f *field.Field) error {
	if f.Channels != 1 && f.Channels != 3 {
		return &EncodeError{Path: path, Err: fmt.Errorf("unsupported channel count: %d", f.Channels)}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &EncodeError{Path: path, Err: err}
		}
	}

	var img image.Image
	switch f.Channels {
	case 1:
		g := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				g.SetGray16(x, y, color.Gray16{Y: quantize16(f.At(x, y, 0))})
			}
		}
		img = g
	case 3:
		m := image.NewRGBA64(image.Rect(0, 0, f.Width, f.Height))
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				m.SetRGBA64(x, y, color.RGBA64{
					R: quantize16(f.At(x, y, 0)),
					G: quantize16(f.At(x, y, 1)),
					B: quantize16(f.At(x, y, 2)),
					A: 0xffff,
				})
			}
		}
		img = m
	}

	out, err := os.Create(path)
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}

	if err := tiff.Encode(out, img, nil); err != nil {
		out.Close()
		return &EncodeError{Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

// quantize16 converts a component in [-1, 1] to a 16-bit fixed-point sample,
// clamping out-of-range values
func quantize16(v float32) uint16 {
	u := math.Round((float64(v) + 1) / 2 * 65535)
	if u < 0 {
		u = 0
	}
	if u > 65535 {
		u = 65535
	}
	return uint16(u)
}
