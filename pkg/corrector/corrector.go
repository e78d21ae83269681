// Package corrector implements low-frequency distortion correction for normal
// maps by frequency-band surgery.
//
// Reflectance-derived normal maps carry excellent high-frequency surface
// detail but unreliable large-scale shape; photogrammetry-derived maps have it
// the other way around. Correct isolates the low-frequency band of both inputs
// with a Gaussian blur, swaps the detailed map's low band for a blend biased
// toward the photogrammetric one, and renormalizes the result:
//
//	detLow  = GaussianBlur(detailed, sigma)
//	refLow  = GaussianBlur(reference, sigma)
//	blended = alpha*refLow + (1-alpha)*detLow
//	out     = Normalize(detailed - detLow + blended)
//
// All functions are pure: inputs are never mutated and no state is held
// between calls.
package corrector

import (
	"math"

	"github.com/menta2k/normalmap-corrector/pkg/field"
)

// Correct blends the low-frequency band of reference into detailed and
// returns the renormalized result. Both fields must have identical shapes;
// alpha must lie in [0, 1] and blurSigma must be positive. Validation happens
// before any computation.
func Correct(detailed, reference *field.Field, blurSigma, alpha float64) (*field.Field, error) {
	if detailed.Shape() != reference.Shape() {
		return nil, &ShapeMismatchError{Detailed: detailed.Shape(), Reference: reference.Shape()}
	}
	if alpha < 0 || alpha > 1 {
		return nil, &InvalidParameterError{Name: "alpha", Value: alpha}
	}
	if blurSigma <= 0 {
		return nil, &InvalidParameterError{Name: "blur_sigma", Value: blurSigma}
	}

	detLow := GaussianBlur(detailed, blurSigma)
	refLow := GaussianBlur(reference, blurSigma)

	out := field.New(detailed.Width, detailed.Height, detailed.Channels)
	a := float32(alpha)
	for i := range out.Pix {
		blended := a*refLow.Pix[i] + (1-a)*detLow.Pix[i]
		out.Pix[i] = detailed.Pix[i] - detLow.Pix[i] + blended
	}

	return Normalize(out), nil
}

// GaussianBlur applies an isotropic separable Gaussian blur to each channel
// independently and returns a new field. The kernel is sampled out to a
// radius of ceil(3*sigma) and renormalized to unit sum; borders are
// clamp-replicated.
func GaussianBlur(f *field.Field, sigma float64) *field.Field {
	kernel := gaussianKernel(sigma)
	tmp := field.New(f.Width, f.Height, f.Channels)
	dst := field.New(f.Width, f.Height, f.Channels)
	convolveX(tmp, f, kernel)
	convolveY(dst, tmp, kernel)
	return dst
}

// Normalize scales every pixel vector to unit Euclidean length and returns a
// new field. Exact-zero vectors are passed through unchanged; a zero normal is
// a "no data" sentinel from the capture pipeline and must not become NaN.
func Normalize(f *field.Field) *field.Field {
	out := f.Clone()
	n := f.Width * f.Height
	for p := 0; p < n; p++ {
		base := p * f.Channels
		var sq float64
		for c := 0; c < f.Channels; c++ {
			v := float64(out.Pix[base+c])
			sq += v * v
		}
		if sq == 0 {
			continue
		}
		inv := 1 / math.Sqrt(sq)
		for c := 0; c < f.Channels; c++ {
			out.Pix[base+c] = float32(float64(out.Pix[base+c]) * inv)
		}
	}
	return out
}

// gaussianKernel returns a normalized 1D Gaussian kernel of odd width 2r+1
// with r = ceil(3*sigma)
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// clampIndex replicates the nearest edge sample for out-of-bounds coordinates
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// convolveX convolves src with the kernel along the x axis into dst
func convolveX(dst, src *field.Field, kernel []float64) {
	radius := len(kernel) / 2
	for y := 0; y < src.Height; y++ {
		row := y * src.Width * src.Channels
		for x := 0; x < src.Width; x++ {
			for c := 0; c < src.Channels; c++ {
				sum := 0.0
				for k := -radius; k <= radius; k++ {
					xs := clampIndex(x+k, src.Width)
					sum += float64(src.Pix[row+xs*src.Channels+c]) * kernel[k+radius]
				}
				dst.Pix[row+x*src.Channels+c] = float32(sum)
			}
		}
	}
}

// convolveY convolves src with the kernel along the y axis into dst
func convolveY(dst, src *field.Field, kernel []float64) {
	radius := len(kernel) / 2
	stride := src.Width * src.Channels
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			for c := 0; c < src.Channels; c++ {
				sum := 0.0
				for k := -radius; k <= radius; k++ {
					ys := clampIndex(y+k, src.Height)
					sum += float64(src.Pix[ys*stride+x*src.Channels+c]) * kernel[k+radius]
				}
				dst.Pix[y*stride+x*src.Channels+c] = float32(sum)
			}
		}
	}
}
