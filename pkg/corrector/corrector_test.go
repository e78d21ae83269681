package corrector

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/menta2k/normalmap-corrector/pkg/field"
)

// createWavyField creates a field with smooth spatial variation plus fine
// ripple, roughly unit length per pixel
func createWavyField(width, height int) *field.Field {
	f := field.New(width, height, 3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			nx := 0.2*math.Sin(float64(x)/20.0) + 0.05*math.Sin(float64(x)/2.0)
			ny := 0.2*math.Cos(float64(y)/25.0)
			nz := math.Sqrt(math.Max(0.1, 1-nx*nx-ny*ny))
			f.Set(x, y, 0, float32(nx))
			f.Set(x, y, 1, float32(ny))
			f.Set(x, y, 2, float32(nz))
		}
	}
	return f
}

// createConstantField creates a field where every pixel holds the same vector
func createConstantField(width, height int, v [3]float32) *field.Field {
	f := field.New(width, height, 3)
	for i := 0; i < len(f.Pix); i += 3 {
		f.Pix[i] = v[0]
		f.Pix[i+1] = v[1]
		f.Pix[i+2] = v[2]
	}
	return f
}

func TestCorrectAlphaZero(t *testing.T) {
	detailed := createWavyField(64, 64)
	reference := createConstantField(64, 64, [3]float32{0, 0, 1})

	got, err := Correct(detailed, reference, 4.0, 0)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	// With alpha=0 the reference contributes nothing: the result is just
	// the normalized detailed map
	want := Normalize(detailed)
	for i := range got.Pix {
		if diff := math.Abs(float64(got.Pix[i] - want.Pix[i])); diff > 1e-5 {
			t.Fatalf("pixel component %d: got %f, want %f (diff %g)", i, got.Pix[i], want.Pix[i], diff)
		}
	}
}

func TestCorrectAlphaOne(t *testing.T) {
	detailed := createWavyField(64, 64)
	reference := createConstantField(64, 64, [3]float32{0, 0, 1})

	got, err := Correct(detailed, reference, 4.0, 1)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	// With alpha=1 the low band is replaced wholesale
	detLow := GaussianBlur(detailed, 4.0)
	refLow := GaussianBlur(reference, 4.0)
	want := field.New(64, 64, 3)
	for i := range want.Pix {
		want.Pix[i] = detailed.Pix[i] - detLow.Pix[i] + refLow.Pix[i]
	}
	want = Normalize(want)

	for i := range got.Pix {
		if diff := math.Abs(float64(got.Pix[i] - want.Pix[i])); diff > 1e-5 {
			t.Fatalf("pixel component %d: got %f, want %f (diff %g)", i, got.Pix[i], want.Pix[i], diff)
		}
	}
}

func TestCorrectUnitNormPostcondition(t *testing.T) {
	detailed := createWavyField(80, 60)
	reference := createConstantField(80, 60, [3]float32{0.1, -0.1, 0.9})

	got, err := Correct(detailed, reference, 3.0, 0.95)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	for p := 0; p < 80*60; p++ {
		var sq float64
		for c := 0; c < 3; c++ {
			v := float64(got.Pix[p*3+c])
			sq += v * v
		}
		norm := math.Sqrt(sq)
		if math.Abs(norm-1) > 1e-5 {
			t.Fatalf("pixel %d has norm %f, want 1.0", p, norm)
		}
	}
}

func TestCorrectZeroVectorsPassThrough(t *testing.T) {
	detailed := createConstantField(32, 32, [3]float32{0, 0, 0})
	reference := createConstantField(32, 32, [3]float32{0, 0, 0})

	got, err := Correct(detailed, reference, 8.0, 0.99)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	// All-zero inputs must come out all-zero, never NaN
	for i, v := range got.Pix {
		if v != 0 {
			t.Fatalf("component %d: got %f, want 0", i, v)
		}
		if math.IsNaN(float64(v)) {
			t.Fatalf("component %d is NaN", i)
		}
	}
}

func TestCorrectConstantBlend(t *testing.T) {
	// Both fields spatially constant, so the blur is a no-op and the
	// result is the normalized blend of the two vectors
	detailed := createConstantField(32, 32, [3]float32{0.1, 0.1, 0.98})
	reference := createConstantField(32, 32, [3]float32{0, 0, 1})

	got, err := Correct(detailed, reference, 8.0, 0.99)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	bx := 0.99*0.0 + 0.01*0.1
	by := 0.99*0.0 + 0.01*0.1
	bz := 0.99*1.0 + 0.01*0.98
	norm := math.Sqrt(bx*bx + by*by + bz*bz)
	want := [3]float64{bx / norm, by / norm, bz / norm}

	for c := 0; c < 3; c++ {
		if diff := math.Abs(float64(got.At(16, 16, c)) - want[c]); diff > 1e-3 {
			t.Errorf("component %d: got %f, want %f", c, got.At(16, 16, c), want[c])
		}
	}
}

func TestCorrectShapeMismatch(t *testing.T) {
	detailed := createWavyField(100, 100)
	reference := field.New(50, 50, 3)

	_, err := Correct(detailed, reference, 8.0, 0.99)
	if err == nil {
		t.Fatal("expected error for mismatched shapes")
	}

	var shapeErr *ShapeMismatchError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeMismatchError, got %T: %v", err, err)
	}

	if !strings.Contains(err.Error(), "100x100x3") || !strings.Contains(err.Error(), "50x50x3") {
		t.Errorf("error should name both shapes: %v", err)
	}
}

func TestCorrectInvalidParameters(t *testing.T) {
	detailed := createConstantField(16, 16, [3]float32{0, 0, 1})
	reference := createConstantField(16, 16, [3]float32{0, 0, 1})

	tests := []struct {
		name  string
		sigma float64
		alpha float64
		param string
	}{
		{"alpha above one", 8.0, 1.5, "alpha"},
		{"alpha negative", 8.0, -0.1, "alpha"},
		{"sigma negative", -1.0, 0.99, "blur_sigma"},
		{"sigma zero", 0, 0.99, "blur_sigma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Correct(detailed, reference, tt.sigma, tt.alpha)
			if err == nil {
				t.Fatal("expected error")
			}

			var paramErr *InvalidParameterError
			if !errors.As(err, &paramErr) {
				t.Fatalf("expected InvalidParameterError, got %T: %v", err, err)
			}
			if paramErr.Name != tt.param {
				t.Errorf("expected parameter %q, got %q", tt.param, paramErr.Name)
			}
		})
	}
}

func TestGaussianBlurConstantField(t *testing.T) {
	f := createConstantField(40, 40, [3]float32{0.3, -0.2, 0.9})

	blurred := GaussianBlur(f, 8.0)

	// A normalized kernel with replicated borders leaves constants alone
	for i := range blurred.Pix {
		if diff := math.Abs(float64(blurred.Pix[i] - f.Pix[i])); diff > 1e-5 {
			t.Fatalf("component %d: got %f, want %f", i, blurred.Pix[i], f.Pix[i])
		}
	}
}

func TestGaussianBlurSmooths(t *testing.T) {
	f := field.New(41, 1, 1)
	f.Set(20, 0, 0, 1) // impulse

	blurred := GaussianBlur(f, 2.0)

	if blurred.At(20, 0, 0) >= 1 {
		t.Error("blur should spread the impulse")
	}
	if blurred.At(18, 0, 0) <= 0 {
		t.Error("blur should reach neighboring pixels")
	}

	var sum float64
	for _, v := range blurred.Pix {
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Errorf("blur should preserve total mass: sum=%f", sum)
	}
}

func TestGaussianBlurDoesNotMutateInput(t *testing.T) {
	f := createWavyField(32, 32)
	before := f.Clone()

	GaussianBlur(f, 4.0)

	for i := range f.Pix {
		if f.Pix[i] != before.Pix[i] {
			t.Fatal("GaussianBlur mutated its input")
		}
	}
}

func TestNormalize(t *testing.T) {
	f := field.New(2, 1, 3)
	f.Set(0, 0, 0, 0)
	f.Set(0, 0, 1, 3)
	f.Set(0, 0, 2, 4)
	// pixel (1,0) stays all-zero

	got := Normalize(f)

	want := []float32{0, 0.6, 0.8}
	for c := 0; c < 3; c++ {
		if diff := math.Abs(float64(got.At(0, 0, c) - want[c])); diff > 1e-6 {
			t.Errorf("component %d: got %f, want %f", c, got.At(0, 0, c), want[c])
		}
	}

	for c := 0; c < 3; c++ {
		if got.At(1, 0, c) != 0 {
			t.Errorf("zero vector component %d changed to %f", c, got.At(1, 0, c))
		}
	}

	// Input must be untouched
	if f.At(0, 0, 1) != 3 {
		t.Error("Normalize mutated its input")
	}
}

func TestNormalizeSingleChannel(t *testing.T) {
	f := field.New(3, 1, 1)
	f.Set(0, 0, 0, 0.5)
	f.Set(1, 0, 0, -0.25)
	f.Set(2, 0, 0, 0)

	got := Normalize(f)

	if got.At(0, 0, 0) != 1 || got.At(1, 0, 0) != -1 || got.At(2, 0, 0) != 0 {
		t.Errorf("got (%f, %f, %f), want (1, -1, 0)",
			got.At(0, 0, 0), got.At(1, 0, 0), got.At(2, 0, 0))
	}
}

func BenchmarkCorrect(b *testing.B) {
	detailed := createWavyField(256, 256)
	reference := createConstantField(256, 256, [3]float32{0, 0, 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Correct(detailed, reference, 8.0, 0.99)
	}
}

func BenchmarkGaussianBlur(b *testing.B) {
	f := createWavyField(256, 256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GaussianBlur(f, 8.0)
	}
}
