package corrector

import (
	"fmt"

	"github.com/menta2k/normalmap-corrector/pkg/field"
)

// ShapeMismatchError indicates the two input fields do not have identical
// dimensions. The inputs are assumed pixel-aligned, so a mismatch is a
// configuration error, never something to resample away.
type ShapeMismatchError struct {
	Detailed  field.Shape
	Reference field.Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("normal map shapes do not match: detailed %s, reference %s", e.Detailed, e.Reference)
}

// InvalidParameterError indicates a blend parameter outside its valid range
type InvalidParameterError struct {
	Name  string
	Value float64
}

func (e *InvalidParameterError) Error() string {
	switch e.Name {
	case "alpha":
		return fmt.Sprintf("invalid alpha %g: must be between 0 and 1", e.Value)
	case "blur_sigma":
		return fmt.Sprintf("invalid blur_sigma %g: must be positive", e.Value)
	}
	return fmt.Sprintf("invalid %s: %g", e.Name, e.Value)
}
