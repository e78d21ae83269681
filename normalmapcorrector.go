// Package normalmapcorrector corrects low-frequency geometric distortion in
// normal maps for cultural heritage imaging.
//
// Reflectance-based capture (RTI) produces normal maps with excellent
// high-frequency surface detail but unreliable large-scale shape.
// Photogrammetric reconstruction produces the opposite: accurate geometry,
// coarse detail. This package fuses matched pairs of both by swapping the
// detailed map's low-frequency band for a blend biased toward the
// photogrammetric one.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		normalmapcorrector "github.com/menta2k/normalmap-corrector"
//	)
//
//	func main() {
//		// Default parameters: sigma 8, alpha 0.99
//		corrector := normalmapcorrector.New()
//
//		// Correct a single pair of co-registered normal maps
//		if err := corrector.CorrectFile("rti/tile_004.png", "photogrammetry/tile_004.png", "out/tile_004_corrected.tif"); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or run a whole folder of matched pairs
//		report, err := corrector.ProcessFolders("rti", "photogrammetry", "out")
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("%d processed, %d skipped", report.Processed, report.Skipped)
//	}
//
// The package consists of three main components:
//
// 1. Codec (pkg/codec): decodes 8/16-bit grayscale and RGB images into float
// normal fields and encodes corrected fields as 16-bit TIFF
// 2. Corrector (pkg/corrector): the frequency-band correction itself
// 3. Batch (pkg/batch): folder pairing, per-pair error recovery, previews
//
// Input pairs are assumed pixel-aligned and identically sized; no spatial
// registration is attempted. Both blend parameters are operator-supplied.
package normalmapcorrector

import (
	"github.com/menta2k/normalmap-corrector/pkg/batch"
	"github.com/menta2k/normalmap-corrector/pkg/codec"
	"github.com/menta2k/normalmap-corrector/pkg/corrector"
	"github.com/menta2k/normalmap-corrector/pkg/field"
)

// Version of the normal map corrector library
const Version = "1.0.0"

// Default blend parameters, the published values for large planar artworks
const (
	DefaultBlurSigma = 8.0
	DefaultAlpha     = 0.99
)

// Corrector provides a high-level interface for normal map correction.
// It holds only the two blend parameters; all operations are stateless.
type Corrector struct {
	BlurSigma float64
	Alpha     float64
}

// New creates a Corrector with default parameters
func New() *Corrector {
	return &Corrector{
		BlurSigma: DefaultBlurSigma,
		Alpha:     DefaultAlpha,
	}
}

// NewWithParams creates a Corrector with custom blend parameters. Parameters
// are validated on use, not here, so invalid values surface as
// InvalidParameterError from the first operation.
func NewWithParams(blurSigma, alpha float64) *Corrector {
	return &Corrector{
		BlurSigma: blurSigma,
		Alpha:     alpha,
	}
}

// Decode loads a normal map image into a float field in [-1, 1]
func (c *Corrector) Decode(path string) (*field.Field, error) {
	return codec.Decode(path)
}

// Encode writes a normal field as a 16-bit TIFF
func (c *Corrector) Encode(path string, f *field.Field) error {
	return codec.Encode(path, f)
}

// Correct blends the low-frequency band of reference into detailed and
// returns the renormalized result
func (c *Corrector) Correct(detailed, reference *field.Field) (*field.Field, error) {
	return corrector.Correct(detailed, reference, c.BlurSigma, c.Alpha)
}

// CorrectFile decodes a matched pair, corrects it, and writes the result
func (c *Corrector) CorrectFile(detailedPath, referencePath, outputPath string) error {
	detailedMap, err := codec.Decode(detailedPath)
	if err != nil {
		return err
	}

	referenceMap, err := codec.Decode(referencePath)
	if err != nil {
		return err
	}

	corrected, err := corrector.Correct(detailedMap, referenceMap, c.BlurSigma, c.Alpha)
	if err != nil {
		return err
	}

	return codec.Encode(outputPath, corrected)
}

// ProcessFolders corrects every matched pair across two input folders,
// writing results into outputDir. See pkg/batch for the pairing contract.
func (c *Corrector) ProcessFolders(detailedDir, referenceDir, outputDir string) (batch.Report, error) {
	return batch.New(batch.Options{
		DetailedDir:  detailedDir,
		ReferenceDir: referenceDir,
		OutputDir:    outputDir,
		BlurSigma:    c.BlurSigma,
		Alpha:        c.Alpha,
	}).Run()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
