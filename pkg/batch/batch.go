// Package batch pairs normal maps across two input folders and runs the
// frequency corrector over every pair.
//
// Files are paired by lexicographic filename order, the same deterministic
// ordering the capture workflows export in. A failing pair is logged and
// skipped; the batch keeps going and reports processed vs. skipped counts at
// the end. Parameter errors are fatal for the whole run and are rejected
// before any file is touched.
package batch

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"

	"github.com/menta2k/normalmap-corrector/internal/utils"
	"github.com/menta2k/normalmap-corrector/pkg/codec"
	"github.com/menta2k/normalmap-corrector/pkg/corrector"
	"github.com/menta2k/normalmap-corrector/pkg/field"
)

// Options configures a batch run
type Options struct {
	DetailedDir  string  // reflectance-derived maps (high-frequency detail)
	ReferenceDir string  // photogrammetry-derived maps (accurate geometry)
	OutputDir    string
	BlurSigma    float64
	Alpha        float64
	OutputSuffix string // appended to the detailed-source stem, default "_corrected"
	OutputFormat string // output extension, default "tif"

	// Preview writes an 8-bit PNG copy of each corrected map for quick
	// inspection, downsampled so its long side is at most PreviewMaxSize.
	Preview        bool
	PreviewMaxSize int
}

// Report summarizes a completed batch run
type Report struct {
	Total     int
	Processed int
	Skipped   int
}

// Processor runs batches of pair corrections
type Processor struct {
	opts Options
}

// New creates a batch processor, filling in defaults for unset options
func New(opts Options) *Processor {
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = "_corrected"
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = "tif"
	}
	if opts.PreviewMaxSize <= 0 {
		opts.PreviewMaxSize = 1024
	}
	return &Processor{opts: opts}
}

// Run processes every matched pair. Configuration problems (bad parameters,
// missing folders, unpairable file sets) fail before any pair is processed;
// per-pair failures are logged, counted and skipped.
func (p *Processor) Run() (Report, error) {
	// Fail fast on parameters before touching the filesystem
	if p.opts.Alpha < 0 || p.opts.Alpha > 1 {
		return Report{}, &corrector.InvalidParameterError{Name: "alpha", Value: p.opts.Alpha}
	}
	if p.opts.BlurSigma <= 0 {
		return Report{}, &corrector.InvalidParameterError{Name: "blur_sigma", Value: p.opts.BlurSigma}
	}

	if !utils.DirExists(p.opts.DetailedDir) {
		return Report{}, fmt.Errorf("detailed folder not found: %s", p.opts.DetailedDir)
	}
	if !utils.DirExists(p.opts.ReferenceDir) {
		return Report{}, fmt.Errorf("reference folder not found: %s", p.opts.ReferenceDir)
	}

	detailed, err := utils.ListImageFiles(p.opts.DetailedDir)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list detailed folder: %w", err)
	}
	reference, err := utils.ListImageFiles(p.opts.ReferenceDir)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list reference folder: %w", err)
	}

	if len(detailed) == 0 {
		return Report{}, fmt.Errorf("no image files found in %s", p.opts.DetailedDir)
	}
	if len(reference) == 0 {
		return Report{}, fmt.Errorf("no image files found in %s", p.opts.ReferenceDir)
	}
	if len(detailed) != len(reference) {
		return Report{}, fmt.Errorf("number of images must be equal: found %d detailed and %d reference images",
			len(detailed), len(reference))
	}

	if err := utils.EnsureDir(p.opts.OutputDir); err != nil {
		return Report{}, fmt.Errorf("failed to create output folder: %w", err)
	}

	report := Report{Total: len(detailed)}
	log.Infof("processing %d image pairs", report.Total)

	for i, detailedPath := range detailed {
		referencePath := reference[i]
		name := filepath.Base(detailedPath)
		log.Infof("[%d/%d] processing: %s", i+1, report.Total, name)

		outputPath, err := p.processPair(detailedPath, referencePath)
		if err != nil {
			log.WithError(err).Warnf("skipping %s", name)
			report.Skipped++
			continue
		}

		log.Infof("wrote %s", outputPath)
		report.Processed++
	}

	log.Infof("processing complete: %d processed, %d skipped, results in %s",
		report.Processed, report.Skipped, p.opts.OutputDir)
	return report, nil
}

// processPair corrects a single pair and returns the written output path
func (p *Processor) processPair(detailedPath, referencePath string) (string, error) {
	detailedMap, err := codec.Decode(detailedPath)
	if err != nil {
		return "", err
	}
	referenceMap, err := codec.Decode(referencePath)
	if err != nil {
		return "", err
	}

	corrected, err := corrector.Correct(detailedMap, referenceMap, p.opts.BlurSigma, p.opts.Alpha)
	if err != nil {
		return "", err
	}

	outputPath := utils.GenerateOutputFilename(detailedPath, p.opts.OutputDir, p.opts.OutputSuffix, p.opts.OutputFormat)
	if err := codec.Encode(outputPath, corrected); err != nil {
		return "", err
	}

	if p.opts.Preview {
		if err := p.writePreview(outputPath, corrected); err != nil {
			// Previews are inspection copies; losing one never fails the pair
			log.WithError(err).Warnf("preview failed for %s", filepath.Base(outputPath))
		}
	}

	return outputPath, nil
}

// writePreview saves a downsampled 8-bit PNG copy next to the 16-bit output
func (p *Processor) writePreview(outputPath string, f *field.Field) error {
	img := previewImage(f)

	b := img.Bounds()
	if limit := p.opts.PreviewMaxSize; b.Dx() > limit || b.Dy() > limit {
		if b.Dx() >= b.Dy() {
			img = imaging.Resize(img, limit, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, limit, imaging.Lanczos)
		}
	}

	previewPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_preview.png"
	return imaging.Save(img, previewPath)
}

// previewImage quantizes a field to an 8-bit NRGBA image for display
func previewImage(f *field.Field) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := y*img.Stride + x*4
			if f.Channels == 1 {
				v := quantize8(f.At(x, y, 0))
				img.Pix[i], img.Pix[i+1], img.Pix[i+2] = v, v, v
			} else {
				img.Pix[i] = quantize8(f.At(x, y, 0))
				img.Pix[i+1] = quantize8(f.At(x, y, 1))
				img.Pix[i+2] = quantize8(f.At(x, y, 2))
			}
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// quantize8 converts a component in [-1, 1] to an 8-bit sample, clamping
// out-of-range values
func quantize8(v float32) uint8 {
	u := (float64(v) + 1) / 2 * 255
	if u < 0 {
		u = 0
	}
	if u > 255 {
		u = 255
	}
	return uint8(u + 0.5)
}
