package main

import (
	"flag"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/menta2k/normalmap-corrector/internal/config"
	"github.com/menta2k/normalmap-corrector/pkg/batch"
)

func main() {
	var detailedDir, referenceDir, outDir string
	var configPath string
	var sigma, alpha float64
	var suffix string
	var preview bool
	var previewSize int
	var verbose bool

	flag.StringVar(&detailedDir, "detailed", "", "folder of reflectance-derived normal maps (high-frequency detail)")
	flag.StringVar(&referenceDir, "reference", "", "folder of photogrammetry-derived normal maps (accurate geometry)")
	flag.StringVar(&outDir, "out", "out", "output folder for corrected normal maps")

	flag.Float64Var(&sigma, "sigma", 8.0, "Gaussian blur sigma for low-frequency extraction (typical: 8-12 for paintings)")
	flag.Float64Var(&alpha, "alpha", 0.99, "blend weight toward the reference low band, 0..1 (typical: 0.95-0.99)")
	flag.StringVar(&suffix, "suffix", "_corrected", "suffix appended to output filenames")

	flag.BoolVar(&preview, "preview", false, "write downsampled 8-bit PNG previews next to the 16-bit outputs")
	flag.IntVar(&previewSize, "previewsize", 1024, "max long side of preview images (px)")

	flag.StringVar(&configPath, "config", "", "optional JSON config file (flags override it)")
	flag.BoolVar(&verbose, "v", false, "verbose logging")

	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	if detailedDir == "" || referenceDir == "" {
		log.Fatalf("usage: %s -detailed rti_normals -reference pg_normals [-out outdir] [-sigma 8] [-alpha 0.99] [-preview]",
			filepath.Base(os.Args[0]))
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	// Explicit flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sigma":
			cfg.Correction.BlurSigma = sigma
		case "alpha":
			cfg.Correction.Alpha = alpha
		case "suffix":
			cfg.Output.Suffix = suffix
		case "preview":
			cfg.Preview.Enabled = preview
		case "previewsize":
			cfg.Preview.MaxSize = previewSize
		}
	})

	// Reject bad parameters before any file I/O
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	processor := batch.New(batch.Options{
		DetailedDir:    detailedDir,
		ReferenceDir:   referenceDir,
		OutputDir:      outDir,
		BlurSigma:      cfg.Correction.BlurSigma,
		Alpha:          cfg.Correction.Alpha,
		OutputSuffix:   cfg.Output.Suffix,
		OutputFormat:   cfg.Output.Format,
		Preview:        cfg.Preview.Enabled,
		PreviewMaxSize: cfg.Preview.MaxSize,
	})

	report, err := processor.Run()
	if err != nil {
		log.Fatal(err)
	}

	if report.Skipped > 0 {
		os.Exit(1)
	}
}
