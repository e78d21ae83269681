package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Correction CorrectionConfig `json:"correction"`
	Output     OutputConfig     `json:"output"`
	Preview    PreviewConfig    `json:"preview"`
}

// CorrectionConfig holds the blend parameters for frequency correction
type CorrectionConfig struct {
	BlurSigma float64 `json:"blur_sigma"`
	Alpha     float64 `json:"alpha"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Suffix string `json:"suffix"`
	Format string `json:"format"`
}

// PreviewConfig holds configuration for 8-bit preview generation
type PreviewConfig struct {
	Enabled bool `json:"enabled"`
	MaxSize int  `json:"max_size"`
}

// Default returns a configuration with default values. The correction
// defaults follow the published parameters for large planar artworks
// (sigma 8, alpha 0.99).
func Default() *Config {
	return &Config{
		Correction: CorrectionConfig{
			BlurSigma: 8.0,
			Alpha:     0.99,
		},
		Output: OutputConfig{
			Suffix: "_corrected",
			Format: "tif",
		},
		Preview: PreviewConfig{
			Enabled: false,
			MaxSize: 1024,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Correction.BlurSigma <= 0 {
		return fmt.Errorf("correction.blur_sigma must be positive")
	}

	if c.Correction.Alpha < 0 || c.Correction.Alpha > 1 {
		return fmt.Errorf("correction.alpha must be between 0 and 1")
	}

	if c.Output.Suffix == "" {
		return fmt.Errorf("output.suffix cannot be empty")
	}

	if c.Output.Format != "tif" && c.Output.Format != "tiff" {
		return fmt.Errorf("output.format must be tif or tiff")
	}

	if c.Preview.MaxSize < 1 {
		return fmt.Errorf("preview.max_size must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "normalmap-corrector", "config.json")
}
