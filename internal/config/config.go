package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/menta2k/jigcrop"
	"github.com/menta2k/jigcrop/pkg/ollama"
	"github.com/menta2k/jigcrop/pkg/processing"
	"github.com/menta2k/jigcrop/pkg/vision"
)

// Config holds the application configuration
type Config struct {
	Pipeline PipelineConfig `json:"pipeline"`
	Detector DetectorConfig `json:"detector"`
	Output   OutputConfig   `json:"output"`
	Describe DescribeConfig `json:"describe"`
}

// PipelineConfig holds the size limits of the crop pipeline
type PipelineConfig struct {
	MaxInputBytes   int `json:"max_input_bytes"`
	DetectionMaxDim int `json:"detection_max_dim"`
	OutputMaxDim    int `json:"output_max_dim"`
	ThumbnailMaxDim int `json:"thumbnail_max_dim"`
}

// DetectorConfig selects and tunes the marker detector
type DetectorConfig struct {
	Backend   string  `json:"backend"`
	Grayscale bool    `json:"grayscale"`
	Contrast  float64 `json:"contrast"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format        string `json:"format"`
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
	FillColor     string `json:"fill_color"`
	OutlineColor  string `json:"outline_color"`
	OutlineStroke int    `json:"outline_stroke"`
	OutputDir     string `json:"output_dir"`
	Suffix        string `json:"suffix"`
	ThumbSuffix   string `json:"thumb_suffix"`
}

// DescribeConfig holds the vision model used to describe products
type DescribeConfig struct {
	OllamaURL      string `json:"ollama_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Default returns a configuration with default values
func Default() *Config {
	p := jigcrop.DefaultConfig()
	return &Config{
		Pipeline: PipelineConfig{
			MaxInputBytes:   p.MaxInputBytes,
			DetectionMaxDim: p.DetectionMaxDim,
			OutputMaxDim:    p.OutputMaxDim,
			ThumbnailMaxDim: p.ThumbnailMaxDim,
		},
		Detector: DetectorConfig{
			Backend: vision.BackendZXing,
		},
		Output: OutputConfig{
			Format:        string(processing.FormatJPEG),
			Quality:       processing.DefaultQuality,
			FillColor:     "#ffffff",
			OutlineColor:  "#00ff00",
			OutlineStroke: processing.DefaultOutlineStroke,
			OutputDir:     "./output",
			Suffix:        "_cropped",
			ThumbSuffix:   "_thumb",
		},
		Describe: DescribeConfig{
			OllamaURL:      ollama.DefaultURL,
			Model:          "llava",
			TimeoutSeconds: int(ollama.DefaultTimeout / time.Second),
		},
	}
}

// LoadFromFile loads configuration from a JSON file.
// Fields missing from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
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
	if c.Pipeline.MaxInputBytes < 1 {
		return fmt.Errorf("pipeline.max_input_bytes must be positive")
	}
	if c.Pipeline.DetectionMaxDim < 1 || c.Pipeline.OutputMaxDim < 1 || c.Pipeline.ThumbnailMaxDim < 1 {
		return fmt.Errorf("pipeline dimensions must be positive")
	}

	switch strings.ToLower(c.Detector.Backend) {
	case "", vision.BackendZXing, vision.BackendGoCV:
	default:
		return fmt.Errorf("detector.backend must be %q or %q", vision.BackendZXing, vision.BackendGoCV)
	}
	if c.Detector.Contrast <= -1 || c.Detector.Contrast >= 1 {
		return fmt.Errorf("detector.contrast must be between -1 and 1 (exclusive)")
	}

	if _, err := processing.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}
	if _, err := ParseColor(c.Output.FillColor); err != nil {
		return fmt.Errorf("output.fill_color: %w", err)
	}
	if _, err := ParseColor(c.Output.OutlineColor); err != nil {
		return fmt.Errorf("output.outline_color: %w", err)
	}
	if c.Output.OutlineStroke < 1 {
		return fmt.Errorf("output.outline_stroke must be positive")
	}

	if c.Describe.TimeoutSeconds < 0 {
		return fmt.Errorf("describe.timeout_seconds cannot be negative")
	}

	return nil
}

// ToPipeline converts the file configuration into pipeline settings
func (c *Config) ToPipeline(logger *slog.Logger) (jigcrop.Config, error) {
	if err := c.Validate(); err != nil {
		return jigcrop.Config{}, err
	}

	format, _ := processing.ParseFormat(c.Output.Format)
	fill, _ := ParseColor(c.Output.FillColor)
	outline, _ := ParseColor(c.Output.OutlineColor)

	return jigcrop.Config{
		MaxInputBytes:   c.Pipeline.MaxInputBytes,
		DetectionMaxDim: c.Pipeline.DetectionMaxDim,
		OutputMaxDim:    c.Pipeline.OutputMaxDim,
		ThumbnailMaxDim: c.Pipeline.ThumbnailMaxDim,
		Detector:        strings.ToLower(c.Detector.Backend),
		Grayscale:       c.Detector.Grayscale,
		Contrast:        c.Detector.Contrast,
		Output: processing.EncodeOptions{
			Format:   format,
			Quality:  c.Output.Quality,
			Lossless: c.Output.Lossless,
		},
		Fill:          fill,
		OutlineColor:  outline,
		OutlineStroke: c.Output.OutlineStroke,
		Logger:        logger,
	}, nil
}

// Timeout returns the describer request timeout
func (c *Config) Timeout() time.Duration {
	if c.Describe.TimeoutSeconds <= 0 {
		return ollama.DefaultTimeout
	}
	return time.Duration(c.Describe.TimeoutSeconds) * time.Second
}

// ParseColor parses a #rgb or #rrggbb hex colour into an opaque NRGBA
func ParseColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "jigcrop", "config.json")
}
