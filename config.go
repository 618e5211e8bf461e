package jigcrop

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/menta2k/jigcrop/pkg/loader"
	"github.com/menta2k/jigcrop/pkg/processing"
	"github.com/menta2k/jigcrop/pkg/vision"
)

// Config holds the thresholds and collaborators of a Pipeline.
// It is read-only once passed to New.
type Config struct {
	MaxInputBytes   int
	DetectionMaxDim int
	OutputMaxDim    int
	ThumbnailMaxDim int

	// Detector names the marker backend, see vision.NewDetector
	Detector string
	// Grayscale and Contrast preprocess the detection frame
	Grayscale bool
	Contrast  float64

	Output processing.EncodeOptions

	// Fill pads cropped output to a square
	Fill          color.Color
	OutlineColor  color.NRGBA
	OutlineStroke int

	// Logger receives pipeline diagnostics; nil uses slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns the production thresholds
func DefaultConfig() Config {
	return Config{
		MaxInputBytes:   loader.DefaultMaxBytes,
		DetectionMaxDim: vision.DefaultFrameMaxDim,
		OutputMaxDim:    1080,
		ThumbnailMaxDim: 600,
		Detector:        vision.BackendZXing,
		Output: processing.EncodeOptions{
			Format:  processing.FormatJPEG,
			Quality: processing.DefaultQuality,
		},
		Fill:          color.White,
		OutlineColor:  color.NRGBA{0, 255, 0, 255},
		OutlineStroke: processing.DefaultOutlineStroke,
	}
}

// Validate checks that every threshold is usable
func (c Config) Validate() error {
	if c.MaxInputBytes <= 0 {
		return errors.New("max input bytes must be positive")
	}
	if c.DetectionMaxDim <= 0 {
		return fmt.Errorf("detection max dimension must be positive, got %d", c.DetectionMaxDim)
	}
	if c.OutputMaxDim <= 0 {
		return fmt.Errorf("output max dimension must be positive, got %d", c.OutputMaxDim)
	}
	if c.ThumbnailMaxDim <= 0 {
		return fmt.Errorf("thumbnail max dimension must be positive, got %d", c.ThumbnailMaxDim)
	}
	if c.Contrast <= -1 || c.Contrast >= 1 {
		return fmt.Errorf("contrast must be in (-1, 1), got %g", c.Contrast)
	}
	if c.OutlineStroke < 0 {
		return fmt.Errorf("outline stroke cannot be negative, got %d", c.OutlineStroke)
	}
	if c.Output.Quality < 0 || c.Output.Quality > 100 {
		return fmt.Errorf("output quality must be between 0 and 100, got %d", c.Output.Quality)
	}
	if c.Output.Format != "" {
		if _, err := processing.ParseFormat(string(c.Output.Format)); err != nil {
			return err
		}
	}
	return nil
}
