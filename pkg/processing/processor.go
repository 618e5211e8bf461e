package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format is an output encoding
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// DefaultQuality is the JPEG/WebP quality used when none is configured
const DefaultQuality = 95

// ParseFormat maps a user-supplied format name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MimeType returns the MIME type of the encoding
func (f Format) MimeType() string {
	return "image/" + string(f)
}

// EncodeOptions carries format-specific encoding parameters
type EncodeOptions struct {
	Format   Format
	Quality  int
	Lossless bool // WebP only
}

// Encoder serialises images into the configured output format
type Encoder struct {
	opts EncodeOptions
}

// NewEncoder creates an encoder, filling unset options with defaults
func NewEncoder(opts EncodeOptions) *Encoder {
	if opts.Format == "" {
		opts.Format = FormatJPEG
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	return &Encoder{opts: opts}
}

// Format returns the output format
func (e *Encoder) Format() Format {
	return e.opts.Format
}

// Encode serialises img without resizing
func (e *Encoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	switch e.opts.Format {
	case FormatWebP:
		opts := &webp.Options{Lossless: e.opts.Lossless, Quality: float32(e.opts.Quality)}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("failed to encode webp: %w", err)
		}
	case FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	default: // jpeg
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(e.opts.Quality)); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// EncodeScaled downsizes img so its longer side is at most maxDim, then encodes it
func (e *Encoder) EncodeScaled(img image.Image, maxDim int) ([]byte, error) {
	scaled, _ := ScaleToMax(img, maxDim)
	return e.Encode(scaled)
}
