package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/menta2k/jigcrop/pkg/types"
)

// DefaultMaxBytes is the largest upload accepted by default (5 MiB)
const DefaultMaxBytes = 5 * 1024 * 1024

// Loader decodes raw upload bytes into upright images
type Loader struct {
	config Config
}

// Config holds configuration for the loader
type Config struct {
	MaxBytes         int
	SupportedFormats []string
	MinImageSize     int
}

// DefaultConfig returns the loader defaults
func DefaultConfig() Config {
	return Config{
		MaxBytes:         DefaultMaxBytes,
		SupportedFormats: []string{"jpeg", "png", "gif", "webp", "bmp", "tiff"},
		MinImageSize:     1,
	}
}

// New creates a new Loader with default configuration
func New() *Loader {
	return &Loader{config: DefaultConfig()}
}

// NewWithConfig creates a new Loader with custom configuration
func NewWithConfig(config Config) *Loader {
	return &Loader{config: config}
}

// Validate checks size and performs a full decode pass without keeping the pixels.
// Every failure is a *types.ValidationError.
func (l *Loader) Validate(data []byte) error {
	format, err := l.probe(data)
	if err != nil {
		return err
	}
	_, err = l.decode(data, format)
	return err
}

// Load validates data and decodes it with EXIF orientation applied.
// Size, header and corrupt-body problems yield *types.ValidationError.
// A decode that succeeds but leaves no pixels yields *types.DecodeError.
func (l *Loader) Load(data []byte) (image.Image, error) {
	format, err := l.probe(data)
	if err != nil {
		return nil, err
	}
	img, err := l.decode(data, format)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, &types.DecodeError{Err: fmt.Errorf("%s image has no pixels after orientation", format)}
	}
	return img, nil
}

// probe checks the byte size and the image header, returning the format name
func (l *Loader) probe(data []byte) (string, error) {
	if l.config.MaxBytes > 0 && len(data) > l.config.MaxBytes {
		return "", types.NewValidationError(types.ErrTooLarge, types.ReasonTooLarge)
	}
	if len(data) == 0 {
		return "", types.NewValidationError(types.ErrInvalidFormat, types.ReasonInvalidFormat)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Fallback: extended WebP variants the registered decoder rejects
		w, h, _, werr := webp.GetInfo(data)
		if werr != nil {
			return "", types.NewValidationError(types.ErrInvalidFormat, types.ReasonInvalidFormat)
		}
		cfg, format = image.Config{Width: w, Height: h}, "webp"
	}

	if !l.isFormatSupported(format) {
		return "", types.NewValidationError(types.ErrInvalidFormat, types.ReasonInvalidFormat)
	}
	if cfg.Width < l.config.MinImageSize || cfg.Height < l.config.MinImageSize {
		return "", types.NewValidationError(types.ErrInvalidFormat, types.ReasonInvalidFormat)
	}
	return format, nil
}

// decode reads the full image, applying the stored EXIF orientation.
// A corrupt body is reported like a bad header.
func (l *Loader) decode(data []byte, format string) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if format == "webp" {
		if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
			return wimg, nil
		}
	}
	cause := fmt.Errorf("%w: failed to decode %s image: %w", types.ErrInvalidFormat, format, err)
	return nil, types.NewValidationError(cause, types.ReasonInvalidFormat)
}

func (l *Loader) isFormatSupported(format string) bool {
	if len(l.config.SupportedFormats) == 0 {
		return true
	}
	for _, supported := range l.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
}

// Info returns basic information about an image
func Info(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}
