// Package jigcrop crops product photographs using QR fiducials printed on the jig.
//
// A photograph shows a product resting on a jig carrying three QR markers.
// The pipeline locates the markers on a downscaled detection frame, decides
// which half of the frame the jig occupies, and takes the marker corners
// facing away from it as the bounds of the product. The crop is padded to a
// square and scaled for output.
//
// Basic usage:
//
//	p, err := jigcrop.New(jigcrop.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	res := p.ProcessImage(data, 0, 0, jigcrop.ModeCrop, "user-42")
//	switch res.Status {
//	case jigcrop.StatusCropped:
//		// res.Data is the squared crop
//	case jigcrop.StatusFallback:
//		// res.Data is the whole image, res.Reason explains why
//	case jigcrop.StatusFailed:
//		log.Println(res.Reason)
//	}
//
// Detection and geometry problems never fail a call: the whole image is
// returned with a reason instead. Only unreadable input yields StatusFailed.
//
// A Pipeline is safe for concurrent use.
package jigcrop

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/menta2k/jigcrop/pkg/cropper"
	"github.com/menta2k/jigcrop/pkg/loader"
	"github.com/menta2k/jigcrop/pkg/placeholder"
	"github.com/menta2k/jigcrop/pkg/processing"
	"github.com/menta2k/jigcrop/pkg/types"
	"github.com/menta2k/jigcrop/pkg/vision"
)

// Version of the jigcrop library
const Version = "1.0.0"

// Pipeline runs the marker-guided crop on encoded images
type Pipeline struct {
	config   Config
	loader   *loader.Loader
	detector vision.MarkerDetector
	cropper  *cropper.Cropper
	encoder  *processing.Encoder
	frame    vision.FrameOptions
	log      *slog.Logger
}

// New creates a Pipeline using the detector backend named in config
func New(config Config) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	detector, err := vision.NewDetector(config.Detector)
	if err != nil {
		return nil, err
	}
	return NewWithDetector(config, detector)
}

// NewWithDetector creates a Pipeline around an existing marker detector
func NewWithDetector(config Config, detector vision.MarkerDetector) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if detector == nil {
		return nil, errors.New("marker detector is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loaderCfg := loader.DefaultConfig()
	loaderCfg.MaxBytes = config.MaxInputBytes

	return &Pipeline{
		config:   config,
		loader:   loader.NewWithConfig(loaderCfg),
		detector: detector,
		cropper:  cropper.NewWithConfig(cropper.CropConfig{Fill: config.Fill}),
		encoder:  processing.NewEncoder(config.Output),
		frame: vision.FrameOptions{
			MaxDim:    config.DetectionMaxDim,
			Grayscale: config.Grayscale,
			Contrast:  config.Contrast,
		},
		log: logger,
	}, nil
}

// Close releases the detector if it holds native resources
func (p *Pipeline) Close() error {
	if c, ok := p.detector.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() Config {
	return p.config
}

// ProcessImage validates, decodes and orients data, then crops the product
// between the jig markers. xOffset and yOffset shift the crop rectangle in
// original-image pixels. callerID is attached to every log line.
func (p *Pipeline) ProcessImage(data []byte, xOffset, yOffset int, mode Mode, callerID string) Result {
	log := p.log.With("caller", callerID)
	start := time.Now()

	img, err := p.loader.Load(data)
	if err != nil {
		log.Warn("image rejected", "error", err, "size", len(data))
		return failed(err)
	}
	info := loader.Info(img)
	log.Debug("image loaded", "width", info.Width, "height", info.Height, "mode", mode.String())

	frame := vision.Prepare(img, p.frame)
	markers, err := p.detector.Detect(frame.Image)
	if err != nil {
		log.Error("marker detection failed", "error", err)
		markers = nil
	}
	log.Debug("marker detection completed", "markers", len(markers), "ratio", frame.Ratio,
		"duration_ms", time.Since(start).Milliseconds())

	if len(markers) != types.MarkerCount {
		return p.fallback(log, img, &types.DetectionError{Found: len(markers)}, len(markers))
	}

	side := cropper.ResolveSide(markers, float64(frame.Width()))
	rect, err := cropper.ResolveCrop(markers, frame.Ratio, side, xOffset, yOffset, info.Width, info.Height)
	if err != nil {
		log.Debug("crop rectangle rejected", "side", side, "rect", rect.String())
		res := p.fallback(log, img, err, len(markers))
		res.Side = side
		return res
	}
	log.Debug("crop resolved", "side", side, "rect", rect.String(), "x_offset", xOffset, "y_offset", yOffset)

	var out image.Image
	if mode == ModeOutline {
		r := image.Rect(rect.MinX, rect.MinY, rect.MaxX, rect.MaxY).Add(img.Bounds().Min)
		out = processing.DrawRectangle(img, r, p.config.OutlineColor, p.config.OutlineStroke)
	} else {
		out = p.cropper.Crop(img, rect)
	}

	encoded, err := p.encoder.EncodeScaled(out, p.config.OutputMaxDim)
	if err != nil {
		log.Error("failed to encode output", "error", err)
		return failed(fmt.Errorf("failed to encode output: %w", err))
	}

	log.Info("image processed", "status", StatusCropped.String(), "side", side, "rect", rect.String(),
		"bytes", len(encoded), "duration_ms", time.Since(start).Milliseconds())
	return Result{
		Status:  StatusCropped,
		Data:    encoded,
		Format:  p.encoder.Format(),
		Markers: len(markers),
		Side:    side,
		Rect:    rect,
	}
}

// fallback re-encodes the whole oriented image and records why cropping was skipped
func (p *Pipeline) fallback(log *slog.Logger, img image.Image, cause error, found int) Result {
	encoded, err := p.encoder.EncodeScaled(img, p.config.OutputMaxDim)
	if err != nil {
		log.Error("failed to encode fallback output", "error", err)
		return failed(fmt.Errorf("failed to encode output: %w", err))
	}

	log.Info("image processed", "status", StatusFallback.String(), "reason", cause.Error(), "bytes", len(encoded))
	return Result{
		Status:  StatusFallback,
		Data:    encoded,
		Format:  p.encoder.Format(),
		Reason:  cause.Error(),
		Err:     cause,
		Markers: found,
	}
}

// failed maps loader and encoder errors to a StatusFailed result
func failed(err error) Result {
	res := Result{Status: StatusFailed, Err: err}

	var validationErr *types.ValidationError
	var decodeErr *types.DecodeError
	switch {
	case errors.As(err, &validationErr):
		res.Reason = validationErr.Reason
	case errors.As(err, &decodeErr):
		res.Reason = types.ReasonDecodeFailed
	default:
		res.Reason = err.Error()
	}
	return res
}

// GenerateThumbnail scales img so its longer side is at most maxSize.
// A non-positive maxSize uses the configured thumbnail size.
func (p *Pipeline) GenerateThumbnail(img image.Image, maxSize int) (image.Image, bool) {
	if maxSize <= 0 {
		maxSize = p.config.ThumbnailMaxDim
	}
	return processing.Thumbnail(img, maxSize)
}

// ValidateImageFile reports whether data is an acceptable upload and,
// if not, the human-readable reason
func (p *Pipeline) ValidateImageFile(data []byte) (bool, string) {
	if err := p.loader.Validate(data); err != nil {
		var validationErr *types.ValidationError
		if errors.As(err, &validationErr) {
			return false, validationErr.Reason
		}
		return false, types.ReasonInvalidFormat
	}
	return true, ""
}

// LoadAndOrientImage decodes data and applies its EXIF orientation
func (p *Pipeline) LoadAndOrientImage(data []byte) (image.Image, error) {
	return p.loader.Load(data)
}

// EncodeThumbnail decodes data and returns an encoded thumbnail of it.
// The bool reports whether the image had to be shrunk.
func (p *Pipeline) EncodeThumbnail(data []byte) ([]byte, bool, error) {
	img, err := p.loader.Load(data)
	if err != nil {
		return nil, false, err
	}
	thumb, scaled := p.GenerateThumbnail(img, p.config.ThumbnailMaxDim)
	encoded, err := p.encoder.Encode(thumb)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return encoded, scaled, nil
}

// Placeholder renders template with its white pixels replaced by a colour
// derived from userID. It stands in for a real upload in test mode.
func (p *Pipeline) Placeholder(template image.Image, userID string) Result {
	data, err := placeholder.Render(template, userID, p.encoder)
	if err != nil {
		p.log.Error("failed to render placeholder", "caller", userID, "error", err)
		return failed(err)
	}
	p.log.Debug("placeholder rendered", "caller", userID, "color", placeholder.ColorFor(userID).Hex())
	return Result{Status: StatusCropped, Data: data, Format: p.encoder.Format()}
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
