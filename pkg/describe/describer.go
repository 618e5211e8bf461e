// Package describe proposes catalogue metadata for cropped product images
// using a vision model.
package describe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/menta2k/jigcrop/pkg/client"
	"github.com/menta2k/jigcrop/pkg/processing"
	"github.com/menta2k/jigcrop/pkg/types"
)

// SimpleTestPrompt checks whether the model can see images at all
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks for title, description and tags of the pictured product
const DefaultPrompt = `You are writing a product catalogue entry for the item in this photo.

Return JSON only:
{
  "title": "short product name (≤ 8 words)",
  "description": "one or two neutral sentences about the product (≤ 40 words)",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}

RULES
- Describe the product only, not the background or the photo itself.
- Do not guess brand names unless they are clearly printed on the product.
- Tags: lowercase, concise, no punctuation or duplicates.
- If no product is visible, return:
  {"title":"","description":"","tags":[]}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

const (
	// DefaultImageMaxDim bounds the image sent to the model
	DefaultImageMaxDim = 1024
	maxTitleRunes      = 80
	maxTags            = 5
)

// ErrNoProduct is returned when the model reports nothing to describe
var ErrNoProduct = errors.New("no product visible")

// Describer turns product images into catalogue metadata
type Describer struct {
	client  client.VisionClient
	encoder *processing.Encoder
	maxDim  int
}

// NewDescriber creates a describer around a vision client
func NewDescriber(c client.VisionClient) *Describer {
	return &Describer{
		client:  c,
		encoder: processing.NewEncoder(processing.EncodeOptions{Format: processing.FormatJPEG, Quality: 90}),
		maxDim:  DefaultImageMaxDim,
	}
}

// Describe asks model for a title, description and tags for img
func (d *Describer) Describe(ctx context.Context, model string, img image.Image) (*types.ProductDescription, error) {
	return d.DescribeWithPrompt(ctx, model, img, DefaultPrompt)
}

// DescribeWithPrompt is Describe with a custom prompt
func (d *Describer) DescribeWithPrompt(ctx context.Context, model string, img image.Image, prompt string) (*types.ProductDescription, error) {
	data, err := d.encoder.EncodeScaled(img, d.maxDim)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image for model: %w", err)
	}

	desc, err := d.client.DescribeProduct(ctx, model, prompt, data)
	if err != nil {
		return nil, err
	}

	desc = normalize(desc)
	if !desc.Fallback && desc.Title == "" && desc.Description == "" {
		return nil, ErrNoProduct
	}
	return desc, nil
}

// TestVision sends a plain question to check the model receives the image
func (d *Describer) TestVision(ctx context.Context, model string, img image.Image) (string, error) {
	data, err := d.encoder.EncodeScaled(img, d.maxDim)
	if err != nil {
		return "", fmt.Errorf("failed to encode image for model: %w", err)
	}
	return d.client.SimpleQuery(ctx, model, SimpleTestPrompt, data)
}

// normalize trims whitespace, bounds the title, and cleans tags
func normalize(desc *types.ProductDescription) *types.ProductDescription {
	out := *desc
	out.Title = strings.Join(strings.Fields(out.Title), " ")
	out.Description = strings.TrimSpace(out.Description)
	if utf8.RuneCountInString(out.Title) > maxTitleRunes {
		out.Title = strings.TrimSpace(string([]rune(out.Title)[:maxTitleRunes]))
	}
	out.Tags = normalizeTags(out.Tags)
	return &out
}

// normalizeTags ensures tags are cleaned and limited to maxTags entries
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, maxTags)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.Trim(t, ".,;:!?#")
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
