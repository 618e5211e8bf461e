// Package client defines the vision model backends used to describe products
package client

import (
	"context"

	"github.com/menta2k/jigcrop/pkg/types"
)

// VisionClient sends one encoded image plus a prompt to a vision model
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt string, image []byte) (string, error)
	DescribeProduct(ctx context.Context, model, prompt string, image []byte) (*types.ProductDescription, error)
}
