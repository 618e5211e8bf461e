package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/jigcrop/internal/config"
	"github.com/menta2k/jigcrop/internal/utils"
	"github.com/menta2k/jigcrop/pkg/processing"
)

// outputFlags are shared by commands that write images
type outputFlags struct {
	Out    string
	Format string
}

// apply overrides the configured output format
func (o outputFlags) apply(cfg *config.Config) {
	if o.Format != "" {
		cfg.Output.Format = o.Format
	}
}

// outputPath returns the explicit --out path, or a name derived from input
// inside the configured output directory
func outputPath(explicit, input, dir, suffix string, format processing.Format) string {
	if explicit != "" {
		return explicit
	}
	return utils.GenerateOutputFilename(input, dir, "", suffix, format.Extension())
}

// writeFile writes data, creating the parent directory as needed
func writeFile(path string, data []byte) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
