package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/jigcrop"
	"github.com/menta2k/jigcrop/internal/config"
	"github.com/menta2k/jigcrop/internal/utils"
)

type cropOptions struct {
	outputFlags
	XOffset   int
	YOffset   int
	Mode      string
	Caller    string
	Thumb     bool
	Describe  bool
	Model     string
	OllamaURL string
}

var cropOpts cropOptions

var cropCmd = &cobra.Command{
	Use:   "crop <file>",
	Short: "Crop the product between the jig markers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCrop(cmd, args[0], cropOpts)
	},
}

func init() {
	cropCmd.Flags().StringVarP(&cropOpts.Out, "out", "o", "", "output file (default <output_dir>/<name><suffix>.<format>)")
	cropCmd.Flags().StringVarP(&cropOpts.Format, "format", "f", "", "output format: jpg|png|webp")
	cropCmd.Flags().IntVarP(&cropOpts.XOffset, "x-offset", "x", 0, "shift the crop horizontally (pixels)")
	cropCmd.Flags().IntVarP(&cropOpts.YOffset, "y-offset", "y", 0, "shift the crop vertically (pixels)")
	cropCmd.Flags().StringVarP(&cropOpts.Mode, "mode", "m", "crop", "crop|outline")
	cropCmd.Flags().StringVar(&cropOpts.Caller, "caller", "cli", "caller id attached to log lines")
	cropCmd.Flags().BoolVar(&cropOpts.Thumb, "thumb", false, "also write a thumbnail of the input")
	cropCmd.Flags().BoolVar(&cropOpts.Describe, "describe", false, "ask a vision model for title, description and tags")
	cropCmd.Flags().StringVar(&cropOpts.Model, "model", "", "vision model for --describe (default from config)")
	cropCmd.Flags().StringVar(&cropOpts.OllamaURL, "ollama-url", "", "Ollama server for --describe (default from config)")

	rootCmd.AddCommand(cropCmd)
}

func runCrop(cmd *cobra.Command, input string, opts cropOptions) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	p, cfg, err := newPipeline(opts.apply)
	if err != nil {
		return err
	}
	defer p.Close()

	res := p.ProcessImage(data, opts.XOffset, opts.YOffset, jigcrop.ParseMode(opts.Mode), opts.Caller)
	if res.Status == jigcrop.StatusFailed {
		return fmt.Errorf("%s: %s", input, res.Reason)
	}

	out := outputPath(opts.Out, input, cfg.Output.OutputDir, cfg.Output.Suffix, res.Format)
	if err := writeFile(out, res.Data); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %s -> %s (%s, %s)\n", input, res.Status, out, res.Format.MimeType(), utils.FormatFileSize(int64(len(res.Data))))
	if res.Reason != "" {
		fmt.Fprintf(w, "  reason: %s\n", res.Reason)
	} else {
		fmt.Fprintf(w, "  jig side: %s, crop: %s\n", res.Side, res.Rect)
	}

	if opts.Thumb {
		thumb, _, err := p.EncodeThumbnail(data)
		if err != nil {
			return fmt.Errorf("thumbnail: %w", err)
		}
		thumbPath := utils.GenerateOutputFilename(input, cfg.Output.OutputDir, "", cfg.Output.ThumbSuffix, res.Format.Extension())
		if err := writeFile(thumbPath, thumb); err != nil {
			return err
		}
		fmt.Fprintf(w, "  thumbnail -> %s\n", thumbPath)
	}

	if opts.Describe {
		if res.Status != jigcrop.StatusCropped {
			fmt.Fprintln(w, "  describe: skipped, no product crop")
			return nil
		}
		return describeOutput(cmd.Context(), p, cfg, opts, w, res.Data, out)
	}
	return nil
}

// describeOutput asks the vision model about the cropped product and writes
// the answer next to the image as JSON
func describeOutput(ctx context.Context, p *jigcrop.Pipeline, cfg *config.Config, opts cropOptions, w io.Writer, cropped []byte, out string) error {
	d, model, err := newDescriber(cfg, opts.OllamaURL, opts.Model)
	if err != nil {
		return err
	}

	img, err := p.LoadAndOrientImage(cropped)
	if err != nil {
		return err
	}

	desc, err := d.Describe(ctx, model, img)
	if err != nil {
		return fmt.Errorf("describe: %w", err)
	}
	return writeDescription(w, desc, out)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
