package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/jigcrop/internal/utils"
	"github.com/menta2k/jigcrop/pkg/processing"
)

var thumbOpts outputFlags

var thumbCmd = &cobra.Command{
	Use:   "thumb <file>",
	Short: "Write a thumbnail of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		data, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		p, cfg, err := newPipeline(thumbOpts.apply)
		if err != nil {
			return err
		}
		defer p.Close()

		thumb, scaled, err := p.EncodeThumbnail(data)
		if err != nil {
			return err
		}

		format, _ := processing.ParseFormat(cfg.Output.Format)
		out := outputPath(thumbOpts.Out, input, cfg.Output.OutputDir, cfg.Output.ThumbSuffix, format)
		if err := writeFile(out, thumb); err != nil {
			return err
		}

		note := "resized"
		if !scaled {
			note = "already small enough"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %s)\n", input, out, note, utils.FormatFileSize(int64(len(thumb))))
		return nil
	},
}

func init() {
	thumbCmd.Flags().StringVarP(&thumbOpts.Out, "out", "o", "", "output file")
	thumbCmd.Flags().StringVarP(&thumbOpts.Format, "format", "f", "", "output format: jpg|png|webp")
	rootCmd.AddCommand(thumbCmd)
}
