package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/jigcrop"
	"github.com/menta2k/jigcrop/pkg/placeholder"
)

var placeholderOpts outputFlags

var placeholderCmd = &cobra.Command{
	Use:   "placeholder <template> <user-id>",
	Short: "Render a per-user placeholder image from a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, userID := args[0], args[1]
		data, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}

		p, cfg, err := newPipeline(placeholderOpts.apply)
		if err != nil {
			return err
		}
		defer p.Close()

		tmpl, err := p.LoadAndOrientImage(data)
		if err != nil {
			return err
		}

		res := p.Placeholder(tmpl, userID)
		if res.Status == jigcrop.StatusFailed {
			return res.Err
		}

		out := outputPath(placeholderOpts.Out, input, cfg.Output.OutputDir, "_"+userID, res.Format)
		if err := writeFile(out, res.Data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (colour %s)\n", input, out, placeholder.ColorFor(userID).Hex())
		return nil
	},
}

func init() {
	placeholderCmd.Flags().StringVarP(&placeholderOpts.Out, "out", "o", "", "output file")
	placeholderCmd.Flags().StringVarP(&placeholderOpts.Format, "format", "f", "png", "output format: jpg|png|webp")
	rootCmd.AddCommand(placeholderCmd)
}
