package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check that files are acceptable uploads",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline(nil)
		if err != nil {
			return err
		}
		defer p.Close()

		invalid := 0
		w := cmd.OutOrStdout()
		for _, input := range args {
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if ok, reason := p.ValidateImageFile(data); ok {
				fmt.Fprintf(w, "%s: valid\n", input)
			} else {
				invalid++
				fmt.Fprintf(w, "%s: invalid: %s\n", input, reason)
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d files invalid", invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
