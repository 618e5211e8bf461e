package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/jigcrop/internal/config"
	"github.com/menta2k/jigcrop/pkg/describe"
	"github.com/menta2k/jigcrop/pkg/ollama"
	"github.com/menta2k/jigcrop/pkg/types"
)

type describeOptions struct {
	Model     string
	OllamaURL string
	Test      bool
}

var describeOpts describeOptions

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Ask a vision model for the title, description and tags of a product image",
	Long: `Describe sends an image, usually a crop written by "jigcrop crop", to an
Ollama vision model and writes the answer next to it as JSON.
With --test it only checks that the model can see the image.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDescribe(cmd, args[0], describeOpts)
	},
}

func init() {
	describeCmd.Flags().StringVar(&describeOpts.Model, "model", "", "vision model (default from config)")
	describeCmd.Flags().StringVar(&describeOpts.OllamaURL, "ollama-url", "", "Ollama server (default from config)")
	describeCmd.Flags().BoolVar(&describeOpts.Test, "test", false, "ask a plain question to check the model receives the image")

	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, input string, opts describeOptions) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	p, cfg, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	img, err := p.LoadAndOrientImage(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	d, model, err := newDescriber(cfg, opts.OllamaURL, opts.Model)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.Test {
		reply, err := d.TestVision(cmd.Context(), model, img)
		if err != nil {
			return fmt.Errorf("vision test: %w", err)
		}
		fmt.Fprintf(w, "%s (%s): %s\n", input, model, strings.TrimSpace(reply))
		return nil
	}

	desc, err := d.Describe(cmd.Context(), model, img)
	if err != nil {
		return fmt.Errorf("describe: %w", err)
	}
	return writeDescription(w, desc, input)
}

// newDescriber connects to the configured Ollama server; flag values win over config
func newDescriber(cfg *config.Config, url, model string) (*describe.Describer, string, error) {
	client, err := ollama.NewClient(firstNonEmpty(url, cfg.Describe.OllamaURL))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Ollama client: %w", err)
	}
	client.SetTimeout(cfg.Timeout())
	return describe.NewDescriber(client), firstNonEmpty(model, cfg.Describe.Model), nil
}

// writeDescription stores desc as JSON beside image and prints a summary
func writeDescription(w io.Writer, desc *types.ProductDescription, image string) error {
	js, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal description: %w", err)
	}
	jsonPath := strings.TrimSuffix(image, filepath.Ext(image)) + ".json"
	if err := writeFile(jsonPath, js); err != nil {
		return err
	}
	fmt.Fprintf(w, "  title: %s\n  tags: %s\n  description -> %s\n", desc.Title, strings.Join(desc.Tags, ", "), jsonPath)
	return nil
}
