package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/menta2k/jigcrop"
	"github.com/menta2k/jigcrop/internal/utils"
)

type batchOptions struct {
	outputFlags
	Workers int
	XOffset int
	YOffset int
	Mode    string
}

var batchOpts batchOptions

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Crop every image under a directory in parallel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args[0], batchOpts)
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOpts.Out, "out", "o", "", "output directory (default from config)")
	batchCmd.Flags().StringVarP(&batchOpts.Format, "format", "f", "", "output format: jpg|png|webp")
	batchCmd.Flags().IntVarP(&batchOpts.Workers, "workers", "w", runtime.NumCPU(), "number of parallel workers")
	batchCmd.Flags().IntVarP(&batchOpts.XOffset, "x-offset", "x", 0, "shift every crop horizontally (pixels)")
	batchCmd.Flags().IntVarP(&batchOpts.YOffset, "y-offset", "y", 0, "shift every crop vertically (pixels)")
	batchCmd.Flags().StringVarP(&batchOpts.Mode, "mode", "m", "crop", "crop|outline")

	rootCmd.AddCommand(batchCmd)
}

// batchResult is one processed file as reported back by a worker
type batchResult struct {
	Input  string
	Output string
	Status jigcrop.Status
	Reason string
	Err    error
}

func runBatch(cmd *cobra.Command, dir string, opts batchOptions) error {
	p, cfg, err := newPipeline(opts.apply)
	if err != nil {
		return err
	}
	defer p.Close()

	outDir := firstNonEmpty(opts.Out, cfg.Output.OutputDir)
	files, err := utils.ListImageFiles(dir, outDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files found in %s", dir)
	}
	if err := utils.EnsureDir(outDir); err != nil {
		return err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}
	mode := jigcrop.ParseMode(opts.Mode)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("cropping"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	tasks := make(chan string, workers)
	results := make(chan batchResult, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			caller := fmt.Sprintf("batch-%d", workerID)
			for input := range tasks {
				results <- processFile(p, input, outDir, cfg.Output.Suffix, opts.XOffset, opts.YOffset, mode, caller)
			}
		}(i)
	}

	go func() {
		defer close(tasks)
		feedTasks(cmd.Context(), files, tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []batchResult
	for res := range results {
		collected = append(collected, res)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return reportBatch(cmd, collected, len(files))
}

// feedTasks sends files until they run out or ctx is cancelled
func feedTasks(ctx context.Context, files []string, tasks chan<- string) {
	for _, f := range files {
		select {
		case <-ctx.Done():
			return
		case tasks <- f:
		}
	}
}

// processFile crops one file and writes the result into outDir
func processFile(p *jigcrop.Pipeline, input, outDir, suffix string, xOffset, yOffset int, mode jigcrop.Mode, caller string) batchResult {
	r := batchResult{Input: input}

	data, err := os.ReadFile(input)
	if err != nil {
		r.Status, r.Err = jigcrop.StatusFailed, err
		return r
	}

	res := p.ProcessImage(data, xOffset, yOffset, mode, caller)
	r.Status, r.Reason = res.Status, res.Reason
	if !res.OK() {
		r.Err = res.Err
		return r
	}

	r.Output = utils.GenerateOutputFilename(input, outDir, "", suffix, res.Format.Extension())
	if err := writeFile(r.Output, res.Data); err != nil {
		r.Status, r.Err = jigcrop.StatusFailed, err
	}
	return r
}

// reportBatch prints a summary and fails when any file could not be processed
func reportBatch(cmd *cobra.Command, results []batchResult, total int) error {
	sort.Slice(results, func(i, j int) bool { return results[i].Input < results[j].Input })

	counts := map[jigcrop.Status]int{}
	w := cmd.OutOrStdout()
	for _, r := range results {
		counts[r.Status]++
		switch r.Status {
		case jigcrop.StatusFallback:
			fmt.Fprintf(w, "fallback %s: %s\n", filepath.Base(r.Input), r.Reason)
		case jigcrop.StatusFailed:
			msg := r.Reason
			if msg == "" && r.Err != nil {
				msg = r.Err.Error()
			}
			fmt.Fprintf(w, "failed   %s: %s\n", filepath.Base(r.Input), msg)
		}
	}

	fmt.Fprintf(w, "\n%d files: %d cropped, %d fallback, %d failed\n",
		total, counts[jigcrop.StatusCropped], counts[jigcrop.StatusFallback], counts[jigcrop.StatusFailed])

	if skipped := total - len(results); skipped > 0 {
		return fmt.Errorf("interrupted, %d files not processed", skipped)
	}
	if counts[jigcrop.StatusFailed] > 0 {
		return fmt.Errorf("%d files failed", counts[jigcrop.StatusFailed])
	}
	return nil
}
