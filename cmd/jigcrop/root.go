package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/menta2k/jigcrop"
	"github.com/menta2k/jigcrop/internal/config"
)

// logLevelEnv overrides the default log level when --log-level is not set
const logLevelEnv = "JIGCROP_LOG_LEVEL"

var (
	cfgFile  string
	logLevel string
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "jigcrop",
	Short:         "Marker-guided product cropping for jig photographs",
	Version:       jigcrop.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevel(logLevel)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.GetConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (env "+logLevelEnv+")")
}

// parseLevel resolves the flag, then the environment, then "warn"
func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		s = os.Getenv(logLevelEnv)
	}
	if s == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// loadConfig reads --config, or the default path when present, or defaults
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath()
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.LoadFromFile(path)
}

// newPipeline builds a pipeline from the loaded configuration after
// applying adjust to it
func newPipeline(adjust func(*config.Config)) (*jigcrop.Pipeline, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	pcfg, err := cfg.ToPipeline(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	p, err := jigcrop.New(pcfg)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}
