package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codesage-ai/codesage/internal/config"
	"github.com/codesage-ai/codesage/internal/history"
	"github.com/codesage-ai/codesage/internal/llm"
	"github.com/codesage-ai/codesage/internal/logger"
	"github.com/codesage-ai/codesage/internal/review"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "codesage",
	Short: "codesage reviews source code with a generative-AI model.",
	Long: `A CLI for the CodeSage review pipeline: submit local files or a GitHub
blob URL for an AI review, and browse the local review history.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// pipeline bundles the pieces a CLI review needs.
type pipeline struct {
	svc     *review.Service
	history history.Store
	logger  *slog.Logger
}

// newPipeline builds the review service and local history store directly,
// without going through the HTTP server.
func newPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.NewLogger(logger.Config{Level: level, Format: cfg.LogFormat}, os.Stderr)

	client, err := llm.NewClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	prompts, err := llm.NewPromptBuilder()
	if err != nil {
		return nil, err
	}

	historyPath, err := history.DefaultPath()
	if err != nil {
		return nil, err
	}

	return &pipeline{
		svc:     review.NewService(cfg, client, prompts, log),
		history: history.NewFileStore(historyPath),
		logger:  log,
	}, nil
}
