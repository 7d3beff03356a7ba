package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"legal-lens/internal/cache"
	"legal-lens/internal/config"
	"legal-lens/internal/llmservice"
	"legal-lens/internal/pipeline"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "legal-lens",
	Short:        "Plain-language summaries and risk checks for legal documents",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		setupLogger(&cfg.Log)
		log.Debug().Str("provider", cfg.LLM.Provider).Str("cache", cfg.Cache.Backend).Msg("Loaded config")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configFilePath, "path to the YAML config file")
}

// newPipeline wires the cache and model backend from cfg. The returned
// closer releases the cache.
func newPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	c, err := cache.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	backend, err := llmservice.New(&cfg.LLM)
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("create llm backend: %w", err)
	}
	p, err := pipeline.New(cfg, c, backend)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return p, func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing cache")
		}
	}, nil
}
