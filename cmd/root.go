package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rthomason/storelens/internal/config"
	"github.com/rthomason/storelens/internal/database"
	"github.com/rthomason/storelens/internal/interpret"
	"github.com/rthomason/storelens/internal/llm"
	"github.com/rthomason/storelens/internal/logging"
	"github.com/rthomason/storelens/internal/pipeline"
	"github.com/rthomason/storelens/internal/schema"
	"github.com/rthomason/storelens/internal/sqlgen"
)

var (
	flagDBURL         string
	flagLogLevel      string
	flagMaxRows       int
	flagLocalFallback bool
)

var rootCmd = &cobra.Command{
	Use:   "storelens",
	Short: "Ask an e-commerce Postgres database questions in plain English",
	Long: `storelens answers natural-language questions about a normalized e-commerce
database. Questions are turned into guarded SELECT statements, executed against
Postgres, and the results are explained back as short business narratives.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBURL, "db-url", "", "Postgres connection URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&flagMaxRows, "max-rows", 0, "Row bound applied to every query")
	rootCmd.PersistentFlags().BoolVar(&flagLocalFallback, "local-fallback", false, "Skip the generative backend entirely")
}

// loadConfig resolves configuration with persistent flag overrides applied
// and the logger initialized from the result
func loadConfig() (*config.Config, error) {
	overrides := map[string]interface{}{
		"db-url":    flagDBURL,
		"log-level": flagLogLevel,
	}

	if flagMaxRows > 0 {
		overrides["max-rows"] = flagMaxRows
	}

	if flagLocalFallback {
		overrides["local-fallback"] = true
	}

	cfg, err := config.LoadConfigWithOverrides(overrides)
	if err != nil {
		return nil, err
	}

	if err := logging.InitializeLogger(cfg.Logging); err != nil {
		return nil, err
	}

	return cfg, nil
}

// buildPipeline wires the stages together. When the local fallback is forced
// no backend client is constructed, so an API key is not required.
func buildPipeline(cfg *config.Config, introspector *schema.Introspector, db *database.DB) (*pipeline.Pipeline, error) {
	var service llm.Service

	if !cfg.LLM.UseLocalFallback {
		client, err := llm.NewClient(cfg.LLM)
		if err != nil {
			return nil, err
		}

		service = client
	}

	return pipeline.New(
		introspector,
		sqlgen.NewSynthesizer(service, cfg.LLM, cfg.Query.MaxRows),
		db,
		interpret.NewFormatter(service, cfg.LLM),
		cfg.Query.MaxRows,
	), nil
}
