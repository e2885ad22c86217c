package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/muneeb-ds/ai-travel-advisor/internal/config"
)

var (
	configPath string
	verbose    bool
	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "AI travel advisor planning orchestrator",
	Long: `Advisor turns a free-form travel request into a validated, costed,
day-by-day itinerary. It extracts constraints with an LLM, fills the plan
from tool adapters (flights, lodging, events, weather, transit, currency)
and the traveler's own knowledge base, validates the result, and repairs
violations within bounded rounds.

Conversations are threaded: 'advisor plan' starts a thread, 'advisor refine'
continues one with a delta like "make it cheaper".`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default $ADVISOR_HOME/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging and progress events")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(knowledgeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config file and builds the shared logger before any
// command runs. A missing file falls back to defaults so the CLI works with
// zero setup.
func loadConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		home := os.Getenv("ADVISOR_HOME")
		if home == "" {
			home = ".advisor"
		}
		path = filepath.Join(home, "config.yaml")
	}

	loaded, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(path)
	if err != nil {
		return err
	}
	cfg = loaded

	level := slog.LevelInfo
	if verbose || cfg.Core.Debug || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger = slog.New(handler)
	slog.SetDefault(logger)

	return nil
}
