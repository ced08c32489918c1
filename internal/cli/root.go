// Package cli provides the command-line interface for bookgraph.
package cli

import (
	"io"
	"log/slog"

	"github.com/raphaelgruber/bookgraph/internal/cache"
	"github.com/raphaelgruber/bookgraph/internal/config"
	"github.com/raphaelgruber/bookgraph/internal/gutenberg"
	"github.com/raphaelgruber/bookgraph/internal/llm"
	"github.com/raphaelgruber/bookgraph/internal/metrics"
	"github.com/raphaelgruber/bookgraph/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, loaded once before any command runs
	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bookgraph",
	Short: "Analyze public-domain books into character graphs",
	Long: `Bookgraph fetches a public-domain book from Project Gutenberg, runs a
literary analysis through the configured LLM, and renders the result as a
character-relationship graph.

Use 'analyze' for a styled terminal report or 'graph' to export the
renderable node/edge graph as JSON.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

// newService builds the analysis pipeline for a single CLI invocation.
// The CLI talks to the model directly; no server process is involved.
func newService() (*service.AnalysisService, error) {
	mc := metrics.NewCollector()

	model, err := llm.NewModel(cfg, mc)
	if err != nil {
		return nil, err
	}

	books := gutenberg.NewClient(cfg.GutenbergBaseURL, cfg.FetchTimeout, mc)

	// CLI runs are one-shot, so logs go to the file only unless -v is set.
	var logger *slog.Logger
	if verbose {
		logger, _ = config.SetupLogger(cfg.LogFile, slog.LevelDebug)
	} else {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return service.NewAnalysisService(books, model, cache.New(cfg.CacheTTL), logger, mc), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(graphCmd)
}
