// Package cli wires the cobra command tree to the core services. Commands
// that touch the store build the service graph lazily, so help and version
// never open the database.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/config/file"
	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/storage/sqlite"
	"github.com/quarry-labs/quarry-cli/internal/chunker"
	"github.com/quarry-labs/quarry-cli/internal/config"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/core/services"
	"github.com/quarry-labs/quarry-cli/internal/logger"
	commitnorm "github.com/quarry-labs/quarry-cli/internal/normalisers/commit"
	notenorm "github.com/quarry-labs/quarry-cli/internal/normalisers/note"
	"github.com/quarry-labs/quarry-cli/internal/sources/gitlog"
	"github.com/quarry-labs/quarry-cli/internal/sources/notes"
	"github.com/quarry-labs/quarry-cli/internal/sources/sample"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0"

var (
	flagVerbose   bool
	flagDBPath    string
	flagConfigDir string
)

var (
	settings    config.Settings
	configStore *file.ConfigStore
	store       *sqlite.Store

	ingestService driving.IngestService
	searchService driving.SearchService
	evalService   driving.EvalService
	seedService   driving.SeedService
)

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Local-first evidence store with lexical retrieval",
	Long: `Quarry ingests markdown notes and git history into a local
content-addressed store and answers free-text queries with ranked,
citable excerpts. Everything runs on your machine; there is no server.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "path to the sqlite database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.quarry)")
}

// Execute runs the root command and closes the store on the way out.
func Execute() {
	defer closeStore()
	if err := rootCmd.Execute(); err != nil {
		closeStore()
		os.Exit(1)
	}
}

// ensureServices opens the config store and database and builds the service
// graph. Safe to call more than once; subsequent calls are no-ops.
func ensureServices() error {
	if store != nil {
		return nil
	}

	cs, err := ensureConfigStore()
	if err != nil {
		return err
	}
	settings = config.Load(cs)

	dbPath := settings.DBPath
	if flagDBPath != "" {
		dbPath = flagDBPath
	}
	s, err := sqlite.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	store = s

	wireServices(s.EvidenceStore(), s.EvalQueryStore())
	return nil
}

// ensureConfigStore opens the TOML config store without touching the
// database. Config commands use it directly.
func ensureConfigStore() (*file.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}
	cs, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config store: %w", err)
	}
	configStore = cs
	return cs, nil
}

// wireServices constructs the core services over the given stores. Tests
// call it directly with in-memory stores.
func wireServices(evidence driven.EvidenceStore, queries driven.EvalQueryStore) {
	ch := chunker.New(
		chunker.WithMaxTokens(settings.Chunking.MaxTokens),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	ingestService = services.NewIngestService(evidence, ch,
		notes.New(), gitlog.New(),
		notenorm.New(), commitnorm.New(),
		settings.Git.MaxCommits)
	searchService = services.NewSearchService(evidence,
		services.WithWeights(settings.Retrieval.LexicalWeight, settings.Retrieval.RecencyWeight),
		services.WithIDFWeighting(settings.Retrieval.IDFWeighting))
	evalService = services.NewEvalService(queries, searchService)
	seedService = services.NewSeedService(sample.New(), evidence, queries, ingestService)
}

func closeStore() {
	if store != nil {
		_ = store.Close()
		store = nil
	}
}
