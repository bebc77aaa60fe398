package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	seedDir   string
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Build and ingest the sample workspace",
	Long: `Materialises a small synthetic vault and git repository, ingests
both, and registers labelled eval queries against them. Re-seeding an
unchanged workspace writes nothing.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var seedPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove sample documents and eval queries from the store",
	Args:  cobra.NoArgs,
	RunE:  runSeedPurge,
}

func init() {
	seedCmd.PersistentFlags().StringVar(&seedDir, "workspace", "",
		"sample workspace directory (default ~/.quarry/sample)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false,
		"rebuild the sample workspace from scratch")
	seedCmd.AddCommand(seedPurgeCmd)
	rootCmd.AddCommand(seedCmd)
}

func sampleWorkspaceDir() (string, error) {
	if seedDir != "" {
		return seedDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".quarry", "sample"), nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if seedService == nil {
		if err := ensureServices(); err != nil {
			return err
		}
	}

	dir, err := sampleWorkspaceDir()
	if err != nil {
		return err
	}
	result, err := seedService.Seed(cmd.Context(), dir, seedForce)
	if err != nil {
		return err
	}

	cmd.Printf("sample workspace: %s\n", result.WorkspaceDir)
	cmd.Printf("ingested %d note chunks and %d commit chunks\n",
		result.NoteChunksInserted, result.GitChunksInserted)
	cmd.Printf("loaded %d eval queries\n", result.EvalQueriesLoaded)
	cmd.Println(`try: quarry search "parser bounds bug"`)
	return nil
}

func runSeedPurge(cmd *cobra.Command, _ []string) error {
	if seedService == nil {
		if err := ensureServices(); err != nil {
			return err
		}
	}

	dir, err := sampleWorkspaceDir()
	if err != nil {
		return err
	}
	result, err := seedService.Purge(cmd.Context(), dir)
	if err != nil {
		return err
	}

	cmd.Printf("removed %d documents and %d eval queries\n",
		result.DocumentsDeleted, result.EvalQueriesDeleted)
	return nil
}
