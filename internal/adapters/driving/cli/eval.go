package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	evalNamespace string
	evalPrefix    string
	evalTopK      int
	evalJSON      bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Measure retrieval quality against labelled queries",
}

var evalLoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load labelled eval queries from a JSON file",
	Long: `Reads a JSON array of {"query_text", "expected_source_uris"} rows
and upserts them under the given namespace. Reloading a file updates
labels in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvalLoad,
}

var evalRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the evaluation harness over stored queries",
	Long: `Runs every stored query whose namespace matches the prefix and
reports Recall@K, MRR@K and the citation hit rate.`,
	Args: cobra.NoArgs,
	RunE: runEvalRun,
}

func init() {
	evalLoadCmd.Flags().StringVar(&evalNamespace, "namespace", "",
		"namespace to load the queries under")
	evalRunCmd.Flags().StringVar(&evalPrefix, "namespace-prefix", "",
		"only run queries whose namespace has this prefix")
	evalRunCmd.Flags().IntVarP(&evalTopK, "top-k", "k", 0,
		"evaluate the top K results (0 = configured default)")
	evalRunCmd.Flags().BoolVar(&evalJSON, "json", false, "output the summary as JSON")
	evalCmd.AddCommand(evalLoadCmd, evalRunCmd)
	rootCmd.AddCommand(evalCmd)
}

func runEvalLoad(cmd *cobra.Command, args []string) error {
	if evalService == nil {
		if err := ensureServices(); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading query file: %w", err)
	}
	n, err := evalService.LoadQueries(cmd.Context(), data, evalNamespace)
	if err != nil {
		return err
	}
	cmd.Printf("loaded %d eval queries\n", n)
	return nil
}

func runEvalRun(cmd *cobra.Command, _ []string) error {
	if evalService == nil {
		if err := ensureServices(); err != nil {
			return err
		}
	}

	summary, err := evalService.Run(cmd.Context(), evalPrefix, resolveTopK(evalTopK))
	if err != nil {
		return err
	}
	if evalJSON {
		return printJSON(cmd, summary)
	}

	cmd.Printf("queries evaluated: %d\n", summary.QueryCount)
	cmd.Printf("recall@%d:          %.3f\n", summary.TopK, summary.RecallAtK)
	cmd.Printf("mrr@%d:             %.3f\n", summary.TopK, summary.MRRAtK)
	cmd.Printf("citation hit rate: %.3f\n", summary.CitationHitRate)
	if summary.LabelErrors > 0 {
		cmd.Printf("label errors:      %d (counted as zeros)\n", summary.LabelErrors)
	}
	for _, r := range summary.Results {
		if r.LabelError {
			cmd.Printf("  label error: %q\n", r.Query.QueryText)
			continue
		}
		if !r.RecallHit {
			cmd.Printf("  miss: %q\n", r.Query.QueryText)
		}
	}
	return nil
}
