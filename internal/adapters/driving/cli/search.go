package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	citeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	snippetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the evidence store",
	Long: `Ranks stored chunks against the query by lexical overlap blended
with recency. Each hit carries a citation back to its source document.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question with cited evidence",
	Long: `Like search, but presents the best-matching excerpt as a grounded
answer followed by the supporting citations.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, askCmd} {
		c.Flags().IntVarP(&searchTopK, "top-k", "k", 0,
			"maximum number of results (0 = configured default)")
		c.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	}
	rootCmd.AddCommand(searchCmd, askCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	hits, err := search(cmd, args[0])
	if err != nil {
		return err
	}
	if searchJSON {
		return printJSON(cmd, hits)
	}
	if len(hits) == 0 {
		cmd.Println("no results")
		return nil
	}
	for i, h := range hits {
		cmd.Printf("%2d. %s %s\n", i+1,
			titleStyle.Render(h.Title),
			scoreStyle.Render(fmt.Sprintf("(%s, %.3f)", h.Kind, h.Score)))
		cmd.Printf("    %s\n", snippetStyle.Render(h.Snippet))
		cmd.Printf("    %s\n", citeStyle.Render(formatCitation(h.Citation)))
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	hits, err := search(cmd, args[0])
	if err != nil {
		return err
	}
	if searchJSON {
		return printJSON(cmd, hits)
	}
	if len(hits) == 0 {
		cmd.Println("no evidence found")
		return nil
	}

	best := hits[0]
	cmd.Printf("%s\n\n", titleStyle.Render(best.Title))
	cmd.Printf("%s\n\n", snippetStyle.Render(best.Snippet))
	cmd.Println("sources:")
	for i, h := range hits {
		cmd.Printf("  [%d] %s %s\n", i+1,
			citeStyle.Render(formatCitation(h.Citation)),
			scoreStyle.Render(fmt.Sprintf("%.3f", h.Score)))
	}
	return nil
}

func search(cmd *cobra.Command, query string) ([]domain.RetrievalHit, error) {
	if searchService == nil {
		if err := ensureServices(); err != nil {
			return nil, err
		}
	}
	return searchService.Search(cmd.Context(), query, domain.RetrievalOptions{
		TopK: resolveTopK(searchTopK),
	})
}

// resolveTopK falls back from the flag to the configured value to the
// built-in default.
func resolveTopK(flag int) int {
	if flag > 0 {
		return flag
	}
	if settings.Retrieval.TopK > 0 {
		return settings.Retrieval.TopK
	}
	return domain.DefaultTopK
}

func formatCitation(c domain.Citation) string {
	return fmt.Sprintf("%s#%d", c.SourceURI, c.Position)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
