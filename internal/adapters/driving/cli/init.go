package cli

import "github.com/spf13/cobra"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config directory and database",
	Long: `Creates the quarry config directory with a default config file and
opens the database once so its schema is in place. Running init on an
existing installation is harmless.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	cmd.Printf("config:   %s\n", configStore.Path())
	cmd.Printf("database: %s\n", store.Path())
	return nil
}
