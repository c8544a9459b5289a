package cli

import (
	"fmt"

	"github.com/ariel-frischer/mergelog/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mergelog %s (commit %s, built %s)\n",
			version.Version, version.Commit, version.BuildDate)
	},
}

var sauceCmd = &cobra.Command{
	Use:    "sauce",
	Short:  "Where does this come from?",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "https://github.com/ariel-frischer/mergelog")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sauceCmd)
}
