// Package cli implements the mergelog command tree.
package cli

import (
	"os"

	"github.com/ariel-frischer/mergelog/internal/errors"
	"github.com/ariel-frischer/mergelog/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mergelog",
	Short: "Log merged pull requests to a Notion changelog",
	Long: `mergelog turns a merged GitHub pull request into an entry in a Notion
changelog database. Each merge day gets one page ("Changelog YYYY-MM-DD");
entries carry an AI-drafted summary and an idempotency marker so re-runs
never duplicate content.

Credentials come from the environment:
  NOTION_TOKEN        Notion integration token
  NOTION_DATABASE_ID  Changelog database ID
  GITHUB_TOKEN        GitHub token (PR read + comment)
  OPENAI_API_KEY      Key for summary generation`,
	Example: `  # Log PR #42 of the current repository
  mergelog run --pr 42

  # In GitHub Actions the PR number comes from the event payload
  mergelog run

  # Log to a specific day instead of the merge day
  mergelog run --pr 42 --date 2024-03-15

  # Append to an explicit page, bypassing day lookup
  mergelog run --pr 42 --page-id 0123abcd...`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.PersistentFlags().String("config", "", "Path to project config file (default .mergelog/config.yml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// Execute runs the root command and maps errors to exit codes. CLIErrors are
// printed with category and remediation; anything else gets plain formatting.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if cliErr := errors.AsCLIError(err); cliErr != nil {
			errors.PrintError(cliErr)
			os.Exit(exitCodeFor(cliErr))
		}
		errors.PrintSimpleError(err, errors.Runtime)
		os.Exit(ExitRunFailed)
	}
}

func exitCodeFor(err *errors.CLIError) int {
	switch err.Category {
	case errors.Argument:
		return ExitInvalidArguments
	case errors.Configuration:
		return ExitConfigError
	case errors.Prerequisite:
		return ExitMissingPrerequisite
	case errors.Summarization:
		return ExitSummarizeFailed
	default:
		return ExitRunFailed
	}
}
