package cli

// Exit codes for the mergelog CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution. A run that skips
	// an already-logged entry also exits 0: idempotent re-runs are success.
	ExitSuccess = 0

	// ExitRunFailed indicates the run failed (including retry exhaustion
	// on the Notion write path)
	ExitRunFailed = 1

	// ExitSummarizeFailed indicates summary generation failed
	ExitSummarizeFailed = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitConfigError indicates invalid or missing configuration,
	// including missing environment credentials and database schema problems
	ExitConfigError = 4

	// ExitMissingPrerequisite indicates a required input could not be
	// resolved (repository slug, PR number)
	ExitMissingPrerequisite = 5
)
