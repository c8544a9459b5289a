package errors

import "fmt"

// Common error messages for the mergelog CLI.
// These templates ensure consistent, actionable error messages.

// MissingEnvironment creates an error for missing required environment variables.
func MissingEnvironment(err error) *CLIError {
	return Wrap(err, Configuration,
		"Set the missing variables in your environment or CI secrets",
		"NOTION_TOKEN: Notion integration token (https://www.notion.so/my-integrations)",
		"NOTION_DATABASE_ID: ID of the changelog database shared with the integration",
		"GITHUB_TOKEN: token with pull request read and comment scope",
		"OPENAI_API_KEY: key for summary generation",
	)
}

// RepositoryNotDetected creates an error when the owner/repo slug cannot be resolved.
func RepositoryNotDetected() *CLIError {
	return NewPrerequisiteError(
		"could not determine the GitHub repository",
		"Pass it explicitly: mergelog run --repo owner/name",
		"Or set the GITHUB_REPOSITORY environment variable",
		"Or run from a git checkout with a GitHub origin remote",
	)
}

// InvalidRepositorySlug creates an error for a malformed owner/repo value.
func InvalidRepositorySlug(provided string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid repository slug: %q", provided),
		"mergelog run --repo <owner>/<name>",
		"Use the owner/name form, e.g. --repo acme/widgets",
	)
}

// PRNumberNotResolved creates an error when no pull request number is available.
func PRNumberNotResolved() *CLIError {
	return NewArgumentErrorWithUsage(
		"could not determine the pull request number",
		"mergelog run --pr <number>",
		"Pass the number explicitly with --pr",
		"In GitHub Actions, GITHUB_EVENT_PATH is read automatically for pull_request events",
	)
}

// PRFetchFailed creates an error when the pull request cannot be fetched.
func PRFetchFailed(repo string, number int, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("failed to fetch PR #%d from %s", number, repo),
		"Check that the PR number exists in the repository",
		"Verify GITHUB_TOKEN has read access to the repository",
	)
}

// ConfigLoadFailed creates an error for configuration loading failures.
func ConfigLoadFailed(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"failed to load configuration",
		"Check .mergelog/config.yml for syntax errors",
		"Validate with: mergelog config show",
	)
}

// InvalidDateOverride creates an error for a malformed --date value.
func InvalidDateOverride(provided string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid date: %q", provided),
		"mergelog run --date YYYY-MM-DD",
		"Use ISO calendar-date form, e.g. --date 2024-03-15",
	)
}

// SchemaPropertyMissing creates an error when the database lacks a required property.
func SchemaPropertyMissing(err error) *CLIError {
	return Wrap(err, Configuration,
		"Add a title property and a date property to the Notion database",
		"Or point at the right ones with date_property / title_property in config",
		"Check the database is shared with your integration",
	)
}

// SummarizationFailed creates an error when the model call fails or returns nothing.
func SummarizationFailed(err error) *CLIError {
	return WrapWithMessage(err, Summarization,
		"failed to generate changelog summary",
		"Check OPENAI_API_KEY is valid and has quota",
		"Try a different model: MERGELOG_MODEL=gpt-4o-mini",
	)
}

// UpsertFailed creates an error when the Notion write path fails after retries.
func UpsertFailed(err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		"failed to write the changelog entry to Notion",
		"Check NOTION_TOKEN and database sharing settings",
		"Transient API failures are retried; raise max_retries if they persist",
	)
}
