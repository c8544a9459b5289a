package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ariel-frischer/mergelog/internal/config"
	"github.com/ariel-frischer/mergelog/internal/errors"
	"github.com/ariel-frischer/mergelog/internal/ghpr"
	gitrepo "github.com/ariel-frischer/mergelog/internal/git"
	"github.com/ariel-frischer/mergelog/internal/logging"
	"github.com/ariel-frischer/mergelog/internal/notify"
	"github.com/ariel-frischer/mergelog/internal/output"
	"github.com/ariel-frischer/mergelog/internal/progress"
	"github.com/ariel-frischer/mergelog/internal/retry"
	"github.com/ariel-frischer/mergelog/internal/store/notion"
	"github.com/ariel-frischer/mergelog/internal/summarize"
	"github.com/ariel-frischer/mergelog/internal/upsert"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Log a merged pull request to the Notion changelog",
	Long: `Log a merged pull request to the Notion changelog.

The run fetches the PR from GitHub, drafts a summary of its changes, and
appends an entry to the day page matching the merge date (creating the page
if it is the day's first entry). A marker paragraph makes the operation
idempotent: re-running for the same PR is a no-op that still exits 0.

The repository is taken from --repo, then GITHUB_REPOSITORY, then the origin
remote of the current git checkout. The PR number is taken from --pr, then
the GitHub Actions event payload (GITHUB_EVENT_PATH).`,
	Example: `  # Log PR #42 of the current repository
  mergelog run --pr 42

  # Explicit repository, specific day
  mergelog run --repo acme/widgets --pr 42 --date 2024-03-15

  # Append to an explicit page instead of a day bucket
  mergelog run --pr 42 --page-id 0123abcd...

  # Skip the PR comment for this run
  mergelog run --pr 42 --no-comment`,
	RunE: runMergelog,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("repo", "", "Repository slug (owner/name)")
	runCmd.Flags().Int("pr", 0, "Pull request number")
	runCmd.Flags().String("date", "", "Log under this day instead of the merge day (YYYY-MM-DD)")
	runCmd.Flags().String("page-id", "", "Append to this Notion page instead of locating a day bucket")
	runCmd.Flags().Bool("no-comment", false, "Do not comment on the pull request")
	runCmd.Flags().Bool("dry-run", false, "Stop after drafting the summary; write nothing")
}

func runMergelog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	repoFlag, _ := cmd.Flags().GetString("repo")
	prFlag, _ := cmd.Flags().GetInt("pr")
	dateFlag, _ := cmd.Flags().GetString("date")
	pageID, _ := cmd.Flags().GetString("page-id")
	noComment, _ := cmd.Flags().GetBool("no-comment")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.ConfigLoadFailed(err)
	}

	logLevel := cfg.LogLevel
	if debug {
		logLevel = "debug"
	}
	log, err := logging.NewLogger(logLevel)
	if err != nil {
		return errors.ConfigLoadFailed(err)
	}
	defer func() { _ = log.Sync() }()

	if dateFlag != "" {
		if _, err := upsert.ParseDay(dateFlag); err != nil {
			return errors.InvalidDateOverride(dateFlag)
		}
	}

	secrets := config.LoadSecrets()
	if err := secrets.RequireForRun(pageID != ""); err != nil {
		return errors.MissingEnvironment(err)
	}

	slug, cliErr := resolveRepoSlug(repoFlag)
	if cliErr != nil {
		return cliErr
	}

	gh, err := ghpr.New(secrets.GitHubToken, slug)
	if err != nil {
		return errors.InvalidRepositorySlug(slug)
	}

	prNumber, cliErr := resolvePRNumber(prFlag, log)
	if cliErr != nil {
		return cliErr
	}

	display := progress.NewStepDisplay()
	defer display.Stop()

	display.StartStep(fmt.Sprintf("Fetching PR #%d from %s", prNumber, slug))
	pr, err := gh.PullRequest(ctx, prNumber)
	if err != nil {
		display.FailStep(fmt.Sprintf("Fetching PR #%d failed", prNumber))
		return errors.PRFetchFailed(slug, prNumber, err)
	}
	if !pr.Merged {
		display.Stop()
		output.PrintNotice(out, fmt.Sprintf("PR #%d is not merged; nothing to log", prNumber))
		return nil
	}
	display.CompleteStep(fmt.Sprintf("Fetched PR #%d: %s", pr.Number, pr.Title))
	output.PrintRunHeader(out, slug, pr.Number, pr.Title)

	display.StartStep("Collecting changed files and commits")
	files, err := gh.ChangedFiles(ctx, prNumber)
	if err != nil {
		// Context collection is best-effort: a summary from title and
		// description alone is still useful.
		log.Warn("listing changed files failed", zap.Error(err))
	}
	commits, err := gh.CommitMessages(ctx, prNumber)
	if err != nil {
		log.Warn("listing commits failed", zap.Error(err))
	}
	display.CompleteStep(fmt.Sprintf("Collected %d files, %d commits", len(files), len(commits)))

	summarizer, err := summarize.New(secrets.OpenAIAPIKey, cfg.Model)
	if err != nil {
		return errors.SummarizationFailed(err)
	}

	display.StartStep(fmt.Sprintf("Drafting summary with %s", summarizer.Model()))
	summary, err := summarizer.Summarize(ctx, summarize.BuildContext(slug, pr, files, commits))
	if err != nil {
		display.FailStep("Summary generation failed")
		return errors.SummarizationFailed(err)
	}
	display.CompleteStep("Summary drafted")

	if dryRun {
		display.Stop()
		output.PrintNotice(out, "Dry run; skipping Notion write and PR comment")
		fmt.Fprintln(out, summary)
		return nil
	}

	notionClient, err := notion.New(secrets.NotionToken, secrets.NotionDatabaseID)
	if err != nil {
		return errors.MissingEnvironment(err)
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = uint64(cfg.MaxRetries)
	orchestrator := upsert.New(notionClient, policy, log)

	req := upsert.Request{
		Entry: upsert.Entry{
			Repo:    slug,
			Number:  pr.Number,
			Title:   pr.Title,
			URL:     pr.URL,
			Summary: summary,
		},
		MergedAt:     pr.MergedAt,
		Timezone:     cfg.Timezone,
		DateOverride: dateFlag,
		PageID:       pageID,
		Overrides: upsert.Overrides{
			Title: cfg.TitleProperty,
			Date:  cfg.DateProperty,
		},
	}

	display.StartStep("Writing changelog entry to Notion")
	result, err := orchestrator.Upsert(ctx, req)
	if err != nil {
		display.FailStep("Notion write failed")
		var schemaErr *upsert.SchemaError
		if stderrors.As(err, &schemaErr) {
			return errors.SchemaPropertyMissing(err)
		}
		return errors.UpsertFailed(err)
	}
	display.Stop()

	printOutcome(out, result, pr.Number)

	if result.Skipped {
		return nil
	}

	notifier := notify.NewHandler(notifyConfig(cfg, noComment), prCommentSender{gh: gh}, log)
	notifier.EntryLogged(ctx, pr.Number, notify.Entry{
		Day:      string(result.Day),
		Timezone: cfg.Timezone,
		PageURL:  result.Page.URL,
	})

	return nil
}

// resolveRepoSlug applies the flag > env > git-origin precedence.
func resolveRepoSlug(flagValue string) (string, *errors.CLIError) {
	if flagValue != "" {
		if _, _, err := ghpr.SplitSlug(flagValue); err != nil {
			return "", errors.InvalidRepositorySlug(flagValue)
		}
		return flagValue, nil
	}
	if env := os.Getenv("GITHUB_REPOSITORY"); env != "" {
		if _, _, err := ghpr.SplitSlug(env); err != nil {
			return "", errors.InvalidRepositorySlug(env)
		}
		return env, nil
	}
	if slug, err := gitrepo.OriginSlug("."); err == nil {
		return slug, nil
	}
	return "", errors.RepositoryNotDetected()
}

// resolvePRNumber applies the flag > event-payload precedence.
func resolvePRNumber(flagValue int, log *zap.Logger) (int, *errors.CLIError) {
	if flagValue > 0 {
		return flagValue, nil
	}
	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	n, err := ghpr.PRNumberFromEvent(eventPath)
	if err != nil {
		log.Warn("reading workflow event payload failed",
			zap.String("path", eventPath), zap.Error(err))
	}
	if n > 0 {
		return n, nil
	}
	return 0, errors.PRNumberNotResolved()
}

func printOutcome(out io.Writer, result upsert.Result, prNumber int) {
	switch {
	case result.Skipped:
		output.PrintSkipped(out, fmt.Sprintf("PR #%d already logged; nothing written", prNumber))
	case result.Created:
		output.PrintSuccess(out, fmt.Sprintf("Created %q and logged PR #%d", upsert.BucketTitle(result.Day), prNumber))
	case result.Day == "":
		output.PrintSuccess(out, fmt.Sprintf("Appended PR #%d to page %s", prNumber, result.Page.ID))
	default:
		output.PrintSuccess(out, fmt.Sprintf("Appended PR #%d to %q", prNumber, upsert.BucketTitle(result.Day)))
	}
	if result.Page.URL != "" {
		output.PrintNotice(out, result.Page.URL)
	}
}

func notifyConfig(cfg *config.Configuration, noComment bool) notify.Config {
	c := cfg.Notify()
	if noComment {
		c.Enabled = false
	}
	return c
}

// prCommentSender adapts the GitHub client to the notify.Sender interface.
type prCommentSender struct {
	gh *ghpr.Client
}

func (s prCommentSender) Send(ctx context.Context, prNumber int, body string) error {
	return s.gh.Comment(ctx, prNumber, body)
}
