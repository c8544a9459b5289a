// Package ghpr is the GitHub side of a run: pull request metadata, the
// changed-file and commit context the summarizer works from, and the
// comment posted back once the changelog entry lands.
package ghpr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

const (
	// maxFiles caps how many changed files feed the summary context.
	maxFiles = 200
	// maxCommits caps how many commit messages feed the summary context.
	maxCommits = 50

	listPageSize = 100
)

// PullRequest is the slice of GitHub's PR object a run needs.
type PullRequest struct {
	Number       int
	Title        string
	Body         string
	URL          string
	Author       string
	MergedBy     string
	Merged       bool
	MergedAt     time.Time
	Labels       []string
	Additions    int
	Deletions    int
	ChangedFiles int
}

// ChangedFile is one file touched by a pull request.
type ChangedFile struct {
	Filename  string
	Additions int
	Deletions int
	Changes   int
}

// Client talks to one repository's pull requests.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// New returns a Client for the "owner/repo" slug.
func New(token, slug string) (*Client, error) {
	owner, repo, err := SplitSlug(slug)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("github token required")
	}
	return &Client{
		gh:    github.NewClient(nil).WithAuthToken(token),
		owner: owner,
		repo:  repo,
	}, nil
}

// SplitSlug validates and splits an "owner/repo" slug.
func SplitSlug(slug string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(slug), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository slug %q (want owner/repo)", slug)
	}
	return parts[0], parts[1], nil
}

// Slug returns the client's "owner/repo" identifier.
func (c *Client) Slug() string {
	return c.owner + "/" + c.repo
}

// PullRequest fetches one pull request.
func (c *Client) PullRequest(ctx context.Context, number int) (*PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR #%d: %w", number, err)
	}

	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		if name := l.GetName(); name != "" {
			labels = append(labels, name)
		}
	}

	return &PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		URL:          pr.GetHTMLURL(),
		Author:       pr.GetUser().GetLogin(),
		MergedBy:     pr.GetMergedBy().GetLogin(),
		Merged:       pr.GetMerged(),
		MergedAt:     pr.GetMergedAt().Time,
		Labels:       labels,
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
	}, nil
}

// ChangedFiles lists the files a pull request touched, capped at maxFiles.
func (c *Client) ChangedFiles(ctx context.Context, number int) ([]ChangedFile, error) {
	var files []ChangedFile
	opts := &github.ListOptions{PerPage: listPageSize}
	for {
		batch, resp, err := c.gh.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files for PR #%d: %w", number, err)
		}
		for _, f := range batch {
			files = append(files, ChangedFile{
				Filename:  f.GetFilename(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Changes:   f.GetChanges(),
			})
			if len(files) >= maxFiles {
				return files, nil
			}
		}
		if resp.NextPage == 0 {
			return files, nil
		}
		opts.Page = resp.NextPage
	}
}

// CommitMessages lists a pull request's commit messages, capped at
// maxCommits.
func (c *Client) CommitMessages(ctx context.Context, number int) ([]string, error) {
	var messages []string
	opts := &github.ListOptions{PerPage: listPageSize}
	for {
		batch, resp, err := c.gh.PullRequests.ListCommits(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing commits for PR #%d: %w", number, err)
		}
		for _, rc := range batch {
			if msg := strings.TrimSpace(rc.GetCommit().GetMessage()); msg != "" {
				messages = append(messages, msg)
			}
			if len(messages) >= maxCommits {
				return messages, nil
			}
		}
		if resp.NextPage == 0 {
			return messages, nil
		}
		opts.Page = resp.NextPage
	}
}

// Comment posts an issue comment on the pull request.
func (c *Client) Comment(ctx context.Context, number int, body string) error {
	_, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("commenting on PR #%d: %w", number, err)
	}
	return nil
}
