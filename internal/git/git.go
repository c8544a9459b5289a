// Package git provides Git repository utilities for mergelog, chiefly
// detecting the GitHub owner/name slug from the origin remote. It uses the
// go-git library so no git CLI installation is required.
package git

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
)

// openRepo opens the repository containing path.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// parent directories, matching git CLI behavior when run from a subdirectory.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		path = "."
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening git repository: %w", err)
	}
	return repo, nil
}

// IsGitRepository reports whether the current directory is inside a git repo.
func IsGitRepository() bool {
	_, err := openRepo(".")
	return err == nil
}

// OriginSlug returns the "owner/name" slug of the origin remote's GitHub URL.
// It fails when there is no repository, no origin remote, or the remote does
// not point at GitHub.
func OriginSlug(path string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("reading origin remote: %w", err)
	}

	for _, url := range remote.Config().URLs {
		if slug, ok := ParseGitHubSlug(url); ok {
			return slug, nil
		}
	}
	return "", fmt.Errorf("origin remote is not a GitHub URL")
}

// ParseGitHubSlug extracts "owner/name" from a GitHub remote URL.
// Supported forms:
//   - https://github.com/owner/name.git
//   - https://github.com/owner/name
//   - git@github.com:owner/name.git
//   - ssh://git@github.com/owner/name.git
func ParseGitHubSlug(url string) (string, bool) {
	raw := strings.TrimSpace(url)
	raw = strings.TrimSuffix(raw, "/")
	raw = strings.TrimSuffix(raw, ".git")

	var rest string
	switch {
	case strings.HasPrefix(raw, "https://github.com/"):
		rest = strings.TrimPrefix(raw, "https://github.com/")
	case strings.HasPrefix(raw, "http://github.com/"):
		rest = strings.TrimPrefix(raw, "http://github.com/")
	case strings.HasPrefix(raw, "git@github.com:"):
		rest = strings.TrimPrefix(raw, "git@github.com:")
	case strings.HasPrefix(raw, "ssh://git@github.com/"):
		rest = strings.TrimPrefix(raw, "ssh://git@github.com/")
	case strings.HasPrefix(raw, "git://github.com/"):
		rest = strings.TrimPrefix(raw, "git://github.com/")
	default:
		return "", false
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "/" + parts[1], true
}
