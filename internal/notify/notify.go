// Package notify posts the link-back comment on the originating pull
// request once a changelog entry lands. Notification failure never
// invalidates a successful upsert: errors are logged and swallowed.
package notify

import (
	"context"
	"fmt"
)

// Config holds comment-posting preferences, loaded from the config
// hierarchy (env > project > user > defaults).
type Config struct {
	// Enabled is the master switch for PR comments (default: true).
	Enabled bool `koanf:"enabled"`
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() Config {
	return Config{Enabled: true}
}

// Sender posts a notification comment on a pull request.
type Sender interface {
	Send(ctx context.Context, prNumber int, body string) error
}

// NoopSender discards notifications. Used when no sender is configured.
type NoopSender struct{}

func (NoopSender) Send(context.Context, int, string) error { return nil }

// Entry describes where a changelog entry landed, for comment rendering.
type Entry struct {
	// Day is the bucket's calendar day; empty in direct page-append mode.
	Day string
	// Timezone is the zone the day was computed in.
	Timezone string
	// PageURL is the page's shareable link; may be empty when the store
	// did not return one.
	PageURL string
}

// CommentBody renders the comment text for a logged entry.
func CommentBody(e Entry) string {
	if e.Day == "" {
		if e.PageURL == "" {
			return "Changelog entry added to Notion (page URL unavailable)."
		}
		return fmt.Sprintf("Changelog entry added to Notion page: %s", e.PageURL)
	}
	if e.PageURL == "" {
		return fmt.Sprintf("Changelog entry added to Notion daily page for %s (URL unavailable).", e.Day)
	}
	return fmt.Sprintf("Changelog entry added to Notion daily page for %s (%s):\n%s", e.Day, e.Timezone, e.PageURL)
}
