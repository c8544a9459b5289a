package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# Mergelog Configuration
# See 'mergelog config -h' for commands, 'mergelog config keys' for all options
#
# Secrets are NEVER read from this file. Set them in the environment:
#   NOTION_TOKEN, NOTION_DATABASE_ID, GITHUB_TOKEN, OPENAI_API_KEY

# Day bucketing
timezone: UTC                         # IANA zone for calendar-day bucketing

# Database property selection (empty = first matching property in schema order)
date_property: ""                     # Name of the date property to use
title_property: ""                    # Name of the title property to use

# Summarization
model: gpt-4o                         # Chat model for changelog summaries

# Notification
comment_on_pr: true                   # Post a link-back comment on the PR

# Reliability
max_retries: 3                        # Retry attempts for transient API failures (0-10)

# Logging
log_level: info                       # debug | info | warn | error
`
}

// WriteDefaultConfig writes the commented template to path, refusing to
// overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, []byte(GetDefaultConfigTemplate()), 0o644)
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		// timezone: IANA zone name the merge timestamp is converted into
		// before taking the calendar day. UTC keeps CI runs deterministic.
		"timezone": "UTC",
		// date_property / title_property: empty selects the first property
		// of the matching type in the database's own ordering.
		"date_property":  "",
		"title_property": "",
		// model: default chat model for summary generation.
		"model": "gpt-4o",
		// comment_on_pr: link-back comments are on by default; CI runs that
		// only want the Notion entry can disable them.
		"comment_on_pr": true,
		// max_retries: transient store/API failures are retried this many
		// times with exponential backoff before the run fails.
		"max_retries": 3,
		"log_level":   "info",
	}
}
