package config

import (
	"fmt"
	"os"
	"strings"
)

// Secrets holds API credentials. They are read from the environment only,
// never from config files, so a committed .mergelog/config.yml can never
// leak a token.
type Secrets struct {
	// NotionToken is the Notion integration token (NOTION_TOKEN).
	NotionToken string
	// NotionDatabaseID identifies the changelog database (NOTION_DATABASE_ID).
	NotionDatabaseID string
	// GitHubToken authenticates PR reads and comment writes (GITHUB_TOKEN).
	GitHubToken string
	// OpenAIAPIKey authenticates summary generation (OPENAI_API_KEY).
	OpenAIAPIKey string
}

// LoadSecrets reads credentials from the environment. Values are trimmed;
// missing values are left empty and checked by RequireForRun.
func LoadSecrets() Secrets {
	return Secrets{
		NotionToken:      strings.TrimSpace(os.Getenv("NOTION_TOKEN")),
		NotionDatabaseID: strings.TrimSpace(os.Getenv("NOTION_DATABASE_ID")),
		GitHubToken:      strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}
}

// RequireForRun verifies that every credential a full run needs is present.
// directPage relaxes the database requirement because an explicit page ID
// replaces the database lookup.
func (s Secrets) RequireForRun(directPage bool) error {
	var missing []string
	if s.NotionToken == "" {
		missing = append(missing, "NOTION_TOKEN")
	}
	if s.NotionDatabaseID == "" && !directPage {
		missing = append(missing, "NOTION_DATABASE_ID")
	}
	if s.GitHubToken == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if s.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
