package ghpr

import (
	"encoding/json"
	"fmt"
	"os"
)

// PRNumberFromEvent derives the pull request number from a GitHub Actions
// event payload file (GITHUB_EVENT_PATH). Returns 0 with no error when the
// payload exists but carries no pull request, so callers can fall through
// to other sources.
func PRNumberFromEvent(path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading event payload %s: %w", path, err)
	}

	var event struct {
		PullRequest struct {
			Number int `json:"number"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return 0, fmt.Errorf("parsing event payload %s: %w", path, err)
	}
	return event.PullRequest.Number, nil
}
