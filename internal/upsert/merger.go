package upsert

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/mergelog/internal/store"
)

// Entry is one pull request's contribution to a day page.
type Entry struct {
	Repo    string
	Number  int
	Title   string
	URL     string
	Summary string
}

// Heading renders the entry's heading text.
func (e Entry) Heading() string {
	return fmt.Sprintf("%s • PR #%d: %s", e.Repo, e.Number, e.Title)
}

// Merge appends a log entry to existing body content. It returns the
// appended blocks and the merged body; existing blocks are carried over
// untouched, so everything before the appended tail is byte-identical.
// Entries accumulate at the end in merge order, never re-sorted.
//
// Merge does not re-check idempotency; callers run AlreadyLogged first.
func Merge(existing store.Body, e Entry) (appended []store.Block, merged store.Body) {
	appended = entryBlocks(e)
	merged = make(store.Body, 0, len(existing)+len(appended))
	merged = append(merged, existing...)
	merged = append(merged, appended...)
	return appended, merged
}

// entryBlocks builds the fixed structural form of a log entry: heading,
// PR link, summary content, divider, then the trailing idempotency marker
// tucked out of the way as the last block.
func entryBlocks(e Entry) []store.Block {
	blocks := []store.Block{
		{Type: store.BlockHeading, Text: e.Heading()},
	}
	if e.URL != "" {
		blocks = append(blocks, store.Block{Type: store.BlockParagraph, Text: "Link: " + e.URL, Link: e.URL})
	}
	blocks = append(blocks, summaryBlocks(e.Summary)...)
	blocks = append(blocks,
		store.Block{Type: store.BlockDivider},
		store.Block{Type: store.BlockParagraph, Text: Marker(e.Number)},
	)
	return blocks
}

// summaryBlocks renders model output into blocks: the first non-empty line
// becomes a lead paragraph, remaining lines become bullets with any list
// prefix stripped.
func summaryBlocks(summary string) []store.Block {
	var lines []string
	for _, line := range strings.Split(summary, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	blocks := []store.Block{{Type: store.BlockParagraph, Text: lines[0]}}
	for _, line := range lines[1:] {
		blocks = append(blocks, store.Block{Type: store.BlockBullet, Text: stripBulletPrefix(line)})
	}
	return blocks
}

func stripBulletPrefix(line string) string {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return line
}
