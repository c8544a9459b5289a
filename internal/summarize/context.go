package summarize

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ariel-frischer/mergelog/internal/ghpr"
)

const (
	// contextFileLimit caps the changed-file listing in the prompt context.
	contextFileLimit = 30
	// contextCommitLimit caps commit subjects in the prompt context.
	contextCommitLimit = 20
	// commitSubjectMax truncates pathological commit subjects.
	commitSubjectMax = 200
)

// BuildContext renders pull request metadata into the plain-text context
// the model summarizes from. Files are ordered by churn so the largest
// changes lead; long tails are elided with a count.
func BuildContext(repo string, pr *ghpr.PullRequest, files []ghpr.ChangedFile, commits []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Repository: %s\n", repo)
	fmt.Fprintf(&b, "PR #%d by %s, merged by %s\n", pr.Number, orUnknown(pr.Author), orUnknown(pr.MergedBy))
	fmt.Fprintf(&b, "Title: %s\n", pr.Title)
	fmt.Fprintf(&b, "Labels: %s\n", labelList(pr.Labels))
	fmt.Fprintf(&b, "Stats: +%d / -%d across %d files\n", pr.Additions, pr.Deletions, pr.ChangedFiles)

	b.WriteString("\nPR Description:\n")
	if desc := strings.TrimSpace(pr.Body); desc != "" {
		b.WriteString(desc)
	} else {
		b.WriteString("(no description)")
	}
	b.WriteString("\n")

	b.WriteString("\nChanged files (top):\n")
	writeFileLines(&b, files)

	b.WriteString("\nCommit messages (top):\n")
	writeCommitLines(&b, commits)

	return strings.TrimSpace(b.String())
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func labelList(labels []string) string {
	if len(labels) == 0 {
		return "none"
	}
	return strings.Join(labels, ", ")
}

func writeFileLines(b *strings.Builder, files []ghpr.ChangedFile) {
	sorted := make([]ghpr.ChangedFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Changes > sorted[j].Changes
	})

	top := sorted
	if len(top) > contextFileLimit {
		top = top[:contextFileLimit]
	}
	for _, f := range top {
		fmt.Fprintf(b, "- %s (+%d/-%d)\n", f.Filename, f.Additions, f.Deletions)
	}
	if rest := len(sorted) - len(top); rest > 0 {
		fmt.Fprintf(b, "- … and %d more\n", rest)
	}
	if len(top) == 0 {
		b.WriteString("(none)\n")
	}
}

func writeCommitLines(b *strings.Builder, commits []string) {
	top := commits
	if len(top) > contextCommitLimit {
		top = top[:contextCommitLimit]
	}
	for _, msg := range top {
		subject := truncateSubject(strings.SplitN(msg, "\n", 2)[0])
		fmt.Fprintf(b, "- %s\n", subject)
	}
	if rest := len(commits) - len(top); rest > 0 {
		fmt.Fprintf(b, "- … and %d more\n", rest)
	}
	if len(top) == 0 {
		b.WriteString("(none)\n")
	}
}

// truncateSubject caps a commit subject at commitSubjectMax bytes without
// splitting a multibyte rune at the cut.
func truncateSubject(s string) string {
	if len(s) <= commitSubjectMax {
		return s
	}
	cut := commitSubjectMax
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
