package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/mergelog/internal/ghpr"
)

type fakeCompletions struct {
	lastParams openai.ChatCompletionNewParams
	content    string
	err        error
}

func (f *fakeCompletions) New(_ context.Context, params openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestSummarize(t *testing.T) {
	fake := &fakeCompletions{content: "  One-line summary.\n- point\n"}
	s := newWithCompletions(fake, "gpt-4o-mini")

	got, err := s.Summarize(context.Background(), "Repository: acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "One-line summary.\n- point", got)
	assert.Equal(t, "gpt-4o-mini", string(fake.lastParams.Model))
	require.Len(t, fake.lastParams.Messages, 2)
}

func TestSummarizeEmptyContentIsFatal(t *testing.T) {
	fake := &fakeCompletions{content: "   \n"}
	s := newWithCompletions(fake, "")

	_, err := s.Summarize(context.Background(), "ctx")
	require.ErrorIs(t, err, ErrEmptySummary)
}

func TestSummarizePropagatesAPIError(t *testing.T) {
	fake := &fakeCompletions{err: errors.New("quota exceeded")}
	s := newWithCompletions(fake, "")

	_, err := s.Summarize(context.Background(), "ctx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewDefaultsModel(t *testing.T) {
	s := newWithCompletions(&fakeCompletions{}, "")
	assert.Equal(t, DefaultModel, s.Model())

	_, err := New("", "gpt-4o")
	require.Error(t, err)
}

func TestBuildContext(t *testing.T) {
	pr := &ghpr.PullRequest{
		Number:       42,
		Title:        "Fix login bug",
		Body:         "Sessions expired too early.\n",
		Author:       "rivka",
		MergedBy:     "sam",
		Labels:       []string{"bug", "auth"},
		Additions:    120,
		Deletions:    30,
		ChangedFiles: 3,
	}
	files := []ghpr.ChangedFile{
		{Filename: "auth/session.go", Additions: 80, Deletions: 20, Changes: 100},
		{Filename: "auth/session_test.go", Additions: 40, Deletions: 10, Changes: 50},
	}
	commits := []string{"Fix session expiry\n\nlong body here", "Add regression test"}

	got := BuildContext("acme/widgets", pr, files, commits)

	assert.Contains(t, got, "Repository: acme/widgets")
	assert.Contains(t, got, "PR #42 by rivka, merged by sam")
	assert.Contains(t, got, "Labels: bug, auth")
	assert.Contains(t, got, "Stats: +120 / -30 across 3 files")
	assert.Contains(t, got, "Sessions expired too early.")
	assert.Contains(t, got, "- auth/session.go (+80/-20)")
	// Commit bodies are dropped, subjects kept.
	assert.Contains(t, got, "- Fix session expiry")
	assert.NotContains(t, got, "long body here")
}

func TestBuildContextOrdersFilesByChurn(t *testing.T) {
	pr := &ghpr.PullRequest{Number: 1, Title: "t"}
	files := []ghpr.ChangedFile{
		{Filename: "small.go", Changes: 1},
		{Filename: "big.go", Changes: 500},
		{Filename: "mid.go", Changes: 50},
	}

	got := BuildContext("acme/widgets", pr, files, nil)
	big := strings.Index(got, "big.go")
	mid := strings.Index(got, "mid.go")
	small := strings.Index(got, "small.go")
	assert.Less(t, big, mid)
	assert.Less(t, mid, small)
}

func TestBuildContextElidesLongTails(t *testing.T) {
	pr := &ghpr.PullRequest{Number: 1, Title: "t"}

	var files []ghpr.ChangedFile
	for i := 0; i < contextFileLimit+7; i++ {
		files = append(files, ghpr.ChangedFile{Filename: fmt.Sprintf("f%03d.go", i), Changes: i})
	}
	var commits []string
	for i := 0; i < contextCommitLimit+3; i++ {
		commits = append(commits, fmt.Sprintf("commit %d", i))
	}

	got := BuildContext("acme/widgets", pr, files, commits)
	assert.Contains(t, got, "- … and 7 more")
	assert.Contains(t, got, "- … and 3 more")
}

func TestTruncateSubjectKeepsRuneBoundaries(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"short passes through": {
			in:   "fix typo",
			want: "fix typo",
		},
		"ascii cut at limit": {
			in:   strings.Repeat("a", commitSubjectMax+10),
			want: strings.Repeat("a", commitSubjectMax),
		},
		"multibyte rune straddling the limit is dropped whole": {
			// 66 three-byte runes = 198 bytes; the 67th would straddle
			// byte 200, so the cut walks back to byte 198.
			in:   strings.Repeat("世", 80),
			want: strings.Repeat("世", 66),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := truncateSubject(tc.in)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestBuildContextEmptyInputs(t *testing.T) {
	pr := &ghpr.PullRequest{Number: 9, Title: "Docs"}
	got := BuildContext("acme/widgets", pr, nil, nil)
	assert.Contains(t, got, "(no description)")
	assert.Contains(t, got, "Labels: none")
	assert.Contains(t, got, "(none)")
	assert.Contains(t, got, "PR #9 by ?, merged by ?")
}
