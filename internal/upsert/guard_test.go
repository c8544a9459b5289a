package upsert

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariel-frischer/mergelog/internal/store"
)

func TestMarker(t *testing.T) {
	assert.Equal(t, "[LOGGED-PR-ID:42]", Marker(42))
}

func TestAlreadyLogged(t *testing.T) {
	tests := map[string]struct {
		body store.Body
		pr   int
		want bool
	}{
		"empty body": {
			body: store.Body{},
			pr:   42,
			want: false,
		},
		"marker in last block": {
			body: store.Body{
				{Type: store.BlockHeading, Text: "repo • PR #42: Fix login bug"},
				{Type: store.BlockParagraph, Text: "[LOGGED-PR-ID:42]"},
			},
			pr:   42,
			want: true,
		},
		"marker buried in an older entry": {
			body: store.Body{
				{Type: store.BlockHeading, Text: "repo • PR #42: Fix login bug"},
				{Type: store.BlockParagraph, Text: "[LOGGED-PR-ID:42]"},
				{Type: store.BlockHeading, Text: "repo • PR #43: Add metrics"},
				{Type: store.BlockParagraph, Text: "[LOGGED-PR-ID:43]"},
			},
			pr:   42,
			want: true,
		},
		"marker for a different pr does not match": {
			body: store.Body{
				{Type: store.BlockParagraph, Text: "[LOGGED-PR-ID:420]"},
			},
			pr:   42,
			want: false,
		},
		"prefix of a longer id does not match": {
			body: store.Body{
				{Type: store.BlockParagraph, Text: "[LOGGED-PR-ID:42]"},
			},
			pr:   4,
			want: false,
		},
		"plain pr mention is not a marker": {
			body: store.Body{
				{Type: store.BlockParagraph, Text: "See PR #42 for details"},
			},
			pr:   42,
			want: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, AlreadyLogged(tc.body, tc.pr))
		})
	}
}
