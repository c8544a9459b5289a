package upsert

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/mergelog/internal/store"
)

// Marker returns the machine-readable idempotency token embedded in every
// log entry. The closing bracket makes the match exact: the marker for
// PR 4 is not a prefix of the marker for PR 42.
func Marker(prNumber int) string {
	return fmt.Sprintf("[LOGGED-PR-ID:%d]", prNumber)
}

// AlreadyLogged reports whether the body already contains the entry for
// the given pull request. It scans every block, not just the tail: a prior
// run may have appended to an older snapshot of the page.
func AlreadyLogged(body store.Body, prNumber int) bool {
	marker := Marker(prNumber)
	for _, b := range body {
		if strings.Contains(b.Text, marker) {
			return true
		}
	}
	return false
}
