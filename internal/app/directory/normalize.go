package directory

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize returns the comparison form of a username or room name: surrounding
// whitespace trimmed and the remainder Unicode case-folded. Every uniqueness check
// and every index key in the Directory is computed from normalized values; the
// original text is kept for display.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// pairKey is the index key of a normalized (room, username) pair.
type pairKey struct {
	room string
	name string
}
