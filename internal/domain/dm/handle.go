package dm

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Normalize turns an operator-typed handle into the bare username the remote
// service expects. Full-width forms are folded to ASCII, then leading
// whitespace and "@" sigils and trailing whitespace are stripped.
// Normalize(Normalize(h)) == Normalize(h) for every h.
func Normalize(handle string) string {
	folded := width.Fold.String(handle)
	trimmed := strings.TrimLeftFunc(folded, func(r rune) bool {
		return r == '@' || unicode.IsSpace(r)
	})
	return strings.TrimRightFunc(trimmed, unicode.IsSpace)
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
