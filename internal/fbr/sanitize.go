package fbr

import "strings"

var descriptionReplacer = strings.NewReplacer(
	"\\", "",
	`"`, "”",
)

// SanitizeDescription strips characters the fiscal API rejects in free-text
// fields: backslashes are removed, ASCII double quotes become a typographic
// closing quote, and runs of whitespace collapse to a single space.
// The function is idempotent.
func SanitizeDescription(s string) string {
	s = descriptionReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
