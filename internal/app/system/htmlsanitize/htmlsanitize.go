// Package htmlsanitize strips markup from user-entered free text before it
// is stored. Notes, display names and bank/wallet labels are plain text;
// anything that looks like HTML is removed, not escaped.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Strip removes all HTML tags and trims surrounding whitespace.
func Strip(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// StripOneLine additionally folds newlines into single spaces, for fields
// that must stay on one line (labels, export cells).
func StripOneLine(s string) string {
	s = Strip(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
