package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds how many entity layers SanitizeText peels.
const maxSanitizePasses = 4

// SanitizeText strips every HTML tag from free text and returns plain text.
// Unescaping can reveal a tag that was entity encoded, so the policy runs
// again until the text stops changing. Text still changing after the last
// pass is returned in its escaped form.
func SanitizeText(s string) string {
	cur := s
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strictPolicy.Sanitize(cur))
		if next == cur {
			return strings.TrimSpace(next)
		}
		cur = next
	}
	return strings.TrimSpace(strictPolicy.Sanitize(cur))
}

// SanitizeAll applies SanitizeText to each element and drops empty results.
func SanitizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if clean := SanitizeText(s); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
