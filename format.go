package den

import (
	"strings"
)

// FormatConcepts formats concepts as a markdown bullet list.
func FormatConcepts(concepts []Concept) string {
	var b strings.Builder
	for _, c := range concepts {
		b.WriteString("- ")
		b.WriteString(c.Title)
		if c.Description != "" {
			b.WriteString(": ")
			b.WriteString(c.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// TruncateURL shortens a URL for display to at most maxLen bytes, keeping
// the tail, which names the page.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}
