// Package normalize cleans scraped text before it is stored.
// Pipeline order
// 1 drop invalid UTF-8
// 2 Unicode NFKD decomposition (NBSP becomes a plain space)
// 3 collapse runs of whitespace to one space and trim
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NFKD returns s in compatibility decomposition form.
func NFKD(s string) string {
	if s == "" {
		return s
	}
	return norm.NFKD.String(strings.ToValidUTF8(s, ""))
}

// Text runs the full pipeline.
func Text(s string) string {
	return Collapse(NFKD(s))
}

// Collapse folds whitespace runs (including newlines) to single spaces and trims.
func Collapse(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == ' ' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
