// Package normalize reduces extracted page text to the single-line form the
// frequency ranker consumes.
package normalize

import (
	"strings"
	"unicode"
)

// Punctuation is the fixed ASCII punctuation set removed by Clean.
// Unicode punctuation such as "，" or "。" is deliberately left alone.
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var stripPunct = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(Punctuation))
	for _, r := range Punctuation {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}()

// StripPunctuation removes every rune of Punctuation from s.
func StripPunctuation(s string) string {
	return stripPunct.Replace(s)
}

// isSpace is unicode.IsSpace plus the information separators U+001C..U+001F,
// which regex \s classes also treat as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// CollapseWhitespace replaces each maximal run of whitespace (newlines, tabs,
// NBSP, ideographic space, ...) with one ASCII space and trims both ends.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if isSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Clean strips punctuation first, then collapses whitespace.
func Clean(s string) string {
	return CollapseWhitespace(StripPunctuation(s))
}
