package ticket

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTitleLength is the default maximum title length in runes.
const DefaultTitleLength = 50

// FallbackTitle is used when the description yields no text.
const FallbackTitle = "Support Ticket"

// sentenceEnd returns the index of the first '.', '!' or '?' that is
// followed by whitespace or ends the text, or -1. Dots inside addresses
// and file names do not end a sentence.
func sentenceEnd(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) {
				return i
			}
			if r, _ := utf8.DecodeRuneInString(s[i+1:]); unicode.IsSpace(r) {
				return i
			}
		}
	}
	return -1
}

// Title derives a short title: the first sentence, cut at the last space
// within maxLen runes with "..." appended, first letter capitalised.
func Title(description string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultTitleLength
	}

	title := strings.TrimSpace(description)
	if i := sentenceEnd(title); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}

	if utf8.RuneCountInString(title) > maxLen {
		cut := string([]rune(title)[:maxLen])
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
		title = strings.TrimRightFunc(cut, unicode.IsSpace) + "..."
	}

	if title == "" {
		return FallbackTitle
	}
	r, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(r)) + title[size:]
}
