package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/cognicore/ticketai/pkg/ticketai/lexicon"
)

// maxLemmaSteps bounds the rewrite loop; a well-formed lexicon converges in two.
const maxLemmaSteps = 8

// Morphy is a part-of-speech-agnostic lemmatizer: a lexicon lookup for
// irregular and protected words, then noun suffix detachment.
type Morphy struct {
	lex *lexicon.Lexicon
}

// NewMorphy creates a lemmatizer backed by lex. A nil lexicon uses the
// suffix rules alone.
func NewMorphy(lex *lexicon.Lexicon) *Morphy {
	return &Morphy{lex: lex}
}

// Lemma rewrites word until it stops changing, so Lemma(Lemma(w)) == Lemma(w).
func (m *Morphy) Lemma(word string) string {
	word = strings.ToLower(word)
	for i := 0; i < maxLemmaSteps; i++ {
		next := m.step(word)
		if next == word {
			break
		}
		word = next
	}
	return word
}

func (m *Morphy) step(word string) string {
	if m.lex != nil {
		if base, ok := m.lex.Base(word); ok {
			return base
		}
	}
	return detachSuffix(word)
}

// detachSuffix applies the first matching plural rule. Words of three runes
// or fewer are left alone.
func detachSuffix(word string) string {
	n := utf8.RuneCountInString(word)
	if n <= 3 {
		return word
	}

	switch {
	case strings.HasSuffix(word, "sses"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "ies") && n > 4:
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "shes"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "ss"),
		strings.HasSuffix(word, "us"),
		strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}
