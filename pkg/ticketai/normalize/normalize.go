// Package normalize turns raw ticket descriptions into the canonical token
// string the classifiers are trained on.
//
// The pipeline is order-sensitive, each step narrowing the input for the next:
// lowercase → strip punctuation → drop numeric tokens → drop stopwords →
// lemmatize → collapse whitespace.
package normalize

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/ticketai/pkg/ticketai/lexicon"
	"github.com/cognicore/ticketai/pkg/ticketai/stoplist"
)

// StopSet reports whether a token is a stopword.
type StopSet interface {
	IsStop(token string) bool
}

// Lemmatizer reduces a lowercase word to its dictionary base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Normalizer handles text cleaning for classification.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	stops StopSet
	lem   Lemmatizer
}

// New creates a normalizer with the given stopword set and lemmatizer.
// A nil lemmatizer leaves words unchanged.
func New(stops StopSet, lem Lemmatizer) *Normalizer {
	if stops == nil {
		stops = stoplist.NewManager(nil)
	}
	return &Normalizer{stops: stops, lem: lem}
}

// Default returns a normalizer using the embedded English stopword list and
// lemma table.
func Default() *Normalizer {
	return New(stoplist.English(), NewMorphy(lexicon.English()))
}

// Normalize runs the full cleaning pipeline. It never fails: empty input
// yields an empty string.
//
// Example:
//
//	"I'm unable to LOGIN to the company portal!" -> "unable login company portal"
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = StripPunctuation(strings.ToLower(text))

	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		word := n.processToken(tok)
		if word != "" {
			tokens = append(tokens, word)
		}
	}

	return strings.Join(tokens, " ")
}

// processToken applies numeric filtering, stopword filtering and lemmatization.
func (n *Normalizer) processToken(token string) string {
	// Whole-token match only: "error404" and "404error" survive.
	if IsNumeric(token) {
		return ""
	}

	if n.stops.IsStop(token) {
		return ""
	}

	if n.lem == nil {
		return token
	}

	// A lemma can land on a stopword ("yours" style forms); dropping it keeps
	// Normalize idempotent.
	lemma := strings.ToLower(n.lem.Lemma(token))
	if lemma == "" || n.stops.IsStop(lemma) {
		return ""
	}
	return lemma
}

// StripPunctuation removes every Unicode punctuation or symbol rune.
// Nothing is inserted in its place, so "john.smith" becomes "johnsmith".
func StripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, text)
}

// IsNumeric returns true if the token is non-empty and made only of digits.
func IsNumeric(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Summary describes what normalization did to a description.
type Summary struct {
	Original         string  `json:"original"`
	Cleaned          string  `json:"cleaned"`
	OriginalLength   int     `json:"original_length"`
	CleanedLength    int     `json:"cleaned_length"`
	CompressionRatio float64 `json:"compression_ratio"` // percent of characters removed
}

// Summarize compares a description with its normalized form.
func Summarize(original, cleaned string) Summary {
	origLen := utf8.RuneCountInString(original)
	cleanLen := utf8.RuneCountInString(cleaned)

	ratio := (1 - float64(cleanLen)/float64(max(origLen, 1))) * 100
	return Summary{
		Original:         original,
		Cleaned:          cleaned,
		OriginalLength:   origLen,
		CleanedLength:    cleanLen,
		CompressionRatio: math.Round(ratio*100) / 100,
	}
}
