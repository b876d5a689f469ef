package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed english.yaml
var englishYAML []byte

// Lexicon maps inflected word forms to their dictionary base form:
// - Irregular nouns (children → child, indices → index)
// - Verb forms common in support tickets (rebooting → reboot, froze → freeze)
// - Protected words that suffix rules would damage (status, kubernetes)
//
// A base form always maps to itself, so looking up a base stops any further
// rewriting by the lemmatizer.
type Lexicon struct {
	// base -> all forms (including base itself)
	// Example: "reboot" -> ["reboot", "rebooting", "rebooted", "reboots"]
	forms map[string][]string

	// form -> base
	// Example: "rebooting" -> "reboot"
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		forms:        make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// English returns the embedded English lemma table.
func English() *Lexicon {
	lex, err := Parse(englishYAML)
	if err != nil {
		panic(fmt.Sprintf("lexicon: embedded english table: %v", err))
	}
	return lex
}

// LoadFromYAML loads lemma groups from a YAML file.
//
// Expected format:
//
//	lemmas:
//	  - base: reboot
//	    forms: [rebooting, rebooted, reboots]
//	  - base: child
//	    forms: [children]
//	  - base: status
//
// Notes:
// - An entry without forms protects the base from suffix rules
// - Case-insensitive: all words normalized to lowercase
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML lemma table.
func Parse(data []byte) (*Lexicon, error) {
	var config struct {
		Lemmas []struct {
			Base  string   `yaml:"base"`
			Forms []string `yaml:"forms"`
		} `yaml:"lemmas"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range config.Lemmas {
		if strings.TrimSpace(entry.Base) == "" {
			continue
		}
		lex.AddGroup(entry.Base, entry.Forms)
	}

	return lex, nil
}

// AddGroup adds a base form with its inflections.
// The base is always included as the first entry in the forms list.
// If the group already exists, old reverse index entries are cleaned up first.
func (l *Lexicon) AddGroup(base string, forms []string) {
	base = strings.ToLower(strings.TrimSpace(base))

	if oldForms, exists := l.forms[base]; exists {
		for _, old := range oldForms {
			if l.reverseIndex[old] == base {
				delete(l.reverseIndex, old)
			}
		}
	}

	normalized := make([]string, 0, len(forms)+1)
	seen := make(map[string]bool)

	normalized = append(normalized, base)
	seen[base] = true

	for _, f := range forms {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !seen[f] {
			normalized = append(normalized, f)
			seen[f] = true
		}
	}

	l.forms[base] = normalized
	for _, f := range normalized {
		l.reverseIndex[f] = base
	}
}

// Merge copies every group of other into l. Groups in other win on conflict.
func (l *Lexicon) Merge(other *Lexicon) {
	if other == nil {
		return
	}
	for base, forms := range other.forms {
		l.AddGroup(base, forms[1:])
	}
}

// Base returns the base form of a word and whether the word is known.
//
// Examples:
//   - Base("rebooting") -> "reboot", true
//   - Base("reboot") -> "reboot", true
//   - Base("unknown") -> "unknown", false
func (l *Lexicon) Base(word string) (string, bool) {
	word = strings.ToLower(word)
	if base, ok := l.reverseIndex[word]; ok {
		return base, true
	}
	return word, false
}

// Forms returns all known forms of a word (including the base form).
// If the word is not in the lexicon, returns a slice containing only the word.
func (l *Lexicon) Forms(word string) []string {
	word = strings.ToLower(word)
	if base, ok := l.reverseIndex[word]; ok {
		if forms, ok := l.forms[base]; ok {
			return forms
		}
	}
	return []string{word}
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, forms := range l.forms {
		total += len(forms)
	}
	return Stats{
		Groups:     len(l.forms),
		TotalForms: total,
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Groups     int // Number of base forms
	TotalForms int // Total number of forms across all groups, bases included
}
