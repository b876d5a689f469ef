package stoplist

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed english.yaml
var englishYAML []byte

// Manager holds the stopword set used by the normalizer.
// Lookups are case-insensitive.
type Manager struct {
	mu    sync.RWMutex
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		stops[s] = struct{}{}
	}
	return &Manager{stops: stops}
}

// English returns a manager seeded with the embedded English stopword list,
// including the apostrophe-free spellings of its contractions.
func English() *Manager {
	terms, err := parseEnglish(englishYAML)
	if err != nil {
		// The embedded file is part of the build; a decode failure is a programming error.
		panic(fmt.Sprintf("stoplist: embedded english list: %v", err))
	}
	return NewManager(terms)
}

func parseEnglish(data []byte) ([]string, error) {
	var doc struct {
		Terms        []string `yaml:"terms"`
		Contractions []string `yaml:"contractions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return append(doc.Terms, doc.Contractions...), nil
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	m.mu.Lock()
	m.stops[token] = struct{}{}
	m.mu.Unlock()
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	m.mu.Lock()
	delete(m.stops, strings.ToLower(token))
	m.mu.Unlock()
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stops)
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	m.mu.RLock()
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	m.mu.RUnlock()
	sort.Strings(result)
	return result
}
