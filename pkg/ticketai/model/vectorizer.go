package model

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// tokenPattern keeps words of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// ErrEmptyVocabulary is returned when no term survives document-frequency pruning.
var ErrEmptyVocabulary = errors.New("empty vocabulary after pruning")

// VectorizerConfig controls TF-IDF fitting.
type VectorizerConfig struct {
	MaxFeatures int      `yaml:"max_features"` // 0 keeps every term
	NgramMin    int      `yaml:"ngram_min"`
	NgramMax    int      `yaml:"ngram_max"`
	MinDF       int      `yaml:"min_df"` // minimum document count
	MaxDF       float64  `yaml:"max_df"` // maximum document fraction, (0,1]
	StopWords   []string `yaml:"-"`      // filled from the loaded stoplist by cmd/train
}

// DefaultVectorizerConfig mirrors the production training settings.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures: 500,
		NgramMin:    1,
		NgramMax:    2,
		MinDF:       1,
		MaxDF:       0.8,
	}
}

// Vectorizer maps text to L2-normalised TF-IDF vectors over a fixed vocabulary.
// It is read-only after fitting or loading.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	NgramMin   int            `json:"ngram_min"`
	NgramMax   int            `json:"ngram_max"`
	StopWords  []string       `json:"stop_words,omitempty"`

	stops map[string]struct{}
}

func (v *Vectorizer) init() {
	v.stops = make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		v.stops[strings.ToLower(w)] = struct{}{}
	}
	if v.NgramMin < 1 {
		v.NgramMin = 1
	}
	if v.NgramMax < v.NgramMin {
		v.NgramMax = v.NgramMin
	}
}

// Features returns the vocabulary size.
func (v *Vectorizer) Features() int {
	return len(v.IDF)
}

// terms returns the n-grams of doc after lowercasing and stopword removal.
func (v *Vectorizer) terms(doc string) []string {
	var words []string
	for _, w := range tokenPattern.FindAllString(strings.ToLower(doc), -1) {
		if _, stop := v.stops[w]; !stop {
			words = append(words, w)
		}
	}

	var out []string
	for n := v.NgramMin; n <= v.NgramMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}
	return out
}

// FitVectorizer learns the vocabulary and IDF weights from docs and returns
// the vectorizer together with the transformed training matrix.
func FitVectorizer(docs []string, cfg VectorizerConfig) (*Vectorizer, [][]float64, error) {
	v := &Vectorizer{
		NgramMin:  cfg.NgramMin,
		NgramMax:  cfg.NgramMax,
		StopWords: cfg.StopWords,
	}
	v.init()

	n := len(docs)
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range v.terms(doc) {
			tf[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	maxDocs := n
	if cfg.MaxDF > 0 && cfg.MaxDF <= 1 {
		maxDocs = int(math.Floor(cfg.MaxDF * float64(n)))
	}

	kept := make([]string, 0, len(df))
	for term, count := range df {
		if count >= cfg.MinDF && count <= maxDocs {
			kept = append(kept, term)
		}
	}
	if len(kept) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	if cfg.MaxFeatures > 0 && len(kept) > cfg.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if tf[kept[i]] != tf[kept[j]] {
				return tf[kept[i]] > tf[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:cfg.MaxFeatures]
	}
	sort.Strings(kept)

	v.Vocabulary = make(map[string]int, len(kept))
	v.IDF = make([]float64, len(kept))
	for i, term := range kept {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	matrix := make([][]float64, n)
	for i, doc := range docs {
		matrix[i] = v.Transform(doc)
	}
	return v, matrix, nil
}

// Transform vectorizes one document. Out-of-vocabulary text yields a zero vector.
func (v *Vectorizer) Transform(doc string) []float64 {
	x := make([]float64, len(v.IDF))
	for _, term := range v.terms(doc) {
		if idx, ok := v.Vocabulary[term]; ok {
			x[idx]++
		}
	}
	floats.Mul(x, v.IDF)

	if norm := floats.Norm(x, 2); norm > 0 {
		floats.Scale(1/norm, x)
	}
	return x
}
