package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

// Sample is one labelled training ticket.
type Sample struct {
	Text     string `yaml:"text"`
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
}

// Corpus is a labelled training set.
type Corpus struct {
	Samples []Sample `yaml:"samples"`
}

// LoadCorpus reads a YAML corpus of the form
//
//	samples:
//	  - text: "..."
//	    category: Network
//	    priority: High
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	for i, s := range c.Samples {
		if strings.TrimSpace(s.Text) == "" || s.Category == "" || s.Priority == "" {
			return nil, fmt.Errorf("corpus sample %d: text, category and priority are required", i)
		}
	}
	return &c, nil
}

// Texts returns the sample texts after applying prep.
func (c *Corpus) Texts(prep func(string) string) []string {
	out := make([]string, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.Text
		if prep != nil {
			out[i] = prep(s.Text)
		}
	}
	return out
}

// Categories returns the category label of every sample.
func (c *Corpus) Categories() []string {
	out := make([]string, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.Category
	}
	return out
}

// Priorities returns the priority label of every sample.
func (c *Corpus) Priorities() []string {
	out := make([]string, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.Priority
	}
	return out
}

// TrainConfig groups the estimator settings.
type TrainConfig struct {
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Logistic   LogisticConfig   `yaml:"logistic"`
	Kernel     KernelConfig     `yaml:"kernel"`
}

// DefaultTrainConfig returns the production defaults.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Vectorizer: DefaultVectorizerConfig(),
		Logistic:   DefaultLogisticConfig(),
	}
}

// Trainer fits pipelines and stamps them with a ULID version.
// A Trainer is not safe for concurrent use.
type Trainer struct {
	cfg     TrainConfig
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewTrainer creates a trainer.
func NewTrainer(cfg TrainConfig) *Trainer {
	return &Trainer{
		cfg:     cfg,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Train fits a pipeline of the given algorithm on texts and labels. Class
// order is the sorted set of distinct labels.
func (t *Trainer) Train(name string, alg Algorithm, texts, labels []string) (*Pipeline, error) {
	if len(texts) != len(labels) {
		return nil, fmt.Errorf("train %s: %d texts but %d labels", name, len(texts), len(labels))
	}
	if len(texts) == 0 {
		return nil, errors.New("train " + name + ": empty corpus")
	}

	classes, y := encodeLabels(labels)
	if len(classes) < 2 {
		return nil, fmt.Errorf("train %s: need at least 2 distinct labels, have %d", name, len(classes))
	}

	vec, X, err := FitVectorizer(texts, t.cfg.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", name, err)
	}

	now := t.now().UTC()
	a := Artifact{
		Name:       name,
		Version:    ulid.MustNew(ulid.Timestamp(now), t.entropy).String(),
		Algorithm:  alg,
		TrainedAt:  now,
		Samples:    len(texts),
		Classes:    classes,
		Vectorizer: vec,
	}
	switch alg {
	case AlgorithmLogistic:
		a.Logistic = FitLogistic(X, y, len(classes), t.cfg.Logistic)
	case AlgorithmKernel:
		a.Kernel = FitKernel(X, y, len(classes), t.cfg.Kernel)
	default:
		return nil, fmt.Errorf("train %s: unknown algorithm %q", name, alg)
	}
	return a.Pipeline()
}

// TrainCategory fits the category model (logistic regression).
func (t *Trainer) TrainCategory(texts, labels []string) (*Pipeline, error) {
	return t.Train("category", AlgorithmLogistic, texts, labels)
}

// TrainPriority fits the priority model (RBF kernel).
func (t *Trainer) TrainPriority(texts, labels []string) (*Pipeline, error) {
	return t.Train("priority", AlgorithmKernel, texts, labels)
}

func encodeLabels(labels []string) ([]string, []int) {
	index := make(map[string]int)
	for _, l := range labels {
		index[l] = 0
	}
	classes := make([]string, 0, len(index))
	for l := range index {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	for i, l := range classes {
		index[l] = i
	}

	y := make([]int, len(labels))
	for i, l := range labels {
		y[i] = index[l]
	}
	return classes, y
}
