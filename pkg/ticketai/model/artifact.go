package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Algorithm names the estimator stored in an artifact.
type Algorithm string

const (
	AlgorithmLogistic Algorithm = "logistic_regression"
	AlgorithmKernel   Algorithm = "rbf_kernel"
)

// Artifact is the on-disk form of a trained pipeline.
type Artifact struct {
	Name       string              `json:"name"`
	Version    string              `json:"version"`
	Algorithm  Algorithm           `json:"algorithm"`
	TrainedAt  time.Time           `json:"trained_at"`
	Samples    int                 `json:"samples"`
	Classes    []string            `json:"classes"`
	Vectorizer *Vectorizer         `json:"vectorizer"`
	Logistic   *LogisticRegression `json:"logistic,omitempty"`
	Kernel     *KernelClassifier   `json:"kernel,omitempty"`
}

// Pipeline validates the artifact and returns a ready-to-use pipeline.
func (a Artifact) Pipeline() (*Pipeline, error) {
	if len(a.Classes) < 2 {
		return nil, fmt.Errorf("artifact %q: need at least 2 classes, have %d", a.Name, len(a.Classes))
	}
	if a.Vectorizer == nil || len(a.Vectorizer.IDF) == 0 {
		return nil, fmt.Errorf("artifact %q: missing vectorizer", a.Name)
	}
	if len(a.Vectorizer.Vocabulary) != len(a.Vectorizer.IDF) {
		return nil, fmt.Errorf("artifact %q: vocabulary has %d terms but %d idf weights",
			a.Name, len(a.Vectorizer.Vocabulary), len(a.Vectorizer.IDF))
	}
	a.Vectorizer.init()
	features := a.Vectorizer.Features()

	// Every column must belong to exactly one term, or Transform would
	// index past the weights at prediction time.
	owner := make([]string, features)
	for term, idx := range a.Vectorizer.Vocabulary {
		if idx < 0 || idx >= features {
			return nil, fmt.Errorf("artifact %q: term %q has index %d outside [0,%d)", a.Name, term, idx, features)
		}
		if owner[idx] != "" {
			return nil, fmt.Errorf("artifact %q: terms %q and %q share index %d", a.Name, owner[idx], term, idx)
		}
		owner[idx] = term
	}

	var est estimator
	switch a.Algorithm {
	case AlgorithmLogistic:
		m := a.Logistic
		if m == nil || len(m.Weights) != len(a.Classes) || len(m.Bias) != len(a.Classes) {
			return nil, fmt.Errorf("artifact %q: logistic weights do not match %d classes", a.Name, len(a.Classes))
		}
		for _, row := range m.Weights {
			if len(row) != features {
				return nil, fmt.Errorf("artifact %q: weight row has %d features, want %d", a.Name, len(row), features)
			}
		}
		est = m
	case AlgorithmKernel:
		m := a.Kernel
		if m == nil || m.Classes != len(a.Classes) || len(m.Support) != len(m.Labels) {
			return nil, fmt.Errorf("artifact %q: kernel model does not match %d classes", a.Name, len(a.Classes))
		}
		for i, s := range m.Support {
			if len(s) != features {
				return nil, fmt.Errorf("artifact %q: support vector has %d features, want %d", a.Name, len(s), features)
			}
			if m.Labels[i] < 0 || m.Labels[i] >= m.Classes {
				return nil, fmt.Errorf("artifact %q: support label %d out of range", a.Name, m.Labels[i])
			}
		}
		est = m
	default:
		return nil, fmt.Errorf("artifact %q: unknown algorithm %q", a.Name, a.Algorithm)
	}

	return &Pipeline{artifact: a, vec: a.Vectorizer, est: est}, nil
}

// Save writes the artifact as JSON. The file is replaced atomically.
func Save(path string, a Artifact) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install artifact: %w", err)
	}
	return nil
}

// Load reads an artifact written by Save.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &a, nil
}

// LoadPipeline reads and validates an artifact.
func LoadPipeline(path string) (*Pipeline, error) {
	a, err := Load(path)
	if err != nil {
		return nil, err
	}
	return a.Pipeline()
}
