package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// estimator turns a feature vector into class probabilities.
type estimator interface {
	Proba(x []float64) []float64
}

// Pipeline couples a fitted vectorizer with a fitted estimator. It satisfies
// classify.Model and is safe for concurrent use.
type Pipeline struct {
	artifact Artifact
	vec      *Vectorizer
	est      estimator
}

// Info describes a loaded pipeline.
type Info struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Algorithm Algorithm `json:"algorithm"`
	Classes   []string  `json:"classes"`
	Features  int       `json:"features"`
	Samples   int       `json:"samples"`
}

// Classes returns the labels in probability-vector order.
func (p *Pipeline) Classes() []string {
	return append([]string(nil), p.artifact.Classes...)
}

// PredictProba returns one probability per class, summing to 1.
func (p *Pipeline) PredictProba(text string) ([]float64, error) {
	proba := p.est.Proba(p.vec.Transform(text))
	if len(proba) != len(p.artifact.Classes) {
		return nil, fmt.Errorf("%s model returned %d probabilities for %d classes",
			p.artifact.Name, len(proba), len(p.artifact.Classes))
	}
	for _, v := range proba {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%s model returned NaN probability", p.artifact.Name)
		}
	}
	return proba, nil
}

// Predict returns the most probable label. Ties resolve to the earliest class.
func (p *Pipeline) Predict(text string) (string, error) {
	proba, err := p.PredictProba(text)
	if err != nil {
		return "", err
	}
	return p.artifact.Classes[floats.MaxIdx(proba)], nil
}

// Info returns the pipeline metadata.
func (p *Pipeline) Info() Info {
	return Info{
		Name:      p.artifact.Name,
		Version:   p.artifact.Version,
		Algorithm: p.artifact.Algorithm,
		Classes:   p.Classes(),
		Features:  p.vec.Features(),
		Samples:   p.artifact.Samples,
	}
}

// Artifact returns the serialisable form of the pipeline.
func (p *Pipeline) Artifact() Artifact {
	return p.artifact
}
