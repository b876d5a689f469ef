package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticConfig controls multinomial logistic regression training.
type LogisticConfig struct {
	MaxIter      int     `yaml:"max_iter"`
	C            float64 `yaml:"c"` // inverse L2 regularisation strength
	LearningRate float64 `yaml:"learning_rate"`
}

// DefaultLogisticConfig mirrors the production training settings.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{MaxIter: 200, C: 1.0, LearningRate: 1.0}
}

// LogisticRegression is a multinomial (softmax) linear classifier.
type LogisticRegression struct {
	Weights [][]float64 `json:"weights"` // one row per class
	Bias    []float64   `json:"bias"`
}

// FitLogistic trains with full-batch gradient descent from a zero start, so
// the result is deterministic for a given corpus.
func FitLogistic(X [][]float64, y []int, classes int, cfg LogisticConfig) *LogisticRegression {
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 200
	}
	if cfg.C <= 0 {
		cfg.C = 1.0
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 1.0
	}

	features := 0
	if len(X) > 0 {
		features = len(X[0])
	}
	m := &LogisticRegression{
		Weights: make([][]float64, classes),
		Bias:    make([]float64, classes),
	}
	for k := range m.Weights {
		m.Weights[k] = make([]float64, features)
	}

	n := float64(len(X))
	if n == 0 {
		return m
	}
	penalty := 1 / (cfg.C * n)

	gradW := make([][]float64, classes)
	for k := range gradW {
		gradW[k] = make([]float64, features)
	}
	gradB := make([]float64, classes)

	for iter := 0; iter < cfg.MaxIter; iter++ {
		for k := range gradW {
			floats.ScaleTo(gradW[k], penalty, m.Weights[k])
			gradB[k] = 0
		}

		for i, x := range X {
			p := m.Proba(x)
			for k := range p {
				residual := p[k]
				if y[i] == k {
					residual--
				}
				floats.AddScaled(gradW[k], residual/n, x)
				gradB[k] += residual / n
			}
		}

		for k := range m.Weights {
			floats.AddScaled(m.Weights[k], -cfg.LearningRate, gradW[k])
			m.Bias[k] -= cfg.LearningRate * gradB[k]
		}
	}
	return m
}

// Proba returns the softmax class probabilities for x.
func (m *LogisticRegression) Proba(x []float64) []float64 {
	scores := make([]float64, len(m.Weights))
	for k, w := range m.Weights {
		scores[k] = floats.Dot(w, x) + m.Bias[k]
	}
	return softmax(scores)
}

func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}
	top := floats.Max(scores)
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - top)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
