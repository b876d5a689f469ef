package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// KernelConfig controls the RBF kernel classifier.
type KernelConfig struct {
	// Gamma is the RBF width; 0 selects "scale", 1/(features·var(X)).
	Gamma float64 `yaml:"gamma"`
}

// KernelClassifier scores a vector by its mean RBF similarity to the
// training rows of each class. Scores are normalised into probabilities.
type KernelClassifier struct {
	Gamma   float64     `json:"gamma"`
	Support [][]float64 `json:"support"`
	Labels  []int       `json:"labels"`
	Classes int         `json:"classes"`
}

// FitKernel stores the training rows as support vectors and resolves gamma.
func FitKernel(X [][]float64, y []int, classes int, cfg KernelConfig) *KernelClassifier {
	gamma := cfg.Gamma
	if gamma <= 0 {
		gamma = scaleGamma(X)
	}

	support := make([][]float64, len(X))
	for i, x := range X {
		support[i] = append([]float64(nil), x...)
	}
	return &KernelClassifier{
		Gamma:   gamma,
		Support: support,
		Labels:  append([]int(nil), y...),
		Classes: classes,
	}
}

// scaleGamma returns 1/(features·var(X)) over every element of X, or 1 when
// the variance is zero.
func scaleGamma(X [][]float64) float64 {
	if len(X) == 0 || len(X[0]) == 0 {
		return 1
	}
	features := len(X[0])
	count := float64(len(X) * features)

	sum := 0.0
	for _, x := range X {
		sum += floats.Sum(x)
	}
	mean := sum / count

	sq := 0.0
	for _, x := range X {
		for _, v := range x {
			sq += (v - mean) * (v - mean)
		}
	}
	variance := sq / count
	if variance == 0 {
		return 1
	}
	return 1 / (float64(features) * variance)
}

// Proba returns per-class probabilities for x.
func (m *KernelClassifier) Proba(x []float64) []float64 {
	sums := make([]float64, m.Classes)
	counts := make([]float64, m.Classes)
	for i, s := range m.Support {
		d := floats.Distance(x, s, 2)
		sums[m.Labels[i]] += math.Exp(-m.Gamma * d * d)
		counts[m.Labels[i]]++
	}

	for k := range sums {
		if counts[k] > 0 {
			sums[k] /= counts[k]
		}
	}

	total := floats.Sum(sums)
	if total == 0 || math.IsNaN(total) {
		for k := range sums {
			sums[k] = 1 / float64(m.Classes)
		}
		return sums
	}
	floats.Scale(1/total, sums)
	return sums
}
