// Package classify defines the contract shared by the category and priority
// models and the predictor that fans a description out to both.
package classify

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/model"
)

// Precision is the number of decimals kept in reported confidences.
const Precision = 4

// Model maps normalized text to one of a closed set of labels.
type Model interface {
	Predict(text string) (string, error)
	PredictProba(text string) ([]float64, error)
	Classes() []string
}

// Prediction is a label with its confidence, the maximum class probability.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Predict runs m on text and pairs the label with the top probability.
func Predict(m Model, text string) (Prediction, error) {
	label, err := m.Predict(text)
	if err != nil {
		return Prediction{}, err
	}
	proba, err := m.PredictProba(text)
	if err != nil {
		return Prediction{}, err
	}
	if len(proba) == 0 {
		return Prediction{}, errors.New("model returned no probabilities")
	}

	conf := proba[0]
	for _, p := range proba[1:] {
		if p > conf {
			conf = p
		}
	}
	if math.IsNaN(conf) || conf < 0 || conf > 1 {
		return Prediction{}, fmt.Errorf("confidence %v outside [0,1]", conf)
	}
	return Prediction{Label: label, Confidence: conf}, nil
}

// Round rounds x to the given number of decimals, halves away from zero.
func Round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// Result carries both predictions with rounded confidences.
type Result struct {
	Category           string  `json:"category"`
	CategoryConfidence float64 `json:"category_confidence"`
	Priority           string  `json:"priority"`
	PriorityConfidence float64 `json:"priority_confidence"`
}

// ModelClasses lists the labels each model can emit.
type ModelClasses struct {
	Categories []string `json:"categories"`
	Priorities []string `json:"priorities"`
}

// Predictor holds the two independently trained models.
// It is read-only and safe for concurrent use.
type Predictor struct {
	Category Model
	Priority Model
}

// NewPredictor pairs the two models. Both are required.
func NewPredictor(category, priority Model) (*Predictor, error) {
	if category == nil || priority == nil {
		return nil, fmt.Errorf("category and priority models are both required: %w", internalerr.ErrModelUnavailable)
	}
	return &Predictor{Category: category, Priority: priority}, nil
}

// PredictCategory classifies normalized text by topic.
func (p *Predictor) PredictCategory(text string) (Prediction, error) {
	pred, err := Predict(p.Category, text)
	if err != nil {
		return Prediction{}, fmt.Errorf("category prediction: %w", err)
	}
	return pred, nil
}

// PredictPriority classifies normalized text by severity.
func (p *Predictor) PredictPriority(text string) (Prediction, error) {
	pred, err := Predict(p.Priority, text)
	if err != nil {
		return Prediction{}, fmt.Errorf("priority prediction: %w", err)
	}
	return pred, nil
}

// PredictAll runs both models. Either failure aborts the result.
func (p *Predictor) PredictAll(text string) (Result, error) {
	cat, err := p.PredictCategory(text)
	if err != nil {
		return Result{}, err
	}
	pri, err := p.PredictPriority(text)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Category:           cat.Label,
		CategoryConfidence: Round(cat.Confidence, Precision),
		Priority:           pri.Label,
		PriorityConfidence: Round(pri.Confidence, Precision),
	}, nil
}

// Classes returns the label sets of both models.
func (p *Predictor) Classes() ModelClasses {
	return ModelClasses{
		Categories: p.Category.Classes(),
		Priorities: p.Priority.Classes(),
	}
}

// Describe returns metadata for models that expose it.
func (p *Predictor) Describe() []model.Info {
	var out []model.Info
	for _, m := range []Model{p.Category, p.Priority} {
		if d, ok := m.(interface{ Info() model.Info }); ok {
			out = append(out, d.Info())
		}
	}
	return out
}

// Files names the two artifacts inside a model directory.
type Files struct {
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
}

// DefaultFiles returns the standard artifact names.
func DefaultFiles() Files {
	return Files{Category: "category_model.json", Priority: "priority_model.json"}
}

// Open loads both artifacts from dir. A missing or undecodable artifact is
// fatal; the returned error wraps internalerr.ErrModelUnavailable.
func Open(dir string, files Files) (*Predictor, error) {
	if files.Category == "" || files.Priority == "" {
		files = DefaultFiles()
	}

	category, err := model.LoadPipeline(filepath.Join(dir, files.Category))
	if err != nil {
		return nil, fmt.Errorf("load category model: %v: %w", err, internalerr.ErrModelUnavailable)
	}
	priority, err := model.LoadPipeline(filepath.Join(dir, files.Priority))
	if err != nil {
		return nil, fmt.Errorf("load priority model: %v: %w", err, internalerr.ErrModelUnavailable)
	}
	return NewPredictor(category, priority)
}
