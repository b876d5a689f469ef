package classify

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/model"
)

type stubModel struct {
	classes []string
	proba   []float64
	err     error
}

func (s stubModel) Classes() []string { return s.classes }

func (s stubModel) PredictProba(string) ([]float64, error) {
	return s.proba, s.err
}

func (s stubModel) Predict(string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	best := 0
	for i, p := range s.proba {
		if p > s.proba[best] {
			best = i
		}
	}
	return s.classes[best], nil
}

func TestPredictUsesMaxProbability(t *testing.T) {
	m := stubModel{classes: []string{"Access", "Network"}, proba: []float64{0.12345678, 0.87654322}}

	got, err := Predict(m, "vpn down")
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "Network" || got.Confidence != 0.87654322 {
		t.Errorf("Predict = %+v", got)
	}
}

func TestPredictAllRounds(t *testing.T) {
	p, err := NewPredictor(
		stubModel{classes: []string{"Hardware", "Network"}, proba: []float64{0.076543, 0.923457}},
		stubModel{classes: []string{"High", "Low"}, proba: []float64{0.8765432, 0.1234568}},
	)
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.PredictAll("cannot connect wifi")
	if err != nil {
		t.Fatal(err)
	}
	want := Result{Category: "Network", CategoryConfidence: 0.9235, Priority: "High", PriorityConfidence: 0.8765}
	if res != want {
		t.Errorf("PredictAll = %+v, want %+v", res, want)
	}
}

func TestPredictAllPropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	p := &Predictor{
		Category: stubModel{classes: []string{"a", "b"}, proba: []float64{0.5, 0.5}},
		Priority: stubModel{err: boom},
	}
	if _, err := p.PredictAll("x"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

type emptyModel struct{}

func (emptyModel) Classes() []string                      { return nil }
func (emptyModel) Predict(string) (string, error)         { return "a", nil }
func (emptyModel) PredictProba(string) ([]float64, error) { return nil, nil }

func TestPredictRejectsBadProbabilities(t *testing.T) {
	if _, err := Predict(emptyModel{}, "x"); err == nil {
		t.Error("expected error for empty probability vector")
	}

	m := stubModel{classes: []string{"a", "b"}, proba: []float64{1.5, 0.2}}
	if _, err := Predict(m, "x"); err == nil {
		t.Error("expected error for probability above one")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.92346, 0.9235},
		{0.12344, 0.1234},
		{1, 1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round(tt.in, Precision); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewPredictorRequiresBothModels(t *testing.T) {
	_, err := NewPredictor(stubModel{}, nil)
	if !errors.Is(err, internalerr.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func trainToy(t *testing.T, dir string) {
	t.Helper()
	texts := []string{
		"wifi network down", "vpn network slow",
		"password reset locked", "account locked password",
	}
	trainer := model.NewTrainer(model.DefaultTrainConfig())

	cat, err := trainer.TrainCategory(texts, []string{"Network", "Network", "Access", "Access"})
	if err != nil {
		t.Fatal(err)
	}
	pri, err := trainer.TrainPriority(texts, []string{"High", "Medium", "Medium", "High"})
	if err != nil {
		t.Fatal(err)
	}

	files := DefaultFiles()
	if err := model.Save(filepath.Join(dir, files.Category), cat.Artifact()); err != nil {
		t.Fatal(err)
	}
	if err := model.Save(filepath.Join(dir, files.Priority), pri.Artifact()); err != nil {
		t.Fatal(err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	trainToy(t, dir)

	p, err := Open(dir, Files{})
	if err != nil {
		t.Fatal(err)
	}

	classes := p.Classes()
	if len(classes.Categories) != 2 || classes.Categories[0] != "Access" {
		t.Errorf("categories = %v", classes.Categories)
	}
	if len(classes.Priorities) != 2 || classes.Priorities[1] != "Medium" {
		t.Errorf("priorities = %v", classes.Priorities)
	}
	if infos := p.Describe(); len(infos) != 2 || infos[0].Name != "category" || infos[1].Algorithm != model.AlgorithmKernel {
		t.Errorf("Describe = %+v", infos)
	}

	res, err := p.PredictAll("network wifi")
	if err != nil {
		t.Fatal(err)
	}
	if res.Category != "Network" {
		t.Errorf("category = %s, want Network", res.Category)
	}
	if res.CategoryConfidence <= 0 || res.CategoryConfidence > 1 {
		t.Errorf("category confidence = %v", res.CategoryConfidence)
	}
}

func TestOpenFailures(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := Open(t.TempDir(), DefaultFiles())
		if !errors.Is(err, internalerr.ErrModelUnavailable) {
			t.Errorf("err = %v, want ErrModelUnavailable", err)
		}
	})

	t.Run("corrupt priority", func(t *testing.T) {
		dir := t.TempDir()
		trainToy(t, dir)
		if err := os.WriteFile(filepath.Join(dir, DefaultFiles().Priority), []byte("garbage"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Open(dir, DefaultFiles())
		if !errors.Is(err, internalerr.ErrModelUnavailable) {
			t.Errorf("err = %v, want ErrModelUnavailable", err)
		}
	})
}

func TestPredictorConcurrentUse(t *testing.T) {
	dir := t.TempDir()
	trainToy(t, dir)
	p, err := Open(dir, DefaultFiles())
	if err != nil {
		t.Fatal(err)
	}

	want, err := p.PredictAll("locked password")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.PredictAll("locked password")
			if err != nil || got != want {
				t.Errorf("concurrent PredictAll = %+v, %v", got, err)
			}
		}()
	}
	wg.Wait()
}
