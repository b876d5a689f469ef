package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cognicore/ticketai/internal/logging"
	"github.com/cognicore/ticketai/pkg/ticketai/classify"
	"github.com/cognicore/ticketai/pkg/ticketai/config"
	"github.com/cognicore/ticketai/pkg/ticketai/model"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.yml", "Config file")
		corpusPath = flag.String("corpus", "", "Training corpus (overrides training.corpus)")
		outDir     = flag.String("out", "", "Model output directory (overrides models.dir)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *corpusPath != "" {
		cfg.Training.Corpus = *corpusPath
	}
	if *outDir != "" {
		cfg.Models.Dir = *outDir
	}

	logger := logging.Must(cfg.Logging.Mode)
	defer logger.Sync()

	if err := run(cfg, os.Stdout, logger); err != nil {
		logger.Fatal("training failed", zap.Error(err))
	}
}

func run(cfg *config.Config, w io.Writer, logger *zap.Logger) error {
	components, err := cfg.Loader().Load()
	if err != nil {
		return err
	}

	corpus, err := model.LoadCorpus(cfg.Training.Corpus)
	if err != nil {
		return err
	}
	texts := corpus.Texts(components.Normalizer.Normalize)
	logger.Info("corpus loaded", zap.String("path", cfg.Training.Corpus), zap.Int("samples", len(texts)))

	// The vectorizer drops the same stopwords at prediction time, so raw
	// text handed straight to a saved pipeline is filtered too.
	trainCfg := cfg.Training.TrainConfig()
	trainCfg.Vectorizer.StopWords = components.Stoplist.All()
	trainer := model.NewTrainer(trainCfg)

	fmt.Fprintln(w, "Training category model...")
	category, err := trainer.TrainCategory(texts, corpus.Categories())
	if err != nil {
		return fmt.Errorf("train category model: %w", err)
	}
	report(w, category, texts, corpus.Categories())

	fmt.Fprintln(w, "Training priority model...")
	priority, err := trainer.TrainPriority(texts, corpus.Priorities())
	if err != nil {
		return fmt.Errorf("train priority model: %w", err)
	}
	report(w, priority, texts, corpus.Priorities())

	if err := cfg.CheckClasses(classify.ModelClasses{
		Categories: category.Classes(),
		Priorities: priority.Classes(),
	}); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Models.Dir, 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	for _, out := range []struct {
		file string
		p    *model.Pipeline
	}{
		{cfg.Models.Files.Category, category},
		{cfg.Models.Files.Priority, priority},
	} {
		path := filepath.Join(cfg.Models.Dir, out.file)
		if err := model.Save(path, out.p.Artifact()); err != nil {
			return err
		}
		info := out.p.Info()
		logger.Info("model saved", zap.String("path", path), zap.String("version", info.Version))
	}

	fmt.Fprintln(w, "\nModel training complete.")
	return nil
}

// report prints the model summary and its accuracy on the training texts.
func report(w io.Writer, p *model.Pipeline, texts, labels []string) {
	info := p.Info()
	correct := 0
	for i, text := range texts {
		if got, err := p.Predict(text); err == nil && got == labels[i] {
			correct++
		}
	}

	fmt.Fprintf(w, "  Version:   %s\n", info.Version)
	fmt.Fprintf(w, "  Algorithm: %s\n", info.Algorithm)
	fmt.Fprintf(w, "  Samples:   %d\n", info.Samples)
	fmt.Fprintf(w, "  Features:  %d\n", info.Features)
	fmt.Fprintf(w, "  Classes:   %v\n", info.Classes)
	fmt.Fprintf(w, "  Training accuracy: %.2f%%\n", 100*float64(correct)/float64(max(len(texts), 1)))
}
