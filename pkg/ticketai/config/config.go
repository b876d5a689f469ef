// Package config loads the service configuration and the vocabulary files
// that tune normalization and entity extraction.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/ticketai/pkg/ticketai/classify"
	"github.com/cognicore/ticketai/pkg/ticketai/intake"
	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/model"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

// Server configures the HTTP listener.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Logging selects the zap preset.
type Logging struct {
	Mode string `yaml:"mode"` // development or production
}

// Models locates the trained artifacts.
type Models struct {
	Dir   string         `yaml:"dir"`
	Files classify.Files `yaml:"files"`
}

// Database selects the ticket store.
type Database struct {
	Type string `yaml:"type"` // sqlite or memory
	Path string `yaml:"path"`
}

// Tickets configures identifiers and new-ticket defaults.
type Tickets struct {
	Prefix         string `yaml:"prefix"`
	Start          int64  `yaml:"start"`
	Status         string `yaml:"status"`
	TitleMaxLength int    `yaml:"title_max_length"`
	OutputDir      string `yaml:"output_dir"`
}

// Training holds the offline training parameters.
type Training struct {
	Corpus     string                 `yaml:"corpus"`
	Vectorizer model.VectorizerConfig `yaml:"vectorizer"`
	Category   model.LogisticConfig   `yaml:"category"`
	Priority   model.KernelConfig     `yaml:"priority"`
}

// TrainConfig converts the section to model settings.
func (t Training) TrainConfig() model.TrainConfig {
	return model.TrainConfig{Vectorizer: t.Vectorizer, Logistic: t.Category, Kernel: t.Priority}
}

// Labels are the closed label sets the models are expected to emit.
type Labels struct {
	Categories []string `yaml:"categories"`
	Priorities []string `yaml:"priorities"`
}

// Vocabulary names optional override files.
type Vocabulary struct {
	Stoplist       string   `yaml:"stoplist"`
	Lemmas         string   `yaml:"lemmas"`
	Entities       string   `yaml:"entities"`
	ExtraStopwords []string `yaml:"extra_stopwords"`
}

// Config is the root configuration document.
type Config struct {
	Server     Server            `yaml:"server"`
	Logging    Logging           `yaml:"logging"`
	Models     Models            `yaml:"models"`
	Database   Database          `yaml:"database"`
	Tickets    Tickets           `yaml:"tickets"`
	Validation intake.Bounds     `yaml:"validation"`
	Confidence ticket.Thresholds `yaml:"confidence"`
	Training   Training          `yaml:"training"`
	Labels     Labels            `yaml:"labels"`
	Vocabulary Vocabulary        `yaml:"vocabulary"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path, applies defaults, expands ${VAR}
// references in paths and validates the result. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config file: %v: %w", err, internalerr.ErrInvalidConfig)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}

	if c.Logging.Mode == "" {
		c.Logging.Mode = "production"
	}

	if c.Models.Dir == "" {
		c.Models.Dir = "./models"
	}
	def := classify.DefaultFiles()
	if c.Models.Files.Category == "" {
		c.Models.Files.Category = def.Category
	}
	if c.Models.Files.Priority == "" {
		c.Models.Files.Priority = def.Priority
	}

	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/tickets.db"
	}

	if c.Tickets.Prefix == "" {
		c.Tickets.Prefix = ticket.DefaultPrefix
	}
	if c.Tickets.Start == 0 {
		c.Tickets.Start = ticket.DefaultStart
	}
	if c.Tickets.Status == "" {
		c.Tickets.Status = ticket.StatusOpen
	}
	if c.Tickets.TitleMaxLength == 0 {
		c.Tickets.TitleMaxLength = ticket.DefaultTitleLength
	}
	if c.Tickets.OutputDir == "" {
		c.Tickets.OutputDir = "./tickets_output"
	}

	bounds := intake.DefaultBounds()
	if c.Validation.Min == 0 {
		c.Validation.Min = bounds.Min
	}
	if c.Validation.Max == 0 {
		c.Validation.Max = bounds.Max
	}

	th := ticket.DefaultThresholds()
	if c.Confidence.High == 0 {
		c.Confidence.High = th.High
	}
	if c.Confidence.Medium == 0 {
		c.Confidence.Medium = th.Medium
	}
	if c.Confidence.Low == 0 {
		c.Confidence.Low = th.Low
	}

	if c.Training.Corpus == "" {
		c.Training.Corpus = "./data/training.yaml"
	}
	vec := model.DefaultVectorizerConfig()
	if c.Training.Vectorizer.MaxFeatures == 0 {
		c.Training.Vectorizer.MaxFeatures = vec.MaxFeatures
	}
	if c.Training.Vectorizer.NgramMin == 0 {
		c.Training.Vectorizer.NgramMin = vec.NgramMin
	}
	if c.Training.Vectorizer.NgramMax == 0 {
		c.Training.Vectorizer.NgramMax = vec.NgramMax
	}
	if c.Training.Vectorizer.MinDF == 0 {
		c.Training.Vectorizer.MinDF = vec.MinDF
	}
	if c.Training.Vectorizer.MaxDF == 0 {
		c.Training.Vectorizer.MaxDF = vec.MaxDF
	}
	lr := model.DefaultLogisticConfig()
	if c.Training.Category.MaxIter == 0 {
		c.Training.Category.MaxIter = lr.MaxIter
	}
	if c.Training.Category.C == 0 {
		c.Training.Category.C = lr.C
	}
	if c.Training.Category.LearningRate == 0 {
		c.Training.Category.LearningRate = lr.LearningRate
	}

	if len(c.Labels.Categories) == 0 {
		c.Labels.Categories = []string{"Network", "Access", "Hardware", "Software", "Storage", "System"}
	}
	if len(c.Labels.Priorities) == 0 {
		c.Labels.Priorities = []string{"Critical", "High", "Medium", "Low"}
	}
}

func (c *Config) expandEnv() {
	for _, p := range []*string{
		&c.Models.Dir, &c.Database.Path, &c.Tickets.OutputDir, &c.Training.Corpus,
		&c.Vocabulary.Stoplist, &c.Vocabulary.Lemmas, &c.Vocabulary.Entities,
	} {
		*p = os.ExpandEnv(*p)
	}
}

// Validate checks cross-field constraints. Errors wrap
// internalerr.ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Validation.Min < 0 || c.Validation.Max < c.Validation.Min:
		return invalid("validation bounds %d..%d", c.Validation.Min, c.Validation.Max)
	case !(c.Confidence.High > c.Confidence.Medium && c.Confidence.Medium > c.Confidence.Low && c.Confidence.Low > 0 && c.Confidence.High <= 1):
		return invalid("confidence thresholds must satisfy 0 < low < medium < high <= 1, got %.2f/%.2f/%.2f",
			c.Confidence.High, c.Confidence.Medium, c.Confidence.Low)
	case c.Tickets.Start < 0:
		return invalid("tickets.start must not be negative")
	case c.Tickets.TitleMaxLength < 4:
		return invalid("tickets.title_max_length must be at least 4")
	case !ticket.ValidStatus(c.Tickets.Status):
		return invalid("tickets.status %q is not one of %v", c.Tickets.Status, ticket.Statuses)
	case c.Database.Type != "sqlite" && c.Database.Type != "memory":
		return invalid("database.type %q must be sqlite or memory", c.Database.Type)
	case c.Logging.Mode != "development" && c.Logging.Mode != "production":
		return invalid("logging.mode %q must be development or production", c.Logging.Mode)
	case c.Training.Vectorizer.NgramMax < c.Training.Vectorizer.NgramMin:
		return invalid("training.vectorizer ngram range %d..%d", c.Training.Vectorizer.NgramMin, c.Training.Vectorizer.NgramMax)
	case c.Training.Vectorizer.MaxDF <= 0 || c.Training.Vectorizer.MaxDF > 1:
		return invalid("training.vectorizer.max_df must be in (0,1]")
	}

	if err := uniqueLabels("labels.categories", c.Labels.Categories); err != nil {
		return err
	}
	return uniqueLabels("labels.priorities", c.Labels.Priorities)
}

// CheckClasses reports model labels missing from the configured label sets.
func (c *Config) CheckClasses(mc classify.ModelClasses) error {
	if err := subset("category", mc.Categories, c.Labels.Categories); err != nil {
		return err
	}
	return subset("priority", mc.Priorities, c.Labels.Priorities)
}

func subset(kind string, got, allowed []string) error {
	known := make(map[string]bool, len(allowed))
	for _, l := range allowed {
		known[l] = true
	}
	for _, l := range got {
		if !known[l] {
			return invalid("%s label %q is not configured", kind, l)
		}
	}
	return nil
}

func uniqueLabels(field string, labels []string) error {
	if len(labels) < 2 {
		return invalid("%s needs at least 2 labels", field)
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" || seen[l] {
			return invalid("%s has empty or duplicate label %q", field, l)
		}
		seen[l] = true
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), internalerr.ErrInvalidConfig)
}
