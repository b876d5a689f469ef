package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/ticketai/pkg/ticketai/classify"
	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Tickets.Prefix != "INC" || cfg.Tickets.Start != 1000 || cfg.Tickets.Status != "Open" {
		t.Errorf("tickets = %+v", cfg.Tickets)
	}
	if cfg.Validation.Min != 10 || cfg.Validation.Max != 5000 {
		t.Errorf("validation = %+v", cfg.Validation)
	}
	if cfg.Confidence.High != 0.90 || cfg.Confidence.Medium != 0.70 || cfg.Confidence.Low != 0.50 {
		t.Errorf("confidence = %+v", cfg.Confidence)
	}
	v := cfg.Training.Vectorizer
	if v.MaxFeatures != 500 || v.NgramMin != 1 || v.NgramMax != 2 || v.MinDF != 1 || v.MaxDF != 0.8 {
		t.Errorf("vectorizer = %+v", v)
	}
	if cfg.Training.Category.MaxIter != 200 {
		t.Errorf("max_iter = %d", cfg.Training.Category.MaxIter)
	}
	if len(cfg.Labels.Categories) != 6 || len(cfg.Labels.Priorities) != 4 {
		t.Errorf("labels = %+v", cfg.Labels)
	}
	if cfg.Models.Files != classify.DefaultFiles() {
		t.Errorf("model files = %+v", cfg.Models.Files)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TICKETAI_DATA", "/srv/ticketai")

	path := writeFile(t, "config.yml", `server:
  addr: ":9000"
  shutdown_timeout: 12s
logging:
  mode: development
database:
  type: memory
  path: ${TICKETAI_DATA}/tickets.db
tickets:
  prefix: REQ
  start: 5000
confidence:
  high: 0.8
  medium: 0.6
  low: 0.4
training:
  vectorizer:
    max_features: 300
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9000" || cfg.Server.ShutdownTimeout != 12*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.Path != "/srv/ticketai/tickets.db" {
		t.Errorf("env not expanded: %s", cfg.Database.Path)
	}
	if cfg.Tickets.Prefix != "REQ" || cfg.Tickets.Start != 5000 {
		t.Errorf("tickets = %+v", cfg.Tickets)
	}
	if cfg.Training.Vectorizer.MaxFeatures != 300 || cfg.Training.Vectorizer.NgramMax != 2 {
		t.Errorf("vectorizer = %+v", cfg.Training.Vectorizer)
	}
	if cfg.Training.TrainConfig().Vectorizer.MaxFeatures != 300 {
		t.Error("TrainConfig lost vectorizer settings")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bounds inverted", func(c *Config) { c.Validation.Min, c.Validation.Max = 100, 50 }},
		{"thresholds unordered", func(c *Config) { c.Confidence.Medium = 0.95 }},
		{"unknown database", func(c *Config) { c.Database.Type = "postgres" }},
		{"unknown log mode", func(c *Config) { c.Logging.Mode = "verbose" }},
		{"duplicate labels", func(c *Config) { c.Labels.Priorities = []string{"High", "High"} }},
		{"single label", func(c *Config) { c.Labels.Categories = []string{"Network"} }},
		{"bad status", func(c *Config) { c.Tickets.Status = "Pending" }},
		{"max_df", func(c *Config) { c.Training.Vectorizer.MaxDF = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeFile(t, "bad.yml", "server: [unclosed")
	if _, err := Load(bad); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestCheckClasses(t *testing.T) {
	cfg := Default()
	ok := classify.ModelClasses{Categories: []string{"Network", "Access"}, Priorities: []string{"High"}}
	if err := cfg.CheckClasses(ok); err != nil {
		t.Errorf("CheckClasses = %v", err)
	}

	bad := classify.ModelClasses{Categories: []string{"Billing"}, Priorities: []string{"High"}}
	if err := cfg.CheckClasses(bad); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("CheckClasses = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadStoplist(t *testing.T) {
	path := writeFile(t, "stoplist.yaml", `terms:
  - the
  - a
  - and
`)

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("Failed to load stoplist: %v", err)
	}

	if len(sl.Terms) != 3 {
		t.Errorf("Expected 3 terms, got %d", len(sl.Terms))
	}
	if sl.Replace {
		t.Error("replace should default to false")
	}
}

func TestLoadVocabulary(t *testing.T) {
	path := writeFile(t, "vocab.yaml", `devices:
  - kiosk
  - badge reader
user_domains:
  - acme
`)

	v, err := LoadVocabulary(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Devices) != 2 || v.UserDomains[0] != "acme" {
		t.Errorf("vocabulary = %+v", v)
	}
	if len(v.ErrorCodes) == 0 {
		t.Error("error codes should fall back to defaults")
	}
}

func TestLoaderDefaults(t *testing.T) {
	comp, err := (&Loader{}).Load()
	if err != nil {
		t.Fatal(err)
	}

	if got := comp.Normalizer.Normalize("The printers are not working!"); got != "printer work" {
		t.Errorf("Normalize = %q", got)
	}
	if b := comp.Extractor.Extract("laptop shows BSOD"); len(b.ErrorCodes) != 1 {
		t.Errorf("extractor = %+v", b)
	}
}

func TestLoaderOverrides(t *testing.T) {
	stops := writeFile(t, "stoplist.yaml", "terms:\n  - printer\n")
	lemmas := writeFile(t, "lemmas.yaml", "lemmas:\n  - base: vpn\n    forms: [vpns]\n")
	vocab := writeFile(t, "vocab.yaml", "devices:\n  - kiosk\n")

	cfg := Default()
	cfg.Vocabulary = Vocabulary{
		Stoplist:       stops,
		Lemmas:         lemmas,
		Entities:       vocab,
		ExtraStopwords: []string{"please"},
	}

	comp, err := cfg.Loader().Load()
	if err != nil {
		t.Fatal(err)
	}

	if got := comp.Normalizer.Normalize("Please fix the printer and both VPNs"); got != "fix vpn" {
		t.Errorf("Normalize = %q, want %q", got, "fix vpn")
	}
	if !comp.Stoplist.IsStop("the") {
		t.Error("English stopwords should be kept when extending")
	}
	if d := comp.Extractor.Devices("kiosk near the laptop"); len(d) != 1 || d[0] != "kiosk" {
		t.Errorf("devices = %v, want only kiosk", d)
	}
}

func TestLoaderReplaceStoplist(t *testing.T) {
	stops := writeFile(t, "stoplist.yaml", "replace: true\nterms:\n  - printer\n")

	comp, err := (&Loader{StoplistPath: stops}).Load()
	if err != nil {
		t.Fatal(err)
	}
	if comp.Stoplist.IsStop("the") || !comp.Stoplist.IsStop("printer") {
		t.Error("replace should drop the English list")
	}
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := (&Loader{LemmasPath: filepath.Join(t.TempDir(), "none.yaml")}).Load()
	if err == nil {
		t.Error("expected error for missing lemma file")
	}
}

func TestShippedConfig(t *testing.T) {
	root := filepath.Join("..", "..", "..", "configs")

	cfg, err := Load(filepath.Join(root, "config.yml"))
	if err != nil {
		t.Fatalf("load shipped config: %v", err)
	}
	if cfg.Database.Type != "sqlite" || cfg.Tickets.Prefix != "INC" {
		t.Errorf("config = %+v", cfg)
	}

	l := &Loader{
		StoplistPath:   filepath.Join(root, "stoplist.yaml"),
		LemmasPath:     filepath.Join(root, "lemmas.yaml"),
		VocabularyPath: filepath.Join(root, "entities.yaml"),
	}
	comp, err := l.Load()
	if err != nil {
		t.Fatalf("load shipped vocabulary: %v", err)
	}
	if !comp.Stoplist.IsStop("regards") {
		t.Error("shipped stoplist not applied")
	}
	if got := comp.Extractor.Devices("my docking station died"); len(got) != 1 || got[0] != "docking station" {
		t.Errorf("devices = %v", got)
	}
}
