package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/ticketai/pkg/ticketai/entities"
	"github.com/cognicore/ticketai/pkg/ticketai/lexicon"
	"github.com/cognicore/ticketai/pkg/ticketai/normalize"
	"github.com/cognicore/ticketai/pkg/ticketai/stoplist"
)

// Stoplist is a stopword override file. Terms extend the English list
// unless Replace is set.
type Stoplist struct {
	Terms   []string `yaml:"terms"`
	Replace bool     `yaml:"replace"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// LoadVocabulary loads entity word lists from a YAML file. Lists left
// out of the file keep their defaults.
func LoadVocabulary(path string) (entities.Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Vocabulary{}, err
	}

	var v entities.Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return entities.Vocabulary{}, err
	}

	def := entities.DefaultVocabulary()
	if len(v.Devices) == 0 {
		v.Devices = def.Devices
	}
	if v.DeviceQualifiers == nil {
		v.DeviceQualifiers = def.DeviceQualifiers
	}
	if len(v.ErrorCodes) == 0 {
		v.ErrorCodes = def.ErrorCodes
	}
	if len(v.UserDomains) == 0 {
		v.UserDomains = def.UserDomains
	}
	return v, nil
}

// Loader loads the vocabulary files and constructs the text components
type Loader struct {
	StoplistPath   string
	LemmasPath     string
	VocabularyPath string
	ExtraStopwords []string
}

// Loader returns a Loader for the configured vocabulary files.
func (c *Config) Loader() *Loader {
	return &Loader{
		StoplistPath:   c.Vocabulary.Stoplist,
		LemmasPath:     c.Vocabulary.Lemmas,
		VocabularyPath: c.Vocabulary.Entities,
		ExtraStopwords: c.Vocabulary.ExtraStopwords,
	}
}

// Components holds the constructed text components
type Components struct {
	Stoplist   *stoplist.Manager
	Lexicon    *lexicon.Lexicon
	Normalizer *normalize.Normalizer
	Extractor  *entities.Extractor
}

// Load reads every configured file and returns initialized components.
// Missing paths fall back to the embedded English data.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Stoplist
	comp.Stoplist = stoplist.English()
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		if sl.Replace {
			comp.Stoplist = stoplist.NewManager(sl.Terms)
		} else {
			for _, term := range sl.Terms {
				comp.Stoplist.Add(term)
			}
		}
	}
	for _, term := range l.ExtraStopwords {
		comp.Stoplist.Add(term)
	}

	// Lemmas
	comp.Lexicon = lexicon.English()
	if l.LemmasPath != "" {
		extra, err := lexicon.LoadFromYAML(l.LemmasPath)
		if err != nil {
			return nil, fmt.Errorf("load lemmas: %w", err)
		}
		comp.Lexicon.Merge(extra)
	}
	comp.Normalizer = normalize.New(comp.Stoplist, normalize.NewMorphy(comp.Lexicon))

	// Entity vocabulary
	vocab := entities.DefaultVocabulary()
	if l.VocabularyPath != "" {
		v, err := LoadVocabulary(l.VocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("load entity vocabulary: %w", err)
		}
		vocab = v
	}
	comp.Extractor = entities.New(vocab)

	return comp, nil
}
