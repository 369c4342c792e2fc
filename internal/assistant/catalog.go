package assistant

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Script identifies which trigger table a phrase belongs to.
type Script string

const (
	ScriptTelugu  Script = "telugu"
	ScriptEnglish Script = "english"
)

var ErrInvalidCatalog = errors.New("INVALID_CATALOG")

// Trigger is one (intent, script, phrase) record. Records are matched in
// declaration order.
type Trigger struct {
	Intent Intent `yaml:"intent"`
	Script Script `yaml:"script"`
	Phrase string `yaml:"phrase"`
}

// Adaptation maps an English fragment to its Telugu replacement.
type Adaptation struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Catalog is the declarative configuration of the response engine. It is
// read-only once loaded.
type Catalog struct {
	Triggers    []Trigger           `yaml:"triggers"`
	Responses   map[Intent][]string `yaml:"responses"`
	Adaptations []Adaptation        `yaml:"adaptations"`
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog from disk. An empty path yields the embedded
// catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	for _, intent := range AllIntents {
		if len(c.Responses[intent]) == 0 {
			return fmt.Errorf("%w: no responses for intent %q", ErrInvalidCatalog, intent)
		}
		for i, r := range c.Responses[intent] {
			if strings.TrimSpace(r) == "" {
				return fmt.Errorf("%w: empty response %d for intent %q", ErrInvalidCatalog, i, intent)
			}
		}
	}
	for intent := range c.Responses {
		if !intent.Valid() {
			return fmt.Errorf("%w: responses for unknown intent %q", ErrInvalidCatalog, intent)
		}
	}
	for i, t := range c.Triggers {
		if !t.Intent.Valid() || t.Intent == IntentDefault {
			return fmt.Errorf("%w: trigger %d has unusable intent %q", ErrInvalidCatalog, i, t.Intent)
		}
		if t.Script != ScriptTelugu && t.Script != ScriptEnglish {
			return fmt.Errorf("%w: trigger %d has unknown script %q", ErrInvalidCatalog, i, t.Script)
		}
		if t.Phrase == "" {
			return fmt.Errorf("%w: trigger %d has an empty phrase", ErrInvalidCatalog, i)
		}
	}
	for i, a := range c.Adaptations {
		if a.From == "" {
			return fmt.Errorf("%w: adaptation %d has an empty source", ErrInvalidCatalog, i)
		}
	}
	return nil
}

// triggersFor returns the records of one script in declaration order.
func (c *Catalog) triggersFor(script Script) []Trigger {
	out := make([]Trigger, 0, len(c.Triggers))
	for _, t := range c.Triggers {
		if t.Script == script {
			out = append(out, t)
		}
	}
	return out
}
