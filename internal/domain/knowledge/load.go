package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Document is the on-disk form of registry overrides.
type Document struct {
	Maps  []MapContext      `json:"maps" yaml:"maps" toml:"maps"`
	Rules map[string]string `json:"rules" yaml:"rules" toml:"rules"`
}

// Load reads a YAML or TOML registry document and overlays it on the
// built-in registry. Contexts replace built-ins with the same key; rules
// replace built-in texts of the same class.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}

	doc, err := ParseDocument(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return Overlay(doc)
}

// ParseDocument decodes a registry document. ext selects the format
// (".toml" for TOML, anything else is YAML, which also accepts JSON).
func ParseDocument(data []byte, ext string) (*Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// Overlay merges doc over the built-in registry.
func Overlay(doc *Document) (*Registry, error) {
	byKey := make(map[string]MapContext)
	order := make([]string, 0)
	for _, c := range defaultContexts() {
		byKey[c.Key] = c
		order = append(order, c.Key)
	}
	for _, c := range doc.Maps {
		if _, exists := byKey[c.Key]; !exists {
			order = append(order, c.Key)
		}
		byKey[c.Key] = c
	}

	contexts := make([]MapContext, 0, len(order))
	for _, k := range order {
		contexts = append(contexts, byKey[k])
	}

	rules := defaultRules()
	for class, text := range doc.Rules {
		c := ManeuverClass(class)
		switch c {
		case CutIn, BrakeCheck, Overtake:
			rules[c] = strings.TrimSpace(text)
		default:
			return nil, fmt.Errorf("unknown maneuver class %q", class)
		}
	}

	return New(contexts, rules)
}
