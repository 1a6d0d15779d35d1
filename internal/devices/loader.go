package devices

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// extensions tried per search path, in order. YAML documents are
// normalized to JSON before schema validation.
var extensions = []string{".json", ".yaml", ".yml"}

// Loader resolves named definition files across search paths,
// validates them, and caches the parsed result.
type Loader struct {
	cache       sync.Map
	validator   *Validator
	searchPaths []string
}

func NewLoader(searchPaths []string) (*Loader, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	return &Loader{
		validator:   validator,
		searchPaths: searchPaths,
	}, nil
}

// Load resolves a definition by name (without extension) against the
// search paths.
func (l *Loader) Load(name string) (*GroupDefinition, error) {
	if cached, ok := l.cache.Load(name); ok {
		return cached.(*GroupDefinition), nil
	}

	var data []byte
	var foundPath string

	for _, searchPath := range l.searchPaths {
		for _, ext := range extensions {
			fullPath := filepath.Join(searchPath, name+ext)
			raw, err := os.ReadFile(fullPath)
			if err == nil {
				data = raw
				foundPath = fullPath
				break
			}
		}
		if data != nil {
			break
		}
	}

	if data == nil {
		return nil, fmt.Errorf("definition not found: %s (searched in: %v)", name, l.searchPaths)
	}

	definition, err := l.parse(data, filepath.Ext(foundPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", foundPath, err)
	}

	l.cache.Store(name, definition)
	return definition, nil
}

func (l *Loader) parse(data []byte, ext string) (*GroupDefinition, error) {
	if ext == ".yaml" || ext == ".yml" {
		normalized, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = normalized
	}

	if err := l.validator.ValidateDefinition(data); err != nil {
		return nil, err
	}

	var definition GroupDefinition
	if err := json.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("failed to unmarshal definition: %w", err)
	}
	return &definition, nil
}

// ClearCache drops every cached definition.
func (l *Loader) ClearCache() {
	l.cache.Range(func(key, value interface{}) bool {
		l.cache.Delete(key)
		return true
	})
}

// yamlToJSON re-encodes a YAML document as JSON so the same schema and
// decoder handle both formats.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize YAML: %w", err)
	}
	return out, nil
}
