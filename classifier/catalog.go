// Package classifier maps a normalized drug pair to an interaction type and
// severity using an ordered decision list built from a rule catalog.
package classifier

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giygas/interactions-api/entities"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var catalogValidator = validator.New()

// Catalog is the rule catalog as read from YAML. It is only used to build a
// RuleClassifier and is never consulted afterwards.
type Catalog struct {
	Version    int                 `yaml:"version"`
	Classes    map[string][]string `yaml:"classes" validate:"required,dive,keys,required,endkeys,min=1,dive,required"`
	ClassPairs []ClassPairSpec     `yaml:"class_pairs" validate:"dive"`
	ExactPairs [][]string          `yaml:"exact_pairs" validate:"dive,len=2,dive,required"`
}

// ClassPairSpec declares one class-pair rule. Each side is the union of the
// named classes.
type ClassPairSpec struct {
	Name     string   `yaml:"name" validate:"required"`
	Left     []string `yaml:"left" validate:"min=1,dive,required"`
	Right    []string `yaml:"right" validate:"min=1,dive,required"`
	Type     string   `yaml:"type" validate:"required"`
	Severity string   `yaml:"severity" validate:"required"`
}

// DefaultCatalog returns the catalog shipped with the binary
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog file. An empty path yields the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ParseCatalog decodes and validates a YAML catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Validate checks the catalog structure and that every class-pair rule
// references declared classes with a known type and severity.
func (c *Catalog) Validate() error {
	if err := catalogValidator.Struct(c); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	seen := make(map[string]bool, len(c.ClassPairs))
	for i, rule := range c.ClassPairs {
		if seen[rule.Name] {
			return fmt.Errorf("class pair %d: duplicate rule name %q", i, rule.Name)
		}
		seen[rule.Name] = true

		for _, class := range append(append([]string{}, rule.Left...), rule.Right...) {
			if _, ok := c.Classes[class]; !ok {
				return fmt.Errorf("class pair %q: unknown class %q", rule.Name, class)
			}
		}
		if _, err := entities.ParseInteractionType(rule.Type); err != nil {
			return fmt.Errorf("class pair %q: %w", rule.Name, err)
		}
		if _, err := entities.ParseSeverity(rule.Severity); err != nil {
			return fmt.Errorf("class pair %q: %w", rule.Name, err)
		}
	}

	return nil
}
