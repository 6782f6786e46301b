// Package seed provides the fixture documents a fresh session starts with so the
// status pages are non-empty before any upload.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"docverify-portal/internal/document/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

type file struct {
	Documents []domain.Document `yaml:"documents"`
}

// Default returns the embedded fixture: ids "1" (verified), "2" (under-review) and "3" (rejected).
func Default() []domain.Document {
	docs, err := Parse(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("seed: embedded fixture is invalid: %v", err))
	}
	return docs
}

// Load reads a seed file from path. An empty path returns Default().
func Load(path string) ([]domain.Document, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes YAML seed data and validates every document and id uniqueness.
func Parse(b []byte) ([]domain.Document, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	seen := make(map[string]bool, len(f.Documents))
	for i := range f.Documents {
		d := &f.Documents[i]
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("seed: document %d: %w", i, err)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("seed: duplicate document id %q", d.ID)
		}
		seen[d.ID] = true
	}
	return f.Documents, nil
}
