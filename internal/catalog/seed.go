package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the on-disk shape of a catalog dataset.
type Seed struct {
	Products   []Product  `yaml:"products"`
	Categories []Category `yaml:"categories"`
}

// DefaultSeed returns the built-in demo catalog.
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a YAML seed from path. An empty path yields the built-in
// catalog.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %q: %w", path, err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	if seed.Products == nil {
		seed.Products = []Product{}
	}
	return seed, nil
}

// Open builds a Store from the seed.
func (s Seed) Open() (*Store, error) {
	return NewStore(s.Products, s.Categories)
}
