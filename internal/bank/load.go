package bank

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML shape of a question bank.
type File struct {
	Version   string     `yaml:"version"`
	Questions []Question `yaml:"questions"`
}

// Parse decodes a YAML bank document and validates it.
func Parse(data []byte) (*Bank, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing bank yaml: %w", err)
	}
	if f.Version == "" {
		return nil, &ConfigError{Problems: []string{"bank file has no version"}}
	}
	return New(f.Version, f.Questions)
}

// LoadFile reads and validates a YAML bank from disk.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bank file: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading bank %s: %w", path, err)
	}
	return b, nil
}

// Marshal renders b as a YAML bank document, the inverse of Parse.
func Marshal(b *Bank) ([]byte, error) {
	return yaml.Marshal(File{Version: b.Version(), Questions: b.Questions()})
}
