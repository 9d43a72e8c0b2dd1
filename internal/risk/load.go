package risk

import (
	"fmt"
	"os"

	"github.com/HendryAvila/trustlens/internal/bank"
	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML shape of a rule table.
type File struct {
	Rules []Rule `yaml:"rules"`
}

// ParseRules decodes a YAML rule table and validates it against b.
func ParseRules(b *bank.Bank, data []byte) (*RuleSet, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules yaml: %w", err)
	}
	return NewRuleSet(b, f.Rules)
}

// LoadRulesFile reads a YAML rule table from disk.
func LoadRulesFile(b *bank.Bank, path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rs, err := ParseRules(b, data)
	if err != nil {
		return nil, fmt.Errorf("loading rules %s: %w", path, err)
	}
	return rs, nil
}
