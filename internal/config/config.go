// Package config holds the server settings: where data lives, which question
// bank and rule table to load, and the trend and adequacy thresholds.
//
// Settings layer in order: built-in defaults, an optional YAML file, then
// TRUSTLENS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/HendryAvila/trustlens/internal/store"
	"github.com/HendryAvila/trustlens/internal/summary"
	"github.com/HendryAvila/trustlens/internal/trend"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the data directory created under the user's home.
	DirName = ".trustlens"
	// FileName is the config file looked up inside the data directory.
	FileName = "config.yaml"
)

// Environment variables that override file settings.
const (
	EnvDataDir            = "TRUSTLENS_DATA_DIR"
	EnvBankFile           = "TRUSTLENS_BANK_FILE"
	EnvRulesFile          = "TRUSTLENS_RULES_FILE"
	EnvDriftThreshold     = "TRUSTLENS_DRIFT_THRESHOLD"
	EnvStabilityTolerance = "TRUSTLENS_STABILITY_TOLERANCE"
	EnvStabilityWindow    = "TRUSTLENS_STABILITY_WINDOW"
)

// lookupEnv is a package-level var to allow test injection.
var lookupEnv = os.LookupEnv

// Config is the resolved server configuration.
type Config struct {
	DataDir            string                 `yaml:"data_dir"`
	BankFile           string                 `yaml:"bank_file,omitempty"`
	RulesFile          string                 `yaml:"rules_file,omitempty"`
	DriftThreshold     float64                `yaml:"drift_threshold"`
	StabilityTolerance float64                `yaml:"stability_tolerance"`
	StabilityWindow    int                    `yaml:"stability_window"`
	MinResponses       map[summary.Module]int `yaml:"min_responses"`
}

// Default returns the built-in configuration. An empty BankFile or
// RulesFile means the reference bank and rule table.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:            filepath.Join(home, DirName),
		DriftThreshold:     trend.DefaultDriftThreshold,
		StabilityTolerance: trend.DefaultStabilityTolerance,
		StabilityWindow:    trend.DefaultStabilityWindow,
		MinResponses: map[summary.Module]int{
			summary.ModuleOrganisation: 5,
			summary.ModuleSystem:       3,
		},
	}
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(Default().DataDir, FileName)
}

// Load resolves the configuration. A missing file at path is not an error;
// the defaults and environment still apply. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookupEnv(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := lookupEnv(EnvBankFile); ok {
		c.BankFile = v
	}
	if v, ok := lookupEnv(EnvRulesFile); ok {
		c.RulesFile = v
	}
	if v, ok := lookupEnv(EnvDriftThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvDriftThreshold, v, err)
		}
		c.DriftThreshold = f
	}
	if v, ok := lookupEnv(EnvStabilityTolerance); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvStabilityTolerance, v, err)
		}
		c.StabilityTolerance = f
	}
	if v, ok := lookupEnv(EnvStabilityWindow); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvStabilityWindow, v, err)
		}
		c.StabilityWindow = n
	}
	return nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.DataDir) == "" {
		problems = append(problems, "data_dir is empty")
	}
	if c.DriftThreshold <= 0 {
		problems = append(problems, "drift_threshold must be positive")
	}
	if c.StabilityTolerance <= 0 {
		problems = append(problems, "stability_tolerance must be positive")
	}
	if c.StabilityWindow < 2 {
		problems = append(problems, "stability_window must be at least 2")
	}
	for _, m := range []summary.Module{summary.ModuleOrganisation, summary.ModuleSystem} {
		if c.MinResponses[m] < 1 {
			problems = append(problems, fmt.Sprintf("min_responses.%s must be at least 1", m))
		}
	}
	var unknown []string
	for m := range c.MinResponses {
		if !m.Valid() {
			unknown = append(unknown, string(m))
		}
	}
	sort.Strings(unknown)
	for _, m := range unknown {
		problems = append(problems, fmt.Sprintf("min_responses has unknown module %q", m))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MinResponsesFor returns the adequacy threshold for module m.
func (c Config) MinResponsesFor(m summary.Module) int {
	return c.MinResponses[m]
}

// DBPath is the SQLite file the store opens inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, store.DBFile)
}
