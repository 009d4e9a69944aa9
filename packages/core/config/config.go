package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Config represents the reqspec configuration
type Config struct {
	Output        string   `yaml:"output,omitempty" json:"output,omitempty"`
	NoColor       *bool    `yaml:"noColor,omitempty" json:"noColor,omitempty"`
	Verbose       *bool    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	MaxLength     int      `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`     // bytes per specifier
	Concurrency   int      `yaml:"concurrency,omitempty" json:"concurrency,omitempty"` // files read in parallel
	Database      string   `yaml:"database,omitempty" json:"database,omitempty"`
	EnvFile       string   `yaml:"envFile,omitempty" json:"envFile,omitempty"`
	Include       []string `yaml:"include,omitempty" json:"include,omitempty"` // file name globs used when walking directories
	FailOnSkipped *bool    `yaml:"failOnSkipped,omitempty" json:"failOnSkipped,omitempty"`
}

const (
	DefaultMaxLength   = 4096
	DefaultConcurrency = 4
	DefaultDatabase    = "sqlite://reqspec.db"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Output:        "console",
		NoColor:       BoolPtr(false),
		Verbose:       BoolPtr(false),
		MaxLength:     DefaultMaxLength,
		Concurrency:   DefaultConcurrency,
		Database:      DefaultDatabase,
		EnvFile:       ".env",
		Include:       []string{"requirements*.txt", "*.requirements.txt", "constraints*.txt", "requirements*.in", "constraints*.in", "pyproject.toml"},
		FailOnSkipped: BoolPtr(false),
	}
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetFailOnSkipped reports whether skipped option lines fail a check.
func (c *Config) GetFailOnSkipped() bool {
	return getBool(c.FailOnSkipped, false)
}

// ConfigFilenames contains the possible config file names in lookup order
var ConfigFilenames = []string{
	".reqspec.yaml",
	".reqspec.yml",
	".reqspec.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory and
// returns the defaults when there is none.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

//go:embed schema.json
var schemaJSON []byte

// ValidationError lists every schema violation found in a config document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Validate checks a YAML or JSON config document against the config schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Problems = append(verr.Problems, desc.String())
	}
	return verr
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Output != "" {
		result.Output = other.Output
	}
	if other.MaxLength > 0 {
		result.MaxLength = other.MaxLength
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if other.Database != "" {
		result.Database = other.Database
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if len(other.Include) > 0 {
		result.Include = other.Include
	}

	// only override booleans explicitly set in other
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.FailOnSkipped != nil {
		result.FailOnSkipped = other.FailOnSkipped
	}

	return &result
}

// SaveConfig writes the configuration as YAML.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
