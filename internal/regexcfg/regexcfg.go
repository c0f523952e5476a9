// Package regexcfg loads the `.regexrc` named-pattern file consumed by
// cmd/regex's `@name` argument syntax.
package regexcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the parsed contents of a `.regexrc` file: a table of named
// patterns a caller can reference with `@name` instead of spelling the
// pattern out on the command line.
type Config struct {
	Patterns map[string]string `yaml:"patterns"`
}

// Load reads and parses the `.regexrc` file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regexcfg: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("regexcfg: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Lookup returns the pattern registered under name, if any.
func (c *Config) Lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	pattern, ok := c.Patterns[name]
	return pattern, ok
}

// DefaultPath returns the `.regexrc` path in the user's home directory,
// the conventional location cmd/regex checks when no --config flag is
// given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("regexcfg: resolving home directory: %w", err)
	}
	return home + "/.regexrc", nil
}
