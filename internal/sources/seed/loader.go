// Package seed reads a YAML (or JSON) list of contacts that is merged
// into the store at start and on every reload.
package seed

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Loader reads the seed file
type Loader struct {
	filePath string
	lookup   func(string) (string, bool)
}

// NewLoader creates a loader for filePath
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		lookup:   os.LookupEnv,
	}
}

// Path returns the seed file location
func (l *Loader) Path() string { return l.filePath }

// Load reads and parses the seed file
func (l *Loader) Load() (Config, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return l.Parse(data)
}

// Parse decodes seed data after expanding {{VAR}} placeholders.
func (l *Loader) Parse(data []byte) (Config, error) {
	data = expandVariables(data, l.lookup)

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	return config, nil
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// expandVariables replaces {{NAME}} with the NAME environment variable.
// Unset variables become an empty string.
// Example: {{OFFICE_PHONE}} -> 555-0100
func expandVariables(data []byte, lookup func(string) (string, bool)) []byte {
	return placeholderRe.ReplaceAllFunc(data, func(m []byte) []byte {
		name := placeholderRe.FindSubmatch(m)[1]
		v, _ := lookup(string(name))
		return []byte(v)
	})
}
