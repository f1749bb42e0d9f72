// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load reads a YAML file into target, expanding environment variables first.
// Fields missing from the file keep the values already in target.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return Parse(data, filename, target)
}

// Parse is Load for an in-memory document. source names it in errors.
func Parse[T any](data []byte, source string, target *T) error {
	expandedData := os.Expand(string(data), lookupEnv)

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", source, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// lookupEnv resolves ${NAME} and ${NAME:-fallback}. The fallback applies
// when NAME is unset or empty.
func lookupEnv(key string) string {
	name, fallback, hasFallback := strings.Cut(key, ":-")
	v := os.Getenv(name)
	if v == "" && hasFallback {
		return fallback
	}
	return v
}
