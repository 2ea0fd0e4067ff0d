package config

import (
	"fmt"
	"strings"
)

// ConfigurationError lists required settings that were not provided.
type ConfigurationError struct {
	Missing []string
}

func NewConfigurationError(missing []string) *ConfigurationError {
	return &ConfigurationError{Missing: missing}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}
