package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const initHeader = `# rsttools configuration.
# Environment variables (${VAR}) are expanded before parsing.
`

// Init writes a configuration file populated with the defaults.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(initHeader), data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
