// Package cliconfig manages the CLI-level configuration file (distinct
// from a plugin's per-plugin settings in internal/settings): catalog URL,
// cache directory, interpreter path, and the default interactivity mode.
// Reads fall back to defaults and overlay the file's contents; writes are
// atomic over an afero.Fs.
package cliconfig

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const configFile = "hostcli.yaml"

// Config holds CLI-wide defaults, independent of any one invocation's
// flags or environment overrides.
type Config struct {
	CatalogURL      string        `yaml:"catalogUrl"`
	CacheDir        string        `yaml:"cacheDir"`
	InterpreterPath string        `yaml:"interpreterPath"`
	Interactive     bool          `yaml:"interactive"`
	Logging         LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls the zap encoder used by internal/logging.
type LoggingConfig struct {
	Output string `yaml:"output"` // console, json, development
}

// ConfigManager reads and writes Config through a filesystem abstraction.
type ConfigManager struct {
	fs afero.Fs
}

// NewConfigManager creates a ConfigManager over the provided filesystem.
func NewConfigManager(fs afero.Fs) *ConfigManager {
	return &ConfigManager{fs: fs}
}

func defaultConfig() *Config {
	return &Config{
		CatalogURL:      "",
		CacheDir:        "",
		InterpreterPath: "",
		Interactive:     true,
		Logging: LoggingConfig{
			Output: "console",
		},
	}
}

// ReadConfig reads hostcli.yaml, returning defaults overlaid with whatever
// the file declares. A missing file is not an error.
func (cm *ConfigManager) ReadConfig() (*Config, error) {
	config := defaultConfig()

	data, err := afero.ReadFile(cm.fs, configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigParseFail, err)
	}

	return config, nil
}

// WriteConfig serializes config back to hostcli.yaml.
func (cm *ConfigManager) WriteConfig(config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	content := "# hostcli configuration\n" + string(data)
	tmp := configFile + ".tmp"
	if err := afero.WriteFile(cm.fs, tmp, []byte(content), FilePermission); err != nil {
		return err
	}
	return cm.fs.Rename(tmp, configFile)
}
