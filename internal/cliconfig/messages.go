package cliconfig

import "os"

// FilePermission is the default permission for a created hostcli.yaml.
const FilePermission os.FileMode = 0644

// Error messages, exported so tests can compare against them.
const (
	ErrConfigNotFound  = "config file not found"
	ErrConfigParseFail = "failed to parse config file"
)

// Log messages for structured logging.
const (
	LogConfigLoaded  = "config_loaded"
	LogConfigSaved   = "config_saved"
	LogConfigCreated = "config_created"
)
