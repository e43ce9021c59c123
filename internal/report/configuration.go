package report

import (
	"strings"

	"github.com/temirov/albatross/internal/utils/flags"
	pathutils "github.com/temirov/albatross/internal/utils/path"
)

const (
	defaultStateFilePathConstant   = "~/.albatross/state.jsonl"
	configurationKeyJoinerConstant = "."
)

var reportConfigurationHomeExpander = pathutils.NewHomeExpander()

// CommandConfiguration captures persisted configuration for journal reports.
type CommandConfiguration struct {
	StateFilePath string `mapstructure:"state-file"`
}

// DefaultCommandConfiguration returns baseline configuration values for journal reports.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		StateFilePath: defaultStateFilePathConstant,
	}
}

// DefaultConfigurationValues exposes report defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + configurationKeyJoinerConstant + flags.StateFileFlagName: defaults.StateFilePath,
	}
}

// Sanitize trims configured values and expands home-relative paths.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.StateFilePath = reportConfigurationHomeExpander.Expand(strings.TrimSpace(configuration.StateFilePath))
	return sanitized
}
