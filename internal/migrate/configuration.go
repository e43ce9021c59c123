package migrate

import (
	"strings"

	"github.com/temirov/albatross/internal/utils/flags"
	pathutils "github.com/temirov/albatross/internal/utils/path"
)

const (
	defaultSourceURLConstant       = "https://gitlab.com"
	defaultStateFilePathConstant   = "~/.albatross/state.jsonl"
	defaultSleepSecondsConstant    = 2
	configurationKeyJoinerConstant = "."
)

var migrateConfigurationHomeExpander = pathutils.NewHomeExpander()

// CommandConfiguration captures persisted configuration for group migration.
type CommandConfiguration struct {
	SourceURL                        string `mapstructure:"source-url"`
	SourceToken                      string `mapstructure:"source-token"`
	SourceGroupIdentifier            int64  `mapstructure:"source-group"`
	SessionCookie                    string `mapstructure:"session-cookie"`
	DestinationURL                   string `mapstructure:"destination-url"`
	DestinationToken                 string `mapstructure:"destination-token"`
	DestinationGroupIdentifier       int64  `mapstructure:"destination-group"`
	DestinationOrphanGroupIdentifier int64  `mapstructure:"destination-orphan-group"`
	StateFilePath                    string `mapstructure:"state-file"`
	StagingRootPath                  string `mapstructure:"staging-root"`
	SleepSeconds                     int    `mapstructure:"sleep-seconds"`
	DryRun                           bool   `mapstructure:"dry-run"`
}

// DefaultCommandConfiguration returns baseline configuration values for group migration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		SourceURL:     defaultSourceURLConstant,
		StateFilePath: defaultStateFilePathConstant,
		SleepSeconds:  defaultSleepSecondsConstant,
	}
}

// DefaultConfigurationValues exposes migration defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey(configurationKeyPrefix, sourceURLFlagNameConstant):              defaults.SourceURL,
		configurationKey(configurationKeyPrefix, sourceTokenFlagNameConstant):            defaults.SourceToken,
		configurationKey(configurationKeyPrefix, sourceGroupFlagNameConstant):            defaults.SourceGroupIdentifier,
		configurationKey(configurationKeyPrefix, sessionCookieFlagNameConstant):          defaults.SessionCookie,
		configurationKey(configurationKeyPrefix, destinationURLFlagNameConstant):         defaults.DestinationURL,
		configurationKey(configurationKeyPrefix, destinationTokenFlagNameConstant):       defaults.DestinationToken,
		configurationKey(configurationKeyPrefix, destinationGroupFlagNameConstant):       defaults.DestinationGroupIdentifier,
		configurationKey(configurationKeyPrefix, destinationOrphanGroupFlagNameConstant): defaults.DestinationOrphanGroupIdentifier,
		configurationKey(configurationKeyPrefix, flags.StateFileFlagName):                defaults.StateFilePath,
		configurationKey(configurationKeyPrefix, stagingRootFlagNameConstant):            defaults.StagingRootPath,
		configurationKey(configurationKeyPrefix, sleepSecondsFlagNameConstant):           defaults.SleepSeconds,
		configurationKey(configurationKeyPrefix, flags.DryRunFlagName):                   defaults.DryRun,
	}
}

func configurationKey(configurationKeyPrefix string, optionName string) string {
	return configurationKeyPrefix + configurationKeyJoinerConstant + optionName
}

// Sanitize trims configured values and expands home-relative paths.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.SourceURL = strings.TrimSpace(configuration.SourceURL)
	sanitized.SourceToken = strings.TrimSpace(configuration.SourceToken)
	sanitized.SessionCookie = strings.TrimSpace(configuration.SessionCookie)
	sanitized.DestinationURL = strings.TrimSpace(configuration.DestinationURL)
	sanitized.DestinationToken = strings.TrimSpace(configuration.DestinationToken)
	sanitized.StateFilePath = migrateConfigurationHomeExpander.Expand(strings.TrimSpace(configuration.StateFilePath))
	sanitized.StagingRootPath = migrateConfigurationHomeExpander.Expand(strings.TrimSpace(configuration.StagingRootPath))
	return sanitized
}
