package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/migrate"
	"github.com/temirov/albatross/internal/report"
	"github.com/temirov/albatross/internal/utils"
	flagutils "github.com/temirov/albatross/internal/utils/flags"
)

const (
	applicationNameConstant             = "albatross"
	applicationShortDescriptionConstant = "Command-line interface for GitLab group migration"
	applicationLongDescriptionConstant  = "albatross copies a GitLab group hierarchy, its projects, and their resources onto another instance, resuming interrupted migrations from a durable state journal."

	configFileFlagNameConstant  = "config"
	configFileFlagUsageConstant = "Optional path to a configuration file."
	logLevelFlagNameConstant    = "log-level"
	logLevelFlagUsageConstant   = "Override the configured log level."
	logFormatFlagNameConstant   = "log-format"
	logFormatFlagUsageConstant  = "Override the configured log format (structured or console)."
	verboseFlagNameConstant     = "verbose"
	verboseFlagUsageConstant    = "Log individual migration steps (info level)."
	debugFlagNameConstant       = "debug"
	debugFlagUsageConstant      = "Log request diagnostics (debug level); may expose credentials in command lines."

	commonConfigurationKeyConstant                 = "common"
	commonLogLevelConfigKeyConstant                = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant               = commonConfigurationKeyConstant + ".log_format"
	migrateConfigurationKeyConstant                = "migrate"
	reportConfigurationKeyConstant                 = "report"
	configurationKeySeparatorConstant              = "."
	environmentPrefixConstant                      = "ALBATROSS"
	configurationNameConstant                      = "config"
	configurationTypeConstant                      = "yaml"
	configurationSearchPathEnvironmentNameConstant = "ALBATROSS_CONFIG_SEARCH_PATH"
	defaultConfigurationSearchPathConstant         = "."

	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	duplicateOperationErrorTemplateConstant = "configuration lists operation %q more than once"

	rootCommandInfoMessageConstant      = "albatross CLI executed"
	rootCommandDebugMessageConstant     = "albatross CLI diagnostics"
	logFieldCommandNameConstant         = "command_name"
	logFieldArgumentCountConstant       = "argument_count"
	logFieldArgumentsConstant           = "arguments"
	loggerNotInitializedMessageConstant = "logger not initialized"

	versionFlagArgumentConstant   = "--version"
	versionOutputTemplateConstant = "%s version: %s\n"
	fallbackVersionConstant       = "dev"
	argumentTerminatorConstant    = "--"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common     ApplicationCommonConfiguration      `mapstructure:"common"`
	Operations []ApplicationOperationConfiguration `mapstructure:"operations"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationOperationConfiguration carries the configured options for one named command.
type ApplicationOperationConfiguration struct {
	Name    string         `mapstructure:"operation"`
	Options map[string]any `mapstructure:"with"`
}

// DuplicateOperationConfigurationError reports an operation configured more than once.
type DuplicateOperationConfigurationError struct {
	OperationName string
}

// Error describes the duplicated operation entry.
func (duplicateError DuplicateOperationConfigurationError) Error() string {
	return fmt.Sprintf(duplicateOperationErrorTemplateConstant, duplicateError.OperationName)
}

type operationConfigurationIndex map[string]map[string]any

func newOperationConfigurations(operationEntries []ApplicationOperationConfiguration) (operationConfigurationIndex, error) {
	index := make(operationConfigurationIndex, len(operationEntries))
	for _, operationEntry := range operationEntries {
		normalizedName := strings.ToLower(strings.TrimSpace(operationEntry.Name))
		if len(normalizedName) == 0 {
			continue
		}
		if _, exists := index[normalizedName]; exists {
			return nil, DuplicateOperationConfigurationError{OperationName: normalizedName}
		}

		duplicatedOptions := make(map[string]any, len(operationEntry.Options))
		for optionKey, optionValue := range operationEntry.Options {
			duplicatedOptions[optionKey] = optionValue
		}
		index[normalizedName] = duplicatedOptions
	}
	return index, nil
}

type applicationCommandConfigurations struct {
	Migrate migrate.CommandConfiguration `mapstructure:"migrate"`
	Report  report.CommandConfiguration  `mapstructure:"report"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand             *cobra.Command
	configurationLoader     *utils.ConfigurationLoader
	loggerFactory           *utils.LoggerFactory
	logger                  *zap.Logger
	configuration           ApplicationConfiguration
	operationConfigurations operationConfigurationIndex
	commandConfigurations   applicationCommandConfigurations
	configurationMetadata   utils.LoadedConfiguration
	configurationFilePath   string
	logLevelFlagValue       string
	logFormatFlagValue      string
	verboseFlagValue        bool
	debugFlagValue          bool
	commandContextAccessor  utils.CommandContextAccessor
	versionResolver         func(context.Context) string
	exitFunction            func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationSearchPath := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentNameConstant))
	if len(configurationSearchPath) == 0 {
		configurationSearchPath = defaultConfigurationSearchPathConstant
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{configurationSearchPath},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		versionResolver:        resolveApplicationVersion,
		exitFunction:           os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command, command.Name())
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.verboseFlagValue, verboseFlagNameConstant, false, verboseFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.debugFlagValue, debugFlagNameConstant, false, debugFlagUsageConstant)

	migrateBuilder := migrate.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() migrate.CommandConfiguration {
			return application.commandConfigurations.Migrate
		},
	}
	migrateCommand, migrateBuildError := migrateBuilder.Build()
	if migrateBuildError == nil {
		cobraCommand.AddCommand(migrateCommand)
	}

	reportBuilder := report.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() report.CommandConfiguration {
			return application.commandConfigurations.Report
		},
	}
	reportCommand, reportBuildError := reportBuilder.Build()
	if reportBuildError == nil {
		cobraCommand.AddCommand(reportCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	arguments := os.Args[1:]
	if application.handleVersionRequest(arguments) {
		return nil
	}

	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(arguments))

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// InitializeForCommand loads configuration and logging for the named command without executing it.
func (application *Application) InitializeForCommand(commandUse string) error {
	return application.initializeConfiguration(application.rootCommand, commandUse)
}

func (application *Application) initializeConfiguration(command *cobra.Command, commandName string) error {
	commonDefaults := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, commonDefaults, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	operationConfigurations, operationsError := newOperationConfigurations(application.configuration.Operations)
	if operationsError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, operationsError)
	}

	application.operationConfigurations = operationConfigurations

	commandDefaults := make(map[string]any)
	for defaultKey, defaultValue := range migrate.DefaultConfigurationValues(migrateConfigurationKeyConstant) {
		commandDefaults[defaultKey] = defaultValue
	}
	for defaultKey, defaultValue := range report.DefaultConfigurationValues(reportConfigurationKeyConstant) {
		commandDefaults[defaultKey] = defaultValue
	}
	for operationName, operationOptions := range application.operationConfigurations {
		for optionKey, optionValue := range operationOptions {
			commandDefaults[operationName+configurationKeySeparatorConstant+optionKey] = optionValue
		}
	}

	if _, commandLoadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, commandDefaults, &application.commandConfigurations); commandLoadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, commandLoadError)
	}

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, verboseFlagNameConstant) && application.verboseFlagValue {
		application.configuration.Common.LogLevel = string(utils.LogLevelInfo)
	}

	if application.persistentFlagChanged(command, debugFlagNameConstant) && application.debugFlagValue {
		application.configuration.Common.LogLevel = string(utils.LogLevelDebug)
	}

	loggerInstance, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerInstance

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(logFieldCommandNameConstant, commandName),
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithLogLevel(
			updatedContext,
			utils.LogLevel(application.configuration.Common.LogLevel),
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) handleVersionRequest(arguments []string) bool {
	for _, argument := range arguments {
		if argument == argumentTerminatorConstant {
			return false
		}
		if argument != versionFlagArgumentConstant {
			continue
		}

		resolvedVersion := application.versionResolver(application.rootCommand.Context())
		fmt.Fprintf(os.Stdout, versionOutputTemplateConstant, applicationNameConstant, resolvedVersion)
		application.exitFunction(0)
		return true
	}
	return false
}

func resolveApplicationVersion(_ context.Context) string {
	if buildInformation, buildInformationAvailable := debug.ReadBuildInfo(); buildInformationAvailable {
		trimmedVersion := strings.TrimSpace(buildInformation.Main.Version)
		if len(trimmedVersion) > 0 {
			return trimmedVersion
		}
	}
	return fallbackVersionConstant
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
