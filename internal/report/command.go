package report

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/albatross/internal/migrate/state"
	"github.com/temirov/albatross/internal/utils"
	"github.com/temirov/albatross/internal/utils/flags"
)

const (
	commandUseConstant                    = "report"
	commandShortDescriptionConstant       = "Summarize the migration state journal"
	commandLongDescriptionConstant        = "report writes every state journal record as CSV to standard output and logs how many groups and projects reached each status."
	commandExecutionErrorTemplateConstant = "report failed: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

type commandOptions struct {
	debugLoggingEnabled bool
	stateFilePath       string
}

// CommandBuilder assembles the report Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	RecordLoader          RecordLoader
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the report command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runReport,
	}

	flags.EnsureStateFileFlag(command, defaultStateFilePathConstant, "")

	return command, nil
}

func (builder *CommandBuilder) runReport(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger(options.debugLoggingEnabled)

	service, serviceError := NewService(ServiceDependencies{
		Logger:       logger,
		RecordLoader: builder.resolveRecordLoader(),
		Output:       utils.NewFlushingWriter(command.OutOrStdout()),
	})
	if serviceError != nil {
		return serviceError
	}

	if runError := service.Run(command.Context(), ReportOptions{StateFilePath: options.stateFilePath}); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	debugEnabled := false
	if command != nil {
		contextAccessor := utils.NewCommandContextAccessor()
		if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
			if strings.EqualFold(string(logLevel), string(utils.LogLevelDebug)) {
				debugEnabled = true
			}
		}
	}

	stateFilePath := configuration.StateFilePath
	if command != nil {
		commandFlags := command.Flags()
		if commandFlags.Changed(flags.StateFileFlagName) {
			flagValue, _ := commandFlags.GetString(flags.StateFileFlagName)
			stateFilePath = flagValue
		}
	}

	stateFilePath = reportConfigurationHomeExpander.Expand(strings.TrimSpace(stateFilePath))
	if len(stateFilePath) == 0 {
		stateFilePath = reportConfigurationHomeExpander.Expand(defaultStateFilePathConstant)
	}

	return commandOptions{
		debugLoggingEnabled: debugEnabled,
		stateFilePath:       stateFilePath,
	}, nil
}

func (builder *CommandBuilder) resolveLogger(enableDebug bool) *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if enableDebug {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
	}
	return logger
}

func (builder *CommandBuilder) resolveRecordLoader() RecordLoader {
	if builder.RecordLoader != nil {
		return builder.RecordLoader
	}
	return state.ReadJournal
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}
