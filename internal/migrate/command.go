package migrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/albatross/internal/execshell"
	"github.com/temirov/albatross/internal/gitlab"
	"github.com/temirov/albatross/internal/migrate/staging"
	"github.com/temirov/albatross/internal/migrate/state"
	"github.com/temirov/albatross/internal/transfer"
	"github.com/temirov/albatross/internal/ui"
	"github.com/temirov/albatross/internal/utils"
	"github.com/temirov/albatross/internal/utils/flags"
)

const (
	commandUseConstant                    = "migrate"
	commandShortDescriptionConstant       = "Migrate a GitLab group to another instance"
	commandLongDescriptionConstant        = "migrate copies a GitLab group hierarchy, its projects, and their resources onto another instance, journaling progress so an interrupted run resumes without repeating finished work."
	commandExecutionErrorTemplateConstant = "migration failed: %w"

	sourceURLFlagNameConstant                   = "source-url"
	sourceTokenFlagNameConstant                 = "source-token"
	sourceTokenFlagShorthandConstant            = "t"
	sourceGroupFlagNameConstant                 = "source-group"
	sourceGroupFlagShorthandConstant            = "g"
	sessionCookieFlagNameConstant               = "session-cookie"
	destinationURLFlagNameConstant              = "destination-url"
	destinationURLFlagShorthandConstant         = "U"
	destinationTokenFlagNameConstant            = "destination-token"
	destinationTokenFlagShorthandConstant       = "T"
	destinationGroupFlagNameConstant            = "destination-group"
	destinationGroupFlagShorthandConstant       = "G"
	destinationOrphanGroupFlagNameConstant      = "destination-orphan-group"
	destinationOrphanGroupFlagShorthandConstant = "O"
	stagingRootFlagNameConstant                 = "staging-root"
	sleepSecondsFlagNameConstant                = "sleep-seconds"

	sourceURLFlagUsageConstant              = "Source GitLab instance URL"
	sourceTokenFlagUsageConstant            = "Source instance API token"
	sourceGroupFlagUsageConstant            = "Numeric identifier of the source group to migrate"
	sessionCookieFlagUsageConstant          = "Source instance session cookie used for avatar downloads"
	destinationURLFlagUsageConstant         = "Destination GitLab instance URL"
	destinationTokenFlagUsageConstant       = "Destination instance API token"
	destinationGroupFlagUsageConstant       = "Numeric identifier of the destination parent group (0 targets the instance root)"
	destinationOrphanGroupFlagUsageConstant = "Numeric identifier of the destination group collecting orphan projects"
	stagingRootFlagUsageConstant            = "Directory holding staging clones during repository transfers"
	sleepSecondsFlagUsageConstant           = "Seconds to pause after repository pushes and project deletions"

	sourceClientCreationErrorTemplateConstant      = "unable to construct source client: %w"
	destinationClientCreationErrorTemplateConstant = "unable to construct destination client: %w"
	shellExecutorCreationErrorTemplateConstant     = "unable to construct shell executor: %w"
	transferServiceCreationErrorTemplateConstant   = "unable to construct transfer service: %w"
	stateStoreCreationErrorTemplateConstant        = "unable to open state journal: %w"

	migrationCompletedMessageConstant = "Migration complete"
	journalCloseFailedMessageConstant = "Failed to close state journal"
	groupsMigratedFieldNameConstant   = "groups_migrated"
	groupsSkippedFieldNameConstant    = "groups_skipped"
	groupsFailedFieldNameConstant     = "groups_failed"
	projectsMigratedFieldNameConstant = "projects_migrated"
	projectsSkippedFieldNameConstant  = "projects_skipped"
	projectsFailedFieldNameConstant   = "projects_failed"
)

// ServiceProvider constructs a migration executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (MigrationExecutor, error)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

type commandOptions struct {
	debugLoggingEnabled              bool
	sourceURL                        string
	sourceToken                      string
	sourceGroupIdentifier            int64
	sessionCookie                    string
	destinationURL                   string
	destinationToken                 string
	destinationGroupIdentifier       int64
	destinationOrphanGroupIdentifier int64
	stateFilePath                    string
	stagingRootPath                  string
	sleepDuration                    time.Duration
	dryRun                           bool
}

// CommandBuilder assembles the migrate Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  transfer.GitExecutor
	SourceClient                 SourceClient
	DestinationClient            DestinationClient
	ServiceProvider              ServiceProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration

	dryRunEnabled bool
}

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runMigrate,
	}

	flags.BindEndpointFlags(command, flags.EndpointFlagValues{URL: defaultSourceURLConstant}, flags.EndpointFlagDefinitions{
		URL:   flags.EndpointFlagDefinition{Name: sourceURLFlagNameConstant, Usage: sourceURLFlagUsageConstant, Enabled: true},
		Token: flags.EndpointFlagDefinition{Name: sourceTokenFlagNameConstant, Shorthand: sourceTokenFlagShorthandConstant, Usage: sourceTokenFlagUsageConstant, Enabled: true},
		Group: flags.EndpointFlagDefinition{Name: sourceGroupFlagNameConstant, Shorthand: sourceGroupFlagShorthandConstant, Usage: sourceGroupFlagUsageConstant, Enabled: true},
	})
	flags.BindEndpointFlags(command, flags.EndpointFlagValues{}, flags.EndpointFlagDefinitions{
		URL:   flags.EndpointFlagDefinition{Name: destinationURLFlagNameConstant, Shorthand: destinationURLFlagShorthandConstant, Usage: destinationURLFlagUsageConstant, Enabled: true},
		Token: flags.EndpointFlagDefinition{Name: destinationTokenFlagNameConstant, Shorthand: destinationTokenFlagShorthandConstant, Usage: destinationTokenFlagUsageConstant, Enabled: true},
		Group: flags.EndpointFlagDefinition{Name: destinationGroupFlagNameConstant, Shorthand: destinationGroupFlagShorthandConstant, Usage: destinationGroupFlagUsageConstant, Enabled: true},
	})
	command.Flags().Int64P(destinationOrphanGroupFlagNameConstant, destinationOrphanGroupFlagShorthandConstant, 0, destinationOrphanGroupFlagUsageConstant)
	command.Flags().String(sessionCookieFlagNameConstant, "", sessionCookieFlagUsageConstant)
	command.Flags().String(stagingRootFlagNameConstant, "", stagingRootFlagUsageConstant)
	command.Flags().Int(sleepSecondsFlagNameConstant, defaultSleepSecondsConstant, sleepSecondsFlagUsageConstant)
	flags.EnsureStateFileFlag(command, defaultStateFilePathConstant, "")
	flags.AddToggleFlag(command.Flags(), &builder.dryRunEnabled, flags.DryRunFlagName, "", false, flags.DryRunFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) runMigrate(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger(options.debugLoggingEnabled)

	sourceClient, destinationClient, clientsError := builder.resolveClients(logger, options)
	if clientsError != nil {
		return clientsError
	}

	replicator, replicatorError := builder.resolveReplicator(logger)
	if replicatorError != nil {
		return replicatorError
	}

	journalStore, storeError := state.NewJournalStore(options.stateFilePath)
	if storeError != nil {
		return fmt.Errorf(stateStoreCreationErrorTemplateConstant, storeError)
	}
	defer func() {
		if closeError := journalStore.Close(); closeError != nil {
			logger.Warn(journalCloseFailedMessageConstant, zap.Error(closeError))
		}
	}()

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:            logger,
		SourceClient:      sourceClient,
		DestinationClient: destinationClient,
		Replicator:        replicator,
		StateStore:        journalStore,
		StagingManager:    staging.NewManager(options.stagingRootPath),
	})
	if serviceError != nil {
		return serviceError
	}

	result, migrationError := service.Execute(command.Context(), MigrationOptions{
		SourceGroupIdentifier:            options.sourceGroupIdentifier,
		DestinationGroupIdentifier:       options.destinationGroupIdentifier,
		DestinationOrphanGroupIdentifier: options.destinationOrphanGroupIdentifier,
		SleepDuration:                    options.sleepDuration,
		DryRun:                           options.dryRun,
	})

	builder.logSummary(logger, result)

	if migrationError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, migrationError)
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

	sourceURL := configuration.SourceURL
	sourceToken := configuration.SourceToken
	sourceGroupIdentifier := configuration.SourceGroupIdentifier
	sessionCookie := configuration.SessionCookie
	destinationURL := configuration.DestinationURL
	destinationToken := configuration.DestinationToken
	destinationGroupIdentifier := configuration.DestinationGroupIdentifier
	destinationOrphanGroupIdentifier := configuration.DestinationOrphanGroupIdentifier
	stateFilePath := configuration.StateFilePath
	stagingRootPath := configuration.StagingRootPath
	sleepSeconds := configuration.SleepSeconds
	dryRun := configuration.DryRun

	if command != nil {
		commandFlags := command.Flags()
		if commandFlags.Changed(sourceURLFlagNameConstant) {
			flagValue, _ := commandFlags.GetString(sourceURLFlagNameConstant)
			sourceURL = flagValue
		}
		if commandFlags.Changed(sourceTokenFlagNameConstant) {
			flagValue, _ := commandFlags.GetString(sourceTokenFlagNameConstant)
			sourceToken = flagValue
		}
		if commandFlags.Changed(sourceGroupFlagNameConstant) {
			flagValue, _ := commandFlags.GetInt64(sourceGroupFlagNameConstant)
			sourceGroupIdentifier = flagValue
		}
		if commandFlags.Changed(sessionCookieFlagNameConstant) {
			flagValue, _ := commandFlags.GetString(sessionCookieFlagNameConstant)
			sessionCookie = flagValue
		}
		if commandFlags.Changed(destinationURLFlagNameConstant) {
			flagValue, _ := commandFlags.GetString(destinationURLFlagNameConstant)
			destinationURL = flagValue
		}
		if commandFlags.Changed(destinationTokenFlagNameConstant) {
			flagValue, _ := commandFlags.GetString(destinationTokenFlagNameConstant)
			destinationToken = flagValue
		}
		if commandFlags.Changed(destinationGroupFlagNameConstant) {
			flagValue, _ := commandFlags.GetInt64(destinationGroupFlagNameConstant)
			destinationGroupIdentifier = flagValue
		}
		if commandFlags.Changed(destinationOrphanGroupFlagNameConstant) {
			flagValue, _ := commandFlags.GetInt64(destinationOrphanGroupFlagNameConstant)
			destinationOrphanGroupIdentifier = flagValue
		}
		if commandFlags.Changed(flags.StateFileFlagName) {
			flagValue, _ := commandFlags.GetString(flags.StateFileFlagName)
			stateFilePath = flagValue
		}
		if commandFlags.Changed(stagingRootFlagNameConstant) {
			flagValue, _ := commandFlags.GetString(stagingRootFlagNameConstant)
			stagingRootPath = flagValue
		}
		if commandFlags.Changed(sleepSecondsFlagNameConstant) {
			flagValue, _ := commandFlags.GetInt(sleepSecondsFlagNameConstant)
			sleepSeconds = flagValue
		}
		if commandFlags.Changed(flags.DryRunFlagName) {
			dryRun = builder.dryRunEnabled
		}
	}

	sourceURL = strings.TrimSpace(sourceURL)
	if len(sourceURL) == 0 {
		sourceURL = defaultSourceURLConstant
	}

	stateFilePath = migrateConfigurationHomeExpander.Expand(strings.TrimSpace(stateFilePath))
	if len(stateFilePath) == 0 {
		stateFilePath = migrateConfigurationHomeExpander.Expand(defaultStateFilePathConstant)
	}

	stagingRootPath = migrateConfigurationHomeExpander.Expand(strings.TrimSpace(stagingRootPath))

	return commandOptions{
		debugLoggingEnabled:              debugEnabled,
		sourceURL:                        sourceURL,
		sourceToken:                      strings.TrimSpace(sourceToken),
		sourceGroupIdentifier:            sourceGroupIdentifier,
		sessionCookie:                    strings.TrimSpace(sessionCookie),
		destinationURL:                   strings.TrimSpace(destinationURL),
		destinationToken:                 strings.TrimSpace(destinationToken),
		destinationGroupIdentifier:       destinationGroupIdentifier,
		destinationOrphanGroupIdentifier: destinationOrphanGroupIdentifier,
		stateFilePath:                    stateFilePath,
		stagingRootPath:                  stagingRootPath,
		sleepDuration:                    time.Duration(sleepSeconds) * time.Second,
		dryRun:                           dryRun,
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

func (builder *CommandBuilder) resolveClients(logger *zap.Logger, options commandOptions) (SourceClient, DestinationClient, error) {
	sourceClient := builder.SourceClient
	if sourceClient == nil {
		constructedClient, clientError := gitlab.NewClient(logger, nil, gitlab.ClientConfiguration{
			BaseURL:       options.sourceURL,
			Token:         options.sourceToken,
			SessionCookie: options.sessionCookie,
		})
		if clientError != nil {
			return nil, nil, fmt.Errorf(sourceClientCreationErrorTemplateConstant, clientError)
		}
		sourceClient = constructedClient
	}

	destinationClient := builder.DestinationClient
	if destinationClient == nil {
		constructedClient, clientError := gitlab.NewClient(logger, nil, gitlab.ClientConfiguration{
			BaseURL: options.destinationURL,
			Token:   options.destinationToken,
		})
		if clientError != nil {
			return nil, nil, fmt.Errorf(destinationClientCreationErrorTemplateConstant, clientError)
		}
		destinationClient = constructedClient
	}

	return sourceClient, destinationClient, nil
}

func (builder *CommandBuilder) resolveReplicator(logger *zap.Logger) (RepositoryReplicator, error) {
	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, fmt.Errorf(shellExecutorCreationErrorTemplateConstant, executorError)
		}
		if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
			shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
		}
		gitExecutor = shellExecutor
	}

	transferService, transferError := transfer.NewService(transfer.ServiceDependencies{
		Logger:      logger,
		GitExecutor: gitExecutor,
	})
	if transferError != nil {
		return nil, fmt.Errorf(transferServiceCreationErrorTemplateConstant, transferError)
	}

	return transferService, nil
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (MigrationExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}

func (builder *CommandBuilder) logSummary(logger *zap.Logger, result MigrationResult) {
	if logger == nil {
		return
	}

	logger.Info(
		migrationCompletedMessageConstant,
		zap.Int(groupsMigratedFieldNameConstant, result.GroupsMigrated),
		zap.Int(groupsSkippedFieldNameConstant, result.GroupsSkipped),
		zap.Int(groupsFailedFieldNameConstant, result.GroupsFailed),
		zap.Int(projectsMigratedFieldNameConstant, result.ProjectsMigrated),
		zap.Int(projectsSkippedFieldNameConstant, result.ProjectsSkipped),
		zap.Int(projectsFailedFieldNameConstant, result.ProjectsFailed),
	)
}
