package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	gitExecutableNameConstant                = "git"
	lfsSubcommandConstant                    = "lfs"
	commandStartedLogMessageConstant         = "executing command"
	commandCompletedLogMessageConstant       = "command completed"
	commandFailedLogMessageConstant          = "command failed"
	commandExecutionFailedLogMessageConstant = "command execution failed"
	commandLogFieldNameConstant              = "command"
	argumentsLogFieldNameConstant            = "arguments"
	workingDirectoryLogFieldNameConstant     = "working_directory"
	exitCodeLogFieldNameConstant             = "exit_code"
	standardErrorLogFieldNameConstant        = "stderr"
	commandFailedErrorTemplateConstant       = "%s command failed with exit code %d: %s"
	commandExecutionErrorTemplateConstant    = "%s command execution failed: %v"
)

// CommandName identifies the executable invoked by the shell executor.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = CommandName(gitExecutableNameConstant)

// CommandDetails describes the invocation parameters for a shell command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the outputs of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner abstracts process execution for the shell executor.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New("shell executor requires a logger")
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a command runner.
	ErrCommandRunnerNotConfigured = errors.New("shell executor requires a command runner")
)

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including trimmed standard error output.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.Name, failure.Result.ExitCode, strings.TrimSpace(failure.Result.StandardError))
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the command whose execution failed before producing a result.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.Name, failure.Cause)
}

// Unwrap exposes the underlying execution failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs shell commands with structured logging and lifecycle notifications.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor with the required collaborators.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{
		logger:        logger,
		commandRunner: commandRunner,
		eventObserver: noopCommandEventObserver{},
	}, nil
}

// SetCommandEventObserver installs an observer notified on command lifecycle events.
func (executor *ShellExecutor) SetCommandEventObserver(observer CommandEventObserver) {
	if executor == nil {
		return
	}
	if observer == nil {
		executor.eventObserver = noopCommandEventObserver{}
		return
	}
	executor.eventObserver = observer
}

// ExecuteGit runs a git subcommand with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitLFS runs a git-lfs subcommand through the git executable.
func (executor *ShellExecutor) ExecuteGitLFS(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	prefixedDetails := CommandDetails{
		Arguments:            append([]string{lfsSubcommandConstant}, details.Arguments...),
		WorkingDirectory:     details.WorkingDirectory,
		EnvironmentVariables: details.EnvironmentVariables,
		StandardInput:        details.StandardInput,
	}
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: prefixedDetails})
}

// Execute runs the supplied command and reports the outcome.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.eventObserver.CommandStarted(command)
	executor.logger.Debug(commandStartedLogMessageConstant, commandLogFields(command)...)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(commandExecutionFailedLogMessageConstant, append(commandLogFields(command), zap.Error(runError))...)
		executor.eventObserver.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		failureFields := append(commandLogFields(command),
			zap.Int(exitCodeLogFieldNameConstant, executionResult.ExitCode),
			zap.String(standardErrorLogFieldNameConstant, strings.TrimSpace(executionResult.StandardError)),
		)
		executor.logger.Warn(commandFailedLogMessageConstant, failureFields...)
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(commandCompletedLogMessageConstant, commandLogFields(command)...)
	return executionResult, nil
}

func commandLogFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(commandLogFieldNameConstant, string(command.Name)),
		zap.Strings(argumentsLogFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryLogFieldNameConstant, command.Details.WorkingDirectory),
	}
}
