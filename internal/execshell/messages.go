package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	cloneSubcommandConstant             = "clone"
	pushSubcommandConstant              = "push"
	remoteSubcommandConstant            = "remote"
	configSubcommandConstant            = "config"
	fetchSubcommandConstant             = "fetch"
	remoteAddDirectiveConstant          = "add"
	allBranchesFlagConstant             = "--all"
	tagsFlagConstant                    = "--tags"
	mirrorFlagConstant                  = "--mirror"
	flagPrefixConstant                  = "-"
	argumentSeparatorConstant           = " "
	currentDirectoryDescriptionConstant = "current directory"
	allRemotesDescriptionConstant       = "all remotes"
	unknownTargetDescriptionConstant    = "unknown target"
	allBranchesPayloadConstant          = "all branches"
	tagsPayloadConstant                 = "tags"
	allRefsPayloadConstant              = "all refs"
	changesPayloadConstant              = "changes"

	locationSuffixTemplateConstant         = " in %s"
	standardErrorSuffixTemplateConstant    = ": %s"
	unknownExecutionFailureMessageConstant = "unknown error"

	cloneStartedTemplateConstant = "Cloning %s into %s"
	cloneSuccessTemplateConstant = "Cloned %s"
	cloneFailureTemplateConstant = "Cloning %s failed with exit code %d%s"

	lfsFetchStartedTemplateConstant = "Fetching LFS objects from %s%s"
	lfsFetchSuccessTemplateConstant = "Fetched LFS objects from %s"
	lfsFetchFailureTemplateConstant = "Fetching LFS objects from %s failed with exit code %d%s"

	lfsPushStartedTemplateConstant = "Pushing LFS objects to %s%s"
	lfsPushSuccessTemplateConstant = "Pushed LFS objects to %s"
	lfsPushFailureTemplateConstant = "Pushing LFS objects to %s failed with exit code %d%s"

	remoteAddStartedTemplateConstant = "Adding remote %s%s"
	remoteAddSuccessTemplateConstant = "Added remote %s"
	remoteAddFailureTemplateConstant = "Adding remote %s failed with exit code %d%s"

	configStartedTemplateConstant = "Setting %s%s"
	configSuccessTemplateConstant = "Set %s"
	configFailureTemplateConstant = "Setting %s failed with exit code %d%s"

	pushStartedTemplateConstant = "Pushing %s to %s%s"
	pushSuccessTemplateConstant = "Pushed %s to %s"
	pushFailureTemplateConstant = "Pushing %s to %s failed with exit code %d%s"

	genericStartedTemplateConstant          = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
)

// CommandMessageFormatter renders human-readable messages for shell command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(messageStageStart, command, ExecutionResult{}, nil)
}

// BuildSuccessMessage formats the message describing a command that exited successfully.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(messageStageSuccess, command, ExecutionResult{}, nil)
}

// BuildFailureMessage formats the message describing a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(messageStageFailure, command, result, nil)
}

// BuildExecutionFailureMessage formats the message describing a command that could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(messageStageExecutionFailure, command, ExecutionResult{}, failure)
}

func (formatter CommandMessageFormatter) buildMessage(stage messageStage, command ShellCommand, result ExecutionResult, failure error) string {
	if stage == messageStageExecutionFailure {
		failureDescription := unknownExecutionFailureMessageConstant
		if failure != nil {
			failureDescription = failure.Error()
		}
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, formatter.describeCommandLabel(command), failureDescription)
	}

	if command.Name == CommandGit {
		if message, recognized := formatter.describeGitCommand(stage, command, result); recognized {
			return message
		}
	}

	return formatter.buildGenericMessage(stage, command, result)
}

func (formatter CommandMessageFormatter) describeGitCommand(stage messageStage, command ShellCommand, result ExecutionResult) (string, bool) {
	subcommand := argumentAtIndex(command.Details.Arguments, 0)
	switch subcommand {
	case cloneSubcommandConstant:
		return formatter.describeClone(stage, command, result), true
	case lfsSubcommandConstant:
		return formatter.describeLFS(stage, command, result)
	case remoteSubcommandConstant:
		return formatter.describeRemote(stage, command, result)
	case configSubcommandConstant:
		return formatter.describeConfig(stage, command, result), true
	case pushSubcommandConstant:
		return formatter.describePush(stage, command, result), true
	}
	return "", false
}

func (formatter CommandMessageFormatter) describeClone(stage messageStage, command ShellCommand, result ExecutionResult) string {
	positionalArguments := positionalArgumentsAfter(command.Details.Arguments, cloneSubcommandConstant)
	sourceDescription := ensureValue(argumentAtIndex(positionalArguments, 0), unknownTargetDescriptionConstant)
	destinationDescription := ensureValue(argumentAtIndex(positionalArguments, 1), currentDirectoryDescriptionConstant)

	switch stage {
	case messageStageSuccess:
		return fmt.Sprintf(cloneSuccessTemplateConstant, sourceDescription)
	case messageStageFailure:
		return fmt.Sprintf(cloneFailureTemplateConstant, sourceDescription, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(cloneStartedTemplateConstant, sourceDescription, destinationDescription)
	}
}

func (formatter CommandMessageFormatter) describeLFS(stage messageStage, command ShellCommand, result ExecutionResult) (string, bool) {
	lfsDirective := argumentAtIndex(command.Details.Arguments, 1)
	positionalArguments := positionalArgumentsAfter(command.Details.Arguments, lfsDirective)

	switch lfsDirective {
	case fetchSubcommandConstant:
		remoteDescription := ensureValue(argumentAtIndex(positionalArguments, 0), allRemotesDescriptionConstant)
		switch stage {
		case messageStageSuccess:
			return fmt.Sprintf(lfsFetchSuccessTemplateConstant, remoteDescription), true
		case messageStageFailure:
			return fmt.Sprintf(lfsFetchFailureTemplateConstant, remoteDescription, result.ExitCode, formatStandardErrorSuffix(result.StandardError)), true
		default:
			return fmt.Sprintf(lfsFetchStartedTemplateConstant, remoteDescription, describeLocationSuffix(command)), true
		}
	case pushSubcommandConstant:
		remoteDescription := ensureValue(argumentAtIndex(positionalArguments, 0), unknownTargetDescriptionConstant)
		switch stage {
		case messageStageSuccess:
			return fmt.Sprintf(lfsPushSuccessTemplateConstant, remoteDescription), true
		case messageStageFailure:
			return fmt.Sprintf(lfsPushFailureTemplateConstant, remoteDescription, result.ExitCode, formatStandardErrorSuffix(result.StandardError)), true
		default:
			return fmt.Sprintf(lfsPushStartedTemplateConstant, remoteDescription, describeLocationSuffix(command)), true
		}
	}

	return "", false
}

func (formatter CommandMessageFormatter) describeRemote(stage messageStage, command ShellCommand, result ExecutionResult) (string, bool) {
	remoteDirective := argumentAtIndex(command.Details.Arguments, 1)
	if remoteDirective != remoteAddDirectiveConstant {
		return "", false
	}

	remoteName := ensureValue(argumentAtIndex(command.Details.Arguments, 2), unknownTargetDescriptionConstant)
	switch stage {
	case messageStageSuccess:
		return fmt.Sprintf(remoteAddSuccessTemplateConstant, remoteName), true
	case messageStageFailure:
		return fmt.Sprintf(remoteAddFailureTemplateConstant, remoteName, result.ExitCode, formatStandardErrorSuffix(result.StandardError)), true
	default:
		return fmt.Sprintf(remoteAddStartedTemplateConstant, remoteName, describeLocationSuffix(command)), true
	}
}

// describeConfig names only the configuration key so credential values never reach log output.
func (formatter CommandMessageFormatter) describeConfig(stage messageStage, command ShellCommand, result ExecutionResult) string {
	positionalArguments := positionalArgumentsAfter(command.Details.Arguments, configSubcommandConstant)
	configurationKey := ensureValue(argumentAtIndex(positionalArguments, 0), unknownTargetDescriptionConstant)

	switch stage {
	case messageStageSuccess:
		return fmt.Sprintf(configSuccessTemplateConstant, configurationKey)
	case messageStageFailure:
		return fmt.Sprintf(configFailureTemplateConstant, configurationKey, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(configStartedTemplateConstant, configurationKey, describeLocationSuffix(command))
	}
}

func (formatter CommandMessageFormatter) describePush(stage messageStage, command ShellCommand, result ExecutionResult) string {
	arguments := command.Details.Arguments
	remoteDescription := ensureValue(argumentAtIndex(positionalArgumentsAfter(arguments, pushSubcommandConstant), 0), unknownTargetDescriptionConstant)

	payloadDescription := changesPayloadConstant
	switch {
	case containsArgument(arguments, mirrorFlagConstant):
		payloadDescription = allRefsPayloadConstant
	case containsArgument(arguments, tagsFlagConstant):
		payloadDescription = tagsPayloadConstant
	case containsArgument(arguments, allBranchesFlagConstant):
		payloadDescription = allBranchesPayloadConstant
	}

	switch stage {
	case messageStageSuccess:
		return fmt.Sprintf(pushSuccessTemplateConstant, payloadDescription, remoteDescription)
	case messageStageFailure:
		return fmt.Sprintf(pushFailureTemplateConstant, payloadDescription, remoteDescription, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(pushStartedTemplateConstant, payloadDescription, remoteDescription, describeLocationSuffix(command))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(stage messageStage, command ShellCommand, result ExecutionResult) string {
	commandLabel := formatter.describeCommandLabel(command)
	switch stage {
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericStartedTemplateConstant, commandLabel)
	}
}

func (formatter CommandMessageFormatter) describeCommandLabel(command ShellCommand) string {
	labelParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		labelParts = append(labelParts, strings.Join(command.Details.Arguments, argumentSeparatorConstant))
	}
	return strings.Join(labelParts, argumentSeparatorConstant)
}

func positionalArgumentsAfter(arguments []string, subcommand string) []string {
	positional := make([]string, 0, len(arguments))
	subcommandSeen := false
	for _, argument := range arguments {
		if !subcommandSeen {
			if argument == subcommand {
				subcommandSeen = true
			}
			continue
		}
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}

func argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return ""
	}
	return arguments[index]
}

func containsArgument(arguments []string, candidate string) bool {
	for _, argument := range arguments {
		if argument == candidate {
			return true
		}
	}
	return false
}

func ensureValue(candidate string, fallback string) string {
	if len(strings.TrimSpace(candidate)) == 0 {
		return fallback
	}
	return candidate
}

func describeLocationSuffix(command ShellCommand) string {
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		workingDirectory = currentDirectoryDescriptionConstant
	}
	return fmt.Sprintf(locationSuffixTemplateConstant, workingDirectory)
}

func formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
