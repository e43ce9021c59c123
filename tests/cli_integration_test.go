package tests

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationInfoMessageConstant            = "\"msg\":\"albatross CLI executed\""
	integrationDebugMessageConstant           = "\"msg\":\"albatross CLI diagnostics\""
	integrationLogLevelEnvKeyConstant         = "ALBATROSS_COMMON_LOG_LEVEL"
	integrationConfigFileNameConstant         = "config.yaml"
	integrationConfigTemplateConstant         = "common:\n  log_level: %s\n"
	integrationDefaultCaseNameConstant        = "default_warn"
	integrationConfigInfoCaseNameConstant     = "config_info"
	integrationConfigDebugCaseNameConstant    = "config_debug"
	integrationEnvironmentCaseNameConstant    = "environment_error"
	integrationInfoLevelConstant              = "info"
	integrationDebugLevelConstant             = "debug"
	integrationErrorLevelConstant             = "error"
	integrationCommandTimeout                 = 90 * time.Second
	integrationConfigFlagTemplateConstant     = "--config=%s"
	integrationEnvironmentTemplateConstant    = "%s=%s"
	integrationSubtestNameTemplateConstant    = "%d_%s"
	integrationHelpUsagePrefixConstant        = "Usage:"
	integrationHelpDescriptionSnippetConstant = "albatross copies a GitLab group hierarchy"
	integrationHelpCaseNameConstant           = "help_output"
)

func TestCLIIntegrationLogLevels(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		configurationLevel   string
		environmentLevel     string
		expectedInfoVisible  bool
		expectedDebugVisible bool
	}{
		{
			name:                 integrationDefaultCaseNameConstant,
			configurationLevel:   "",
			environmentLevel:     "",
			expectedInfoVisible:  false,
			expectedDebugVisible: false,
		},
		{
			name:                 integrationConfigInfoCaseNameConstant,
			configurationLevel:   integrationInfoLevelConstant,
			environmentLevel:     "",
			expectedInfoVisible:  true,
			expectedDebugVisible: false,
		},
		{
			name:                 integrationConfigDebugCaseNameConstant,
			configurationLevel:   integrationDebugLevelConstant,
			environmentLevel:     "",
			expectedInfoVisible:  true,
			expectedDebugVisible: true,
		},
		{
			name:                 integrationEnvironmentCaseNameConstant,
			configurationLevel:   "",
			environmentLevel:     integrationErrorLevelConstant,
			expectedInfoVisible:  false,
			expectedDebugVisible: false,
		},
	}

	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	repositoryRootDirectory := filepath.Dir(currentWorkingDirectory)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			arguments := []string{"run", "."}
			extraEnvironment := []string{}

			if len(testCase.configurationLevel) > 0 {
				configurationPath := filepath.Join(testInstance.TempDir(), integrationConfigFileNameConstant)
				configurationContent := fmt.Sprintf(integrationConfigTemplateConstant, testCase.configurationLevel)
				writeError := os.WriteFile(configurationPath, []byte(configurationContent), 0o600)
				require.NoError(testInstance, writeError)
				arguments = append(arguments, fmt.Sprintf(integrationConfigFlagTemplateConstant, configurationPath))
			}

			if len(testCase.environmentLevel) > 0 {
				extraEnvironment = append(extraEnvironment, fmt.Sprintf(integrationEnvironmentTemplateConstant, integrationLogLevelEnvKeyConstant, testCase.environmentLevel))
			}

			outputText, runError := runIntegrationCommand(testInstance, repositoryRootDirectory, extraEnvironment, integrationCommandTimeout, arguments)
			requireNoError(testInstance, runError, outputText)

			if testCase.expectedInfoVisible {
				require.Contains(testInstance, outputText, integrationInfoMessageConstant)
			} else {
				require.NotContains(testInstance, outputText, integrationInfoMessageConstant)
			}

			if testCase.expectedDebugVisible {
				require.Contains(testInstance, outputText, integrationDebugMessageConstant)
			} else {
				require.NotContains(testInstance, outputText, integrationDebugMessageConstant)
			}
		})
	}
}

func TestCLIIntegrationDisplaysHelpWhenNoArgumentsProvided(testInstance *testing.T) {
	testCases := []struct {
		name             string
		expectedSnippets []string
	}{
		{
			name: integrationHelpCaseNameConstant,
			expectedSnippets: []string{
				integrationHelpUsagePrefixConstant,
				integrationHelpDescriptionSnippetConstant,
			},
		},
	}

	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	repositoryRootDirectory := filepath.Dir(currentWorkingDirectory)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			outputText, runError := runIntegrationCommand(testInstance, repositoryRootDirectory, nil, integrationCommandTimeout, []string{"run", "."})
			requireNoError(testInstance, runError, outputText)

			for _, expectedSnippet := range testCase.expectedSnippets {
				require.Contains(testInstance, outputText, expectedSnippet)
			}
		})
	}
}
