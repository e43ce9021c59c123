package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/albatross/cmd/cli"
	"github.com/temirov/albatross/internal/migrate"
	"github.com/temirov/albatross/internal/report"
)

const (
	testConfigurationFileNameConstant          = "config.yaml"
	testConfigurationHeaderConstant            = "common:\n  log_level: warn\n  log_format: structured\noperations:\n"
	testOperationBlockTemplateConstant         = "  - operation: %s\n    with:\n%s"
	testOperationStateFileTemplateConstant     = "      state-file: %s\n"
	testOperationStateFilePathConstant         = "/tmp/albatross-state.jsonl"
	testConfigurationSearchPathEnvironmentName = "ALBATROSS_CONFIG_SEARCH_PATH"
	testMigrateCommandNameConstant             = "migrate"
	testReportCommandNameConstant              = "report"
	embeddedDefaultsMigrateTestNameConstant    = "MigrateDefaults"
	embeddedDefaultsReportTestNameConstant     = "ReportDefaults"
	embeddedDefaultSourceURLConstant           = "https://gitlab.com"
	embeddedDefaultStateFileSuffixConstant     = ".albatross/state.jsonl"
	embeddedDefaultSleepSecondsConstant        = 2
	homeSymbolConstant                         = "~"
)

var requiredOperationNames = []string{
	"migrate",
	"report",
}

func TestApplicationInitializeConfiguration(t *testing.T) {
	testCases := []struct {
		name                  string
		operationNames        []string
		expectedOperationName string
		commandUse            string
	}{
		{
			name:           "ValidConfiguration",
			operationNames: requiredOperationNames,
			commandUse:     testMigrateCommandNameConstant,
		},
		{
			name: "DuplicateOperationConfiguration",
			operationNames: []string{
				"migrate",
				"Migrate",
				"report",
			},
			expectedOperationName: "migrate",
			commandUse:            testMigrateCommandNameConstant,
		},
		{
			name: "CommandConfigurationMissingForTargetCommandIgnored",
			operationNames: []string{
				testReportCommandNameConstant,
			},
			commandUse: testMigrateCommandNameConstant,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			temporaryDirectory := t.TempDir()
			configurationContent := buildConfigurationContent(testCase.operationNames)
			configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)

			writeConfigurationFile(t, configurationPath, configurationContent)

			t.Setenv(testConfigurationSearchPathEnvironmentName, temporaryDirectory)

			application := cli.NewApplication()

			executionError := application.InitializeForCommand(testCase.commandUse)

			if len(testCase.expectedOperationName) == 0 {
				require.NoError(t, executionError)
				return
			}

			require.Error(t, executionError)

			var duplicateError cli.DuplicateOperationConfigurationError
			require.ErrorAs(t, executionError, &duplicateError)
			require.Equal(t, testCase.expectedOperationName, duplicateError.OperationName)
		})
	}
}

func TestApplicationEmbeddedDefaultsProvideCommandConfigurations(testInstance *testing.T) {
	operationIndex := buildEmbeddedOperationIndex(testInstance)

	testCases := []struct {
		name          string
		commandUse    string
		operationName string
		assertion     func(testing.TB, map[string]any)
	}{
		{
			name:          embeddedDefaultsMigrateTestNameConstant,
			commandUse:    testMigrateCommandNameConstant,
			operationName: testMigrateCommandNameConstant,
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				assertionTarget.Helper()

				var configuration migrate.CommandConfiguration
				decodeOperationOptions(assertionTarget, options, &configuration)
				sanitized := configuration.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Equal(embeddedDefaultSourceURLConstant, sanitized.SourceURL)
				assertions.Equal(embeddedDefaultSleepSecondsConstant, sanitized.SleepSeconds)
				assertions.True(strings.HasSuffix(sanitized.StateFilePath, embeddedDefaultStateFileSuffixConstant))
				assertions.False(strings.HasPrefix(sanitized.StateFilePath, homeSymbolConstant))
				assertions.False(sanitized.DryRun)
			},
		},
		{
			name:          embeddedDefaultsReportTestNameConstant,
			commandUse:    testReportCommandNameConstant,
			operationName: testReportCommandNameConstant,
			assertion: func(assertionTarget testing.TB, options map[string]any) {
				assertionTarget.Helper()

				var configuration report.CommandConfiguration
				decodeOperationOptions(assertionTarget, options, &configuration)
				sanitized := configuration.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.True(strings.HasSuffix(sanitized.StateFilePath, embeddedDefaultStateFileSuffixConstant))
				assertions.False(strings.HasPrefix(sanitized.StateFilePath, homeSymbolConstant))
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testConfigurationSearchPathEnvironmentName, t.TempDir())

			application := cli.NewApplication()
			initializationError := application.InitializeForCommand(testCase.commandUse)
			require.NoError(t, initializationError)

			normalizedOperationName := strings.ToLower(strings.TrimSpace(testCase.operationName))
			operationOptions, exists := operationIndex[normalizedOperationName]
			require.True(t, exists)

			testCase.assertion(t, operationOptions)
		})
	}
}

func buildConfigurationContent(operationNames []string) string {
	configurationBuilder := strings.Builder{}
	configurationBuilder.WriteString(testConfigurationHeaderConstant)

	for _, operationName := range operationNames {
		stateFileBlock := fmt.Sprintf(testOperationStateFileTemplateConstant, testOperationStateFilePathConstant)
		operationBlock := fmt.Sprintf(testOperationBlockTemplateConstant, operationName, stateFileBlock)
		configurationBuilder.WriteString(operationBlock)
	}

	return configurationBuilder.String()
}

func writeConfigurationFile(t *testing.T, configurationPath string, configurationContent string) {
	t.Helper()

	writeError := os.WriteFile(configurationPath, []byte(configurationContent), 0o600)
	require.NoError(t, writeError)
}

func buildEmbeddedOperationIndex(testingInstance testing.TB) map[string]map[string]any {
	testingInstance.Helper()

	configuration := decodeEmbeddedApplicationConfiguration(testingInstance)
	operationIndex := make(map[string]map[string]any)

	for _, operation := range configuration.Operations {
		normalizedName := strings.ToLower(strings.TrimSpace(operation.Name))
		if len(normalizedName) == 0 {
			continue
		}

		duplicatedOptions := make(map[string]any, len(operation.Options))
		for optionKey, optionValue := range operation.Options {
			duplicatedOptions[optionKey] = optionValue
		}

		operationIndex[normalizedName] = duplicatedOptions
	}

	return operationIndex
}

func decodeEmbeddedApplicationConfiguration(testingInstance testing.TB) cli.ApplicationConfiguration {
	testingInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testingInstance, readError)

	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration)
	require.NoError(testingInstance, unmarshalError)

	return configuration
}

func decodeOperationOptions(testingInstance testing.TB, options map[string]any, target any) {
	testingInstance.Helper()

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: target})
	require.NoError(testingInstance, decoderError)

	decodeError := decoder.Decode(options)
	require.NoError(testingInstance, decodeError)
}
