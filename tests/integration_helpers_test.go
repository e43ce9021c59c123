package tests

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"
)

func runIntegrationCommand(testInstance *testing.T, repositoryRoot string, extraEnvironment []string, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", arguments...)
	command.Dir = repositoryRoot
	command.Env = append(append([]string{}, os.Environ()...), extraEnvironment...)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func requireNoError(testInstance *testing.T, runError error, output string) {
	testInstance.Helper()
	if runError != nil {
		testInstance.Fatalf("command failed: %v\n%s", runError, output)
	}
}
