package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestEnsureStateFileFlagRegistersOnce(t *testing.T) {
	command := &cobra.Command{}

	EnsureStateFileFlag(command, "albatross-state.jsonl", "")
	EnsureStateFileFlag(command, "ignored.jsonl", "ignored usage")

	flag := command.Flags().Lookup(StateFileFlagName)
	require.NotNil(t, flag)
	require.Equal(t, "albatross-state.jsonl", flag.DefValue)
	require.Equal(t, StateFileFlagUsage, flag.Usage)

	parseError := command.ParseFlags([]string{"--" + StateFileFlagName, "/var/lib/albatross/state.jsonl"})
	require.NoError(t, parseError)

	stateFilePath, lookupError := command.Flags().GetString(StateFileFlagName)
	require.NoError(t, lookupError)
	require.Equal(t, "/var/lib/albatross/state.jsonl", stateFilePath)
}

func TestEnsureStateFileFlagTolerates(t *testing.T) {
	require.NotPanics(t, func() {
		EnsureStateFileFlag(nil, "state.jsonl", "")
	})
}
