package flags

import "github.com/spf13/cobra"

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Preview operations without making changes"
	// StateFileFlagName exposes the shared migration state file flag name.
	StateFileFlagName = "state-file"
	// StateFileFlagUsage describes the shared migration state file flag purpose.
	StateFileFlagUsage = "Path to the migration state journal"
)

// EnsureStateFileFlag guarantees the shared state file flag is available on the command.
func EnsureStateFileFlag(command *cobra.Command, defaultValue string, usage string) {
	if command == nil {
		return
	}

	flagUsage := usage
	if len(flagUsage) == 0 {
		flagUsage = StateFileFlagUsage
	}

	if command.Flags().Lookup(StateFileFlagName) == nil {
		command.Flags().String(StateFileFlagName, defaultValue, flagUsage)
	}
}
