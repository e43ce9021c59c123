// Package flags provides helpers for binding standardized GitLab flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EndpointFlagDefinition captures a single endpoint flag's configuration.
type EndpointFlagDefinition struct {
	Name      string
	Shorthand string
	Usage     string
	Enabled   bool
}

// EndpointFlagDefinitions groups the flags describing one GitLab endpoint.
type EndpointFlagDefinitions struct {
	URL   EndpointFlagDefinition
	Token EndpointFlagDefinition
	Group EndpointFlagDefinition
}

// EndpointFlagValues stores GitLab endpoint flag values.
type EndpointFlagValues struct {
	URL   string
	Token string
	Group int64
}

// BindEndpointFlags attaches GitLab endpoint flags to the provided command.
func BindEndpointFlags(command *cobra.Command, defaults EndpointFlagValues, definitions EndpointFlagDefinitions) *EndpointFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	bindStringFlag(flagSet, &values.URL, definitions.URL, defaults.URL)
	bindStringFlag(flagSet, &values.Token, definitions.Token, defaults.Token)
	bindInt64Flag(flagSet, &values.Group, definitions.Group, defaults.Group)

	return &values
}

func bindStringFlag(flagSet *pflag.FlagSet, target *string, definition EndpointFlagDefinition, defaultValue string) {
	if flagSet == nil || !definition.Enabled || len(definition.Name) == 0 {
		return
	}

	if len(definition.Shorthand) > 0 {
		flagSet.StringVarP(target, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.StringVar(target, definition.Name, defaultValue, definition.Usage)
}

func bindInt64Flag(flagSet *pflag.FlagSet, target *int64, definition EndpointFlagDefinition, defaultValue int64) {
	if flagSet == nil || !definition.Enabled || len(definition.Name) == 0 {
		return
	}

	if len(definition.Shorthand) > 0 {
		flagSet.Int64VarP(target, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.Int64Var(target, definition.Name, defaultValue, definition.Usage)
}
