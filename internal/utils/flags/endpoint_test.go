package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindEndpointFlagsUsesDefaultsAndParsesValues(t *testing.T) {
	command := &cobra.Command{}

	values := BindEndpointFlags(command, EndpointFlagValues{URL: "https://gitlab.com", Group: 0}, EndpointFlagDefinitions{
		URL:   EndpointFlagDefinition{Name: "source-url", Usage: "Source GitLab URL", Enabled: true},
		Token: EndpointFlagDefinition{Name: "source-token", Shorthand: "t", Usage: "Source access token", Enabled: true},
		Group: EndpointFlagDefinition{Name: "source-group", Shorthand: "g", Usage: "Source group identifier", Enabled: true},
	})

	require.NotNil(t, values)
	require.Equal(t, "https://gitlab.com", values.URL)
	require.Empty(t, values.Token)
	require.Zero(t, values.Group)

	parseError := command.ParseFlags([]string{"--source-url", "https://gitlab.example.com", "-t", "glpat-sample", "-g", "42"})
	require.NoError(t, parseError)
	require.Equal(t, "https://gitlab.example.com", values.URL)
	require.Equal(t, "glpat-sample", values.Token)
	require.Equal(t, int64(42), values.Group)
}

func TestBindEndpointFlagsSkipsDisabledDefinitions(t *testing.T) {
	command := &cobra.Command{}

	values := BindEndpointFlags(command, EndpointFlagValues{}, EndpointFlagDefinitions{
		URL:   EndpointFlagDefinition{Name: "destination-url", Enabled: false},
		Token: EndpointFlagDefinition{Name: "destination-token", Enabled: true},
		Group: EndpointFlagDefinition{Name: "", Enabled: true},
	})

	require.NotNil(t, values)
	require.Nil(t, command.Flags().Lookup("destination-url"))
	require.NotNil(t, command.Flags().Lookup("destination-token"))
}

func TestBindEndpointFlagsToleratesNilCommand(t *testing.T) {
	values := BindEndpointFlags(nil, EndpointFlagValues{URL: "https://gitlab.com"}, EndpointFlagDefinitions{})
	require.NotNil(t, values)
	require.Equal(t, "https://gitlab.com", values.URL)
}
