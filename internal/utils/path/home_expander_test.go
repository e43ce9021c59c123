package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/albatross/internal/utils/path"
)

const (
	testHomeDirectoryConstant      = "/home/migrator"
	testRelativeStatePathConstant  = "~/state/albatross-state.jsonl"
	testAbsoluteStatePathConstant  = "/var/lib/albatross/state.jsonl"
	testBareTildeConstant          = "~"
	testUnrecognizedPrefixConstant = "~migrator/state.jsonl"
)

func TestHomeExpanderExpand(t *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "TildeWithSlash", candidatePath: testRelativeStatePathConstant, expectedPath: filepath.Join(testHomeDirectoryConstant, "state", "albatross-state.jsonl")},
		{name: "BareTilde", candidatePath: testBareTildeConstant, expectedPath: testHomeDirectoryConstant},
		{name: "AbsolutePathUnchanged", candidatePath: testAbsoluteStatePathConstant, expectedPath: testAbsoluteStatePathConstant},
		{name: "UserTildeUnchanged", candidatePath: testUnrecognizedPrefixConstant, expectedPath: testUnrecognizedPrefixConstant},
		{name: "EmptyPathUnchanged", candidatePath: "", expectedPath: ""},
	}

	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderToleratesProviderFailure(t *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("home directory unavailable")
	})

	require.Equal(t, testRelativeStatePathConstant, expander.Expand(testRelativeStatePathConstant))
}
