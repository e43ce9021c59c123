package migrate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/albatross/internal/gitlab"
	migrate "github.com/temirov/albatross/internal/migrate"
	"github.com/temirov/albatross/internal/migrate/testsupport"
)

func TestPlannerPlanBuildsAnnotatedTree(testInstance *testing.T) {
	testInstance.Parallel()

	sourceClient := testsupport.NewSourceClientStub()
	sourceClient.Groups[sourceGroupIdentifierConstant] = gitlab.Group{
		ID:          sourceGroupIdentifierConstant,
		Name:        "Acme",
		Path:        "acme",
		FullPath:    "acme",
		Description: "Root group",
	}

	toolsProject := sourceProject(toolsProjectIdentifierConstant, "Tools", "tools", "acme/tools", "acme")
	toolsProject.Description = "Shared tooling"
	toolsProject.AvatarURL = "https://source.example/uploads/tools.png"
	relicProject := sourceProject(102, "Relic", "relic", "acme/relic", "acme")
	relicProject.EmptyRepo = true
	relicProject.Archived = true

	sourceClient.Projects[sourceGroupIdentifierConstant] = []gitlab.Project{toolsProject, relicProject}
	sourceClient.Subgroups[sourceGroupIdentifierConstant] = []gitlab.Group{
		{ID: platformGroupIdentifierConstant, Name: "Platform", Path: "platform", FullPath: "acme/platform"},
		{ID: archiveGroupIdentifierConstant, Name: "Archive", Path: "archive", FullPath: "acme/archive"},
	}
	sourceClient.Projects[platformGroupIdentifierConstant] = []gitlab.Project{
		sourceProject(apiProjectIdentifierConstant, "API", "api", "acme/platform/api", "acme/platform"),
	}

	plan, planError := migrate.NewPlanner(sourceClient).Plan(context.Background(), sourceGroupIdentifierConstant)
	require.NoError(testInstance, planError)

	require.Equal(testInstance, "acme", plan.FullPath)
	require.Equal(testInstance, "Root group", plan.Description)
	require.False(testInstance, plan.Empty)
	require.Len(testInstance, plan.Projects, 2)

	toolsReference := plan.Projects[0]
	require.Equal(testInstance, int64(toolsProjectIdentifierConstant), toolsReference.ID)
	require.True(testInstance, toolsReference.Orphan)
	require.False(testInstance, toolsReference.Empty)
	require.Equal(testInstance, "acme", toolsReference.Namespace)
	require.Equal(testInstance, "https://source.example/acme/tools.git", toolsReference.RepositoryURL)
	require.Equal(testInstance, "https://source.example/uploads/tools.png", toolsReference.AvatarURL)
	require.Equal(testInstance, "Shared tooling", toolsReference.Description)

	relicReference := plan.Projects[1]
	require.True(testInstance, relicReference.Orphan)
	require.True(testInstance, relicReference.Empty)
	require.True(testInstance, relicReference.Archived)

	require.Len(testInstance, plan.Subgroups, 2)

	platformNode := plan.Subgroups[0]
	require.Equal(testInstance, "acme/platform", platformNode.FullPath)
	require.False(testInstance, platformNode.Empty)
	require.Len(testInstance, platformNode.Projects, 1)
	require.False(testInstance, platformNode.Projects[0].Orphan)

	archiveNode := plan.Subgroups[1]
	require.Equal(testInstance, "acme/archive", archiveNode.FullPath)
	require.True(testInstance, archiveNode.Empty)
}

func TestPlannerPlanResolvesGroupEmptiness(testInstance *testing.T) {
	testInstance.Parallel()

	sourceClient := testsupport.NewSourceClientStub()
	sourceClient.Groups[sourceGroupIdentifierConstant] = gitlab.Group{
		ID:       sourceGroupIdentifierConstant,
		Name:     "Acme",
		Path:     "acme",
		FullPath: "acme",
	}

	placeholderProject := sourceProject(501, "Placeholder", "placeholder", "acme/stubs/placeholder", "acme/stubs")
	placeholderProject.EmptyRepo = true

	sourceClient.Subgroups[sourceGroupIdentifierConstant] = []gitlab.Group{
		{ID: 50, Name: "Stubs", Path: "stubs", FullPath: "acme/stubs"},
		{ID: 60, Name: "Hollow", Path: "hollow", FullPath: "acme/hollow"},
	}
	sourceClient.Projects[50] = []gitlab.Project{placeholderProject}
	sourceClient.Subgroups[60] = []gitlab.Group{
		{ID: 61, Name: "Nested", Path: "nested", FullPath: "acme/hollow/nested"},
	}

	plan, planError := migrate.NewPlanner(sourceClient).Plan(context.Background(), sourceGroupIdentifierConstant)
	require.NoError(testInstance, planError)

	require.False(testInstance, plan.Empty)

	stubsNode := plan.Subgroups[0]
	require.False(testInstance, stubsNode.Empty)
	require.True(testInstance, stubsNode.Projects[0].Empty)

	hollowNode := plan.Subgroups[1]
	require.True(testInstance, hollowNode.Empty)
	require.Len(testInstance, hollowNode.Subgroups, 1)
	require.True(testInstance, hollowNode.Subgroups[0].Empty)
}

func TestPlannerPlanReportsListingFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		prepare       func(sourceClient *testsupport.SourceClientStub)
		expectedError string
	}{
		{
			name: "root_group_missing",
			prepare: func(sourceClient *testsupport.SourceClientStub) {
				delete(sourceClient.Groups, sourceGroupIdentifierConstant)
			},
			expectedError: "unable to resolve source group 10",
		},
		{
			name: "project_listing_fails",
			prepare: func(sourceClient *testsupport.SourceClientStub) {
				sourceClient.ProjectErrors[sourceGroupIdentifierConstant] = errors.New("projects endpoint down")
			},
			expectedError: "unable to list projects of source group acme",
		},
		{
			name: "subgroup_listing_fails",
			prepare: func(sourceClient *testsupport.SourceClientStub) {
				sourceClient.SubgroupErrors[sourceGroupIdentifierConstant] = errors.New("subgroups endpoint down")
			},
			expectedError: "unable to list subgroups of source group acme",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		subtestName := fmt.Sprintf("%d_%s", testCaseIndex, testCase.name)

		testInstance.Run(subtestName, func(subtest *testing.T) {
			sourceClient := testsupport.NewSourceClientStub()
			sourceClient.Groups[sourceGroupIdentifierConstant] = gitlab.Group{
				ID:       sourceGroupIdentifierConstant,
				Name:     "Acme",
				Path:     "acme",
				FullPath: "acme",
			}
			sourceClient.Projects[sourceGroupIdentifierConstant] = []gitlab.Project{
				sourceProject(toolsProjectIdentifierConstant, "Tools", "tools", "acme/tools", "acme"),
			}
			testCase.prepare(sourceClient)

			plan, planError := migrate.NewPlanner(sourceClient).Plan(context.Background(), sourceGroupIdentifierConstant)

			require.ErrorContains(subtest, planError, testCase.expectedError)
			require.Nil(subtest, plan)
		})
	}
}
