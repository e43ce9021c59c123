package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/albatross/internal/gitlab"
)

const (
	guardedProjectIdentifierConstant  = 190
	pipelineProjectIdentifierConstant = 210
)

func TestServiceExecuteCreatesMissingProtections(testInstance *testing.T) {
	testInstance.Parallel()

	fixture := newServiceFixture(testInstance)
	fixture.source.Projects[sourceGroupIdentifierConstant] = []gitlab.Project{
		sourceProject(guardedProjectIdentifierConstant, "Guarded", "guarded", "acme/guarded", "acme"),
	}
	fixture.source.ProtectedBranches[guardedProjectIdentifierConstant] = []gitlab.ProtectedBranch{
		{
			Name:                  "main",
			PushAccessLevels:      []gitlab.AccessLevel{{AccessLevel: 40}},
			MergeAccessLevels:     []gitlab.AccessLevel{{AccessLevel: 30}},
			UnprotectAccessLevels: []gitlab.AccessLevel{{AccessLevel: 50}},
			AllowForcePush:        true,
		},
		{
			Name:              "develop",
			PushAccessLevels:  []gitlab.AccessLevel{{AccessLevel: 30}},
			MergeAccessLevels: []gitlab.AccessLevel{{AccessLevel: 40}},
		},
	}
	fixture.source.ProtectedTags[guardedProjectIdentifierConstant] = []gitlab.ProtectedTag{
		{Name: "v*", CreateAccessLevels: []gitlab.AccessLevel{{AccessLevel: 40}}},
	}
	fixture.destination.DefaultProtectedBranches = []gitlab.ProtectedBranch{{Name: "main"}}

	result, executionError := fixture.service.Execute(context.Background(), defaultMigrationOptions())
	require.NoError(testInstance, executionError)

	guardedDestination := destinationProject(testInstance, fixture, "legacy/orphans/guarded")

	createdBranches := fixture.destination.CreatedProtectedBranches[guardedDestination.ID]
	require.Equal(testInstance, []gitlab.ProtectedBranchCreatePayload{
		{Name: "develop", PushAccessLevel: 30, MergeAccessLevel: 40},
	}, createdBranches)

	createdTags := fixture.destination.CreatedProtectedTags[guardedDestination.ID]
	require.Equal(testInstance, []gitlab.ProtectedTagCreatePayload{
		{Name: "v*", CreateAccessLevel: 40},
	}, createdTags)

	require.Equal(testInstance, 1, result.EntityTotals.ProtectedBranches)
	require.Equal(testInstance, 1, result.EntityTotals.ProtectedTags)
}

func TestServiceExecuteRemovesPendingPipelines(testInstance *testing.T) {
	testInstance.Parallel()

	fixture := newServiceFixture(testInstance)
	fixture.source.Projects[sourceGroupIdentifierConstant] = []gitlab.Project{
		sourceProject(pipelineProjectIdentifierConstant, "Pipeline", "pipeline", "acme/pipeline", "acme"),
	}
	fixture.destination.DefaultPipelines = []gitlab.Pipeline{
		{ID: 1, Status: "success", Ref: "main"},
		{ID: 2, Status: "running", Ref: "main"},
		{ID: 3, Status: "failed", Ref: "main"},
		{ID: 4, Status: "pending", Ref: "develop"},
		{ID: 5, Status: "canceled", Ref: "main"},
		{ID: 6, Status: "skipped", Ref: "main"},
		{ID: 7, Status: "created", Ref: "develop"},
	}

	result, executionError := fixture.service.Execute(context.Background(), defaultMigrationOptions())
	require.NoError(testInstance, executionError)

	pipelineDestination := destinationProject(testInstance, fixture, "legacy/orphans/pipeline")
	require.Equal(testInstance, []int64{2, 4, 7}, fixture.destination.DeletedPipelines[pipelineDestination.ID])
	require.Equal(testInstance, 3, result.EntityTotals.RemovedPipelines)
}
