package migrate_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/albatross/internal/gitlab"
)

const (
	trackerProjectIdentifierConstant = 170
	toolboxProjectIdentifierConstant = 180
	legacyProjectIdentifierConstant  = 160
)

func TestServiceExecuteReplaysIssueLifecycle(testInstance *testing.T) {
	testInstance.Parallel()

	fixture := newServiceFixture(testInstance)
	fixture.source.Projects[sourceGroupIdentifierConstant] = []gitlab.Project{
		sourceProject(trackerProjectIdentifierConstant, "Tracker", "tracker", "acme/tracker", "acme"),
	}

	issueAuthor := &gitlab.User{ID: 11, Username: "ada", Name: "Ada Lovelace"}
	fixture.source.Issues[trackerProjectIdentifierConstant] = []gitlab.Issue{
		{
			IID:         7,
			Title:       "Crash on startup",
			Description: "It crashes.",
			State:       "closed",
			IssueType:   "issue",
			CreatedAt:   "2021-03-04T05:06:07Z",
			DueDate:     "2021-04-01",
			Labels:      []string{"bug"},
			Author:      issueAuthor,
		},
		{
			IID:   9,
			Title: "Add dark mode",
			State: "opened",
		},
	}
	fixture.source.IssueNotes[trackerProjectIdentifierConstant] = map[int64][]gitlab.Note{
		7: {
			{Body: "Reproduced on 14.2.", Author: issueAuthor, CreatedAt: "2021-03-05T00:00:00Z"},
			{Body: "changed the description", System: true},
		},
	}

	result, executionError := fixture.service.Execute(context.Background(), defaultMigrationOptions())
	require.NoError(testInstance, executionError)

	trackerDestination := destinationProject(testInstance, fixture, "legacy/orphans/tracker")

	expectedOperations := []string{
		"create_project:legacy/orphans/tracker",
		fmt.Sprintf("update_project:%d", trackerDestination.ID),
		"create_issue:7",
		"create_issue_note:7",
		"create_issue_note:7",
		"close_issue:7",
		"create_issue:9",
	}
	require.Equal(testInstance, expectedOperations, fixture.destination.OperationLog)

	createdIssues := fixture.destination.CreatedIssues[trackerDestination.ID]
	require.Len(testInstance, createdIssues, 2)
	require.Equal(testInstance, gitlab.IssueCreatePayload{
		Title:       "Crash on startup",
		IID:         7,
		Description: "By Ada Lovelace: It crashes.",
		IssueType:   "issue",
		CreatedAt:   "2021-03-04T05:06:07Z",
		DueDate:     "2021-04-01",
		Labels:      []string{"bug"},
	}, createdIssues[0])
	require.Equal(testInstance, gitlab.IssueCreatePayload{Title: "Add dark mode", IID: 9}, createdIssues[1])

	createdNotes := fixture.destination.CreatedIssueNotes[trackerDestination.ID]
	require.Len(testInstance, createdNotes, 2)
	require.Equal(testInstance, "By Ada Lovelace: Reproduced on 14.2.", createdNotes[0].Body)
	require.Equal(testInstance, "2021-03-05T00:00:00Z", createdNotes[0].CreatedAt)
	require.Equal(testInstance, "[SYSTEM NOTE] changed the description", createdNotes[1].Body)

	require.Equal(testInstance, []int64{7}, fixture.destination.ClosedIssues[trackerDestination.ID])
	require.Equal(testInstance, 2, result.EntityTotals.Issues)
	require.Equal(testInstance, 2, result.EntityTotals.IssueNotes)
}

func TestServiceExecuteCopiesProjectResources(testInstance *testing.T) {
	testInstance.Parallel()

	fixture := newServiceFixture(testInstance)
	fixture.source.Projects[sourceGroupIdentifierConstant] = []gitlab.Project{
		sourceProject(toolboxProjectIdentifierConstant, "Toolbox", "toolbox", "acme/toolbox", "acme"),
	}

	labelPriority := 3
	fixture.source.Labels[toolboxProjectIdentifierConstant] = []gitlab.Label{
		{Name: "infra", Color: "#112233", Description: "Infrastructure work", Priority: &labelPriority},
	}

	mergeRequestAuthor := &gitlab.User{ID: 12, Username: "grace", Name: "Grace Hopper"}
	fixture.source.MergeRequests[toolboxProjectIdentifierConstant] = []gitlab.MergeRequest{
		{
			IID:          12,
			Title:        "Add export pipeline",
			Description:  "Exports nightly.",
			State:        "opened",
			SourceBranch: "feature/export",
			TargetBranch: "main",
			Labels:       []string{"infra"},
			Author:       mergeRequestAuthor,
		},
	}
	fixture.source.MergeRequestNotes[toolboxProjectIdentifierConstant] = map[int64][]gitlab.Note{
		12: {{Body: "Ready for review.", Author: mergeRequestAuthor}},
	}

	fixture.source.Variables[toolboxProjectIdentifierConstant] = []gitlab.Variable{
		{Key: "DEPLOY_KEY", Value: "s3cr3t", VariableType: "env_var", EnvironmentScope: "*", Masked: true, Protected: true},
	}
	fixture.source.Milestones[toolboxProjectIdentifierConstant] = []gitlab.Milestone{
		{IID: 1, Title: "v1.0", Description: "First stable cut", State: "active", DueDate: "2021-06-30", StartDate: "2021-05-01"},
	}

	result, executionError := fixture.service.Execute(context.Background(), defaultMigrationOptions())
	require.NoError(testInstance, executionError)

	toolboxDestination := destinationProject(testInstance, fixture, "legacy/orphans/toolbox")

	createdLabels := fixture.destination.CreatedLabels[toolboxDestination.ID]
	require.Len(testInstance, createdLabels, 1)
	require.Equal(testInstance, gitlab.LabelCreatePayload{
		Name:        "infra",
		Color:       "#112233",
		Description: "Infrastructure work",
		Priority:    &labelPriority,
	}, createdLabels[0])

	createdMergeRequests := fixture.destination.CreatedMergeRequests[toolboxDestination.ID]
	require.Len(testInstance, createdMergeRequests, 1)
	require.Equal(testInstance, gitlab.MergeRequestCreatePayload{
		SourceBranch: "feature/export",
		TargetBranch: "main",
		Title:        "Add export pipeline",
		Description:  "By Grace Hopper: Exports nightly.",
		Labels:       []string{"infra"},
	}, createdMergeRequests[0])

	mergeRequestNotes := fixture.destination.CreatedMergeRequestNotes[toolboxDestination.ID]
	require.Len(testInstance, mergeRequestNotes, 1)
	require.Equal(testInstance, "By Grace Hopper: Ready for review.", mergeRequestNotes[0].Body)

	createdVariables := fixture.destination.CreatedVariables[toolboxDestination.ID]
	require.Len(testInstance, createdVariables, 1)
	require.Equal(testInstance, gitlab.VariableCreatePayload{
		Key:              "DEPLOY_KEY",
		Value:            "s3cr3t",
		VariableType:     "env_var",
		EnvironmentScope: "*",
		Masked:           true,
		Protected:        true,
	}, createdVariables[0])

	createdMilestones := fixture.destination.CreatedMilestones[toolboxDestination.ID]
	require.Len(testInstance, createdMilestones, 1)
	require.Equal(testInstance, gitlab.MilestoneCreatePayload{
		Title:       "v1.0",
		Description: "First stable cut",
		DueDate:     "2021-06-30",
		StartDate:   "2021-05-01",
	}, createdMilestones[0])

	orderedOperations := []int{
		operationIndex(testInstance, fixture.destination.OperationLog, "create_label:infra"),
		operationIndex(testInstance, fixture.destination.OperationLog, "create_merge_request:feature/export"),
		operationIndex(testInstance, fixture.destination.OperationLog, "create_variable:DEPLOY_KEY"),
		operationIndex(testInstance, fixture.destination.OperationLog, "create_milestone:v1.0"),
	}
	require.IsIncreasing(testInstance, orderedOperations)

	require.Equal(testInstance, 1, result.EntityTotals.Labels)
	require.Equal(testInstance, 1, result.EntityTotals.MergeRequests)
	require.Equal(testInstance, 1, result.EntityTotals.MergeRequestNotes)
	require.Equal(testInstance, 1, result.EntityTotals.Variables)
	require.Equal(testInstance, 1, result.EntityTotals.Milestones)
}

func TestServiceExecuteSkipsVariablesOfArchivedProjects(testInstance *testing.T) {
	testInstance.Parallel()

	fixture := newServiceFixture(testInstance)

	legacyProject := sourceProject(legacyProjectIdentifierConstant, "Legacy", "legacy", "acme/legacy", "acme")
	legacyProject.Archived = true
	fixture.source.Projects[sourceGroupIdentifierConstant] = []gitlab.Project{legacyProject}
	fixture.source.Variables[legacyProjectIdentifierConstant] = []gitlab.Variable{
		{Key: "OLD_TOKEN", Value: "expired", VariableType: "env_var", EnvironmentScope: "*"},
	}
	fixture.source.Labels[legacyProjectIdentifierConstant] = []gitlab.Label{
		{Name: "retired", Color: "#999999"},
	}

	result, executionError := fixture.service.Execute(context.Background(), defaultMigrationOptions())
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, 1, result.ProjectsMigrated)

	legacyDestination := destinationProject(testInstance, fixture, "legacy/orphans/legacy")
	require.Empty(testInstance, fixture.destination.CreatedVariables)
	require.Len(testInstance, fixture.destination.CreatedLabels[legacyDestination.ID], 1)
	require.Zero(testInstance, result.EntityTotals.Variables)
	require.Equal(testInstance, 1, result.EntityTotals.Labels)
}

// operationIndex locates one operation in the destination log.
func operationIndex(testInstance *testing.T, operations []string, operation string) int {
	testInstance.Helper()
	for operationPosition, loggedOperation := range operations {
		if loggedOperation == operation {
			return operationPosition
		}
	}
	require.Failf(testInstance, "operation not found", "%s missing from %v", operation, operations)
	return -1
}
