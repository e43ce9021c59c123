package migrate

import (
	"context"

	"github.com/temirov/albatross/internal/gitlab"
	"github.com/temirov/albatross/internal/migrate/state"
	"github.com/temirov/albatross/internal/transfer"
)

// SourceClient reads groups, projects, and project resources from the
// source instance. A migration never mutates the source.
type SourceClient interface {
	CurrentUser(executionContext context.Context) (gitlab.User, error)
	FetchGroup(executionContext context.Context, groupIdentifier int64) (gitlab.Group, error)
	FetchSubgroups(executionContext context.Context, groupIdentifier int64) ([]gitlab.Group, error)
	FetchGroupProjects(executionContext context.Context, groupIdentifier int64) ([]gitlab.Project, error)
	FetchLabels(executionContext context.Context, projectIdentifier int64) ([]gitlab.Label, error)
	FetchIssues(executionContext context.Context, projectIdentifier int64) ([]gitlab.Issue, error)
	FetchIssueNotes(executionContext context.Context, projectIdentifier int64, issueInternalIdentifier int64) ([]gitlab.Note, error)
	FetchOpenMergeRequests(executionContext context.Context, projectIdentifier int64) ([]gitlab.MergeRequest, error)
	FetchMergeRequestNotes(executionContext context.Context, projectIdentifier int64, mergeRequestInternalIdentifier int64) ([]gitlab.Note, error)
	FetchVariables(executionContext context.Context, projectIdentifier int64) ([]gitlab.Variable, error)
	FetchMilestones(executionContext context.Context, projectIdentifier int64) ([]gitlab.Milestone, error)
	FetchWikiPages(executionContext context.Context, projectIdentifier int64) ([]gitlab.WikiPage, error)
	FetchProtectedBranches(executionContext context.Context, projectIdentifier int64) ([]gitlab.ProtectedBranch, error)
	FetchProtectedTags(executionContext context.Context, projectIdentifier int64) ([]gitlab.ProtectedTag, error)
	DownloadAvatar(executionContext context.Context, avatarURL string) ([]byte, error)
	Token() string
}

// DestinationClient builds the migrated hierarchy on the destination
// instance. Reads are limited to existence probes, pre-protection
// checks, and pipeline listings.
type DestinationClient interface {
	CurrentUser(executionContext context.Context) (gitlab.User, error)
	FetchGroup(executionContext context.Context, groupIdentifier int64) (gitlab.Group, error)
	FetchGroupByPath(executionContext context.Context, groupFullPath string) (gitlab.Group, error)
	CreateGroup(executionContext context.Context, payload gitlab.GroupCreatePayload) (gitlab.Group, error)
	FetchProjectByPath(executionContext context.Context, projectFullPath string) (gitlab.Project, error)
	CreateProject(executionContext context.Context, payload gitlab.ProjectCreatePayload) (gitlab.Project, error)
	UpdateProject(executionContext context.Context, projectIdentifier int64, payload gitlab.ProjectUpdatePayload) (gitlab.Project, error)
	DeleteProject(executionContext context.Context, projectIdentifier int64) error
	UploadProjectAvatar(executionContext context.Context, projectIdentifier int64, avatarContent []byte) error
	CreateLabel(executionContext context.Context, projectIdentifier int64, payload gitlab.LabelCreatePayload) (gitlab.Label, error)
	CreateIssue(executionContext context.Context, projectIdentifier int64, payload gitlab.IssueCreatePayload) (gitlab.Issue, error)
	CloseIssue(executionContext context.Context, projectIdentifier int64, issueInternalIdentifier int64) (gitlab.Issue, error)
	CreateIssueNote(executionContext context.Context, projectIdentifier int64, issueInternalIdentifier int64, payload gitlab.NoteCreatePayload) (gitlab.Note, error)
	CreateMergeRequest(executionContext context.Context, projectIdentifier int64, payload gitlab.MergeRequestCreatePayload) (gitlab.MergeRequest, error)
	CreateMergeRequestNote(executionContext context.Context, projectIdentifier int64, mergeRequestInternalIdentifier int64, payload gitlab.NoteCreatePayload) (gitlab.Note, error)
	CreateVariable(executionContext context.Context, projectIdentifier int64, payload gitlab.VariableCreatePayload) (gitlab.Variable, error)
	CreateMilestone(executionContext context.Context, projectIdentifier int64, payload gitlab.MilestoneCreatePayload) (gitlab.Milestone, error)
	FetchProtectedBranches(executionContext context.Context, projectIdentifier int64) ([]gitlab.ProtectedBranch, error)
	CreateProtectedBranch(executionContext context.Context, projectIdentifier int64, payload gitlab.ProtectedBranchCreatePayload) (gitlab.ProtectedBranch, error)
	FetchProtectedTags(executionContext context.Context, projectIdentifier int64) ([]gitlab.ProtectedTag, error)
	CreateProtectedTag(executionContext context.Context, projectIdentifier int64, payload gitlab.ProtectedTagCreatePayload) (gitlab.ProtectedTag, error)
	FetchPipelines(executionContext context.Context, projectIdentifier int64) ([]gitlab.Pipeline, error)
	DeletePipeline(executionContext context.Context, projectIdentifier int64, pipelineIdentifier int64) error
	Token() string
}

// RepositoryReplicator copies git content between instances through a
// staging directory.
type RepositoryReplicator interface {
	Replicate(executionContext context.Context, options transfer.ReplicationOptions) (transfer.ReplicationResult, error)
}

// RecordStore persists and recalls migration status per entity.
type RecordStore interface {
	Lookup(kind state.EntityKind, identifier int64) (state.Status, bool)
	Record(kind state.EntityKind, identifier int64, path string, status state.Status) error
}

// StagingManager provisions scratch directories for repository transfers.
type StagingManager interface {
	Acquire(projectIdentifier int64) (string, error)
	Release(stagingPath string) error
}

// MigrationExecutor runs a migration from parsed command options.
type MigrationExecutor interface {
	Execute(executionContext context.Context, options MigrationOptions) (MigrationResult, error)
}
