package migrate

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/gitlab"
)

const (
	wouldCreateGroupMessageConstant            = "DRY RUN: would create group"
	wouldCreateProjectMessageConstant          = "DRY RUN: would create project"
	wouldUpdateProjectMessageConstant          = "DRY RUN: would update project"
	wouldDeleteProjectMessageConstant          = "DRY RUN: would delete project"
	wouldUploadAvatarMessageConstant           = "DRY RUN: would upload avatar"
	wouldCreateLabelMessageConstant            = "DRY RUN: would create label"
	wouldCreateIssueMessageConstant            = "DRY RUN: would create issue"
	wouldCloseIssueMessageConstant             = "DRY RUN: would close issue"
	wouldCreateIssueNoteMessageConstant        = "DRY RUN: would create issue note"
	wouldCreateMergeRequestMessageConstant     = "DRY RUN: would create merge request"
	wouldCreateMergeRequestNoteMessageConstant = "DRY RUN: would create merge request note"
	wouldCreateVariableMessageConstant         = "DRY RUN: would create variable"
	wouldCreateMilestoneMessageConstant        = "DRY RUN: would create milestone"
	wouldProtectBranchMessageConstant          = "DRY RUN: would protect branch"
	wouldProtectTagMessageConstant             = "DRY RUN: would protect tag"
	wouldDeletePipelineMessageConstant         = "DRY RUN: would delete pipeline"

	nameFieldNameConstant                           = "name"
	pathFieldNameConstant                           = "path"
	parentIdentifierFieldNameConstant               = "parent_id"
	namespaceIdentifierFieldNameConstant            = "namespace_id"
	projectIdentifierFieldNameConstant              = "project_id"
	issueInternalIdentifierFieldNameConstant        = "issue_iid"
	mergeRequestInternalIdentifierFieldNameConstant = "merge_request_iid"
	variableKeyFieldNameConstant                    = "key"
	titleFieldNameConstant                          = "title"
	branchFieldNameConstant                         = "branch"
	tagFieldNameConstant                            = "tag"
	pipelineIdentifierFieldNameConstant             = "pipeline_id"
)

// dryRunDestination wraps a real destination client, letting reads
// through while logging every mutation instead of performing it.
// Fabricated resources carry negative identifiers so the walk can keep
// threading identifiers exactly as a live run would, and so guarded
// reads can tell fabricated projects from real ones.
type dryRunDestination struct {
	logger         *zap.Logger
	destination    DestinationClient
	nextIdentifier int64
}

func newDryRunDestination(logger *zap.Logger, destination DestinationClient) *dryRunDestination {
	return &dryRunDestination{logger: logger, destination: destination}
}

func (decorator *dryRunDestination) syntheticIdentifier() int64 {
	decorator.nextIdentifier--
	return decorator.nextIdentifier
}

func (decorator *dryRunDestination) CurrentUser(executionContext context.Context) (gitlab.User, error) {
	return decorator.destination.CurrentUser(executionContext)
}

func (decorator *dryRunDestination) FetchGroup(executionContext context.Context, groupIdentifier int64) (gitlab.Group, error) {
	return decorator.destination.FetchGroup(executionContext, groupIdentifier)
}

func (decorator *dryRunDestination) FetchGroupByPath(executionContext context.Context, groupFullPath string) (gitlab.Group, error) {
	return decorator.destination.FetchGroupByPath(executionContext, groupFullPath)
}

func (decorator *dryRunDestination) FetchProjectByPath(executionContext context.Context, projectFullPath string) (gitlab.Project, error) {
	return decorator.destination.FetchProjectByPath(executionContext, projectFullPath)
}

func (decorator *dryRunDestination) Token() string {
	return decorator.destination.Token()
}

func (decorator *dryRunDestination) CreateGroup(executionContext context.Context, payload gitlab.GroupCreatePayload) (gitlab.Group, error) {
	decorator.logger.Info(wouldCreateGroupMessageConstant,
		zap.String(nameFieldNameConstant, payload.Name),
		zap.String(pathFieldNameConstant, payload.Path),
		zap.Int64(parentIdentifierFieldNameConstant, payload.ParentID),
	)
	return gitlab.Group{ID: decorator.syntheticIdentifier(), Name: payload.Name, Path: payload.Path, ParentID: payload.ParentID}, nil
}

func (decorator *dryRunDestination) CreateProject(executionContext context.Context, payload gitlab.ProjectCreatePayload) (gitlab.Project, error) {
	decorator.logger.Info(wouldCreateProjectMessageConstant,
		zap.String(nameFieldNameConstant, payload.Name),
		zap.String(pathFieldNameConstant, payload.Path),
		zap.Int64(namespaceIdentifierFieldNameConstant, payload.NamespaceID),
	)
	return gitlab.Project{ID: decorator.syntheticIdentifier(), Name: payload.Name, Path: payload.Path}, nil
}

func (decorator *dryRunDestination) UpdateProject(executionContext context.Context, projectIdentifier int64, payload gitlab.ProjectUpdatePayload) (gitlab.Project, error) {
	decorator.logger.Info(wouldUpdateProjectMessageConstant, zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier))
	return gitlab.Project{ID: projectIdentifier, Description: payload.Description}, nil
}

func (decorator *dryRunDestination) DeleteProject(executionContext context.Context, projectIdentifier int64) error {
	decorator.logger.Info(wouldDeleteProjectMessageConstant, zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier))
	return nil
}

func (decorator *dryRunDestination) UploadProjectAvatar(executionContext context.Context, projectIdentifier int64, avatarContent []byte) error {
	decorator.logger.Info(wouldUploadAvatarMessageConstant, zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier))
	return nil
}

func (decorator *dryRunDestination) CreateLabel(executionContext context.Context, projectIdentifier int64, payload gitlab.LabelCreatePayload) (gitlab.Label, error) {
	decorator.logger.Info(wouldCreateLabelMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.String(nameFieldNameConstant, payload.Name),
	)
	return gitlab.Label{ID: decorator.syntheticIdentifier(), Name: payload.Name, Color: payload.Color}, nil
}

func (decorator *dryRunDestination) CreateIssue(executionContext context.Context, projectIdentifier int64, payload gitlab.IssueCreatePayload) (gitlab.Issue, error) {
	decorator.logger.Info(wouldCreateIssueMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.Int64(issueInternalIdentifierFieldNameConstant, payload.IID),
		zap.String(titleFieldNameConstant, payload.Title),
	)
	return gitlab.Issue{ID: decorator.syntheticIdentifier(), IID: payload.IID, Title: payload.Title}, nil
}

func (decorator *dryRunDestination) CloseIssue(executionContext context.Context, projectIdentifier int64, issueInternalIdentifier int64) (gitlab.Issue, error) {
	decorator.logger.Info(wouldCloseIssueMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.Int64(issueInternalIdentifierFieldNameConstant, issueInternalIdentifier),
	)
	return gitlab.Issue{IID: issueInternalIdentifier, State: closedIssueStateConstant}, nil
}

func (decorator *dryRunDestination) CreateIssueNote(executionContext context.Context, projectIdentifier int64, issueInternalIdentifier int64, payload gitlab.NoteCreatePayload) (gitlab.Note, error) {
	decorator.logger.Info(wouldCreateIssueNoteMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.Int64(issueInternalIdentifierFieldNameConstant, issueInternalIdentifier),
	)
	return gitlab.Note{ID: decorator.syntheticIdentifier(), Body: payload.Body}, nil
}

func (decorator *dryRunDestination) CreateMergeRequest(executionContext context.Context, projectIdentifier int64, payload gitlab.MergeRequestCreatePayload) (gitlab.MergeRequest, error) {
	decorator.logger.Info(wouldCreateMergeRequestMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.String(titleFieldNameConstant, payload.Title),
	)
	identifier := decorator.syntheticIdentifier()
	return gitlab.MergeRequest{ID: identifier, IID: identifier, Title: payload.Title}, nil
}

func (decorator *dryRunDestination) CreateMergeRequestNote(executionContext context.Context, projectIdentifier int64, mergeRequestInternalIdentifier int64, payload gitlab.NoteCreatePayload) (gitlab.Note, error) {
	decorator.logger.Info(wouldCreateMergeRequestNoteMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.Int64(mergeRequestInternalIdentifierFieldNameConstant, mergeRequestInternalIdentifier),
	)
	return gitlab.Note{ID: decorator.syntheticIdentifier(), Body: payload.Body}, nil
}

func (decorator *dryRunDestination) CreateVariable(executionContext context.Context, projectIdentifier int64, payload gitlab.VariableCreatePayload) (gitlab.Variable, error) {
	decorator.logger.Info(wouldCreateVariableMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.String(variableKeyFieldNameConstant, payload.Key),
	)
	return gitlab.Variable{
		Key:              payload.Key,
		Value:            payload.Value,
		VariableType:     payload.VariableType,
		EnvironmentScope: payload.EnvironmentScope,
		Masked:           payload.Masked,
		Protected:        payload.Protected,
	}, nil
}

func (decorator *dryRunDestination) CreateMilestone(executionContext context.Context, projectIdentifier int64, payload gitlab.MilestoneCreatePayload) (gitlab.Milestone, error) {
	decorator.logger.Info(wouldCreateMilestoneMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.String(titleFieldNameConstant, payload.Title),
	)
	return gitlab.Milestone{ID: decorator.syntheticIdentifier(), Title: payload.Title}, nil
}

func (decorator *dryRunDestination) FetchProtectedBranches(executionContext context.Context, projectIdentifier int64) ([]gitlab.ProtectedBranch, error) {
	if projectIdentifier < 0 {
		return nil, nil
	}
	return decorator.destination.FetchProtectedBranches(executionContext, projectIdentifier)
}

func (decorator *dryRunDestination) CreateProtectedBranch(executionContext context.Context, projectIdentifier int64, payload gitlab.ProtectedBranchCreatePayload) (gitlab.ProtectedBranch, error) {
	decorator.logger.Info(wouldProtectBranchMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.String(branchFieldNameConstant, payload.Name),
	)
	return gitlab.ProtectedBranch{ID: decorator.syntheticIdentifier(), Name: payload.Name}, nil
}

func (decorator *dryRunDestination) FetchProtectedTags(executionContext context.Context, projectIdentifier int64) ([]gitlab.ProtectedTag, error) {
	if projectIdentifier < 0 {
		return nil, nil
	}
	return decorator.destination.FetchProtectedTags(executionContext, projectIdentifier)
}

func (decorator *dryRunDestination) CreateProtectedTag(executionContext context.Context, projectIdentifier int64, payload gitlab.ProtectedTagCreatePayload) (gitlab.ProtectedTag, error) {
	decorator.logger.Info(wouldProtectTagMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.String(tagFieldNameConstant, payload.Name),
	)
	return gitlab.ProtectedTag{Name: payload.Name}, nil
}

func (decorator *dryRunDestination) FetchPipelines(executionContext context.Context, projectIdentifier int64) ([]gitlab.Pipeline, error) {
	if projectIdentifier < 0 {
		return nil, nil
	}
	return decorator.destination.FetchPipelines(executionContext, projectIdentifier)
}

func (decorator *dryRunDestination) DeletePipeline(executionContext context.Context, projectIdentifier int64, pipelineIdentifier int64) error {
	decorator.logger.Info(wouldDeletePipelineMessageConstant,
		zap.Int64(projectIdentifierFieldNameConstant, projectIdentifier),
		zap.Int64(pipelineIdentifierFieldNameConstant, pipelineIdentifier),
	)
	return nil
}
