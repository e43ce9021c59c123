// Package testsupport provides configurable stand-ins for the migrate
// package's collaborators.
package testsupport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/temirov/albatross/internal/gitlab"
)

const (
	groupNotFoundMessageConstant   = "group not found"
	projectNotFoundMessageConstant = "project not found"
	avatarNotFoundMessageConstant  = "avatar not found"
)

// SourceClientStub serves a configurable group tree and per-project
// resources for tests. Maps are keyed by group or project identifier;
// note maps are keyed by project identifier, then issue or merge
// request IID.
type SourceClientStub struct {
	User              gitlab.User
	UserError         error
	Groups            map[int64]gitlab.Group
	GroupErrors       map[int64]error
	Subgroups         map[int64][]gitlab.Group
	SubgroupErrors    map[int64]error
	Projects          map[int64][]gitlab.Project
	ProjectErrors     map[int64]error
	Labels            map[int64][]gitlab.Label
	Issues            map[int64][]gitlab.Issue
	IssueNotes        map[int64]map[int64][]gitlab.Note
	MergeRequests     map[int64][]gitlab.MergeRequest
	MergeRequestNotes map[int64]map[int64][]gitlab.Note
	Variables         map[int64][]gitlab.Variable
	Milestones        map[int64][]gitlab.Milestone
	WikiPages         map[int64][]gitlab.WikiPage
	WikiErrors        map[int64]error
	ProtectedBranches map[int64][]gitlab.ProtectedBranch
	ProtectedTags     map[int64][]gitlab.ProtectedTag
	AvatarContent     map[string][]byte
	AvatarErrors      map[string]error
	AccessToken       string
}

// NewSourceClientStub returns a stub with every map initialized.
func NewSourceClientStub() *SourceClientStub {
	return &SourceClientStub{
		Groups:            map[int64]gitlab.Group{},
		GroupErrors:       map[int64]error{},
		Subgroups:         map[int64][]gitlab.Group{},
		SubgroupErrors:    map[int64]error{},
		Projects:          map[int64][]gitlab.Project{},
		ProjectErrors:     map[int64]error{},
		Labels:            map[int64][]gitlab.Label{},
		Issues:            map[int64][]gitlab.Issue{},
		IssueNotes:        map[int64]map[int64][]gitlab.Note{},
		MergeRequests:     map[int64][]gitlab.MergeRequest{},
		MergeRequestNotes: map[int64]map[int64][]gitlab.Note{},
		Variables:         map[int64][]gitlab.Variable{},
		Milestones:        map[int64][]gitlab.Milestone{},
		WikiPages:         map[int64][]gitlab.WikiPage{},
		WikiErrors:        map[int64]error{},
		ProtectedBranches: map[int64][]gitlab.ProtectedBranch{},
		ProtectedTags:     map[int64][]gitlab.ProtectedTag{},
		AvatarContent:     map[string][]byte{},
		AvatarErrors:      map[string]error{},
	}
}

// CurrentUser returns the configured user or error.
func (client *SourceClientStub) CurrentUser(_ context.Context) (gitlab.User, error) {
	if client.UserError != nil {
		return gitlab.User{}, client.UserError
	}
	return client.User, nil
}

// FetchGroup returns the configured group or a not-found API error.
func (client *SourceClientStub) FetchGroup(_ context.Context, groupIdentifier int64) (gitlab.Group, error) {
	if groupError, exists := client.GroupErrors[groupIdentifier]; exists {
		return gitlab.Group{}, groupError
	}
	group, exists := client.Groups[groupIdentifier]
	if !exists {
		return gitlab.Group{}, gitlab.APIError{StatusCode: http.StatusNotFound, Message: groupNotFoundMessageConstant}
	}
	return group, nil
}

// FetchSubgroups returns the configured direct subgroups.
func (client *SourceClientStub) FetchSubgroups(_ context.Context, groupIdentifier int64) ([]gitlab.Group, error) {
	if subgroupError, exists := client.SubgroupErrors[groupIdentifier]; exists {
		return nil, subgroupError
	}
	return append([]gitlab.Group{}, client.Subgroups[groupIdentifier]...), nil
}

// FetchGroupProjects returns the configured direct projects.
func (client *SourceClientStub) FetchGroupProjects(_ context.Context, groupIdentifier int64) ([]gitlab.Project, error) {
	if projectError, exists := client.ProjectErrors[groupIdentifier]; exists {
		return nil, projectError
	}
	return append([]gitlab.Project{}, client.Projects[groupIdentifier]...), nil
}

// FetchLabels returns the configured labels.
func (client *SourceClientStub) FetchLabels(_ context.Context, projectIdentifier int64) ([]gitlab.Label, error) {
	return append([]gitlab.Label{}, client.Labels[projectIdentifier]...), nil
}

// FetchIssues returns the configured issues.
func (client *SourceClientStub) FetchIssues(_ context.Context, projectIdentifier int64) ([]gitlab.Issue, error) {
	return append([]gitlab.Issue{}, client.Issues[projectIdentifier]...), nil
}

// FetchIssueNotes returns the configured notes of one issue.
func (client *SourceClientStub) FetchIssueNotes(_ context.Context, projectIdentifier int64, issueInternalIdentifier int64) ([]gitlab.Note, error) {
	return append([]gitlab.Note{}, client.IssueNotes[projectIdentifier][issueInternalIdentifier]...), nil
}

// FetchOpenMergeRequests returns the configured merge requests.
func (client *SourceClientStub) FetchOpenMergeRequests(_ context.Context, projectIdentifier int64) ([]gitlab.MergeRequest, error) {
	return append([]gitlab.MergeRequest{}, client.MergeRequests[projectIdentifier]...), nil
}

// FetchMergeRequestNotes returns the configured notes of one merge request.
func (client *SourceClientStub) FetchMergeRequestNotes(_ context.Context, projectIdentifier int64, mergeRequestInternalIdentifier int64) ([]gitlab.Note, error) {
	return append([]gitlab.Note{}, client.MergeRequestNotes[projectIdentifier][mergeRequestInternalIdentifier]...), nil
}

// FetchVariables returns the configured CI/CD variables.
func (client *SourceClientStub) FetchVariables(_ context.Context, projectIdentifier int64) ([]gitlab.Variable, error) {
	return append([]gitlab.Variable{}, client.Variables[projectIdentifier]...), nil
}

// FetchMilestones returns the configured milestones.
func (client *SourceClientStub) FetchMilestones(_ context.Context, projectIdentifier int64) ([]gitlab.Milestone, error) {
	return append([]gitlab.Milestone{}, client.Milestones[projectIdentifier]...), nil
}

// FetchWikiPages returns the configured wiki listing or error.
func (client *SourceClientStub) FetchWikiPages(_ context.Context, projectIdentifier int64) ([]gitlab.WikiPage, error) {
	if wikiError, exists := client.WikiErrors[projectIdentifier]; exists {
		return nil, wikiError
	}
	return append([]gitlab.WikiPage{}, client.WikiPages[projectIdentifier]...), nil
}

// FetchProtectedBranches returns the configured branch protections.
func (client *SourceClientStub) FetchProtectedBranches(_ context.Context, projectIdentifier int64) ([]gitlab.ProtectedBranch, error) {
	return append([]gitlab.ProtectedBranch{}, client.ProtectedBranches[projectIdentifier]...), nil
}

// FetchProtectedTags returns the configured tag protections.
func (client *SourceClientStub) FetchProtectedTags(_ context.Context, projectIdentifier int64) ([]gitlab.ProtectedTag, error) {
	return append([]gitlab.ProtectedTag{}, client.ProtectedTags[projectIdentifier]...), nil
}

// DownloadAvatar returns the configured avatar bytes or error.
func (client *SourceClientStub) DownloadAvatar(_ context.Context, avatarURL string) ([]byte, error) {
	if avatarError, exists := client.AvatarErrors[avatarURL]; exists {
		return nil, avatarError
	}
	avatarContent, exists := client.AvatarContent[avatarURL]
	if !exists {
		return nil, gitlab.APIError{StatusCode: http.StatusNotFound, Message: avatarNotFoundMessageConstant}
	}
	return append([]byte{}, avatarContent...), nil
}

// Token returns the configured access token.
func (client *SourceClientStub) Token() string {
	return client.AccessToken
}

// DestinationClientStub fabricates destination resources in memory and
// records every mutation. OperationLog keeps the mutations in call
// order for ordering assertions. Created groups and projects become
// visible to subsequent path lookups, so one stub can serve several
// migration runs in a resume scenario.
type DestinationClientStub struct {
	User      gitlab.User
	UserError error

	GroupsByID     map[int64]gitlab.Group
	GroupsByPath   map[string]gitlab.Group
	ProjectsByPath map[string]gitlab.Project

	ProtectedBranches        map[int64][]gitlab.ProtectedBranch
	DefaultProtectedBranches []gitlab.ProtectedBranch
	ProtectedTags            map[int64][]gitlab.ProtectedTag
	DefaultProtectedTags     []gitlab.ProtectedTag
	Pipelines                map[int64][]gitlab.Pipeline
	DefaultPipelines         []gitlab.Pipeline

	CreateGroupError    error
	CreateProjectError  error
	DeleteProjectError  error
	LabelCreationErrors map[string]error
	IssueCreationErrors map[int64]error

	AccessToken string

	OperationLog               []string
	CreatedGroups              []gitlab.GroupCreatePayload
	CreatedProjects            []gitlab.ProjectCreatePayload
	UpdatedProjectDescriptions map[int64]string
	DeletedProjectIdentifiers  []int64
	UploadedAvatars            map[int64][]byte
	CreatedLabels              map[int64][]gitlab.LabelCreatePayload
	CreatedIssues              map[int64][]gitlab.IssueCreatePayload
	ClosedIssues               map[int64][]int64
	CreatedIssueNotes          map[int64][]gitlab.NoteCreatePayload
	CreatedMergeRequests       map[int64][]gitlab.MergeRequestCreatePayload
	CreatedMergeRequestNotes   map[int64][]gitlab.NoteCreatePayload
	CreatedVariables           map[int64][]gitlab.VariableCreatePayload
	CreatedMilestones          map[int64][]gitlab.MilestoneCreatePayload
	CreatedProtectedBranches   map[int64][]gitlab.ProtectedBranchCreatePayload
	CreatedProtectedTags       map[int64][]gitlab.ProtectedTagCreatePayload
	DeletedPipelines           map[int64][]int64

	nextIdentifier int64
}

// NewDestinationClientStub returns a stub with every map initialized.
func NewDestinationClientStub() *DestinationClientStub {
	return &DestinationClientStub{
		GroupsByID:                 map[int64]gitlab.Group{},
		GroupsByPath:               map[string]gitlab.Group{},
		ProjectsByPath:             map[string]gitlab.Project{},
		ProtectedBranches:          map[int64][]gitlab.ProtectedBranch{},
		ProtectedTags:              map[int64][]gitlab.ProtectedTag{},
		Pipelines:                  map[int64][]gitlab.Pipeline{},
		LabelCreationErrors:        map[string]error{},
		IssueCreationErrors:        map[int64]error{},
		UpdatedProjectDescriptions: map[int64]string{},
		UploadedAvatars:            map[int64][]byte{},
		CreatedLabels:              map[int64][]gitlab.LabelCreatePayload{},
		CreatedIssues:              map[int64][]gitlab.IssueCreatePayload{},
		ClosedIssues:               map[int64][]int64{},
		CreatedIssueNotes:          map[int64][]gitlab.NoteCreatePayload{},
		CreatedMergeRequests:       map[int64][]gitlab.MergeRequestCreatePayload{},
		CreatedMergeRequestNotes:   map[int64][]gitlab.NoteCreatePayload{},
		CreatedVariables:           map[int64][]gitlab.VariableCreatePayload{},
		CreatedMilestones:          map[int64][]gitlab.MilestoneCreatePayload{},
		CreatedProtectedBranches:   map[int64][]gitlab.ProtectedBranchCreatePayload{},
		CreatedProtectedTags:       map[int64][]gitlab.ProtectedTagCreatePayload{},
		DeletedPipelines:           map[int64][]int64{},
	}
}

// RegisterGroup seeds an existing destination group for id and path lookups.
func (client *DestinationClientStub) RegisterGroup(group gitlab.Group) {
	client.GroupsByID[group.ID] = group
	client.GroupsByPath[group.FullPath] = group
}

func (client *DestinationClientStub) nextCreatedIdentifier() int64 {
	client.nextIdentifier++
	return 1000 + client.nextIdentifier
}

// CurrentUser returns the configured user or error.
func (client *DestinationClientStub) CurrentUser(_ context.Context) (gitlab.User, error) {
	if client.UserError != nil {
		return gitlab.User{}, client.UserError
	}
	return client.User, nil
}

// FetchGroup returns a registered group or a not-found API error.
func (client *DestinationClientStub) FetchGroup(_ context.Context, groupIdentifier int64) (gitlab.Group, error) {
	group, exists := client.GroupsByID[groupIdentifier]
	if !exists {
		return gitlab.Group{}, gitlab.APIError{StatusCode: http.StatusNotFound, Message: groupNotFoundMessageConstant}
	}
	return group, nil
}

// FetchGroupByPath returns a registered group or a not-found API error.
func (client *DestinationClientStub) FetchGroupByPath(_ context.Context, groupFullPath string) (gitlab.Group, error) {
	group, exists := client.GroupsByPath[groupFullPath]
	if !exists {
		return gitlab.Group{}, gitlab.APIError{StatusCode: http.StatusNotFound, Message: groupNotFoundMessageConstant}
	}
	return group, nil
}

// CreateGroup fabricates a group under the payload's parent and makes it
// visible to later lookups.
func (client *DestinationClientStub) CreateGroup(_ context.Context, payload gitlab.GroupCreatePayload) (gitlab.Group, error) {
	if client.CreateGroupError != nil {
		return gitlab.Group{}, client.CreateGroupError
	}

	groupFullPath := payload.Path
	if parent, exists := client.GroupsByID[payload.ParentID]; exists && len(parent.FullPath) > 0 {
		groupFullPath = parent.FullPath + "/" + payload.Path
	}

	createdGroup := gitlab.Group{
		ID:          client.nextCreatedIdentifier(),
		Name:        payload.Name,
		Path:        payload.Path,
		FullPath:    groupFullPath,
		Description: payload.Description,
		ParentID:    payload.ParentID,
	}
	client.GroupsByID[createdGroup.ID] = createdGroup
	client.GroupsByPath[groupFullPath] = createdGroup
	client.CreatedGroups = append(client.CreatedGroups, payload)
	client.OperationLog = append(client.OperationLog, "create_group:"+groupFullPath)

	return createdGroup, nil
}

// FetchProjectByPath returns a registered project or a not-found API error.
func (client *DestinationClientStub) FetchProjectByPath(_ context.Context, projectFullPath string) (gitlab.Project, error) {
	project, exists := client.ProjectsByPath[projectFullPath]
	if !exists {
		return gitlab.Project{}, gitlab.APIError{StatusCode: http.StatusNotFound, Message: projectNotFoundMessageConstant}
	}
	return project, nil
}

// CreateProject fabricates a project in the payload's namespace and makes
// it visible to later path lookups.
func (client *DestinationClientStub) CreateProject(_ context.Context, payload gitlab.ProjectCreatePayload) (gitlab.Project, error) {
	if client.CreateProjectError != nil {
		return gitlab.Project{}, client.CreateProjectError
	}

	projectFullPath := payload.Path
	projectNamespace := gitlab.Namespace{}
	if parent, exists := client.GroupsByID[payload.NamespaceID]; exists {
		projectNamespace = gitlab.Namespace{ID: parent.ID, Name: parent.Name, Path: parent.Path, FullPath: parent.FullPath}
		if len(parent.FullPath) > 0 {
			projectFullPath = parent.FullPath + "/" + payload.Path
		}
	}

	createdProject := gitlab.Project{
		ID:                client.nextCreatedIdentifier(),
		Name:              payload.Name,
		Path:              payload.Path,
		PathWithNamespace: projectFullPath,
		HTTPURLToRepo:     fmt.Sprintf("https://destination.example/%s.git", projectFullPath),
		Namespace:         projectNamespace,
	}
	client.ProjectsByPath[projectFullPath] = createdProject
	client.CreatedProjects = append(client.CreatedProjects, payload)
	client.OperationLog = append(client.OperationLog, "create_project:"+projectFullPath)

	return createdProject, nil
}

// UpdateProject records the description update.
func (client *DestinationClientStub) UpdateProject(_ context.Context, projectIdentifier int64, payload gitlab.ProjectUpdatePayload) (gitlab.Project, error) {
	client.UpdatedProjectDescriptions[projectIdentifier] = payload.Description
	client.OperationLog = append(client.OperationLog, fmt.Sprintf("update_project:%d", projectIdentifier))
	return gitlab.Project{ID: projectIdentifier, Description: payload.Description}, nil
}

// DeleteProject records the deletion and removes the project from path lookups.
func (client *DestinationClientStub) DeleteProject(_ context.Context, projectIdentifier int64) error {
	if client.DeleteProjectError != nil {
		return client.DeleteProjectError
	}

	client.DeletedProjectIdentifiers = append(client.DeletedProjectIdentifiers, projectIdentifier)
	client.OperationLog = append(client.OperationLog, fmt.Sprintf("delete_project:%d", projectIdentifier))
	for projectPath, project := range client.ProjectsByPath {
		if project.ID == projectIdentifier {
			delete(client.ProjectsByPath, projectPath)
			break
		}
	}

	return nil
}

// UploadProjectAvatar records the uploaded avatar bytes.
func (client *DestinationClientStub) UploadProjectAvatar(_ context.Context, projectIdentifier int64, avatarContent []byte) error {
	client.UploadedAvatars[projectIdentifier] = append([]byte{}, avatarContent...)
	client.OperationLog = append(client.OperationLog, fmt.Sprintf("upload_avatar:%d", projectIdentifier))
	return nil
}

// CreateLabel records the label, honoring configured per-name errors.
func (client *DestinationClientStub) CreateLabel(_ context.Context, projectIdentifier int64, payload gitlab.LabelCreatePayload) (gitlab.Label, error) {
	if labelError, exists := client.LabelCreationErrors[payload.Name]; exists {
		return gitlab.Label{}, labelError
	}
	client.CreatedLabels[projectIdentifier] = append(client.CreatedLabels[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, "create_label:"+payload.Name)
	return gitlab.Label{ID: client.nextCreatedIdentifier(), Name: payload.Name, Color: payload.Color}, nil
}

// CreateIssue records the issue, honoring configured per-IID errors.
func (client *DestinationClientStub) CreateIssue(_ context.Context, projectIdentifier int64, payload gitlab.IssueCreatePayload) (gitlab.Issue, error) {
	if issueError, exists := client.IssueCreationErrors[payload.IID]; exists {
		return gitlab.Issue{}, issueError
	}
	client.CreatedIssues[projectIdentifier] = append(client.CreatedIssues[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, fmt.Sprintf("create_issue:%d", payload.IID))
	return gitlab.Issue{ID: client.nextCreatedIdentifier(), IID: payload.IID, Title: payload.Title}, nil
}

// CloseIssue records the close request.
func (client *DestinationClientStub) CloseIssue(_ context.Context, projectIdentifier int64, issueInternalIdentifier int64) (gitlab.Issue, error) {
	client.ClosedIssues[projectIdentifier] = append(client.ClosedIssues[projectIdentifier], issueInternalIdentifier)
	client.OperationLog = append(client.OperationLog, fmt.Sprintf("close_issue:%d", issueInternalIdentifier))
	return gitlab.Issue{IID: issueInternalIdentifier, State: "closed"}, nil
}

// CreateIssueNote records the note.
func (client *DestinationClientStub) CreateIssueNote(_ context.Context, projectIdentifier int64, issueInternalIdentifier int64, payload gitlab.NoteCreatePayload) (gitlab.Note, error) {
	client.CreatedIssueNotes[projectIdentifier] = append(client.CreatedIssueNotes[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, fmt.Sprintf("create_issue_note:%d", issueInternalIdentifier))
	return gitlab.Note{ID: client.nextCreatedIdentifier(), Body: payload.Body}, nil
}

// CreateMergeRequest records the merge request.
func (client *DestinationClientStub) CreateMergeRequest(_ context.Context, projectIdentifier int64, payload gitlab.MergeRequestCreatePayload) (gitlab.MergeRequest, error) {
	client.CreatedMergeRequests[projectIdentifier] = append(client.CreatedMergeRequests[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, "create_merge_request:"+payload.SourceBranch)
	identifier := client.nextCreatedIdentifier()
	return gitlab.MergeRequest{ID: identifier, IID: identifier, Title: payload.Title, SourceBranch: payload.SourceBranch, TargetBranch: payload.TargetBranch}, nil
}

// CreateMergeRequestNote records the note.
func (client *DestinationClientStub) CreateMergeRequestNote(_ context.Context, projectIdentifier int64, mergeRequestInternalIdentifier int64, payload gitlab.NoteCreatePayload) (gitlab.Note, error) {
	client.CreatedMergeRequestNotes[projectIdentifier] = append(client.CreatedMergeRequestNotes[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, fmt.Sprintf("create_merge_request_note:%d", mergeRequestInternalIdentifier))
	return gitlab.Note{ID: client.nextCreatedIdentifier(), Body: payload.Body}, nil
}

// CreateVariable records the CI/CD variable.
func (client *DestinationClientStub) CreateVariable(_ context.Context, projectIdentifier int64, payload gitlab.VariableCreatePayload) (gitlab.Variable, error) {
	client.CreatedVariables[projectIdentifier] = append(client.CreatedVariables[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, "create_variable:"+payload.Key)
	return gitlab.Variable{Key: payload.Key, Value: payload.Value}, nil
}

// CreateMilestone records the milestone.
func (client *DestinationClientStub) CreateMilestone(_ context.Context, projectIdentifier int64, payload gitlab.MilestoneCreatePayload) (gitlab.Milestone, error) {
	client.CreatedMilestones[projectIdentifier] = append(client.CreatedMilestones[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, "create_milestone:"+payload.Title)
	return gitlab.Milestone{ID: client.nextCreatedIdentifier(), Title: payload.Title}, nil
}

// FetchProtectedBranches returns per-project protections, falling back
// to the default set applied to every project.
func (client *DestinationClientStub) FetchProtectedBranches(_ context.Context, projectIdentifier int64) ([]gitlab.ProtectedBranch, error) {
	if branches, exists := client.ProtectedBranches[projectIdentifier]; exists {
		return append([]gitlab.ProtectedBranch{}, branches...), nil
	}
	return append([]gitlab.ProtectedBranch{}, client.DefaultProtectedBranches...), nil
}

// CreateProtectedBranch records the protection.
func (client *DestinationClientStub) CreateProtectedBranch(_ context.Context, projectIdentifier int64, payload gitlab.ProtectedBranchCreatePayload) (gitlab.ProtectedBranch, error) {
	client.CreatedProtectedBranches[projectIdentifier] = append(client.CreatedProtectedBranches[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, "protect_branch:"+payload.Name)
	return gitlab.ProtectedBranch{ID: client.nextCreatedIdentifier(), Name: payload.Name}, nil
}

// FetchProtectedTags returns per-project tag protections, falling back
// to the default set applied to every project.
func (client *DestinationClientStub) FetchProtectedTags(_ context.Context, projectIdentifier int64) ([]gitlab.ProtectedTag, error) {
	if tags, exists := client.ProtectedTags[projectIdentifier]; exists {
		return append([]gitlab.ProtectedTag{}, tags...), nil
	}
	return append([]gitlab.ProtectedTag{}, client.DefaultProtectedTags...), nil
}

// CreateProtectedTag records the protection.
func (client *DestinationClientStub) CreateProtectedTag(_ context.Context, projectIdentifier int64, payload gitlab.ProtectedTagCreatePayload) (gitlab.ProtectedTag, error) {
	client.CreatedProtectedTags[projectIdentifier] = append(client.CreatedProtectedTags[projectIdentifier], payload)
	client.OperationLog = append(client.OperationLog, "protect_tag:"+payload.Name)
	return gitlab.ProtectedTag{Name: payload.Name}, nil
}

// FetchPipelines returns per-project pipelines, falling back to the
// default set applied to every project.
func (client *DestinationClientStub) FetchPipelines(_ context.Context, projectIdentifier int64) ([]gitlab.Pipeline, error) {
	if pipelines, exists := client.Pipelines[projectIdentifier]; exists {
		return append([]gitlab.Pipeline{}, pipelines...), nil
	}
	return append([]gitlab.Pipeline{}, client.DefaultPipelines...), nil
}

// DeletePipeline records the deletion.
func (client *DestinationClientStub) DeletePipeline(_ context.Context, projectIdentifier int64, pipelineIdentifier int64) error {
	client.DeletedPipelines[projectIdentifier] = append(client.DeletedPipelines[projectIdentifier], pipelineIdentifier)
	client.OperationLog = append(client.OperationLog, fmt.Sprintf("delete_pipeline:%d", pipelineIdentifier))
	return nil
}

// Token returns the configured access token.
func (client *DestinationClientStub) Token() string {
	return client.AccessToken
}
