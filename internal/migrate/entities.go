package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/gitlab"
)

const (
	labelsMigratedMessageConstant           = "Migrated labels"
	issuesMigratedMessageConstant           = "Migrated issues"
	mergeRequestsMigratedMessageConstant    = "Migrated open merge requests"
	variablesMigratedMessageConstant        = "Migrated variables"
	milestonesMigratedMessageConstant       = "Migrated milestones"
	archivedVariablesSkippedMessageConstant = "Skipping CI variables of archived project"

	countFieldNameConstant = "count"
	notesFieldNameConstant = "notes"

	attributionTemplateConstant = "By %s: %s"
	systemNotePrefixConstant    = "[SYSTEM NOTE] "
	closedIssueStateConstant    = "closed"

	listLabelsErrorTemplateConstant             = "unable to list labels of %s: %w"
	createLabelErrorTemplateConstant            = "unable to create label %s: %w"
	listIssuesErrorTemplateConstant             = "unable to list issues of %s: %w"
	createIssueErrorTemplateConstant            = "unable to create issue %d: %w"
	listIssueNotesErrorTemplateConstant         = "unable to list notes of issue %d: %w"
	createIssueNoteErrorTemplateConstant        = "unable to create note on issue %d: %w"
	closeIssueErrorTemplateConstant             = "unable to close issue %d: %w"
	listMergeRequestsErrorTemplateConstant      = "unable to list merge requests of %s: %w"
	createMergeRequestErrorTemplateConstant     = "unable to create merge request %s: %w"
	listMergeRequestNotesErrorTemplateConstant  = "unable to list notes of merge request %d: %w"
	createMergeRequestNoteErrorTemplateConstant = "unable to create note on merge request %d: %w"
	listVariablesErrorTemplateConstant          = "unable to list variables of %s: %w"
	createVariableErrorTemplateConstant         = "unable to create variable %s: %w"
	listMilestonesErrorTemplateConstant         = "unable to list milestones of %s: %w"
	createMilestoneErrorTemplateConstant        = "unable to create milestone %s: %w"
)

func (service *Service) migrateLabels(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	labels, listError := service.sourceClient.FetchLabels(executionContext, projectReference.ID)
	if listError != nil {
		return fmt.Errorf(listLabelsErrorTemplateConstant, projectReference.PathWithNamespace, listError)
	}

	for _, label := range labels {
		if _, createError := run.destination.CreateLabel(executionContext, destinationProject.ID, labelPayload(label)); createError != nil {
			return fmt.Errorf(createLabelErrorTemplateConstant, label.Name, createError)
		}
		run.result.EntityTotals.Labels++
	}

	if len(labels) > 0 {
		service.logger.Info(labelsMigratedMessageConstant,
			zap.Int(countFieldNameConstant, len(labels)),
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		)
	}

	return nil
}

// migrateIssues recreates every source issue in order, replays its
// discussion, and closes the copy when the source issue is closed so
// the destination records a matching state event.
func (service *Service) migrateIssues(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	issues, listError := service.sourceClient.FetchIssues(executionContext, projectReference.ID)
	if listError != nil {
		return fmt.Errorf(listIssuesErrorTemplateConstant, projectReference.PathWithNamespace, listError)
	}

	migratedNotes := 0
	for _, issue := range issues {
		createdIssue, createError := run.destination.CreateIssue(executionContext, destinationProject.ID, issuePayload(issue))
		if createError != nil {
			return fmt.Errorf(createIssueErrorTemplateConstant, issue.IID, createError)
		}
		run.result.EntityTotals.Issues++

		noteCount, notesError := service.migrateIssueNotes(executionContext, run, projectReference, destinationProject, issue, createdIssue)
		if notesError != nil {
			return notesError
		}
		migratedNotes += noteCount

		if issue.State == closedIssueStateConstant {
			if _, closeError := run.destination.CloseIssue(executionContext, destinationProject.ID, createdIssue.IID); closeError != nil {
				return fmt.Errorf(closeIssueErrorTemplateConstant, issue.IID, closeError)
			}
		}
	}

	if len(issues) > 0 {
		service.logger.Info(issuesMigratedMessageConstant,
			zap.Int(countFieldNameConstant, len(issues)),
			zap.Int(notesFieldNameConstant, migratedNotes),
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		)
	}

	return nil
}

func (service *Service) migrateIssueNotes(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project, sourceIssue gitlab.Issue, createdIssue gitlab.Issue) (int, error) {
	notes, listError := service.sourceClient.FetchIssueNotes(executionContext, projectReference.ID, sourceIssue.IID)
	if listError != nil {
		return 0, fmt.Errorf(listIssueNotesErrorTemplateConstant, sourceIssue.IID, listError)
	}

	for _, note := range notes {
		if _, createError := run.destination.CreateIssueNote(executionContext, destinationProject.ID, createdIssue.IID, notePayload(note)); createError != nil {
			return 0, fmt.Errorf(createIssueNoteErrorTemplateConstant, sourceIssue.IID, createError)
		}
		run.result.EntityTotals.IssueNotes++
	}

	return len(notes), nil
}

// migrateMergeRequests recreates open merge requests with their
// discussions. Merged and closed merge requests stay behind; their
// branches no longer exist on the destination.
func (service *Service) migrateMergeRequests(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	mergeRequests, listError := service.sourceClient.FetchOpenMergeRequests(executionContext, projectReference.ID)
	if listError != nil {
		return fmt.Errorf(listMergeRequestsErrorTemplateConstant, projectReference.PathWithNamespace, listError)
	}

	migratedNotes := 0
	for _, mergeRequest := range mergeRequests {
		createdMergeRequest, createError := run.destination.CreateMergeRequest(executionContext, destinationProject.ID, mergeRequestPayload(mergeRequest))
		if createError != nil {
			return fmt.Errorf(createMergeRequestErrorTemplateConstant, mergeRequest.SourceBranch, createError)
		}
		run.result.EntityTotals.MergeRequests++

		notes, notesError := service.sourceClient.FetchMergeRequestNotes(executionContext, projectReference.ID, mergeRequest.IID)
		if notesError != nil {
			return fmt.Errorf(listMergeRequestNotesErrorTemplateConstant, mergeRequest.IID, notesError)
		}
		for _, note := range notes {
			if _, noteError := run.destination.CreateMergeRequestNote(executionContext, destinationProject.ID, createdMergeRequest.IID, notePayload(note)); noteError != nil {
				return fmt.Errorf(createMergeRequestNoteErrorTemplateConstant, mergeRequest.IID, noteError)
			}
			run.result.EntityTotals.MergeRequestNotes++
			migratedNotes++
		}
	}

	if len(mergeRequests) > 0 {
		service.logger.Info(mergeRequestsMigratedMessageConstant,
			zap.Int(countFieldNameConstant, len(mergeRequests)),
			zap.Int(notesFieldNameConstant, migratedNotes),
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		)
	}

	return nil
}

// migrateVariables copies CI/CD variables. Archived projects reject
// CI settings lookups, so their variables are skipped outright.
func (service *Service) migrateVariables(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	if projectReference.Archived {
		service.logger.Debug(archivedVariablesSkippedMessageConstant, zap.String(projectFieldNameConstant, projectReference.PathWithNamespace))
		return nil
	}

	variables, listError := service.sourceClient.FetchVariables(executionContext, projectReference.ID)
	if listError != nil {
		return fmt.Errorf(listVariablesErrorTemplateConstant, projectReference.PathWithNamespace, listError)
	}

	for _, variable := range variables {
		if _, createError := run.destination.CreateVariable(executionContext, destinationProject.ID, variablePayload(variable)); createError != nil {
			return fmt.Errorf(createVariableErrorTemplateConstant, variable.Key, createError)
		}
		run.result.EntityTotals.Variables++
	}

	if len(variables) > 0 {
		service.logger.Info(variablesMigratedMessageConstant,
			zap.Int(countFieldNameConstant, len(variables)),
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		)
	}

	return nil
}

func (service *Service) migrateMilestones(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	milestones, listError := service.sourceClient.FetchMilestones(executionContext, projectReference.ID)
	if listError != nil {
		return fmt.Errorf(listMilestonesErrorTemplateConstant, projectReference.PathWithNamespace, listError)
	}

	for _, milestone := range milestones {
		if _, createError := run.destination.CreateMilestone(executionContext, destinationProject.ID, milestonePayload(milestone)); createError != nil {
			return fmt.Errorf(createMilestoneErrorTemplateConstant, milestone.Title, createError)
		}
		run.result.EntityTotals.Milestones++
	}

	if len(milestones) > 0 {
		service.logger.Info(milestonesMigratedMessageConstant,
			zap.Int(countFieldNameConstant, len(milestones)),
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		)
	}

	return nil
}

func labelPayload(label gitlab.Label) gitlab.LabelCreatePayload {
	return gitlab.LabelCreatePayload{
		Name:        label.Name,
		Color:       label.Color,
		Description: label.Description,
		Priority:    label.Priority,
	}
}

func issuePayload(issue gitlab.Issue) gitlab.IssueCreatePayload {
	return gitlab.IssueCreatePayload{
		Title:        issue.Title,
		IID:          issue.IID,
		Description:  attributed(issue.Author, issue.Description),
		IssueType:    issue.IssueType,
		Confidential: issue.Confidential,
		CreatedAt:    issue.CreatedAt,
		DueDate:      issue.DueDate,
		Labels:       issue.Labels,
	}
}

func notePayload(note gitlab.Note) gitlab.NoteCreatePayload {
	noteBody := attributed(note.Author, note.Body)
	if note.System {
		noteBody = systemNotePrefixConstant + noteBody
	}
	return gitlab.NoteCreatePayload{
		Body:         noteBody,
		Confidential: note.Confidential,
		CreatedAt:    note.CreatedAt,
	}
}

func mergeRequestPayload(mergeRequest gitlab.MergeRequest) gitlab.MergeRequestCreatePayload {
	return gitlab.MergeRequestCreatePayload{
		SourceBranch: mergeRequest.SourceBranch,
		TargetBranch: mergeRequest.TargetBranch,
		Title:        mergeRequest.Title,
		Description:  attributed(mergeRequest.Author, mergeRequest.Description),
		Labels:       mergeRequest.Labels,
	}
}

func variablePayload(variable gitlab.Variable) gitlab.VariableCreatePayload {
	return gitlab.VariableCreatePayload{
		Key:              variable.Key,
		Value:            variable.Value,
		VariableType:     variable.VariableType,
		EnvironmentScope: variable.EnvironmentScope,
		Masked:           variable.Masked,
		Protected:        variable.Protected,
	}
}

func milestonePayload(milestone gitlab.Milestone) gitlab.MilestoneCreatePayload {
	return gitlab.MilestoneCreatePayload{
		Title:       milestone.Title,
		Description: milestone.Description,
		DueDate:     milestone.DueDate,
		StartDate:   milestone.StartDate,
	}
}

// attributed prefixes text with the original author so authorship
// survives the move to an instance where that user does not exist.
func attributed(author *gitlab.User, text string) string {
	if author == nil {
		return text
	}
	return fmt.Sprintf(attributionTemplateConstant, author.Name, text)
}
