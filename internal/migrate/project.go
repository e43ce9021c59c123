package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/gitlab"
	"github.com/temirov/albatross/internal/migrate/state"
)

const (
	stepCreateProjectConstant = "create project"
	stepRepositoryConstant    = "repository"
	stepLabelsConstant        = "labels"
	stepIssuesConstant        = "issues"
	stepMergeRequestsConstant = "merge requests"
	stepVariablesConstant     = "variables"
	stepMilestonesConstant    = "milestones"
	stepWikiConstant          = "wiki"
	stepProtectedRefsConstant = "protected refs"
	stepPipelinesConstant     = "pipelines"

	migratingProjectMessageConstant       = "Migrating project"
	projectAlreadyMigratedMessageConstant = "Project already migrated"
	skippingEmptyProjectMessageConstant   = "Skipping empty project"
	resumingInterruptedMessageConstant    = "Re-migrating interrupted project"
	deletedPartialProjectMessageConstant  = "Deleted partially migrated destination project"
	projectMigrationFailedMessageConstant = "Project migration failed"

	sourceNamespaceFieldNameConstant      = "source_namespace"
	destinationNamespaceFieldNameConstant = "destination_namespace"

	stepErrorTemplateConstant                    = "project %s failed during %s: %v"
	untrackedCollisionTemplateConstant           = "destination project %s already exists with id %d and no migration record"
	probeDestinationProjectErrorTemplateConstant = "unable to probe destination project %s: %w"
	deletePartialProjectErrorTemplateConstant    = "unable to delete partially migrated project %s: %w"
)

// StepError attributes a project migration failure to the step that
// raised it.
type StepError struct {
	ProjectPath string
	StepName    string
	Cause       error
}

// Error describes the failed step.
func (stepError StepError) Error() string {
	return fmt.Sprintf(stepErrorTemplateConstant, stepError.ProjectPath, stepError.StepName, stepError.Cause)
}

// Unwrap exposes the underlying cause.
func (stepError StepError) Unwrap() error {
	return stepError.Cause
}

// journalWriteError marks state journal failures, which abort the run
// because progress can no longer be recorded durably.
type journalWriteError struct {
	cause error
}

func (writeError journalWriteError) Error() string {
	return writeError.cause.Error()
}

func (writeError journalWriteError) Unwrap() error {
	return writeError.cause
}

// migrateProject moves one project and all its resources. The journal
// turns in_progress before the first destination mutation and complete
// only after every step finished; a crash in between leaves the record
// at in_progress, which the next run resolves by deleting the partial
// destination project and starting over.
func (service *Service) migrateProject(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationParent destinationNamespace) error {
	if projectReference.Empty {
		return service.skipEmptyProject(run, projectReference)
	}

	recordedStatus, recorded := run.store.Lookup(state.KindProject, projectReference.ID)
	if recorded && recordedStatus == state.StatusComplete {
		run.result.ProjectsSkipped++
		service.logger.Info(projectAlreadyMigratedMessageConstant, zap.String(projectFieldNameConstant, projectReference.PathWithNamespace))
		return nil
	}

	service.logger.Info(migratingProjectMessageConstant,
		zap.String(projectFieldNameConstant, projectReference.Name),
		zap.String(sourceNamespaceFieldNameConstant, projectReference.Namespace),
		zap.String(destinationNamespaceFieldNameConstant, destinationParent.FullPath),
	)

	destinationProjectPath := joinNamespacePath(destinationParent.FullPath, projectReference.Path)
	if recorded && recordedStatus == state.StatusInProgress {
		if recoveryError := service.removeInterruptedProject(executionContext, run, projectReference, destinationProjectPath); recoveryError != nil {
			return recoveryError
		}
	} else {
		if collisionError := service.ensureDestinationPathFree(executionContext, run, destinationProjectPath); collisionError != nil {
			return collisionError
		}
	}

	if recordError := run.store.Record(state.KindProject, projectReference.ID, projectReference.PathWithNamespace, state.StatusInProgress); recordError != nil {
		return journalWriteError{cause: recordError}
	}

	destinationProject, shellError := service.createProjectShell(executionContext, run, projectReference, destinationParent)
	if shellError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepCreateProjectConstant, Cause: shellError}
	}

	service.migrateAvatar(executionContext, run, projectReference, destinationProject)

	if repositoryError := service.migrateRepository(executionContext, run, projectReference, destinationProject); repositoryError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepRepositoryConstant, Cause: repositoryError}
	}
	if labelsError := service.migrateLabels(executionContext, run, projectReference, destinationProject); labelsError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepLabelsConstant, Cause: labelsError}
	}
	if issuesError := service.migrateIssues(executionContext, run, projectReference, destinationProject); issuesError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepIssuesConstant, Cause: issuesError}
	}
	if mergeRequestsError := service.migrateMergeRequests(executionContext, run, projectReference, destinationProject); mergeRequestsError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepMergeRequestsConstant, Cause: mergeRequestsError}
	}
	if variablesError := service.migrateVariables(executionContext, run, projectReference, destinationProject); variablesError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepVariablesConstant, Cause: variablesError}
	}
	if milestonesError := service.migrateMilestones(executionContext, run, projectReference, destinationProject); milestonesError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepMilestonesConstant, Cause: milestonesError}
	}
	if wikiError := service.migrateWiki(executionContext, run, projectReference, destinationProject); wikiError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepWikiConstant, Cause: wikiError}
	}
	if protectionError := service.migrateProtectedRefs(executionContext, run, projectReference, destinationProject); protectionError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepProtectedRefsConstant, Cause: protectionError}
	}
	if pipelinesError := service.haltPendingPipelines(executionContext, run, projectReference, destinationProject); pipelinesError != nil {
		return StepError{ProjectPath: projectReference.PathWithNamespace, StepName: stepPipelinesConstant, Cause: pipelinesError}
	}

	if recordError := run.store.Record(state.KindProject, projectReference.ID, projectReference.PathWithNamespace, state.StatusComplete); recordError != nil {
		return journalWriteError{cause: recordError}
	}
	run.result.ProjectsMigrated++

	return nil
}

// skipEmptyProject records branch-less projects as skipped without
// touching the destination.
func (service *Service) skipEmptyProject(run *migrationRun, projectReference ProjectRef) error {
	run.result.ProjectsSkipped++
	service.logger.Info(skippingEmptyProjectMessageConstant, zap.String(projectFieldNameConstant, projectReference.PathWithNamespace))

	if recordedStatus, recorded := run.store.Lookup(state.KindProject, projectReference.ID); recorded && recordedStatus == state.StatusSkipped {
		return nil
	}
	if recordError := run.store.Record(state.KindProject, projectReference.ID, projectReference.PathWithNamespace, state.StatusSkipped); recordError != nil {
		return journalWriteError{cause: recordError}
	}

	return nil
}

// removeInterruptedProject clears the destination remains of a project
// whose previous attempt died mid-flight, then pauses so the deletion
// settles before the fresh attempt.
func (service *Service) removeInterruptedProject(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProjectPath string) error {
	service.logger.Warn(resumingInterruptedMessageConstant, zap.String(projectFieldNameConstant, projectReference.PathWithNamespace))

	existingProject, probeError := run.destination.FetchProjectByPath(executionContext, destinationProjectPath)
	if probeError != nil {
		if gitlab.IsNotFound(probeError) {
			return nil
		}
		return fmt.Errorf(probeDestinationProjectErrorTemplateConstant, destinationProjectPath, probeError)
	}

	if deleteError := run.destination.DeleteProject(executionContext, existingProject.ID); deleteError != nil {
		return fmt.Errorf(deletePartialProjectErrorTemplateConstant, destinationProjectPath, deleteError)
	}
	service.logger.Info(deletedPartialProjectMessageConstant, zap.String(projectFieldNameConstant, destinationProjectPath))

	return service.pause(executionContext, run)
}

// ensureDestinationPathFree refuses to overwrite a destination project
// the journal knows nothing about.
func (service *Service) ensureDestinationPathFree(executionContext context.Context, run *migrationRun, destinationProjectPath string) error {
	existingProject, probeError := run.destination.FetchProjectByPath(executionContext, destinationProjectPath)
	if probeError == nil {
		return fmt.Errorf(untrackedCollisionTemplateConstant, destinationProjectPath, existingProject.ID)
	}
	if !gitlab.IsNotFound(probeError) {
		return fmt.Errorf(probeDestinationProjectErrorTemplateConstant, destinationProjectPath, probeError)
	}

	return nil
}

func (service *Service) createProjectShell(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationParent destinationNamespace) (gitlab.Project, error) {
	createdProject, createError := run.destination.CreateProject(executionContext, gitlab.ProjectCreatePayload{
		Name:        projectReference.Name,
		Path:        projectReference.Path,
		NamespaceID: destinationParent.ID,
	})
	if createError != nil {
		return gitlab.Project{}, createError
	}

	if _, updateError := run.destination.UpdateProject(executionContext, createdProject.ID, gitlab.ProjectUpdatePayload{Description: projectReference.Description}); updateError != nil {
		return gitlab.Project{}, updateError
	}

	return createdProject, nil
}
