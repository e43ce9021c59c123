package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/gitlab"
)

const (
	protectedBranchesMigratedMessageConstant = "Migrated protected branches"
	protectedTagsMigratedMessageConstant     = "Migrated protected tags"
	pendingPipelinesRemovedMessageConstant   = "Removed pending pipelines"

	listProtectedBranchesErrorTemplateConstant  = "unable to list protected branches of %s: %w"
	probeBranchProtectionsErrorTemplateConstant = "unable to probe branch protections of %s: %w"
	createProtectedBranchErrorTemplateConstant  = "unable to protect branch %s: %w"
	listProtectedTagsErrorTemplateConstant      = "unable to list protected tags of %s: %w"
	probeTagProtectionsErrorTemplateConstant    = "unable to probe tag protections of %s: %w"
	createProtectedTagErrorTemplateConstant     = "unable to protect tag %s: %w"
	listPipelinesErrorTemplateConstant          = "unable to list pipelines of %s: %w"
	deletePipelineErrorTemplateConstant         = "unable to delete pipeline %d: %w"

	pipelineStatusSuccessConstant  = "success"
	pipelineStatusFailedConstant   = "failed"
	pipelineStatusCanceledConstant = "canceled"
	pipelineStatusSkippedConstant  = "skipped"
)

// terminalPipelineStatuses lists pipeline states that no longer consume
// runners. Everything else is pending work triggered by the migration
// pushes and gets deleted.
var terminalPipelineStatuses = map[string]struct{}{
	pipelineStatusSuccessConstant:  {},
	pipelineStatusFailedConstant:   {},
	pipelineStatusCanceledConstant: {},
	pipelineStatusSkippedConstant:  {},
}

func (service *Service) migrateProtectedRefs(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	if branchError := service.migrateProtectedBranches(executionContext, run, projectReference, destinationProject); branchError != nil {
		return branchError
	}
	return service.migrateProtectedTags(executionContext, run, projectReference, destinationProject)
}

// migrateProtectedBranches recreates branch protections, skipping any
// branch the destination already protects (the default branch usually
// arrives protected by instance policy).
func (service *Service) migrateProtectedBranches(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	sourceBranches, sourceError := service.sourceClient.FetchProtectedBranches(executionContext, projectReference.ID)
	if sourceError != nil {
		return fmt.Errorf(listProtectedBranchesErrorTemplateConstant, projectReference.PathWithNamespace, sourceError)
	}
	if len(sourceBranches) == 0 {
		return nil
	}

	destinationBranches, destinationError := run.destination.FetchProtectedBranches(executionContext, destinationProject.ID)
	if destinationError != nil {
		return fmt.Errorf(probeBranchProtectionsErrorTemplateConstant, projectReference.PathWithNamespace, destinationError)
	}
	alreadyProtected := map[string]struct{}{}
	for _, destinationBranch := range destinationBranches {
		alreadyProtected[destinationBranch.Name] = struct{}{}
	}

	migratedCount := 0
	for _, sourceBranch := range sourceBranches {
		if _, exists := alreadyProtected[sourceBranch.Name]; exists {
			continue
		}
		if _, createError := run.destination.CreateProtectedBranch(executionContext, destinationProject.ID, protectedBranchPayload(sourceBranch)); createError != nil {
			return fmt.Errorf(createProtectedBranchErrorTemplateConstant, sourceBranch.Name, createError)
		}
		run.result.EntityTotals.ProtectedBranches++
		migratedCount++
	}

	if migratedCount > 0 {
		service.logger.Info(protectedBranchesMigratedMessageConstant,
			zap.Int(countFieldNameConstant, migratedCount),
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		)
	}

	return nil
}

func (service *Service) migrateProtectedTags(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	sourceTags, sourceError := service.sourceClient.FetchProtectedTags(executionContext, projectReference.ID)
	if sourceError != nil {
		return fmt.Errorf(listProtectedTagsErrorTemplateConstant, projectReference.PathWithNamespace, sourceError)
	}
	if len(sourceTags) == 0 {
		return nil
	}

	destinationTags, destinationError := run.destination.FetchProtectedTags(executionContext, destinationProject.ID)
	if destinationError != nil {
		return fmt.Errorf(probeTagProtectionsErrorTemplateConstant, projectReference.PathWithNamespace, destinationError)
	}
	alreadyProtected := map[string]struct{}{}
	for _, destinationTag := range destinationTags {
		alreadyProtected[destinationTag.Name] = struct{}{}
	}

	migratedCount := 0
	for _, sourceTag := range sourceTags {
		if _, exists := alreadyProtected[sourceTag.Name]; exists {
			continue
		}
		if _, createError := run.destination.CreateProtectedTag(executionContext, destinationProject.ID, protectedTagPayload(sourceTag)); createError != nil {
			return fmt.Errorf(createProtectedTagErrorTemplateConstant, sourceTag.Name, createError)
		}
		run.result.EntityTotals.ProtectedTags++
		migratedCount++
	}

	if migratedCount > 0 {
		service.logger.Info(protectedTagsMigratedMessageConstant,
			zap.Int(countFieldNameConstant, migratedCount),
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		)
	}

	return nil
}

// haltPendingPipelines deletes pipelines the replication pushes kicked
// off on the destination, leaving finished ones in place.
func (service *Service) haltPendingPipelines(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	pipelines, listError := run.destination.FetchPipelines(executionContext, destinationProject.ID)
	if listError != nil {
		return fmt.Errorf(listPipelinesErrorTemplateConstant, projectReference.PathWithNamespace, listError)
	}

	removedCount := 0
	for _, pipeline := range pipelines {
		if _, terminal := terminalPipelineStatuses[pipeline.Status]; terminal {
			continue
		}
		if deleteError := run.destination.DeletePipeline(executionContext, destinationProject.ID, pipeline.ID); deleteError != nil {
			return fmt.Errorf(deletePipelineErrorTemplateConstant, pipeline.ID, deleteError)
		}
		run.result.EntityTotals.RemovedPipelines++
		removedCount++
	}

	if removedCount > 0 {
		service.logger.Info(pendingPipelinesRemovedMessageConstant,
			zap.Int(countFieldNameConstant, removedCount),
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		)
	}

	return nil
}

func protectedBranchPayload(sourceBranch gitlab.ProtectedBranch) gitlab.ProtectedBranchCreatePayload {
	return gitlab.ProtectedBranchCreatePayload{
		Name:                 sourceBranch.Name,
		PushAccessLevel:      firstAccessLevel(sourceBranch.PushAccessLevels),
		MergeAccessLevel:     firstAccessLevel(sourceBranch.MergeAccessLevels),
		UnprotectAccessLevel: firstAccessLevel(sourceBranch.UnprotectAccessLevels),
		AllowForcePush:       sourceBranch.AllowForcePush,
	}
}

func protectedTagPayload(sourceTag gitlab.ProtectedTag) gitlab.ProtectedTagCreatePayload {
	return gitlab.ProtectedTagCreatePayload{
		Name:              sourceTag.Name,
		CreateAccessLevel: firstAccessLevel(sourceTag.CreateAccessLevels),
	}
}

// firstAccessLevel flattens an access level list to the single level
// the create endpoints accept. Zero means no override.
func firstAccessLevel(accessLevels []gitlab.AccessLevel) int64 {
	if len(accessLevels) == 0 {
		return 0
	}
	return accessLevels[0].AccessLevel
}
