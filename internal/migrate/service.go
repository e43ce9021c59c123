package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/gitlab"
	"github.com/temirov/albatross/internal/migrate/state"
)

const (
	sourceClientMissingMessageConstant      = "source client not configured"
	destinationClientMissingMessageConstant = "destination client not configured"
	replicatorMissingMessageConstant        = "repository replicator not configured"
	stateStoreMissingMessageConstant        = "state store not configured"
	stagingManagerMissingMessageConstant    = "staging manager not configured"

	sourceGroupFieldNameConstant            = "source_group"
	destinationGroupFieldNameConstant       = "destination_group"
	destinationOrphanGroupFieldNameConstant = "destination_orphan_group"
	sleepDurationFieldNameConstant          = "sleep_duration"
	sourceUserFieldNameConstant             = "source_user"
	destinationUserFieldNameConstant        = "destination_user"
	groupFieldNameConstant                  = "group"
	projectFieldNameConstant                = "project"
	orphanCountFieldNameConstant            = "orphans"

	positiveGroupIdentifierMessageConstant     = "must be a positive group id"
	instanceRootGroupIdentifierMessageConstant = "must be zero for the instance root or a positive group id"
	orphanGroupRequiredMessageConstant         = "must reference an existing destination group"
	nonNegativeDurationMessageConstant         = "must not be negative"

	invalidInputTemplateConstant                   = "%s: %s"
	sourceAuthenticationErrorTemplateConstant      = "unable to authenticate against the source instance: %w"
	destinationAuthenticationErrorTemplateConstant = "unable to authenticate against the destination instance: %w"
	resolveOrphanGroupErrorTemplateConstant        = "unable to resolve destination orphan group %d: %w"
	resolveDestinationGroupErrorTemplateConstant   = "unable to resolve destination group %d: %w"
	probeDestinationGroupErrorTemplateConstant     = "unable to probe destination group %s: %w"
	createDestinationGroupErrorTemplateConstant    = "unable to create destination group %s: %w"

	connectedMessageConstant            = "Connected to both instances"
	noOrphansMessageConstant            = "No orphans to migrate"
	migratingOrphansMessageConstant     = "Migrating orphans"
	doneOrphansMessageConstant          = "Done migrating orphans"
	migratingSubgroupsMessageConstant   = "Migrating projects in subgroups"
	doneSubgroupsMessageConstant        = "Done migrating subgroup projects"
	skippingEmptyGroupMessageConstant   = "Skipping empty group"
	groupAlreadyMigratedMessageConstant = "Group already migrated"
	createdGroupMessageConstant         = "Created destination group"
	reusingGroupMessageConstant         = "Reusing destination group"
	groupMigrationFailedMessageConstant = "Group migration failed"
	pausingMessageConstant              = "Letting the destination breathe"

	namespacePathSeparatorConstant = "/"
)

// InvalidInputError describes migration option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// ServiceDependencies describes required collaborators for a migration run.
type ServiceDependencies struct {
	Logger            *zap.Logger
	SourceClient      SourceClient
	DestinationClient DestinationClient
	Replicator        RepositoryReplicator
	StateStore        RecordStore
	StagingManager    StagingManager
	Sleeper           Sleeper
}

// MigrationOptions configures one migration run. A zero
// DestinationGroupIdentifier places migrated subgroups at the
// destination instance root; the orphan group must always exist.
type MigrationOptions struct {
	SourceGroupIdentifier            int64
	DestinationGroupIdentifier       int64
	DestinationOrphanGroupIdentifier int64
	SleepDuration                    time.Duration
	DryRun                           bool
}

// EntityTotals counts the sub-resources copied across all projects.
type EntityTotals struct {
	Labels            int
	Issues            int
	IssueNotes        int
	MergeRequests     int
	MergeRequestNotes int
	Variables         int
	Milestones        int
	ProtectedBranches int
	ProtectedTags     int
	RemovedPipelines  int
}

// MigrationResult captures the observable outcomes of a run.
type MigrationResult struct {
	GroupsMigrated   int
	GroupsSkipped    int
	GroupsFailed     int
	ProjectsMigrated int
	ProjectsSkipped  int
	ProjectsFailed   int
	EntityTotals     EntityTotals
}

// Service orchestrates the group migration workflow.
type Service struct {
	logger            *zap.Logger
	sourceClient      SourceClient
	destinationClient DestinationClient
	replicator        RepositoryReplicator
	stateStore        RecordStore
	stagingManager    StagingManager
	sleeper           Sleeper
	planner           *Planner
}

var (
	errSourceClientMissing      = errors.New(sourceClientMissingMessageConstant)
	errDestinationClientMissing = errors.New(destinationClientMissingMessageConstant)
	errReplicatorMissing        = errors.New(replicatorMissingMessageConstant)
	errStateStoreMissing        = errors.New(stateStoreMissingMessageConstant)
	errStagingManagerMissing    = errors.New(stagingManagerMissingMessageConstant)
)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.SourceClient == nil {
		return nil, errSourceClientMissing
	}
	if dependencies.DestinationClient == nil {
		return nil, errDestinationClientMissing
	}
	if dependencies.Replicator == nil {
		return nil, errReplicatorMissing
	}
	if dependencies.StateStore == nil {
		return nil, errStateStoreMissing
	}
	if dependencies.StagingManager == nil {
		return nil, errStagingManagerMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sleeper := dependencies.Sleeper
	if sleeper == nil {
		sleeper = NewContextSleeper()
	}

	service := &Service{
		logger:            logger,
		sourceClient:      dependencies.SourceClient,
		destinationClient: dependencies.DestinationClient,
		replicator:        dependencies.Replicator,
		stateStore:        dependencies.StateStore,
		stagingManager:    dependencies.StagingManager,
		sleeper:           sleeper,
		planner:           NewPlanner(dependencies.SourceClient),
	}

	return service, nil
}

// destinationNamespace locates a destination group by id and full path.
// The zero value addresses the instance root.
type destinationNamespace struct {
	ID       int64
	FullPath string
}

// migrationRun carries the per-run view of the destination and the
// journal, which dry-run swaps for simulating decorators.
type migrationRun struct {
	destination         DestinationClient
	store               RecordStore
	options             MigrationOptions
	sourceUsername      string
	destinationUsername string
	result              MigrationResult
	failures            []error
}

// Execute performs the migration workflow. Orphan projects move first,
// then subgroups depth-first in source listing order. Sibling failures
// accumulate; only cancellation and journal write failures abort the
// walk.
func (service *Service) Execute(executionContext context.Context, options MigrationOptions) (MigrationResult, error) {
	if validationError := service.validateOptions(options); validationError != nil {
		return MigrationResult{}, validationError
	}

	sourceUser, sourceAuthenticationError := service.sourceClient.CurrentUser(executionContext)
	if sourceAuthenticationError != nil {
		return MigrationResult{}, fmt.Errorf(sourceAuthenticationErrorTemplateConstant, sourceAuthenticationError)
	}
	destinationUser, destinationAuthenticationError := service.destinationClient.CurrentUser(executionContext)
	if destinationAuthenticationError != nil {
		return MigrationResult{}, fmt.Errorf(destinationAuthenticationErrorTemplateConstant, destinationAuthenticationError)
	}
	service.logger.Info(connectedMessageConstant,
		zap.String(sourceUserFieldNameConstant, sourceUser.Username),
		zap.String(destinationUserFieldNameConstant, destinationUser.Username),
	)

	orphanGroup, orphanGroupError := service.destinationClient.FetchGroup(executionContext, options.DestinationOrphanGroupIdentifier)
	if orphanGroupError != nil {
		return MigrationResult{}, fmt.Errorf(resolveOrphanGroupErrorTemplateConstant, options.DestinationOrphanGroupIdentifier, orphanGroupError)
	}

	subgroupRootNamespace := destinationNamespace{}
	if options.DestinationGroupIdentifier != 0 {
		destinationRootGroup, destinationRootError := service.destinationClient.FetchGroup(executionContext, options.DestinationGroupIdentifier)
		if destinationRootError != nil {
			return MigrationResult{}, fmt.Errorf(resolveDestinationGroupErrorTemplateConstant, options.DestinationGroupIdentifier, destinationRootError)
		}
		subgroupRootNamespace = destinationNamespace{ID: destinationRootGroup.ID, FullPath: destinationRootGroup.FullPath}
	}

	plan, planError := service.planner.Plan(executionContext, options.SourceGroupIdentifier)
	if planError != nil {
		return MigrationResult{}, planError
	}

	run := &migrationRun{
		destination:         service.destinationClient,
		store:               service.stateStore,
		options:             options,
		sourceUsername:      sourceUser.Username,
		destinationUsername: destinationUser.Username,
	}
	if options.DryRun {
		run.destination = newDryRunDestination(service.logger, service.destinationClient)
		run.store = state.NewOverlay(service.stateStore)
	}

	orphanNamespace := destinationNamespace{ID: orphanGroup.ID, FullPath: orphanGroup.FullPath}
	if orphanError := service.migrateOrphans(executionContext, run, plan, orphanNamespace); orphanError != nil {
		return run.result, orphanError
	}

	if walkError := service.migrateSubgroups(executionContext, run, plan, subgroupRootNamespace); walkError != nil {
		return run.result, walkError
	}

	if len(run.failures) > 0 {
		return run.result, errors.Join(run.failures...)
	}

	return run.result, nil
}

func (service *Service) validateOptions(options MigrationOptions) error {
	if options.SourceGroupIdentifier <= 0 {
		return InvalidInputError{FieldName: sourceGroupFieldNameConstant, Message: positiveGroupIdentifierMessageConstant}
	}
	if options.DestinationGroupIdentifier < 0 {
		return InvalidInputError{FieldName: destinationGroupFieldNameConstant, Message: instanceRootGroupIdentifierMessageConstant}
	}
	if options.DestinationOrphanGroupIdentifier <= 0 {
		return InvalidInputError{FieldName: destinationOrphanGroupFieldNameConstant, Message: orphanGroupRequiredMessageConstant}
	}
	if options.SleepDuration < 0 {
		return InvalidInputError{FieldName: sleepDurationFieldNameConstant, Message: nonNegativeDurationMessageConstant}
	}
	return nil
}

func (service *Service) migrateOrphans(executionContext context.Context, run *migrationRun, plan *GroupNode, orphanNamespace destinationNamespace) error {
	if len(plan.Projects) == 0 {
		service.logger.Info(noOrphansMessageConstant)
		return nil
	}

	service.logger.Info(migratingOrphansMessageConstant, zap.Int(orphanCountFieldNameConstant, len(plan.Projects)))
	for _, projectReference := range plan.Projects {
		if projectError := service.runProjectMigration(executionContext, run, projectReference, orphanNamespace); projectError != nil {
			return projectError
		}
	}
	service.logger.Info(doneOrphansMessageConstant)

	return nil
}

// groupWalkFrame is one entry of the explicit traversal stack. A frame
// returns to the top a second time once its subtree has been walked.
type groupWalkFrame struct {
	node              *GroupNode
	destinationParent destinationNamespace
	childrenScheduled bool
}

func (service *Service) migrateSubgroups(executionContext context.Context, run *migrationRun, plan *GroupNode, subgroupRootNamespace destinationNamespace) error {
	if len(plan.Subgroups) == 0 {
		return nil
	}

	service.logger.Info(migratingSubgroupsMessageConstant)

	frames := make([]groupWalkFrame, 0, len(plan.Subgroups))
	for subgroupIndex := len(plan.Subgroups) - 1; subgroupIndex >= 0; subgroupIndex-- {
		frames = append(frames, groupWalkFrame{node: plan.Subgroups[subgroupIndex], destinationParent: subgroupRootNamespace})
	}

	for len(frames) > 0 {
		frameIndex := len(frames) - 1
		currentFrame := frames[frameIndex]
		currentNode := currentFrame.node

		if currentFrame.childrenScheduled {
			frames = frames[:frameIndex]
			if settleError := service.settleGroup(run, currentNode); settleError != nil {
				return journalWriteError{cause: settleError}
			}
			continue
		}

		if currentNode.Empty {
			frames = frames[:frameIndex]
			if skipError := service.skipEmptyGroup(run, currentNode); skipError != nil {
				return skipError
			}
			continue
		}

		if recordedStatus, recorded := run.store.Lookup(state.KindGroup, currentNode.ID); recorded && recordedStatus == state.StatusComplete {
			frames = frames[:frameIndex]
			run.result.GroupsSkipped++
			service.logger.Info(groupAlreadyMigratedMessageConstant, zap.String(groupFieldNameConstant, currentNode.FullPath))
			continue
		}

		groupNamespace, groupError := service.ensureDestinationGroup(executionContext, run, currentNode, currentFrame.destinationParent)
		if groupError != nil {
			frames = frames[:frameIndex]
			if errors.Is(groupError, context.Canceled) || errors.Is(groupError, context.DeadlineExceeded) {
				return groupError
			}
			run.result.GroupsFailed++
			run.failures = append(run.failures, groupError)
			service.logger.Warn(groupMigrationFailedMessageConstant,
				zap.String(groupFieldNameConstant, currentNode.FullPath),
				zap.Error(groupError),
			)
			continue
		}
		run.result.GroupsMigrated++

		for _, projectReference := range currentNode.Projects {
			if projectError := service.runProjectMigration(executionContext, run, projectReference, groupNamespace); projectError != nil {
				return projectError
			}
		}

		frames[frameIndex].childrenScheduled = true
		for subgroupIndex := len(currentNode.Subgroups) - 1; subgroupIndex >= 0; subgroupIndex-- {
			frames = append(frames, groupWalkFrame{node: currentNode.Subgroups[subgroupIndex], destinationParent: groupNamespace})
		}
	}

	service.logger.Info(doneSubgroupsMessageConstant)

	return nil
}

func (service *Service) skipEmptyGroup(run *migrationRun, node *GroupNode) error {
	run.result.GroupsSkipped++
	service.logger.Info(skippingEmptyGroupMessageConstant, zap.String(groupFieldNameConstant, node.FullPath))

	if recordedStatus, recorded := run.store.Lookup(state.KindGroup, node.ID); recorded && recordedStatus == state.StatusSkipped {
		return nil
	}
	if recordError := run.store.Record(state.KindGroup, node.ID, node.FullPath, state.StatusSkipped); recordError != nil {
		return journalWriteError{cause: recordError}
	}

	return nil
}

// settleGroup records group completion once every direct project and
// subgroup reached a terminal status.
func (service *Service) settleGroup(run *migrationRun, node *GroupNode) error {
	if _, recorded := run.store.Lookup(state.KindGroup, node.ID); recorded {
		return nil
	}

	for _, projectReference := range node.Projects {
		projectStatus, projectRecorded := run.store.Lookup(state.KindProject, projectReference.ID)
		if !projectRecorded || projectStatus == state.StatusInProgress {
			return nil
		}
	}
	for _, subgroup := range node.Subgroups {
		if _, subgroupRecorded := run.store.Lookup(state.KindGroup, subgroup.ID); !subgroupRecorded {
			return nil
		}
	}

	return run.store.Record(state.KindGroup, node.ID, node.FullPath, state.StatusComplete)
}

// ensureDestinationGroup reuses a destination group when the path is
// already taken and creates it otherwise. The returned namespace keeps
// the path computed locally so the walk stays identical under dry-run.
func (service *Service) ensureDestinationGroup(executionContext context.Context, run *migrationRun, node *GroupNode, parent destinationNamespace) (destinationNamespace, error) {
	groupPath := joinNamespacePath(parent.FullPath, node.Path)

	existingGroup, probeError := run.destination.FetchGroupByPath(executionContext, groupPath)
	if probeError == nil {
		service.logger.Debug(reusingGroupMessageConstant, zap.String(groupFieldNameConstant, groupPath))
		return destinationNamespace{ID: existingGroup.ID, FullPath: groupPath}, nil
	}
	if !gitlab.IsNotFound(probeError) {
		return destinationNamespace{}, fmt.Errorf(probeDestinationGroupErrorTemplateConstant, groupPath, probeError)
	}

	createdGroup, createError := run.destination.CreateGroup(executionContext, gitlab.GroupCreatePayload{
		Name:        node.Name,
		Path:        node.Path,
		ParentID:    parent.ID,
		Description: node.Description,
	})
	if createError != nil {
		return destinationNamespace{}, fmt.Errorf(createDestinationGroupErrorTemplateConstant, groupPath, createError)
	}
	service.logger.Info(createdGroupMessageConstant, zap.String(groupFieldNameConstant, groupPath))

	return destinationNamespace{ID: createdGroup.ID, FullPath: groupPath}, nil
}

func (service *Service) runProjectMigration(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationParent destinationNamespace) error {
	projectError := service.migrateProject(executionContext, run, projectReference, destinationParent)
	if projectError == nil {
		return nil
	}
	if errors.Is(projectError, context.Canceled) || errors.Is(projectError, context.DeadlineExceeded) {
		return projectError
	}
	var journalFailure journalWriteError
	if errors.As(projectError, &journalFailure) {
		return projectError
	}

	run.result.ProjectsFailed++
	run.failures = append(run.failures, projectError)
	service.logger.Warn(projectMigrationFailedMessageConstant,
		zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		zap.Error(projectError),
	)

	return nil
}

// pause lets the destination settle after heavyweight mutations.
// Dry-run never mutates, so it never pauses.
func (service *Service) pause(executionContext context.Context, run *migrationRun) error {
	if run.options.DryRun || run.options.SleepDuration <= 0 {
		return nil
	}

	service.logger.Debug(pausingMessageConstant, zap.Duration(sleepDurationFieldNameConstant, run.options.SleepDuration))

	return service.sleeper.Sleep(executionContext, run.options.SleepDuration)
}

func joinNamespacePath(parentFullPath string, entryPath string) string {
	if len(parentFullPath) == 0 {
		return entryPath
	}
	return parentFullPath + namespacePathSeparatorConstant + entryPath
}
