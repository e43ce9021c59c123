package testsupport

import (
	"context"
	"fmt"
	"time"

	"github.com/temirov/albatross/internal/execshell"
	migrate "github.com/temirov/albatross/internal/migrate"
	"github.com/temirov/albatross/internal/migrate/state"
	"github.com/temirov/albatross/internal/transfer"
)

// ReplicatorStub records replication requests instead of running git.
type ReplicatorStub struct {
	ReplicatedOptions []transfer.ReplicationOptions
	ReplicationErrors map[string]error
	Result            transfer.ReplicationResult
}

// Replicate records the options and returns the configured outcome for
// the source repository URL.
func (replicator *ReplicatorStub) Replicate(_ context.Context, options transfer.ReplicationOptions) (transfer.ReplicationResult, error) {
	replicator.ReplicatedOptions = append(replicator.ReplicatedOptions, options)
	if replicator.ReplicationErrors != nil {
		if replicationError, exists := replicator.ReplicationErrors[options.Source.RepositoryURL]; exists {
			return transfer.ReplicationResult{}, replicationError
		}
	}
	return replicator.Result, nil
}

// SleeperStub records pause requests without waiting.
type SleeperStub struct {
	SleepDurations []time.Duration
	SleepError     error
}

// Sleep records the requested duration and returns the configured error.
func (sleeper *SleeperStub) Sleep(_ context.Context, pauseDuration time.Duration) error {
	sleeper.SleepDurations = append(sleeper.SleepDurations, pauseDuration)
	return sleeper.SleepError
}

// StagingManagerStub hands out deterministic staging paths and records releases.
type StagingManagerStub struct {
	AcquiredIdentifiers []int64
	ReleasedPaths       []string
	AcquireError        error
	ReleaseError        error
}

// Acquire records the project identifier and returns a synthetic path.
func (manager *StagingManagerStub) Acquire(projectIdentifier int64) (string, error) {
	if manager.AcquireError != nil {
		return "", manager.AcquireError
	}
	manager.AcquiredIdentifiers = append(manager.AcquiredIdentifiers, projectIdentifier)
	return fmt.Sprintf("/staging/project-%d", projectIdentifier), nil
}

// Release records the returned path.
func (manager *StagingManagerStub) Release(stagingPath string) error {
	manager.ReleasedPaths = append(manager.ReleasedPaths, stagingPath)
	return manager.ReleaseError
}

// RecordedTransition captures one journal write in order.
type RecordedTransition struct {
	Kind       state.EntityKind
	Identifier int64
	Path       string
	Status     state.Status
}

// RecordStoreStub keeps migration records in memory and logs every
// transition in write order.
type RecordStoreStub struct {
	Statuses    map[string]state.Status
	Transitions []RecordedTransition
	RecordError error
}

// NewRecordStoreStub returns an empty in-memory record store.
func NewRecordStoreStub() *RecordStoreStub {
	return &RecordStoreStub{Statuses: map[string]state.Status{}}
}

// RecordKey formats the status map key for an entity.
func RecordKey(kind state.EntityKind, identifier int64) string {
	return fmt.Sprintf("%s:%d", kind, identifier)
}

// Lookup reports the latest recorded status for an entity.
func (store *RecordStoreStub) Lookup(kind state.EntityKind, identifier int64) (state.Status, bool) {
	status, exists := store.Statuses[RecordKey(kind, identifier)]
	return status, exists
}

// Record stores the transition, honoring the configured write error.
func (store *RecordStoreStub) Record(kind state.EntityKind, identifier int64, path string, status state.Status) error {
	if store.RecordError != nil {
		return store.RecordError
	}
	store.Statuses[RecordKey(kind, identifier)] = status
	store.Transitions = append(store.Transitions, RecordedTransition{Kind: kind, Identifier: identifier, Path: path, Status: status})
	return nil
}

// GitExecutorStub acknowledges git invocations without touching the system.
type GitExecutorStub struct {
	ExecutedGitCommands []execshell.CommandDetails
	ExecutedLFSCommands []execshell.CommandDetails
}

// ExecuteGit records the invocation and reports success.
func (executor *GitExecutorStub) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.ExecutedGitCommands = append(executor.ExecutedGitCommands, details)
	return execshell.ExecutionResult{ExitCode: 0}, nil
}

// ExecuteGitLFS records the invocation and reports success.
func (executor *GitExecutorStub) ExecuteGitLFS(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.ExecutedLFSCommands = append(executor.ExecutedLFSCommands, details)
	return execshell.ExecutionResult{ExitCode: 0}, nil
}

// ServiceStub captures migration execution requests for verification.
type ServiceStub struct {
	Result          migrate.MigrationResult
	ExecutionError  error
	ExecutedOptions []migrate.MigrationOptions
}

// Execute records the options and returns the configured outcome.
func (service *ServiceStub) Execute(_ context.Context, options migrate.MigrationOptions) (migrate.MigrationResult, error) {
	service.ExecutedOptions = append(service.ExecutedOptions, options)
	return service.Result, service.ExecutionError
}
