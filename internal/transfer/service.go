package transfer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/execshell"
)

const (
	cloneSubcommandConstant             = "clone"
	mirrorFlagConstant                  = "--mirror"
	cloneConfigFlagTemplateConstant     = "--config=%s=%s"
	extraHeaderConfigurationKeyConstant = "http.extraHeader"
	basicAuthorizationTemplateConstant  = "Authorization: Basic %s"
	credentialSeparatorConstant         = ":"
	fetchSubcommandConstant             = "fetch"
	pushSubcommandConstant              = "push"
	remoteSubcommandConstant            = "remote"
	remoteAddSubcommandConstant         = "add"
	configSubcommandConstant            = "config"
	allFlagConstant                     = "--all"
	tagsFlagConstant                    = "--tags"
	porcelainFlagConstant               = "--porcelain"
	originRemoteNameConstant            = "origin"
	destinationRemoteNameConstant       = "final-destination"
	gitRepositorySuffixConstant         = ".git"
	wikiRepositorySuffixConstant        = ".wiki.git"
)

const (
	replicationStartedLogMessageConstant   = "replicating repository"
	replicationCompletedLogMessageConstant = "repository replicated"
	sourceURLLogFieldNameConstant          = "source_url"
	stagingPathLogFieldNameConstant        = "staging_path"
	repositoryPayloadLogFieldNameConstant  = "repository_payload"
	lfsPayloadLogFieldNameConstant         = "lfs_payload"
)

const (
	cloneErrorTemplateConstant       = "unable to clone %s: %w"
	lfsFetchErrorTemplateConstant    = "unable to fetch LFS objects from %s: %w"
	remoteAddErrorTemplateConstant   = "unable to add destination remote: %w"
	authConfigErrorTemplateConstant  = "unable to configure destination authorization: %w"
	lfsPushErrorTemplateConstant     = "unable to push LFS objects to %s: %w"
	branchPushErrorTemplateConstant  = "unable to push branches to %s: %w"
	tagPushErrorTemplateConstant     = "unable to push tags to %s: %w"
	stagingSizeErrorTemplateConstant = "unable to measure staging directory %s: %w"
)

// Sentinel errors reported when the service is constructed or invoked without required inputs.
var (
	// ErrLoggerNotConfigured indicates the service was constructed without a logger.
	ErrLoggerNotConfigured = errors.New("transfer service requires a logger")
	// ErrGitExecutorNotConfigured indicates the service was constructed without a git executor.
	ErrGitExecutorNotConfigured = errors.New("transfer service requires a git executor")
	// ErrSourceEndpointIncomplete indicates the source endpoint is missing its URL or credentials.
	ErrSourceEndpointIncomplete = errors.New("replication requires a source URL, username, and token")
	// ErrDestinationEndpointIncomplete indicates the destination endpoint is missing its URL or credentials.
	ErrDestinationEndpointIncomplete = errors.New("replication requires a destination URL, username, and token")
	// ErrStagingPathNotConfigured indicates no staging directory was provided.
	ErrStagingPathNotConfigured = errors.New("replication requires a staging path")
)

// GitExecutor runs git and git-lfs commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitLFS(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ReplicationEndpoint identifies one side of a repository transfer.
type ReplicationEndpoint struct {
	RepositoryURL string
	Username      string
	Token         string
}

// ReplicationOptions describes a single repository transfer.
type ReplicationOptions struct {
	Source      ReplicationEndpoint
	Destination ReplicationEndpoint
	StagingPath string
}

// ReplicationResult reports humanized payload sizes for a completed transfer.
// LFSPayload counts only the bytes fetched beyond the git history.
type ReplicationResult struct {
	RepositoryPayload string
	LFSPayload        string
}

// ServiceDependencies lists the collaborators required by the service.
type ServiceDependencies struct {
	Logger      *zap.Logger
	GitExecutor GitExecutor
}

// Service copies full repository history, including LFS objects, from a
// source repository into a destination repository.
type Service struct {
	logger      *zap.Logger
	gitExecutor GitExecutor
}

// NewService validates the dependencies and creates a transfer service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	service := &Service{
		logger:      dependencies.Logger,
		gitExecutor: dependencies.GitExecutor,
	}

	return service, nil
}

// Replicate mirrors the source repository into the staging path and pushes
// every branch, tag, and LFS object to the destination repository.
// Authorization travels through the repository http.extraHeader setting,
// first holding the source credential for clone and LFS fetch, then the
// destination credential for the pushes.
func (service *Service) Replicate(executionContext context.Context, options ReplicationOptions) (ReplicationResult, error) {
	if validationError := validateReplicationOptions(options); validationError != nil {
		return ReplicationResult{}, validationError
	}

	service.logger.Debug(replicationStartedLogMessageConstant,
		zap.String(sourceURLLogFieldNameConstant, options.Source.RepositoryURL),
		zap.String(stagingPathLogFieldNameConstant, options.StagingPath))

	sourceAuthorization := buildAuthorizationHeader(options.Source.Username, options.Source.Token)
	destinationAuthorization := buildAuthorizationHeader(options.Destination.Username, options.Destination.Token)

	cloneDetails := execshell.CommandDetails{
		Arguments: []string{
			cloneSubcommandConstant,
			mirrorFlagConstant,
			fmt.Sprintf(cloneConfigFlagTemplateConstant, extraHeaderConfigurationKeyConstant, sourceAuthorization),
			options.Source.RepositoryURL,
			options.StagingPath,
		},
	}
	if _, cloneError := service.gitExecutor.ExecuteGit(executionContext, cloneDetails); cloneError != nil {
		return ReplicationResult{}, fmt.Errorf(cloneErrorTemplateConstant, options.Source.RepositoryURL, cloneError)
	}

	repositoryBytes, repositorySizeError := directorySize(options.StagingPath)
	if repositorySizeError != nil {
		return ReplicationResult{}, repositorySizeError
	}

	lfsFetchDetails := execshell.CommandDetails{
		Arguments:        []string{fetchSubcommandConstant, allFlagConstant, originRemoteNameConstant},
		WorkingDirectory: options.StagingPath,
	}
	if _, lfsFetchError := service.gitExecutor.ExecuteGitLFS(executionContext, lfsFetchDetails); lfsFetchError != nil {
		return ReplicationResult{}, fmt.Errorf(lfsFetchErrorTemplateConstant, options.Source.RepositoryURL, lfsFetchError)
	}

	stagedBytes, stagedSizeError := directorySize(options.StagingPath)
	if stagedSizeError != nil {
		return ReplicationResult{}, stagedSizeError
	}
	lfsBytes := uint64(0)
	if stagedBytes > repositoryBytes {
		lfsBytes = stagedBytes - repositoryBytes
	}

	remoteAddDetails := execshell.CommandDetails{
		Arguments:        []string{remoteSubcommandConstant, remoteAddSubcommandConstant, destinationRemoteNameConstant, options.Destination.RepositoryURL},
		WorkingDirectory: options.StagingPath,
	}
	if _, remoteAddError := service.gitExecutor.ExecuteGit(executionContext, remoteAddDetails); remoteAddError != nil {
		return ReplicationResult{}, fmt.Errorf(remoteAddErrorTemplateConstant, remoteAddError)
	}

	authConfigDetails := execshell.CommandDetails{
		Arguments:        []string{configSubcommandConstant, extraHeaderConfigurationKeyConstant, destinationAuthorization},
		WorkingDirectory: options.StagingPath,
	}
	if _, authConfigError := service.gitExecutor.ExecuteGit(executionContext, authConfigDetails); authConfigError != nil {
		return ReplicationResult{}, fmt.Errorf(authConfigErrorTemplateConstant, authConfigError)
	}

	lfsPushDetails := execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, allFlagConstant, destinationRemoteNameConstant},
		WorkingDirectory: options.StagingPath,
	}
	if _, lfsPushError := service.gitExecutor.ExecuteGitLFS(executionContext, lfsPushDetails); lfsPushError != nil {
		return ReplicationResult{}, fmt.Errorf(lfsPushErrorTemplateConstant, options.Destination.RepositoryURL, lfsPushError)
	}

	branchPushDetails := execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, destinationRemoteNameConstant, allFlagConstant, porcelainFlagConstant},
		WorkingDirectory: options.StagingPath,
	}
	if _, branchPushError := service.gitExecutor.ExecuteGit(executionContext, branchPushDetails); branchPushError != nil {
		return ReplicationResult{}, fmt.Errorf(branchPushErrorTemplateConstant, options.Destination.RepositoryURL, branchPushError)
	}

	tagPushDetails := execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, destinationRemoteNameConstant, tagsFlagConstant, porcelainFlagConstant},
		WorkingDirectory: options.StagingPath,
	}
	if _, tagPushError := service.gitExecutor.ExecuteGit(executionContext, tagPushDetails); tagPushError != nil {
		return ReplicationResult{}, fmt.Errorf(tagPushErrorTemplateConstant, options.Destination.RepositoryURL, tagPushError)
	}

	replicationResult := ReplicationResult{
		RepositoryPayload: humanize.IBytes(repositoryBytes),
		LFSPayload:        humanize.IBytes(lfsBytes),
	}

	service.logger.Debug(replicationCompletedLogMessageConstant,
		zap.String(sourceURLLogFieldNameConstant, options.Source.RepositoryURL),
		zap.String(repositoryPayloadLogFieldNameConstant, replicationResult.RepositoryPayload),
		zap.String(lfsPayloadLogFieldNameConstant, replicationResult.LFSPayload))

	return replicationResult, nil
}

// DeriveWikiURL maps a repository URL to its companion wiki repository URL.
func DeriveWikiURL(repositoryURL string) string {
	if strings.HasSuffix(repositoryURL, gitRepositorySuffixConstant) {
		return strings.TrimSuffix(repositoryURL, gitRepositorySuffixConstant) + wikiRepositorySuffixConstant
	}

	return repositoryURL + wikiRepositorySuffixConstant
}

func validateReplicationOptions(options ReplicationOptions) error {
	if endpointIncomplete(options.Source) {
		return ErrSourceEndpointIncomplete
	}
	if endpointIncomplete(options.Destination) {
		return ErrDestinationEndpointIncomplete
	}
	if len(strings.TrimSpace(options.StagingPath)) == 0 {
		return ErrStagingPathNotConfigured
	}

	return nil
}

func endpointIncomplete(endpoint ReplicationEndpoint) bool {
	if len(strings.TrimSpace(endpoint.RepositoryURL)) == 0 {
		return true
	}
	if len(strings.TrimSpace(endpoint.Username)) == 0 {
		return true
	}

	return len(strings.TrimSpace(endpoint.Token)) == 0
}

func buildAuthorizationHeader(username string, token string) string {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + credentialSeparatorConstant + token))

	return fmt.Sprintf(basicAuthorizationTemplateConstant, credentials)
}

func directorySize(rootPath string) (uint64, error) {
	var totalBytes uint64

	walkError := filepath.WalkDir(rootPath, func(entryPath string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if entry.IsDir() {
			return nil
		}
		entryInformation, informationError := entry.Info()
		if informationError != nil {
			return informationError
		}
		totalBytes += uint64(entryInformation.Size())

		return nil
	})
	if walkError != nil {
		return 0, fmt.Errorf(stagingSizeErrorTemplateConstant, rootPath, walkError)
	}

	return totalBytes, nil
}
