package migrate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/gitlab"
	"github.com/temirov/albatross/internal/transfer"
)

const (
	repositoryMigratedMessageConstant       = "Migrated repository data"
	wikiMigratedMessageConstant             = "Migrated wiki repository"
	avatarMissingCookieMessageConstant      = "Avatar will not be migrated without a session cookie"
	avatarFetchFailedMessageConstant        = "Failed to retrieve avatar"
	avatarUploadFailedMessageConstant       = "Failed to upload avatar"
	stagingReleaseFailedMessageConstant     = "Failed to remove staging directory"
	wouldReplicateRepositoryMessageConstant = "DRY RUN: would replicate repository"
	wouldReplicateWikiMessageConstant       = "DRY RUN: would replicate wiki repository"

	repositoryPayloadFieldNameConstant = "repository_payload"
	lfsPayloadFieldNameConstant        = "lfs_payload"
	avatarURLFieldNameConstant         = "avatar_url"
	stagingPathFieldNameConstant       = "staging_path"

	acquireStagingErrorTemplateConstant = "unable to acquire staging directory for project %d: %w"
	listWikiPagesErrorTemplateConstant  = "unable to list wiki pages of %s: %w"
)

// migrateAvatar copies the project avatar when one is set. Avatars are
// cosmetic; every failure is logged and swallowed.
func (service *Service) migrateAvatar(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) {
	if len(projectReference.AvatarURL) == 0 {
		return
	}

	avatarContent, downloadError := service.sourceClient.DownloadAvatar(executionContext, projectReference.AvatarURL)
	if downloadError != nil {
		if errors.Is(downloadError, gitlab.ErrSessionCookieNotConfigured) {
			service.logger.Warn(avatarMissingCookieMessageConstant, zap.String(projectFieldNameConstant, projectReference.PathWithNamespace))
			return
		}
		service.logger.Warn(avatarFetchFailedMessageConstant,
			zap.String(avatarURLFieldNameConstant, projectReference.AvatarURL),
			zap.Error(downloadError),
		)
		return
	}

	if uploadError := run.destination.UploadProjectAvatar(executionContext, destinationProject.ID, avatarContent); uploadError != nil {
		service.logger.Warn(avatarUploadFailedMessageConstant,
			zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
			zap.Error(uploadError),
		)
	}
}

// migrateRepository replicates the full git history, then pauses so
// the destination can settle before the next mutation burst.
func (service *Service) migrateRepository(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	if run.options.DryRun {
		service.logger.Info(wouldReplicateRepositoryMessageConstant, zap.String(projectFieldNameConstant, projectReference.PathWithNamespace))
		return nil
	}

	replicationResult, replicationError := service.replicateThroughStaging(executionContext, projectReference.ID, transfer.ReplicationOptions{
		Source: transfer.ReplicationEndpoint{
			RepositoryURL: projectReference.RepositoryURL,
			Username:      run.sourceUsername,
			Token:         service.sourceClient.Token(),
		},
		Destination: transfer.ReplicationEndpoint{
			RepositoryURL: destinationProject.HTTPURLToRepo,
			Username:      run.destinationUsername,
			Token:         run.destination.Token(),
		},
	})
	if replicationError != nil {
		return replicationError
	}

	service.logger.Info(repositoryMigratedMessageConstant,
		zap.String(projectFieldNameConstant, projectReference.PathWithNamespace),
		zap.String(repositoryPayloadFieldNameConstant, replicationResult.RepositoryPayload),
		zap.String(lfsPayloadFieldNameConstant, replicationResult.LFSPayload),
	)

	return service.pause(executionContext, run)
}

// migrateWiki replicates the wiki repository when the source wiki has
// pages. Listings rejected because the wiki feature is disabled count
// as no pages.
func (service *Service) migrateWiki(executionContext context.Context, run *migrationRun, projectReference ProjectRef, destinationProject gitlab.Project) error {
	wikiPages, wikiError := service.sourceClient.FetchWikiPages(executionContext, projectReference.ID)
	if wikiError != nil {
		if wikiUnavailable(wikiError) {
			return nil
		}
		return fmt.Errorf(listWikiPagesErrorTemplateConstant, projectReference.PathWithNamespace, wikiError)
	}
	if len(wikiPages) == 0 {
		return nil
	}

	if run.options.DryRun {
		service.logger.Info(wouldReplicateWikiMessageConstant, zap.String(projectFieldNameConstant, projectReference.PathWithNamespace))
		return nil
	}

	if _, replicationError := service.replicateThroughStaging(executionContext, projectReference.ID, transfer.ReplicationOptions{
		Source: transfer.ReplicationEndpoint{
			RepositoryURL: transfer.DeriveWikiURL(projectReference.RepositoryURL),
			Username:      run.sourceUsername,
			Token:         service.sourceClient.Token(),
		},
		Destination: transfer.ReplicationEndpoint{
			RepositoryURL: transfer.DeriveWikiURL(destinationProject.HTTPURLToRepo),
			Username:      run.destinationUsername,
			Token:         run.destination.Token(),
		},
	}); replicationError != nil {
		return replicationError
	}

	service.logger.Info(wikiMigratedMessageConstant, zap.String(projectFieldNameConstant, projectReference.PathWithNamespace))

	return nil
}

// replicateThroughStaging runs one transfer inside a freshly acquired
// staging directory and removes the directory on every exit path.
func (service *Service) replicateThroughStaging(executionContext context.Context, projectIdentifier int64, options transfer.ReplicationOptions) (transfer.ReplicationResult, error) {
	stagingPath, acquireError := service.stagingManager.Acquire(projectIdentifier)
	if acquireError != nil {
		return transfer.ReplicationResult{}, fmt.Errorf(acquireStagingErrorTemplateConstant, projectIdentifier, acquireError)
	}
	defer func() {
		if releaseError := service.stagingManager.Release(stagingPath); releaseError != nil {
			service.logger.Warn(stagingReleaseFailedMessageConstant,
				zap.String(stagingPathFieldNameConstant, stagingPath),
				zap.Error(releaseError),
			)
		}
	}()

	options.StagingPath = stagingPath

	return service.replicator.Replicate(executionContext, options)
}

func wikiUnavailable(listError error) bool {
	var apiError gitlab.APIError
	if !errors.As(listError, &apiError) {
		return false
	}
	return apiError.StatusCode == http.StatusForbidden || apiError.StatusCode == http.StatusNotFound
}
