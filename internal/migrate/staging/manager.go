package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultStagingDirectoryNameConstant = "albatross-staging"
	projectDirectoryTemplateConstant    = "project-%d"
	stagingDirectoryPermissionsConstant = 0o755
)

const (
	prepareDirectoryErrorTemplateConstant = "unable to prepare staging directory %s: %w"
	removeDirectoryErrorTemplateConstant  = "unable to remove staging directory %s: %w"
)

// ErrPathOutsideRoot indicates a release attempt on a path the manager does not own.
var ErrPathOutsideRoot = errors.New("staging path escapes the staging root")

// Manager hands out one scratch directory per project under a single
// staging root. Directories from interrupted runs are cleared on the
// next acquire, so at most one project occupies the staging area.
type Manager struct {
	stagingRoot string
}

// NewManager creates a manager rooted at stagingRoot, falling back to a
// directory under the system temp dir when stagingRoot is blank.
func NewManager(stagingRoot string) *Manager {
	resolvedRoot := strings.TrimSpace(stagingRoot)
	if len(resolvedRoot) == 0 {
		resolvedRoot = filepath.Join(os.TempDir(), defaultStagingDirectoryNameConstant)
	}

	return &Manager{stagingRoot: filepath.Clean(resolvedRoot)}
}

// Acquire returns a fresh empty directory for the project, removing any
// debris a previous run left behind.
func (manager *Manager) Acquire(projectIdentifier int64) (string, error) {
	projectPath := filepath.Join(manager.stagingRoot, fmt.Sprintf(projectDirectoryTemplateConstant, projectIdentifier))

	if removeError := os.RemoveAll(projectPath); removeError != nil {
		return "", fmt.Errorf(prepareDirectoryErrorTemplateConstant, projectPath, removeError)
	}
	if createError := os.MkdirAll(projectPath, stagingDirectoryPermissionsConstant); createError != nil {
		return "", fmt.Errorf(prepareDirectoryErrorTemplateConstant, projectPath, createError)
	}

	return projectPath, nil
}

// Release deletes a directory previously returned by Acquire.
func (manager *Manager) Release(stagingPath string) error {
	cleanedPath := filepath.Clean(stagingPath)
	if !strings.HasPrefix(cleanedPath, manager.stagingRoot+string(filepath.Separator)) {
		return ErrPathOutsideRoot
	}

	if removeError := os.RemoveAll(cleanedPath); removeError != nil {
		return fmt.Errorf(removeDirectoryErrorTemplateConstant, cleanedPath, removeError)
	}

	return nil
}
