package gitlab

import (
	"errors"
	"fmt"
	"net/http"
)

const apiErrorMessageTemplateConstant = "gitlab API returned %d: %s"

// Sentinel errors reported when the client is constructed without its required collaborators.
var (
	// ErrLoggerNotConfigured indicates the client was constructed without a logger.
	ErrLoggerNotConfigured = errors.New("gitlab client requires a logger")
	// ErrBaseURLNotConfigured indicates the client was constructed without an instance URL.
	ErrBaseURLNotConfigured = errors.New("gitlab client requires a base URL")
	// ErrTokenNotConfigured indicates the client was constructed without an access token.
	ErrTokenNotConfigured = errors.New("gitlab client requires an access token")
	// ErrSessionCookieNotConfigured indicates an avatar download was attempted without a session cookie.
	ErrSessionCookieNotConfigured = errors.New("gitlab client requires a session cookie for avatar downloads")
)

// APIError reports a non-success response returned by the GitLab API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error describes the failing response including its status code.
func (apiError APIError) Error() string {
	return fmt.Sprintf(apiErrorMessageTemplateConstant, apiError.StatusCode, apiError.Message)
}

// IsNotFound reports whether the error chain contains a 404 API response.
func IsNotFound(candidateError error) bool {
	var apiError APIError
	if errors.As(candidateError, &apiError) {
		return apiError.StatusCode == http.StatusNotFound
	}
	return false
}
