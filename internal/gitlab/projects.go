package gitlab

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const (
	projectsPathConstant                = "/projects"
	projectPathTemplateConstant         = "/projects/%d"
	projectByPathTemplateConstant       = "/projects/%s"
	avatarFormFieldNameConstant         = "avatar"
	avatarFileNameConstant              = "avatar.png"
	projectFetchErrorTemplateConstant   = "unable to fetch project %s: %w"
	projectCreateErrorTemplateConstant  = "unable to create project %s: %w"
	projectUpdateErrorTemplateConstant  = "unable to update project %d: %w"
	projectDeleteErrorTemplateConstant  = "unable to delete project %d: %w"
	avatarDownloadErrorTemplateConstant = "unable to download avatar from %s: %w"
	avatarUploadErrorTemplateConstant   = "unable to upload avatar for project %d: %w"
)

// FetchProjectByPath retrieves a project by its namespace-qualified path.
func (client *Client) FetchProjectByPath(requestContext context.Context, projectFullPath string) (Project, error) {
	requestPath := fmt.Sprintf(projectByPathTemplateConstant, url.PathEscape(projectFullPath))

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodGet, requestPath, nil, nil)
	if requestError != nil {
		return Project{}, fmt.Errorf(projectFetchErrorTemplateConstant, projectFullPath, requestError)
	}

	var fetchedProject Project
	if decodeError := decodeResponse(responseBody, &fetchedProject); decodeError != nil {
		return Project{}, fmt.Errorf(projectFetchErrorTemplateConstant, projectFullPath, decodeError)
	}

	return fetchedProject, nil
}

// CreateProject creates a project shell in the namespace named by the payload.
func (client *Client) CreateProject(requestContext context.Context, payload ProjectCreatePayload) (Project, error) {
	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, projectsPathConstant, nil, payload)
	if requestError != nil {
		return Project{}, fmt.Errorf(projectCreateErrorTemplateConstant, payload.Name, requestError)
	}

	var createdProject Project
	if decodeError := decodeResponse(responseBody, &createdProject); decodeError != nil {
		return Project{}, fmt.Errorf(projectCreateErrorTemplateConstant, payload.Name, decodeError)
	}

	return createdProject, nil
}

// UpdateProject applies the payload to an existing project.
func (client *Client) UpdateProject(requestContext context.Context, projectIdentifier int64, payload ProjectUpdatePayload) (Project, error) {
	requestPath := fmt.Sprintf(projectPathTemplateConstant, projectIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPut, requestPath, nil, payload)
	if requestError != nil {
		return Project{}, fmt.Errorf(projectUpdateErrorTemplateConstant, projectIdentifier, requestError)
	}

	var updatedProject Project
	if decodeError := decodeResponse(responseBody, &updatedProject); decodeError != nil {
		return Project{}, fmt.Errorf(projectUpdateErrorTemplateConstant, projectIdentifier, decodeError)
	}

	return updatedProject, nil
}

// DeleteProject removes a project and all of its content.
func (client *Client) DeleteProject(requestContext context.Context, projectIdentifier int64) error {
	requestPath := fmt.Sprintf(projectPathTemplateConstant, projectIdentifier)

	if _, requestError := client.executeJSONRequest(requestContext, http.MethodDelete, requestPath, nil, nil); requestError != nil {
		return fmt.Errorf(projectDeleteErrorTemplateConstant, projectIdentifier, requestError)
	}

	return nil
}

// DownloadAvatar fetches avatar content from its public URL using the
// configured session cookie. Avatar URLs sit outside the token-scoped API.
func (client *Client) DownloadAvatar(requestContext context.Context, avatarURL string) ([]byte, error) {
	if len(client.sessionCookie) == 0 {
		return nil, ErrSessionCookieNotConfigured
	}

	request, requestCreationError := http.NewRequestWithContext(requestContext, http.MethodGet, avatarURL, nil)
	if requestCreationError != nil {
		return nil, fmt.Errorf(avatarDownloadErrorTemplateConstant, avatarURL, requestCreationError)
	}
	request.AddCookie(&http.Cookie{Name: sessionCookieNameConstant, Value: client.sessionCookie})

	response, transportError := client.httpClient.Do(request)
	if transportError != nil {
		return nil, fmt.Errorf(avatarDownloadErrorTemplateConstant, avatarURL, transportError)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	avatarContent, readError := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytesConstant))
	if readError != nil {
		return nil, fmt.Errorf(avatarDownloadErrorTemplateConstant, avatarURL, readError)
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(avatarDownloadErrorTemplateConstant, avatarURL, APIError{StatusCode: response.StatusCode, Message: strings.TrimSpace(string(avatarContent))})
	}

	return avatarContent, nil
}

// UploadProjectAvatar attaches avatar content to a project through the
// multipart project update endpoint.
func (client *Client) UploadProjectAvatar(requestContext context.Context, projectIdentifier int64, avatarContent []byte) error {
	var multipartBody bytes.Buffer
	multipartWriter := multipart.NewWriter(&multipartBody)

	avatarPart, partCreationError := multipartWriter.CreateFormFile(avatarFormFieldNameConstant, avatarFileNameConstant)
	if partCreationError != nil {
		return fmt.Errorf(avatarUploadErrorTemplateConstant, projectIdentifier, partCreationError)
	}
	if _, writeError := avatarPart.Write(avatarContent); writeError != nil {
		return fmt.Errorf(avatarUploadErrorTemplateConstant, projectIdentifier, writeError)
	}
	if closeError := multipartWriter.Close(); closeError != nil {
		return fmt.Errorf(avatarUploadErrorTemplateConstant, projectIdentifier, closeError)
	}

	requestPath := fmt.Sprintf(projectPathTemplateConstant, projectIdentifier)
	requestURL := client.buildAPIURL(requestPath, nil)

	if _, _, requestError := client.executeRequest(requestContext, http.MethodPut, requestURL, multipartBody.Bytes(), multipartWriter.FormDataContentType()); requestError != nil {
		return fmt.Errorf(avatarUploadErrorTemplateConstant, projectIdentifier, requestError)
	}

	return nil
}
