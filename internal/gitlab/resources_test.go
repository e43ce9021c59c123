package gitlab_test

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/gitlab"
)

const (
	resourcesTestTokenConstant         = "resources-test-token"
	resourcesTestSessionCookieConstant = "session-cookie-value"
	resourcesTestAvatarContentConstant = "avatar-bytes"
	resourcesTestIssueTitleConstant    = "Imported issue"
	resourcesTestCreatedAtConstant     = "2021-04-17T09:30:00.000Z"
)

func newResourcesTestClient(testInstance *testing.T, server *httptest.Server, sessionCookie string) *gitlab.Client {
	testInstance.Helper()

	client, creationError := gitlab.NewClient(zap.NewNop(), nil, gitlab.ClientConfiguration{
		BaseURL:       server.URL,
		Token:         resourcesTestTokenConstant,
		SessionCookie: sessionCookie,
	})
	require.NoError(testInstance, creationError)

	return client
}

func TestCreateIssueSendsPreservedMetadata(testInstance *testing.T) {
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, http.MethodPost, request.Method)
		require.True(testInstance, strings.HasSuffix(request.URL.Path, "/projects/12/issues"))
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&capturedBody))

		responseWriter.Header().Set("Content-Type", "application/json")
		responseWriter.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(responseWriter).Encode(gitlab.Issue{ID: 100, IID: 4, Title: resourcesTestIssueTitleConstant})
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, "")

	createdIssue, createError := client.CreateIssue(context.Background(), 12, gitlab.IssueCreatePayload{
		Title:        resourcesTestIssueTitleConstant,
		IID:          4,
		Description:  "By Original Author: details",
		IssueType:    "issue",
		Confidential: true,
		CreatedAt:    resourcesTestCreatedAtConstant,
		Labels:       []string{"bug"},
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, int64(4), createdIssue.IID)

	require.Equal(testInstance, resourcesTestIssueTitleConstant, capturedBody["title"])
	require.Equal(testInstance, float64(4), capturedBody["iid"])
	require.Equal(testInstance, true, capturedBody["confidential"])
	require.Equal(testInstance, resourcesTestCreatedAtConstant, capturedBody["created_at"])
	require.Equal(testInstance, "By Original Author: details", capturedBody["description"])
}

func TestCloseIssueSendsStateEvent(testInstance *testing.T) {
	var capturedBody map[string]any
	var capturedPath string

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, http.MethodPut, request.Method)
		capturedPath = request.URL.Path
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&capturedBody))

		responseWriter.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(responseWriter).Encode(gitlab.Issue{IID: 7, State: "closed"})
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, "")

	closedIssue, closeError := client.CloseIssue(context.Background(), 12, 7)
	require.NoError(testInstance, closeError)
	require.Equal(testInstance, "closed", closedIssue.State)
	require.True(testInstance, strings.HasSuffix(capturedPath, "/projects/12/issues/7"))
	require.Equal(testInstance, gitlab.IssueStateEventClose, capturedBody["state_event"])
}

func TestFetchOpenMergeRequestsFiltersByState(testInstance *testing.T) {
	var capturedQuery string

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		capturedQuery = request.URL.RawQuery
		responseWriter.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(responseWriter).Encode([]gitlab.MergeRequest{{IID: 3, State: "opened"}})
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, "")

	mergeRequests, listError := client.FetchOpenMergeRequests(context.Background(), 12)
	require.NoError(testInstance, listError)
	require.Len(testInstance, mergeRequests, 1)
	require.Contains(testInstance, capturedQuery, "state=opened")
	require.Contains(testInstance, capturedQuery, "sort=asc")
}

func TestCreateProtectedBranchSendsZeroAccessLevels(testInstance *testing.T) {
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&capturedBody))
		responseWriter.Header().Set("Content-Type", "application/json")
		responseWriter.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(responseWriter).Encode(gitlab.ProtectedBranch{Name: "main"})
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, "")

	_, createError := client.CreateProtectedBranch(context.Background(), 12, gitlab.ProtectedBranchCreatePayload{Name: "main"})
	require.NoError(testInstance, createError)

	require.Equal(testInstance, float64(0), capturedBody["push_access_level"])
	require.Equal(testInstance, float64(0), capturedBody["merge_access_level"])
	require.Equal(testInstance, float64(0), capturedBody["unprotect_access_level"])
	require.Equal(testInstance, false, capturedBody["allow_force_push"])
}

func TestDownloadAvatarRequiresSessionCookie(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, "")

	_, downloadError := client.DownloadAvatar(context.Background(), server.URL)
	require.ErrorIs(testInstance, downloadError, gitlab.ErrSessionCookieNotConfigured)
}

func TestDownloadAvatarSendsSessionCookie(testInstance *testing.T) {
	var capturedCookie string

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		sessionCookie, cookieError := request.Cookie("_gitlab_session")
		if cookieError == nil {
			capturedCookie = sessionCookie.Value
		}
		_, _ = responseWriter.Write([]byte(resourcesTestAvatarContentConstant))
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, resourcesTestSessionCookieConstant)

	avatarContent, downloadError := client.DownloadAvatar(context.Background(), server.URL)
	require.NoError(testInstance, downloadError)
	require.Equal(testInstance, []byte(resourcesTestAvatarContentConstant), avatarContent)
	require.Equal(testInstance, resourcesTestSessionCookieConstant, capturedCookie)
}

func TestUploadProjectAvatarSendsMultipartContent(testInstance *testing.T) {
	var capturedContentType string
	var capturedFileName string
	var capturedContent []byte

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, http.MethodPut, request.Method)
		capturedContentType = request.Header.Get("Content-Type")

		mediaType, mediaParameters, parseError := mime.ParseMediaType(capturedContentType)
		require.NoError(testInstance, parseError)
		require.Equal(testInstance, "multipart/form-data", mediaType)

		multipartReader := multipart.NewReader(request.Body, mediaParameters["boundary"])
		part, partError := multipartReader.NextPart()
		require.NoError(testInstance, partError)
		require.Equal(testInstance, "avatar", part.FormName())
		capturedFileName = part.FileName()

		partContent, readError := io.ReadAll(part)
		require.NoError(testInstance, readError)
		capturedContent = partContent

		responseWriter.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(responseWriter).Encode(gitlab.Project{ID: 12})
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, "")

	uploadError := client.UploadProjectAvatar(context.Background(), 12, []byte(resourcesTestAvatarContentConstant))
	require.NoError(testInstance, uploadError)
	require.Equal(testInstance, "avatar.png", capturedFileName)
	require.Equal(testInstance, []byte(resourcesTestAvatarContentConstant), capturedContent)
}

func TestDeletePipelineIssuesDeleteRequest(testInstance *testing.T) {
	var capturedMethod string
	var capturedPath string

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		capturedMethod = request.Method
		capturedPath = request.URL.Path
		responseWriter.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, "")

	deleteError := client.DeletePipeline(context.Background(), 12, 900)
	require.NoError(testInstance, deleteError)
	require.Equal(testInstance, http.MethodDelete, capturedMethod)
	require.True(testInstance, strings.HasSuffix(capturedPath, "/projects/12/pipelines/900"))
}

func TestDeleteGroupIssuesDeleteRequest(testInstance *testing.T) {
	var capturedMethod string
	var capturedPath string

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		capturedMethod = request.Method
		capturedPath = request.URL.Path
		responseWriter.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := newResourcesTestClient(testInstance, server, "")

	deleteError := client.DeleteGroup(context.Background(), 77)
	require.NoError(testInstance, deleteError)
	require.Equal(testInstance, http.MethodDelete, capturedMethod)
	require.True(testInstance, strings.HasSuffix(capturedPath, "/groups/77"))
}
