package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	projectMergeRequestsPathTemplateConstant    = "/projects/%d/merge_requests"
	mergeRequestNotesPathTemplateConstant       = "/projects/%d/merge_requests/%d/notes"
	stateQueryParameterConstant                 = "state"
	openedStateValueConstant                    = "opened"
	mergeRequestListErrorTemplateConstant       = "unable to list open merge requests of project %d: %w"
	mergeRequestCreateErrorTemplateConstant     = "unable to create merge request in project %d: %w"
	mergeRequestNoteListErrorTemplateConstant   = "unable to list notes of merge request %d in project %d: %w"
	mergeRequestNoteCreateErrorTemplateConstant = "unable to create note on merge request %d in project %d: %w"
)

// FetchOpenMergeRequests lists the open merge requests of a project oldest
// first. Closed and merged merge requests are not replicated.
func (client *Client) FetchOpenMergeRequests(requestContext context.Context, projectIdentifier int64) ([]MergeRequest, error) {
	listingQuery := url.Values{}
	listingQuery.Set(stateQueryParameterConstant, openedStateValueConstant)
	listingQuery.Set(sortQueryParameterConstant, ascendingSortValueConstant)

	requestPath := fmt.Sprintf(projectMergeRequestsPathTemplateConstant, projectIdentifier)
	pageBodies, listingError := client.collectPages(requestContext, requestPath, listingQuery)
	if listingError != nil {
		return nil, fmt.Errorf(mergeRequestListErrorTemplateConstant, projectIdentifier, listingError)
	}

	mergeRequests := make([]MergeRequest, 0)
	for _, pageBody := range pageBodies {
		var pageMergeRequests []MergeRequest
		if decodeError := decodeResponse(pageBody, &pageMergeRequests); decodeError != nil {
			return nil, fmt.Errorf(mergeRequestListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		mergeRequests = append(mergeRequests, pageMergeRequests...)
	}

	return mergeRequests, nil
}

// CreateMergeRequest creates a merge request in a project.
func (client *Client) CreateMergeRequest(requestContext context.Context, projectIdentifier int64, payload MergeRequestCreatePayload) (MergeRequest, error) {
	requestPath := fmt.Sprintf(projectMergeRequestsPathTemplateConstant, projectIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return MergeRequest{}, fmt.Errorf(mergeRequestCreateErrorTemplateConstant, projectIdentifier, requestError)
	}

	var createdMergeRequest MergeRequest
	if decodeError := decodeResponse(responseBody, &createdMergeRequest); decodeError != nil {
		return MergeRequest{}, fmt.Errorf(mergeRequestCreateErrorTemplateConstant, projectIdentifier, decodeError)
	}

	return createdMergeRequest, nil
}

// FetchMergeRequestNotes lists the notes of a merge request oldest first.
func (client *Client) FetchMergeRequestNotes(requestContext context.Context, projectIdentifier int64, mergeRequestInternalIdentifier int64) ([]Note, error) {
	listingQuery := url.Values{}
	listingQuery.Set(sortQueryParameterConstant, ascendingSortValueConstant)

	requestPath := fmt.Sprintf(mergeRequestNotesPathTemplateConstant, projectIdentifier, mergeRequestInternalIdentifier)
	pageBodies, listingError := client.collectPages(requestContext, requestPath, listingQuery)
	if listingError != nil {
		return nil, fmt.Errorf(mergeRequestNoteListErrorTemplateConstant, mergeRequestInternalIdentifier, projectIdentifier, listingError)
	}

	mergeRequestNotes := make([]Note, 0)
	for _, pageBody := range pageBodies {
		var pageNotes []Note
		if decodeError := decodeResponse(pageBody, &pageNotes); decodeError != nil {
			return nil, fmt.Errorf(mergeRequestNoteListErrorTemplateConstant, mergeRequestInternalIdentifier, projectIdentifier, decodeError)
		}
		mergeRequestNotes = append(mergeRequestNotes, pageNotes...)
	}

	return mergeRequestNotes, nil
}

// CreateMergeRequestNote attaches a note to a merge request.
func (client *Client) CreateMergeRequestNote(requestContext context.Context, projectIdentifier int64, mergeRequestInternalIdentifier int64, payload NoteCreatePayload) (Note, error) {
	requestPath := fmt.Sprintf(mergeRequestNotesPathTemplateConstant, projectIdentifier, mergeRequestInternalIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return Note{}, fmt.Errorf(mergeRequestNoteCreateErrorTemplateConstant, mergeRequestInternalIdentifier, projectIdentifier, requestError)
	}

	var createdNote Note
	if decodeError := decodeResponse(responseBody, &createdNote); decodeError != nil {
		return Note{}, fmt.Errorf(mergeRequestNoteCreateErrorTemplateConstant, mergeRequestInternalIdentifier, projectIdentifier, decodeError)
	}

	return createdNote, nil
}
