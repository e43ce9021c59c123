package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	projectIssuesPathTemplateConstant    = "/projects/%d/issues"
	issuePathTemplateConstant            = "/projects/%d/issues/%d"
	issueNotesPathTemplateConstant       = "/projects/%d/issues/%d/notes"
	issueListErrorTemplateConstant       = "unable to list issues of project %d: %w"
	issueCreateErrorTemplateConstant     = "unable to create issue in project %d: %w"
	issueCloseErrorTemplateConstant      = "unable to close issue %d in project %d: %w"
	issueNoteListErrorTemplateConstant   = "unable to list notes of issue %d in project %d: %w"
	issueNoteCreateErrorTemplateConstant = "unable to create note on issue %d in project %d: %w"
)

// IssueStateEventClose moves an issue to the closed state when sent as a
// state event.
const IssueStateEventClose = "close"

type issueStateUpdatePayload struct {
	StateEvent string `json:"state_event"`
}

// FetchIssues lists every issue of a project, all states, oldest first.
func (client *Client) FetchIssues(requestContext context.Context, projectIdentifier int64) ([]Issue, error) {
	listingQuery := url.Values{}
	listingQuery.Set(sortQueryParameterConstant, ascendingSortValueConstant)

	requestPath := fmt.Sprintf(projectIssuesPathTemplateConstant, projectIdentifier)
	pageBodies, listingError := client.collectPages(requestContext, requestPath, listingQuery)
	if listingError != nil {
		return nil, fmt.Errorf(issueListErrorTemplateConstant, projectIdentifier, listingError)
	}

	issues := make([]Issue, 0)
	for _, pageBody := range pageBodies {
		var pageIssues []Issue
		if decodeError := decodeResponse(pageBody, &pageIssues); decodeError != nil {
			return nil, fmt.Errorf(issueListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		issues = append(issues, pageIssues...)
	}

	return issues, nil
}

// CreateIssue creates an issue in a project.
func (client *Client) CreateIssue(requestContext context.Context, projectIdentifier int64, payload IssueCreatePayload) (Issue, error) {
	requestPath := fmt.Sprintf(projectIssuesPathTemplateConstant, projectIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return Issue{}, fmt.Errorf(issueCreateErrorTemplateConstant, projectIdentifier, requestError)
	}

	var createdIssue Issue
	if decodeError := decodeResponse(responseBody, &createdIssue); decodeError != nil {
		return Issue{}, fmt.Errorf(issueCreateErrorTemplateConstant, projectIdentifier, decodeError)
	}

	return createdIssue, nil
}

// CloseIssue sends the close state event for an issue.
func (client *Client) CloseIssue(requestContext context.Context, projectIdentifier int64, issueInternalIdentifier int64) (Issue, error) {
	requestPath := fmt.Sprintf(issuePathTemplateConstant, projectIdentifier, issueInternalIdentifier)
	payload := issueStateUpdatePayload{StateEvent: IssueStateEventClose}

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPut, requestPath, nil, payload)
	if requestError != nil {
		return Issue{}, fmt.Errorf(issueCloseErrorTemplateConstant, issueInternalIdentifier, projectIdentifier, requestError)
	}

	var updatedIssue Issue
	if decodeError := decodeResponse(responseBody, &updatedIssue); decodeError != nil {
		return Issue{}, fmt.Errorf(issueCloseErrorTemplateConstant, issueInternalIdentifier, projectIdentifier, decodeError)
	}

	return updatedIssue, nil
}

// FetchIssueNotes lists the notes of an issue oldest first.
func (client *Client) FetchIssueNotes(requestContext context.Context, projectIdentifier int64, issueInternalIdentifier int64) ([]Note, error) {
	listingQuery := url.Values{}
	listingQuery.Set(sortQueryParameterConstant, ascendingSortValueConstant)

	requestPath := fmt.Sprintf(issueNotesPathTemplateConstant, projectIdentifier, issueInternalIdentifier)
	pageBodies, listingError := client.collectPages(requestContext, requestPath, listingQuery)
	if listingError != nil {
		return nil, fmt.Errorf(issueNoteListErrorTemplateConstant, issueInternalIdentifier, projectIdentifier, listingError)
	}

	issueNotes := make([]Note, 0)
	for _, pageBody := range pageBodies {
		var pageNotes []Note
		if decodeError := decodeResponse(pageBody, &pageNotes); decodeError != nil {
			return nil, fmt.Errorf(issueNoteListErrorTemplateConstant, issueInternalIdentifier, projectIdentifier, decodeError)
		}
		issueNotes = append(issueNotes, pageNotes...)
	}

	return issueNotes, nil
}

// CreateIssueNote attaches a note to an issue.
func (client *Client) CreateIssueNote(requestContext context.Context, projectIdentifier int64, issueInternalIdentifier int64, payload NoteCreatePayload) (Note, error) {
	requestPath := fmt.Sprintf(issueNotesPathTemplateConstant, projectIdentifier, issueInternalIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return Note{}, fmt.Errorf(issueNoteCreateErrorTemplateConstant, issueInternalIdentifier, projectIdentifier, requestError)
	}

	var createdNote Note
	if decodeError := decodeResponse(responseBody, &createdNote); decodeError != nil {
		return Note{}, fmt.Errorf(issueNoteCreateErrorTemplateConstant, issueInternalIdentifier, projectIdentifier, decodeError)
	}

	return createdNote, nil
}
