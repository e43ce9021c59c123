package gitlab

import (
	"context"
	"fmt"
	"net/http"
)

const (
	protectedBranchesPathTemplateConstant      = "/projects/%d/protected_branches"
	protectedTagsPathTemplateConstant          = "/projects/%d/protected_tags"
	protectedBranchListErrorTemplateConstant   = "unable to list protected branches of project %d: %w"
	protectedBranchCreateErrorTemplateConstant = "unable to protect branch %s in project %d: %w"
	protectedTagListErrorTemplateConstant      = "unable to list protected tags of project %d: %w"
	protectedTagCreateErrorTemplateConstant    = "unable to protect tag %s in project %d: %w"
)

// FetchProtectedBranches lists the branch protection rules of a project.
func (client *Client) FetchProtectedBranches(requestContext context.Context, projectIdentifier int64) ([]ProtectedBranch, error) {
	requestPath := fmt.Sprintf(protectedBranchesPathTemplateConstant, projectIdentifier)

	pageBodies, listingError := client.collectPages(requestContext, requestPath, nil)
	if listingError != nil {
		return nil, fmt.Errorf(protectedBranchListErrorTemplateConstant, projectIdentifier, listingError)
	}

	protectedBranches := make([]ProtectedBranch, 0)
	for _, pageBody := range pageBodies {
		var pageProtectedBranches []ProtectedBranch
		if decodeError := decodeResponse(pageBody, &pageProtectedBranches); decodeError != nil {
			return nil, fmt.Errorf(protectedBranchListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		protectedBranches = append(protectedBranches, pageProtectedBranches...)
	}

	return protectedBranches, nil
}

// CreateProtectedBranch creates a branch protection rule in a project.
func (client *Client) CreateProtectedBranch(requestContext context.Context, projectIdentifier int64, payload ProtectedBranchCreatePayload) (ProtectedBranch, error) {
	requestPath := fmt.Sprintf(protectedBranchesPathTemplateConstant, projectIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return ProtectedBranch{}, fmt.Errorf(protectedBranchCreateErrorTemplateConstant, payload.Name, projectIdentifier, requestError)
	}

	var createdProtectedBranch ProtectedBranch
	if decodeError := decodeResponse(responseBody, &createdProtectedBranch); decodeError != nil {
		return ProtectedBranch{}, fmt.Errorf(protectedBranchCreateErrorTemplateConstant, payload.Name, projectIdentifier, decodeError)
	}

	return createdProtectedBranch, nil
}

// FetchProtectedTags lists the tag protection rules of a project.
func (client *Client) FetchProtectedTags(requestContext context.Context, projectIdentifier int64) ([]ProtectedTag, error) {
	requestPath := fmt.Sprintf(protectedTagsPathTemplateConstant, projectIdentifier)

	pageBodies, listingError := client.collectPages(requestContext, requestPath, nil)
	if listingError != nil {
		return nil, fmt.Errorf(protectedTagListErrorTemplateConstant, projectIdentifier, listingError)
	}

	protectedTags := make([]ProtectedTag, 0)
	for _, pageBody := range pageBodies {
		var pageProtectedTags []ProtectedTag
		if decodeError := decodeResponse(pageBody, &pageProtectedTags); decodeError != nil {
			return nil, fmt.Errorf(protectedTagListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		protectedTags = append(protectedTags, pageProtectedTags...)
	}

	return protectedTags, nil
}

// CreateProtectedTag creates a tag protection rule in a project.
func (client *Client) CreateProtectedTag(requestContext context.Context, projectIdentifier int64, payload ProtectedTagCreatePayload) (ProtectedTag, error) {
	requestPath := fmt.Sprintf(protectedTagsPathTemplateConstant, projectIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return ProtectedTag{}, fmt.Errorf(protectedTagCreateErrorTemplateConstant, payload.Name, projectIdentifier, requestError)
	}

	var createdProtectedTag ProtectedTag
	if decodeError := decodeResponse(responseBody, &createdProtectedTag); decodeError != nil {
		return ProtectedTag{}, fmt.Errorf(protectedTagCreateErrorTemplateConstant, payload.Name, projectIdentifier, decodeError)
	}

	return createdProtectedTag, nil
}
