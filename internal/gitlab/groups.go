package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	groupsPathConstant                    = "/groups"
	groupPathTemplateConstant             = "/groups/%d"
	groupByPathTemplateConstant           = "/groups/%s"
	groupSubgroupsPathTemplateConstant    = "/groups/%d/subgroups"
	groupProjectsPathTemplateConstant     = "/groups/%d/projects"
	withSharedQueryParameterConstant      = "with_shared"
	excludeSharedQueryValueConstant       = "false"
	groupFetchErrorTemplateConstant       = "unable to fetch group %d: %w"
	groupLookupErrorTemplateConstant      = "unable to fetch group %s: %w"
	subgroupListErrorTemplateConstant     = "unable to list subgroups of group %d: %w"
	groupProjectListErrorTemplateConstant = "unable to list projects of group %d: %w"
	groupCreateErrorTemplateConstant      = "unable to create group %s: %w"
	groupDeleteErrorTemplateConstant      = "unable to delete group %d: %w"
)

// FetchGroup retrieves a group by its numeric identifier.
func (client *Client) FetchGroup(requestContext context.Context, groupIdentifier int64) (Group, error) {
	requestPath := fmt.Sprintf(groupPathTemplateConstant, groupIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodGet, requestPath, nil, nil)
	if requestError != nil {
		return Group{}, fmt.Errorf(groupFetchErrorTemplateConstant, groupIdentifier, requestError)
	}

	var fetchedGroup Group
	if decodeError := decodeResponse(responseBody, &fetchedGroup); decodeError != nil {
		return Group{}, fmt.Errorf(groupFetchErrorTemplateConstant, groupIdentifier, decodeError)
	}

	return fetchedGroup, nil
}

// FetchGroupByPath retrieves a group by its full path.
func (client *Client) FetchGroupByPath(requestContext context.Context, groupFullPath string) (Group, error) {
	requestPath := fmt.Sprintf(groupByPathTemplateConstant, url.PathEscape(groupFullPath))

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodGet, requestPath, nil, nil)
	if requestError != nil {
		return Group{}, fmt.Errorf(groupLookupErrorTemplateConstant, groupFullPath, requestError)
	}

	var fetchedGroup Group
	if decodeError := decodeResponse(responseBody, &fetchedGroup); decodeError != nil {
		return Group{}, fmt.Errorf(groupLookupErrorTemplateConstant, groupFullPath, decodeError)
	}

	return fetchedGroup, nil
}

// FetchSubgroups lists the direct subgroups of a group in identifier order.
func (client *Client) FetchSubgroups(requestContext context.Context, groupIdentifier int64) ([]Group, error) {
	listingQuery := url.Values{}
	listingQuery.Set(orderByQueryParameterConstant, identifierOrderValueConstant)
	listingQuery.Set(sortQueryParameterConstant, ascendingSortValueConstant)

	requestPath := fmt.Sprintf(groupSubgroupsPathTemplateConstant, groupIdentifier)
	pageBodies, listingError := client.collectPages(requestContext, requestPath, listingQuery)
	if listingError != nil {
		return nil, fmt.Errorf(subgroupListErrorTemplateConstant, groupIdentifier, listingError)
	}

	subgroups := make([]Group, 0)
	for _, pageBody := range pageBodies {
		var pageSubgroups []Group
		if decodeError := decodeResponse(pageBody, &pageSubgroups); decodeError != nil {
			return nil, fmt.Errorf(subgroupListErrorTemplateConstant, groupIdentifier, decodeError)
		}
		subgroups = append(subgroups, pageSubgroups...)
	}

	return subgroups, nil
}

// FetchGroupProjects lists the projects owned directly by a group in
// identifier order. Projects shared into the group are excluded so each
// project is visited exactly once per traversal.
func (client *Client) FetchGroupProjects(requestContext context.Context, groupIdentifier int64) ([]Project, error) {
	listingQuery := url.Values{}
	listingQuery.Set(orderByQueryParameterConstant, identifierOrderValueConstant)
	listingQuery.Set(sortQueryParameterConstant, ascendingSortValueConstant)
	listingQuery.Set(withSharedQueryParameterConstant, excludeSharedQueryValueConstant)

	requestPath := fmt.Sprintf(groupProjectsPathTemplateConstant, groupIdentifier)
	pageBodies, listingError := client.collectPages(requestContext, requestPath, listingQuery)
	if listingError != nil {
		return nil, fmt.Errorf(groupProjectListErrorTemplateConstant, groupIdentifier, listingError)
	}

	groupProjects := make([]Project, 0)
	for _, pageBody := range pageBodies {
		var pageProjects []Project
		if decodeError := decodeResponse(pageBody, &pageProjects); decodeError != nil {
			return nil, fmt.Errorf(groupProjectListErrorTemplateConstant, groupIdentifier, decodeError)
		}
		groupProjects = append(groupProjects, pageProjects...)
	}

	return groupProjects, nil
}

// CreateGroup creates a group under the parent named by the payload.
func (client *Client) CreateGroup(requestContext context.Context, payload GroupCreatePayload) (Group, error) {
	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, groupsPathConstant, nil, payload)
	if requestError != nil {
		return Group{}, fmt.Errorf(groupCreateErrorTemplateConstant, payload.Path, requestError)
	}

	var createdGroup Group
	if decodeError := decodeResponse(responseBody, &createdGroup); decodeError != nil {
		return Group{}, fmt.Errorf(groupCreateErrorTemplateConstant, payload.Path, decodeError)
	}

	return createdGroup, nil
}

// DeleteGroup removes a group and everything beneath it.
func (client *Client) DeleteGroup(requestContext context.Context, groupIdentifier int64) error {
	requestPath := fmt.Sprintf(groupPathTemplateConstant, groupIdentifier)

	if _, requestError := client.executeJSONRequest(requestContext, http.MethodDelete, requestPath, nil, nil); requestError != nil {
		return fmt.Errorf(groupDeleteErrorTemplateConstant, groupIdentifier, requestError)
	}

	return nil
}
