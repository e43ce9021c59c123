package gitlab

import (
	"context"
	"fmt"
	"net/http"
)

const (
	projectMilestonesPathTemplateConstant = "/projects/%d/milestones"
	milestoneListErrorTemplateConstant    = "unable to list milestones of project %d: %w"
	milestoneCreateErrorTemplateConstant  = "unable to create milestone %s in project %d: %w"
)

// FetchMilestones lists every milestone of a project.
func (client *Client) FetchMilestones(requestContext context.Context, projectIdentifier int64) ([]Milestone, error) {
	requestPath := fmt.Sprintf(projectMilestonesPathTemplateConstant, projectIdentifier)

	pageBodies, listingError := client.collectPages(requestContext, requestPath, nil)
	if listingError != nil {
		return nil, fmt.Errorf(milestoneListErrorTemplateConstant, projectIdentifier, listingError)
	}

	milestones := make([]Milestone, 0)
	for _, pageBody := range pageBodies {
		var pageMilestones []Milestone
		if decodeError := decodeResponse(pageBody, &pageMilestones); decodeError != nil {
			return nil, fmt.Errorf(milestoneListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		milestones = append(milestones, pageMilestones...)
	}

	return milestones, nil
}

// CreateMilestone creates a milestone in a project.
func (client *Client) CreateMilestone(requestContext context.Context, projectIdentifier int64, payload MilestoneCreatePayload) (Milestone, error) {
	requestPath := fmt.Sprintf(projectMilestonesPathTemplateConstant, projectIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return Milestone{}, fmt.Errorf(milestoneCreateErrorTemplateConstant, payload.Title, projectIdentifier, requestError)
	}

	var createdMilestone Milestone
	if decodeError := decodeResponse(responseBody, &createdMilestone); decodeError != nil {
		return Milestone{}, fmt.Errorf(milestoneCreateErrorTemplateConstant, payload.Title, projectIdentifier, decodeError)
	}

	return createdMilestone, nil
}
