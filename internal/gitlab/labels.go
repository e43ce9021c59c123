package gitlab

import (
	"context"
	"fmt"
	"net/http"
)

const (
	projectLabelsPathTemplateConstant = "/projects/%d/labels"
	labelListErrorTemplateConstant    = "unable to list labels of project %d: %w"
	labelCreateErrorTemplateConstant  = "unable to create label %s in project %d: %w"
)

// FetchLabels lists every label of a project.
func (client *Client) FetchLabels(requestContext context.Context, projectIdentifier int64) ([]Label, error) {
	requestPath := fmt.Sprintf(projectLabelsPathTemplateConstant, projectIdentifier)

	pageBodies, listingError := client.collectPages(requestContext, requestPath, nil)
	if listingError != nil {
		return nil, fmt.Errorf(labelListErrorTemplateConstant, projectIdentifier, listingError)
	}

	labels := make([]Label, 0)
	for _, pageBody := range pageBodies {
		var pageLabels []Label
		if decodeError := decodeResponse(pageBody, &pageLabels); decodeError != nil {
			return nil, fmt.Errorf(labelListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		labels = append(labels, pageLabels...)
	}

	return labels, nil
}

// CreateLabel creates a label in a project.
func (client *Client) CreateLabel(requestContext context.Context, projectIdentifier int64, payload LabelCreatePayload) (Label, error) {
	requestPath := fmt.Sprintf(projectLabelsPathTemplateConstant, projectIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return Label{}, fmt.Errorf(labelCreateErrorTemplateConstant, payload.Name, projectIdentifier, requestError)
	}

	var createdLabel Label
	if decodeError := decodeResponse(responseBody, &createdLabel); decodeError != nil {
		return Label{}, fmt.Errorf(labelCreateErrorTemplateConstant, payload.Name, projectIdentifier, decodeError)
	}

	return createdLabel, nil
}
