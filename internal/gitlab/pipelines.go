package gitlab

import (
	"context"
	"fmt"
	"net/http"
)

const (
	projectPipelinesPathTemplateConstant = "/projects/%d/pipelines"
	pipelinePathTemplateConstant         = "/projects/%d/pipelines/%d"
	pipelineListErrorTemplateConstant    = "unable to list pipelines of project %d: %w"
	pipelineDeleteErrorTemplateConstant  = "unable to delete pipeline %d in project %d: %w"
)

// FetchPipelines lists every CI pipeline of a project.
func (client *Client) FetchPipelines(requestContext context.Context, projectIdentifier int64) ([]Pipeline, error) {
	requestPath := fmt.Sprintf(projectPipelinesPathTemplateConstant, projectIdentifier)

	pageBodies, listingError := client.collectPages(requestContext, requestPath, nil)
	if listingError != nil {
		return nil, fmt.Errorf(pipelineListErrorTemplateConstant, projectIdentifier, listingError)
	}

	pipelines := make([]Pipeline, 0)
	for _, pageBody := range pageBodies {
		var pagePipelines []Pipeline
		if decodeError := decodeResponse(pageBody, &pagePipelines); decodeError != nil {
			return nil, fmt.Errorf(pipelineListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		pipelines = append(pipelines, pagePipelines...)
	}

	return pipelines, nil
}

// DeletePipeline removes a CI pipeline from a project.
func (client *Client) DeletePipeline(requestContext context.Context, projectIdentifier int64, pipelineIdentifier int64) error {
	requestPath := fmt.Sprintf(pipelinePathTemplateConstant, projectIdentifier, pipelineIdentifier)

	if _, requestError := client.executeJSONRequest(requestContext, http.MethodDelete, requestPath, nil, nil); requestError != nil {
		return fmt.Errorf(pipelineDeleteErrorTemplateConstant, pipelineIdentifier, projectIdentifier, requestError)
	}

	return nil
}
