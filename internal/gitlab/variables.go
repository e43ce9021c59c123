package gitlab

import (
	"context"
	"fmt"
	"net/http"
)

const (
	projectVariablesPathTemplateConstant = "/projects/%d/variables"
	variableListErrorTemplateConstant    = "unable to list variables of project %d: %w"
	variableCreateErrorTemplateConstant  = "unable to create variable %s in project %d: %w"
)

// FetchVariables lists every CI/CD variable of a project.
func (client *Client) FetchVariables(requestContext context.Context, projectIdentifier int64) ([]Variable, error) {
	requestPath := fmt.Sprintf(projectVariablesPathTemplateConstant, projectIdentifier)

	pageBodies, listingError := client.collectPages(requestContext, requestPath, nil)
	if listingError != nil {
		return nil, fmt.Errorf(variableListErrorTemplateConstant, projectIdentifier, listingError)
	}

	variables := make([]Variable, 0)
	for _, pageBody := range pageBodies {
		var pageVariables []Variable
		if decodeError := decodeResponse(pageBody, &pageVariables); decodeError != nil {
			return nil, fmt.Errorf(variableListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		variables = append(variables, pageVariables...)
	}

	return variables, nil
}

// CreateVariable creates a CI/CD variable in a project.
func (client *Client) CreateVariable(requestContext context.Context, projectIdentifier int64, payload VariableCreatePayload) (Variable, error) {
	requestPath := fmt.Sprintf(projectVariablesPathTemplateConstant, projectIdentifier)

	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodPost, requestPath, nil, payload)
	if requestError != nil {
		return Variable{}, fmt.Errorf(variableCreateErrorTemplateConstant, payload.Key, projectIdentifier, requestError)
	}

	var createdVariable Variable
	if decodeError := decodeResponse(responseBody, &createdVariable); decodeError != nil {
		return Variable{}, fmt.Errorf(variableCreateErrorTemplateConstant, payload.Key, projectIdentifier, decodeError)
	}

	return createdVariable, nil
}
