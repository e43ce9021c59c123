package gitlab

import (
	"context"
	"fmt"
)

const (
	projectWikisPathTemplateConstant  = "/projects/%d/wikis"
	wikiPageListErrorTemplateConstant = "unable to list wiki pages of project %d: %w"
)

// FetchWikiPages lists the wiki pages of a project. The listing only
// carries page metadata; wiki content moves through the wiki repository.
func (client *Client) FetchWikiPages(requestContext context.Context, projectIdentifier int64) ([]WikiPage, error) {
	requestPath := fmt.Sprintf(projectWikisPathTemplateConstant, projectIdentifier)

	pageBodies, listingError := client.collectPages(requestContext, requestPath, nil)
	if listingError != nil {
		return nil, fmt.Errorf(wikiPageListErrorTemplateConstant, projectIdentifier, listingError)
	}

	wikiPages := make([]WikiPage, 0)
	for _, pageBody := range pageBodies {
		var pageWikiPages []WikiPage
		if decodeError := decodeResponse(pageBody, &pageWikiPages); decodeError != nil {
			return nil, fmt.Errorf(wikiPageListErrorTemplateConstant, projectIdentifier, decodeError)
		}
		wikiPages = append(wikiPages, pageWikiPages...)
	}

	return wikiPages, nil
}
