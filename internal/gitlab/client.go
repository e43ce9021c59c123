package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	apiPathPrefixConstant          = "/api/v4"
	currentUserPathConstant        = "/user"
	privateTokenHeaderNameConstant = "PRIVATE-TOKEN"
	nextPageHeaderNameConstant     = "X-Next-Page"
	retryAfterHeaderNameConstant   = "Retry-After"
	acceptHeaderNameConstant       = "Accept"
	contentTypeHeaderNameConstant  = "Content-Type"
	jsonContentTypeConstant        = "application/json"
	sessionCookieNameConstant      = "_gitlab_session"
	httpSchemePrefixConstant       = "http://"
	httpsSchemePrefixConstant      = "https://"
	trailingSlashConstant          = "/"
	querySeparatorConstant         = "?"
	pageQueryParameterConstant     = "page"
	perPageQueryParameterConstant  = "per_page"
	orderByQueryParameterConstant  = "order_by"
	sortQueryParameterConstant     = "sort"
	identifierOrderValueConstant   = "id"
	ascendingSortValueConstant     = "asc"
)

const (
	requestStartedLogMessageConstant   = "executing API request"
	requestCompletedLogMessageConstant = "API request completed"
	requestRetryLogMessageConstant     = "retrying API request"
	methodLogFieldNameConstant         = "method"
	urlLogFieldNameConstant            = "url"
	statusCodeLogFieldNameConstant     = "status_code"
)

const (
	payloadEncodeErrorTemplateConstant    = "unable to encode request payload: %w"
	paginationLimitErrorTemplateConstant  = "listing exceeded %d pages"
	currentUserFetchErrorTemplateConstant = "unable to fetch current user: %w"
	responseDecodeErrorTemplateConstant   = "unable to decode response body: %w"
)

const (
	defaultRequestTimeout  = 30 * time.Second
	requestRetryMaxElapsed = 30 * time.Second
	retryAfterWaitCeiling  = 30 * time.Second
)

const (
	maxPageSizeConstant          = 100
	maxPageCountConstant         = 1000
	maxResponseBodyBytesConstant = 32 << 20
)

// HTTPClient abstracts the transport used for API requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// ClientConfiguration carries the connection settings for one instance.
// SessionCookie is only needed when avatars are downloaded.
type ClientConfiguration struct {
	BaseURL       string
	Token         string
	SessionCookie string
}

// Client talks to a single GitLab instance.
type Client struct {
	logger        *zap.Logger
	httpClient    HTTPClient
	baseURL       string
	token         string
	sessionCookie string
}

// NewClient validates the configuration and creates a client for one instance.
func NewClient(logger *zap.Logger, httpClient HTTPClient, configuration ClientConfiguration) (*Client, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	normalizedBaseURL := normalizeBaseURL(configuration.BaseURL)
	if len(normalizedBaseURL) == 0 {
		return nil, ErrBaseURLNotConfigured
	}

	trimmedToken := strings.TrimSpace(configuration.Token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenNotConfigured
	}

	resolvedHTTPClient := httpClient
	if resolvedHTTPClient == nil {
		resolvedHTTPClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	client := &Client{
		logger:        logger,
		httpClient:    resolvedHTTPClient,
		baseURL:       normalizedBaseURL,
		token:         trimmedToken,
		sessionCookie: strings.TrimSpace(configuration.SessionCookie),
	}

	return client, nil
}

// BaseURL returns the normalized instance URL the client talks to.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// Token returns the access token used for API authentication.
func (client *Client) Token() string {
	return client.token
}

// CurrentUser fetches the account owning the configured token.
func (client *Client) CurrentUser(requestContext context.Context) (User, error) {
	responseBody, requestError := client.executeJSONRequest(requestContext, http.MethodGet, currentUserPathConstant, nil, nil)
	if requestError != nil {
		return User{}, fmt.Errorf(currentUserFetchErrorTemplateConstant, requestError)
	}

	var currentUser User
	if decodeError := decodeResponse(responseBody, &currentUser); decodeError != nil {
		return User{}, fmt.Errorf(currentUserFetchErrorTemplateConstant, decodeError)
	}

	return currentUser, nil
}

func normalizeBaseURL(rawBaseURL string) string {
	trimmedBaseURL := strings.TrimSpace(rawBaseURL)
	if len(trimmedBaseURL) == 0 {
		return ""
	}

	if !strings.HasPrefix(trimmedBaseURL, httpSchemePrefixConstant) && !strings.HasPrefix(trimmedBaseURL, httpsSchemePrefixConstant) {
		trimmedBaseURL = httpsSchemePrefixConstant + trimmedBaseURL
	}

	return strings.TrimSuffix(trimmedBaseURL, trailingSlashConstant)
}

func (client *Client) buildAPIURL(requestPath string, query url.Values) string {
	requestURL := client.baseURL + apiPathPrefixConstant + requestPath
	if len(query) > 0 {
		requestURL = requestURL + querySeparatorConstant + query.Encode()
	}

	return requestURL
}

func (client *Client) executeJSONRequest(requestContext context.Context, method string, requestPath string, query url.Values, payload any) ([]byte, error) {
	var payloadBody []byte
	if payload != nil {
		encodedPayload, encodeError := json.Marshal(payload)
		if encodeError != nil {
			return nil, fmt.Errorf(payloadEncodeErrorTemplateConstant, encodeError)
		}
		payloadBody = encodedPayload
	}

	responseBody, _, requestError := client.executeRequest(requestContext, method, client.buildAPIURL(requestPath, query), payloadBody, jsonContentTypeConstant)

	return responseBody, requestError
}

// executeRequest performs one authenticated request, retrying transport
// failures, 5xx responses, and 429 responses until the backoff budget is
// spent. Other non-success statuses surface immediately as APIError.
func (client *Client) executeRequest(requestContext context.Context, method string, requestURL string, payloadBody []byte, contentType string) ([]byte, http.Header, error) {
	client.logger.Debug(requestStartedLogMessageConstant,
		zap.String(methodLogFieldNameConstant, method),
		zap.String(urlLogFieldNameConstant, requestURL))

	var responseBody []byte
	var responseHeader http.Header
	var responseStatus int

	requestOperation := func() error {
		var payloadReader io.Reader
		if payloadBody != nil {
			payloadReader = bytes.NewReader(payloadBody)
		}

		request, requestCreationError := http.NewRequestWithContext(requestContext, method, requestURL, payloadReader)
		if requestCreationError != nil {
			return backoff.Permanent(requestCreationError)
		}
		request.Header.Set(privateTokenHeaderNameConstant, client.token)
		request.Header.Set(acceptHeaderNameConstant, jsonContentTypeConstant)
		if payloadBody != nil {
			request.Header.Set(contentTypeHeaderNameConstant, contentType)
		}

		response, transportError := client.httpClient.Do(request)
		if transportError != nil {
			client.logger.Debug(requestRetryLogMessageConstant,
				zap.String(urlLogFieldNameConstant, requestURL),
				zap.Error(transportError))
			return transportError
		}
		defer func() {
			_ = response.Body.Close()
		}()

		limitedBody, readError := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytesConstant))
		if readError != nil {
			return readError
		}

		if response.StatusCode == http.StatusTooManyRequests {
			client.waitForRetryAfter(requestContext, response.Header)
			return APIError{StatusCode: response.StatusCode, Message: string(limitedBody)}
		}
		if response.StatusCode >= http.StatusInternalServerError {
			client.logger.Debug(requestRetryLogMessageConstant,
				zap.String(urlLogFieldNameConstant, requestURL),
				zap.Int(statusCodeLogFieldNameConstant, response.StatusCode))
			return APIError{StatusCode: response.StatusCode, Message: string(limitedBody)}
		}
		if response.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(APIError{StatusCode: response.StatusCode, Message: string(limitedBody)})
		}

		responseBody = limitedBody
		responseHeader = response.Header
		responseStatus = response.StatusCode

		return nil
	}

	if retryError := backoff.Retry(requestOperation, backoff.WithContext(newRequestBackoff(), requestContext)); retryError != nil {
		return nil, nil, retryError
	}

	client.logger.Debug(requestCompletedLogMessageConstant,
		zap.String(methodLogFieldNameConstant, method),
		zap.String(urlLogFieldNameConstant, requestURL),
		zap.Int(statusCodeLogFieldNameConstant, responseStatus))

	return responseBody, responseHeader, nil
}

// newRequestBackoff returns a fresh policy per request; backoff instances
// are stateful and must not be shared.
func newRequestBackoff() backoff.BackOff {
	requestBackoff := backoff.NewExponentialBackOff()
	requestBackoff.MaxElapsedTime = requestRetryMaxElapsed

	return requestBackoff
}

func (client *Client) waitForRetryAfter(requestContext context.Context, responseHeader http.Header) {
	retryAfterValue := strings.TrimSpace(responseHeader.Get(retryAfterHeaderNameConstant))
	if len(retryAfterValue) == 0 {
		return
	}

	retryAfterSeconds, parseError := strconv.Atoi(retryAfterValue)
	if parseError != nil || retryAfterSeconds <= 0 {
		return
	}

	waitDuration := time.Duration(retryAfterSeconds) * time.Second
	if waitDuration > retryAfterWaitCeiling {
		waitDuration = retryAfterWaitCeiling
	}

	waitTimer := time.NewTimer(waitDuration)
	defer waitTimer.Stop()

	select {
	case <-requestContext.Done():
	case <-waitTimer.C:
	}
}

// collectPages follows X-Next-Page headers and returns one raw body per
// page. The page budget bounds malformed pagination responses.
func (client *Client) collectPages(requestContext context.Context, requestPath string, query url.Values) ([][]byte, error) {
	pageBodies := make([][]byte, 0)
	pageNumber := 1

	for pageIndex := 0; pageIndex < maxPageCountConstant; pageIndex++ {
		pageQuery := url.Values{}
		for parameterName, parameterValues := range query {
			pageQuery[parameterName] = parameterValues
		}
		pageQuery.Set(pageQueryParameterConstant, strconv.Itoa(pageNumber))
		pageQuery.Set(perPageQueryParameterConstant, strconv.Itoa(maxPageSizeConstant))

		responseBody, responseHeader, requestError := client.executeRequest(requestContext, http.MethodGet, client.buildAPIURL(requestPath, pageQuery), nil, jsonContentTypeConstant)
		if requestError != nil {
			return nil, requestError
		}
		pageBodies = append(pageBodies, responseBody)

		nextPageValue := strings.TrimSpace(responseHeader.Get(nextPageHeaderNameConstant))
		if len(nextPageValue) == 0 {
			return pageBodies, nil
		}
		parsedNextPage, parseError := strconv.Atoi(nextPageValue)
		if parseError != nil || parsedNextPage <= pageNumber {
			return pageBodies, nil
		}
		pageNumber = parsedNextPage
	}

	return nil, fmt.Errorf(paginationLimitErrorTemplateConstant, maxPageCountConstant)
}

func decodeResponse(responseBody []byte, target any) error {
	if decodeError := json.Unmarshal(responseBody, target); decodeError != nil {
		return fmt.Errorf(responseDecodeErrorTemplateConstant, decodeError)
	}

	return nil
}
