package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aeosinnotion/pkg/config"
	"aeosinnotion/pkg/limiter"
	"aeosinnotion/pkg/logx"
	"aeosinnotion/pkg/metrics"
)

// APIError is an error envelope returned by the Notion API.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("notion API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a Notion object_not_found error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Code == "object_not_found" || apiErr.StatusCode == http.StatusNotFound)
}

// Client performs authenticated Notion API requests. Every request is dispatched
// through the shared limiter.
type Client struct {
	baseURL  string
	token    string
	limiter  *limiter.Limiter
	recorder metrics.Recorder
	logger   *logx.Logger
	client   *http.Client
}

// NewClient creates a new Notion API client. An empty baseURL selects the public API.
func NewClient(baseURL, token string, lim *limiter.Limiter, recorder metrics.Recorder) *Client {
	if baseURL == "" {
		baseURL = config.DefaultNotionBaseURL
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		token:    token,
		limiter:  lim,
		recorder: metrics.OrNop(recorder),
		logger:   logx.NewLogger("notion-client"),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// doRequest queues one API call on the limiter and decodes the response into out.
// endpoint is the route template used as the metrics label.
func (c *Client) doRequest(ctx context.Context, method, endpoint, path string, body, out interface{}) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	return c.limiter.Schedule(ctx, func(ctx context.Context) error {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Notion-Version", config.NotionAPIVersion)
		req.Header.Set("Accept", "application/json")
		if bodyReader != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.logger.Debug("%s %s", method, path)

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			c.recorder.ObserveNotionRequest(method, endpoint, 0, time.Since(start))
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		c.recorder.ObserveNotionRequest(method, endpoint, resp.StatusCode, time.Since(start))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return decodeError(resp.StatusCode, respBody)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}
	apiErr.StatusCode = status
	return apiErr
}

// CreatePage creates a page.
func (c *Client) CreatePage(ctx context.Context, params *CreatePageRequest) (*Page, error) {
	var page Page
	if err := c.doRequest(ctx, http.MethodPost, "/pages", "/pages", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage updates page properties or archives the page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, params *UpdatePageRequest) (*Page, error) {
	var page Page
	if err := c.doRequest(ctx, http.MethodPatch, "/pages/{id}", "/pages/"+pageID, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// QueryDatabase runs one page of a database query.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, params *QueryRequest) (*PageList, error) {
	var list PageList
	path := "/databases/" + databaseID + "/query"
	if err := c.doRequest(ctx, http.MethodPost, "/databases/{id}/query", path, params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AppendBlockChildren appends blocks under a page or block and returns the created blocks.
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, children []Block) (*BlockList, error) {
	var list BlockList
	body := map[string]interface{}{"children": children}
	path := "/blocks/" + blockID + "/children"
	if err := c.doRequest(ctx, http.MethodPatch, "/blocks/{id}/children", path, body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListBlockChildren returns one page of a block's children.
func (c *Client) ListBlockChildren(ctx context.Context, blockID, startCursor string, pageSize int) (*BlockList, error) {
	path := fmt.Sprintf("/blocks/%s/children?page_size=%d", blockID, pageSize)
	if startCursor != "" {
		path += "&start_cursor=" + startCursor
	}
	var list BlockList
	if err := c.doRequest(ctx, http.MethodGet, "/blocks/{id}/children", path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// SetToDoChecked updates the checked flag of a to_do block.
func (c *Client) SetToDoChecked(ctx context.Context, blockID string, checked bool) (*Block, error) {
	var block Block
	body := map[string]interface{}{
		BlockToDo: map[string]bool{"checked": checked},
	}
	if err := c.doRequest(ctx, http.MethodPatch, "/blocks/{id}", "/blocks/"+blockID, body, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// CreateComment adds a comment to a page.
func (c *Client) CreateComment(ctx context.Context, pageID, text string) (*Comment, error) {
	params := &Comment{
		Parent:   Parent{PageID: pageID},
		RichText: []RichText{NewText(text, "")},
	}
	var comment Comment
	if err := c.doRequest(ctx, http.MethodPost, "/comments", "/comments", params, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}
