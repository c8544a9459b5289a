// Package notion implements store.Store against the Notion REST API.
// Notion has no official Go SDK, so the client speaks the versioned HTTP
// API directly: typed errors carry the API's code and message, and the
// transient/permanent split follows the response status.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ariel-frischer/mergelog/internal/store"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
	userAgent      = "mergelog"

	// pageSize for paginated block reads; Notion's maximum.
	pageSize = 100

	// queryLimit for date queries. More than one means a duplicate day page
	// left behind by a racing run; the locator wants to see those.
	queryLimit = 5
)

// Client is a Notion API client, optionally scoped to one database. An
// empty database ID is allowed for direct page appends; the
// database-scoped operations (Schema, FindByDate, CreatePage) reject it.
type Client struct {
	baseURL    string
	token      string
	databaseID string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// New returns a Client for the given integration token. databaseID may be
// empty when only page-scoped operations will be used.
func New(token, databaseID string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("notion: integration token required")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		databaseID: strings.TrimSpace(databaseID),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Schema fetches the database schema with fields in the API's enumeration
// order, which the resolver relies on for first-match selection.
func (c *Client) Schema(ctx context.Context) (store.Schema, error) {
	if err := c.requireDatabase(); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodGet, "/databases/"+c.databaseID, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeSchema(data)
}

// requireDatabase guards the database-scoped operations when the client
// was built without a database ID.
func (c *Client) requireDatabase() error {
	if c.databaseID == "" {
		return fmt.Errorf("notion: database id required (set NOTION_DATABASE_ID)")
	}
	return nil
}

// FindByDate returns the pages whose date property equals day.
func (c *Client) FindByDate(ctx context.Context, dateField, day string) ([]store.Page, error) {
	if err := c.requireDatabase(); err != nil {
		return nil, err
	}
	payload := map[string]any{
		"filter": map[string]any{
			"property": dateField,
			"date":     map[string]any{"equals": day},
		},
		"page_size": queryLimit,
	}
	data, err := c.do(ctx, http.MethodPost, "/databases/"+c.databaseID+"/query", payload, nil)
	if err != nil {
		return nil, err
	}

	var res struct {
		Results []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("notion: decoding query response: %w", err)
	}

	pages := make([]store.Page, 0, len(res.Results))
	for _, r := range res.Results {
		pages = append(pages, store.Page{ID: r.ID, URL: r.URL})
	}
	return pages, nil
}

// Body reads a page's full block content, following pagination cursors.
func (c *Client) Body(ctx context.Context, pageID string) (store.Body, error) {
	var body store.Body
	cursor := ""
	for {
		query := url.Values{"page_size": {fmt.Sprint(pageSize)}}
		if cursor != "" {
			query.Set("start_cursor", cursor)
		}
		data, err := c.do(ctx, http.MethodGet, "/blocks/"+pageID+"/children", nil, query)
		if err != nil {
			return nil, err
		}

		var res struct {
			Results    []json.RawMessage `json:"results"`
			HasMore    bool              `json:"has_more"`
			NextCursor string            `json:"next_cursor"`
		}
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("notion: decoding block children: %w", err)
		}
		for _, raw := range res.Results {
			block, ok, err := decodeBlock(raw)
			if err != nil {
				return nil, err
			}
			if ok {
				body = append(body, block)
			}
		}
		if !res.HasMore {
			return body, nil
		}
		cursor = res.NextCursor
	}
}

// CreatePage creates a page in the database with the title and date
// properties set and an empty body.
func (c *Client) CreatePage(ctx context.Context, titleField, dateField, title, day string) (store.Page, error) {
	if err := c.requireDatabase(); err != nil {
		return store.Page{}, err
	}
	payload := map[string]any{
		"parent": map[string]any{"database_id": c.databaseID},
		"properties": map[string]any{
			dateField: map[string]any{
				"date": map[string]any{"start": day},
			},
			titleField: map[string]any{
				"title": []any{
					map[string]any{"type": "text", "text": map[string]any{"content": title}},
				},
			},
		},
	}
	data, err := c.do(ctx, http.MethodPost, "/pages", payload, nil)
	if err != nil {
		return store.Page{}, err
	}

	var res struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return store.Page{}, fmt.Errorf("notion: decoding created page: %w", err)
	}
	return store.Page{ID: res.ID, URL: res.URL}, nil
}

// AppendBlocks appends blocks to the end of the page. Notion's append is
// inherently additive, so existing content is never touched.
func (c *Client) AppendBlocks(ctx context.Context, pageID string, blocks []store.Block) error {
	children := make([]any, 0, len(blocks))
	for _, b := range blocks {
		children = append(children, encodeBlock(b))
	}
	payload := map[string]any{"children": children}
	_, err := c.do(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", payload, nil)
	return err
}

// PageURL fetches the page's shareable URL.
func (c *Client) PageURL(ctx context.Context, pageID string) (string, error) {
	data, err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, nil)
	if err != nil {
		return "", err
	}
	var res struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("notion: decoding page: %w", err)
	}
	return res.URL, nil
}

// do issues one API call and returns the raw response body. Non-2xx
// responses become *store.APIError carrying Notion's error code so callers
// can classify transient failures.
func (c *Client) do(ctx context.Context, method, path string, payload any, query url.Values) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("notion: encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("notion: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("notion: reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &store.APIError{Service: "notion", Status: resp.StatusCode}
		var detail struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &detail) == nil {
			apiErr.Code = detail.Code
			apiErr.Message = detail.Message
		}
		return nil, apiErr
	}
	return data, nil
}
