package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/mergelog/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("secret-token", "db-123", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNewValidatesInputs(t *testing.T) {
	_, err := New("", "db-123")
	assert.Error(t, err)

	// No database ID is fine: direct page appends do not need one.
	_, err = New("tok", "  ")
	assert.NoError(t, err)
}

func TestDatabaselessClientSupportsPageOperations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/blocks/p1/children":
			fmt.Fprint(w, `{"results": [], "has_more": false}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/blocks/p1/children":
			fmt.Fprint(w, `{}`)
		case r.Method == http.MethodGet && r.URL.Path == "/pages/p1":
			fmt.Fprint(w, `{"url": "https://notion.so/p1"}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := New("tok", "", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ctx := context.Background()

	body, err := c.Body(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, body)

	err = c.AppendBlocks(ctx, "p1", []store.Block{{Type: store.BlockParagraph, Text: "hi"}})
	assert.NoError(t, err)

	url, err := c.PageURL(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://notion.so/p1", url)
}

func TestDatabaselessClientRejectsDatabaseOperations(t *testing.T) {
	c, err := New("tok", "")
	require.NoError(t, err)

	ctx := context.Background()

	_, err = c.Schema(ctx)
	assert.ErrorContains(t, err, "database id required")

	_, err = c.FindByDate(ctx, "Date", "2024-03-15")
	assert.ErrorContains(t, err, "database id required")

	_, err = c.CreatePage(ctx, "Name", "Date", "Changelog 2024-03-15", "2024-03-15")
	assert.ErrorContains(t, err, "database id required")
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		fmt.Fprint(w, `{"url":"https://notion.so/p"}`)
	})

	_, err := c.PageURL(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", got.Get("Authorization"))
	assert.Equal(t, apiVersion, got.Get("Notion-Version"))
	assert.Equal(t, userAgent, got.Get("User-Agent"))
}

func TestSchemaPreservesEnumerationOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/db-123", r.URL.Path)
		fmt.Fprint(w, `{
			"object": "database",
			"id": "db-123",
			"properties": {
				"Tags": {"id": "a", "type": "multi_select"},
				"Shipped": {"id": "b", "type": "date"},
				"Name": {"id": "c", "type": "title"},
				"Due": {"id": "d", "type": "date"}
			}
		}`)
	})

	schema, err := c.Schema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Schema{
		{Name: "Tags", Kind: store.FieldKind("multi_select")},
		{Name: "Shipped", Kind: store.KindDate},
		{Name: "Name", Kind: store.KindTitle},
		{Name: "Due", Kind: store.KindDate},
	}, schema)
}

func TestFindByDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/databases/db-123/query", r.URL.Path)

		var payload struct {
			Filter struct {
				Property string `json:"property"`
				Date     struct {
					Equals string `json:"equals"`
				} `json:"date"`
			} `json:"filter"`
			PageSize int `json:"page_size"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Shipped", payload.Filter.Property)
		assert.Equal(t, "2024-03-15", payload.Filter.Date.Equals)
		assert.Equal(t, queryLimit, payload.PageSize)

		fmt.Fprint(w, `{"results":[
			{"id":"p1","url":"https://notion.so/p1"},
			{"id":"p2","url":"https://notion.so/p2"}
		]}`)
	})

	pages, err := c.FindByDate(context.Background(), "Shipped", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, []store.Page{
		{ID: "p1", URL: "https://notion.so/p1"},
		{ID: "p2", URL: "https://notion.so/p2"},
	}, pages)
}

func TestCreatePage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/pages", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		parent := payload["parent"].(map[string]any)
		assert.Equal(t, "db-123", parent["database_id"])

		props := payload["properties"].(map[string]any)
		date := props["Shipped"].(map[string]any)["date"].(map[string]any)
		assert.Equal(t, "2024-03-15", date["start"])

		title := props["Name"].(map[string]any)["title"].([]any)
		text := title[0].(map[string]any)["text"].(map[string]any)
		assert.Equal(t, "Changelog 2024-03-15", text["content"])

		fmt.Fprint(w, `{"id":"p-new","url":"https://notion.so/p-new"}`)
	})

	page, err := c.CreatePage(context.Background(), "Name", "Shipped", "Changelog 2024-03-15", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, store.Page{ID: "p-new", URL: "https://notion.so/p-new"}, page)
}

func TestBodyFollowsPagination(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/blocks/p1/children", r.URL.Path)
		switch r.URL.Query().Get("start_cursor") {
		case "":
			fmt.Fprint(w, `{
				"results": [
					{"type":"heading_2","heading_2":{"rich_text":[{"plain_text":"acme • PR #41: Add metrics"}]}},
					{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"Link: ","href":null},{"plain_text":"https://x/41","href":"https://x/41"}]}}
				],
				"has_more": true,
				"next_cursor": "cur-2"
			}`)
		case "cur-2":
			fmt.Fprint(w, `{
				"results": [
					{"type":"bulleted_list_item","bulleted_list_item":{"rich_text":[{"plain_text":"detail"}]}},
					{"type":"divider","divider":{}},
					{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"[LOGGED-PR-ID:41]"}]}},
					{"type":"image","image":{"external":{"url":"https://img"}}}
				],
				"has_more": false
			}`)
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("start_cursor"))
		}
	})

	body, err := c.Body(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	assert.Equal(t, store.Body{
		{Type: store.BlockHeading, Text: "acme • PR #41: Add metrics"},
		{Type: store.BlockParagraph, Text: "Link: https://x/41", Link: "https://x/41"},
		{Type: store.BlockBullet, Text: "detail"},
		{Type: store.BlockDivider},
		{Type: store.BlockParagraph, Text: "[LOGGED-PR-ID:41]"},
	}, body)
}

func TestAppendBlocks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/blocks/p1/children", r.URL.Path)

		var payload struct {
			Children []map[string]any `json:"children"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Children, 4)

		assert.Equal(t, "heading_2", payload.Children[0]["type"])
		assert.Equal(t, "paragraph", payload.Children[1]["type"])

		link := payload.Children[1]["paragraph"].(map[string]any)["rich_text"].([]any)[0].(map[string]any)["text"].(map[string]any)
		assert.Equal(t, map[string]any{"url": "https://x/42"}, link["link"])

		assert.Equal(t, "divider", payload.Children[2]["type"])
		marker := payload.Children[3]["paragraph"].(map[string]any)["rich_text"].([]any)[0].(map[string]any)["text"].(map[string]any)
		assert.Equal(t, "[LOGGED-PR-ID:42]", marker["content"])

		fmt.Fprint(w, `{"results":[]}`)
	})

	err := c.AppendBlocks(context.Background(), "p1", []store.Block{
		{Type: store.BlockHeading, Text: "acme • PR #42: Fix login bug"},
		{Type: store.BlockParagraph, Text: "Link: https://x/42", Link: "https://x/42"},
		{Type: store.BlockDivider},
		{Type: store.BlockParagraph, Text: "[LOGGED-PR-ID:42]"},
	})
	require.NoError(t, err)
}

func TestErrorClassification(t *testing.T) {
	tests := map[string]struct {
		status        int
		body          string
		wantRetryable bool
		wantCode      string
	}{
		"rate limited": {
			status:        http.StatusTooManyRequests,
			body:          `{"code":"rate_limited","message":"slow down"}`,
			wantRetryable: true,
			wantCode:      "rate_limited",
		},
		"server error": {
			status:        http.StatusBadGateway,
			body:          `upstream blew up`,
			wantRetryable: true,
		},
		"validation error": {
			status:        http.StatusBadRequest,
			body:          `{"code":"validation_error","message":"bad filter"}`,
			wantRetryable: false,
			wantCode:      "validation_error",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})

			_, err := c.Schema(context.Background())
			var apiErr *store.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.wantRetryable, apiErr.Retryable())
			assert.Equal(t, tc.wantCode, apiErr.Code)
		})
	}
}
