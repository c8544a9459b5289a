package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/mergelog/internal/store"
)

func TestDecodeSchemaSkipsUnrelatedKeys(t *testing.T) {
	// Keys before "properties" carry nested objects and arrays that must be
	// skipped without derailing the token walk.
	data := []byte(`{
		"object": "database",
		"title": [{"type":"text","text":{"content":"Changelog"}}],
		"parent": {"type":"workspace","workspace":true},
		"properties": {
			"Name": {"id":"a","type":"title","title":{}},
			"Date": {"id":"b","type":"date","date":{}}
		},
		"archived": false
	}`)

	schema, err := decodeSchema(data)
	require.NoError(t, err)
	assert.Equal(t, store.Schema{
		{Name: "Name", Kind: store.KindTitle},
		{Name: "Date", Kind: store.KindDate},
	}, schema)
}

func TestDecodeSchemaWithoutProperties(t *testing.T) {
	_, err := decodeSchema([]byte(`{"object":"database"}`))
	assert.Error(t, err)
}

func TestDecodeBlockDropsTextlessBlocks(t *testing.T) {
	for _, raw := range []string{
		`{"type":"image","image":{"external":{"url":"https://img"}}}`,
		`{"type":"paragraph","paragraph":{"rich_text":[]}}`,
		`{"object":"block"}`,
	} {
		_, ok, err := decodeBlock(json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.False(t, ok, raw)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	blocks := []store.Block{
		{Type: store.BlockHeading, Text: "acme • PR #7: Tidy"},
		{Type: store.BlockParagraph, Text: "Link: https://x/7", Link: "https://x/7"},
		{Type: store.BlockBullet, Text: "detail"},
		{Type: store.BlockDivider},
	}

	for _, b := range blocks {
		encoded, err := json.Marshal(encodeBlock(b))
		require.NoError(t, err)

		decoded, ok, err := decodeBlock(encoded)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, b, decoded)
	}
}
