package notion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ariel-frischer/mergelog/internal/store"
)

// decodeSchema parses the database object's "properties" map into an
// ordered schema. encoding/json maps drop key order, so this walks the
// token stream instead: the order Notion serializes is the order the
// resolver's first-match rule sees.
func decodeSchema(data []byte) (store.Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("notion: decoding database object: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("notion: decoding database object: %w", err)
		}
		key, _ := tok.(string)
		if key != "properties" {
			if err := skipValue(dec); err != nil {
				return nil, fmt.Errorf("notion: decoding database object: %w", err)
			}
			continue
		}

		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("notion: decoding properties: %w", err)
		}
		var schema store.Schema
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("notion: decoding properties: %w", err)
			}
			name, _ := nameTok.(string)
			var meta struct {
				Type string `json:"type"`
			}
			if err := dec.Decode(&meta); err != nil {
				return nil, fmt.Errorf("notion: decoding property %q: %w", name, err)
			}
			schema = append(schema, store.Field{Name: name, Kind: store.FieldKind(meta.Type)})
		}
		return schema, nil
	}
	return nil, fmt.Errorf("notion: database object has no properties")
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("unexpected token %v, want %v", tok, want)
	}
	return nil
}

// skipValue consumes one JSON value (scalar, object, or array).
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			t, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := t.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}

// richText is the fragment of Notion's rich text objects this client
// needs. The API fills plain_text and href on reads; text.content and
// text.link are the write-side shape, kept as a fallback.
type richText struct {
	PlainText string `json:"plain_text"`
	Href      string `json:"href"`
	Text      struct {
		Content string `json:"content"`
		Link    *struct {
			URL string `json:"url"`
		} `json:"link"`
	} `json:"text"`
}

func (rt richText) text() string {
	if rt.PlainText != "" {
		return rt.PlainText
	}
	return rt.Text.Content
}

func (rt richText) link() string {
	if rt.Href != "" {
		return rt.Href
	}
	if rt.Text.Link != nil {
		return rt.Text.Link.URL
	}
	return ""
}

// decodeBlock converts one API block into the store content model. Blocks
// with no text payload and no structural meaning (embeds, images) are
// dropped; the guard only needs text and the merger only appends.
func decodeBlock(raw json.RawMessage) (store.Block, bool, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return store.Block{}, false, fmt.Errorf("notion: decoding block: %w", err)
	}

	var blockType string
	if typeRaw, ok := envelope["type"]; ok {
		if err := json.Unmarshal(typeRaw, &blockType); err != nil {
			return store.Block{}, false, fmt.Errorf("notion: decoding block type: %w", err)
		}
	}

	if blockType == "divider" {
		return store.Block{Type: store.BlockDivider}, true, nil
	}

	payload, ok := envelope[blockType]
	if !ok {
		return store.Block{}, false, nil
	}
	var content struct {
		RichText []richText `json:"rich_text"`
	}
	if err := json.Unmarshal(payload, &content); err != nil {
		return store.Block{}, false, fmt.Errorf("notion: decoding %s block: %w", blockType, err)
	}
	if len(content.RichText) == 0 {
		return store.Block{}, false, nil
	}

	var text strings.Builder
	link := ""
	for _, rt := range content.RichText {
		text.WriteString(rt.text())
		if link == "" {
			link = rt.link()
		}
	}

	block := store.Block{Text: text.String(), Link: link}
	switch blockType {
	case "heading_1", "heading_2", "heading_3":
		block.Type = store.BlockHeading
	case "bulleted_list_item", "numbered_list_item":
		block.Type = store.BlockBullet
	default:
		block.Type = store.BlockParagraph
	}
	return block, true, nil
}

// encodeBlock converts a store block into the API's block object shape.
// Headings map to heading_2: a page's own title is the heading_1 level.
func encodeBlock(b store.Block) map[string]any {
	switch b.Type {
	case store.BlockDivider:
		return map[string]any{
			"object":  "block",
			"type":    "divider",
			"divider": map[string]any{},
		}
	case store.BlockHeading:
		return textBlock("heading_2", b)
	case store.BlockBullet:
		return textBlock("bulleted_list_item", b)
	default:
		return textBlock("paragraph", b)
	}
}

func textBlock(blockType string, b store.Block) map[string]any {
	text := map[string]any{"content": b.Text}
	if b.Link != "" {
		text["link"] = map[string]any{"url": b.Link}
	}
	return map[string]any{
		"object": "block",
		"type":   blockType,
		blockType: map[string]any{
			"rich_text": []any{
				map[string]any{"type": "text", "text": text},
			},
		},
	}
}
