// Package store defines the document-store contract the upsert engine is
// written against: the schema and content models for the target changelog
// database and the operations a backing store must provide. The Notion
// implementation lives in the notion subpackage.
package store

import "context"

// FieldKind classifies a schema field by its role in the target database.
type FieldKind string

const (
	// KindTitle marks the field holding a page's human-readable title.
	KindTitle FieldKind = "title"
	// KindDate marks the field holding a page's calendar date.
	KindDate FieldKind = "date"
)

// Field is a single named field in the target database's schema.
type Field struct {
	Name string
	Kind FieldKind
}

// Schema is the target database's field list in the store's natural
// enumeration order. Order matters: when no override is configured, the
// first field of a required kind wins.
type Schema []Field

// Lookup returns the kind of the named field and whether it exists.
func (s Schema) Lookup(name string) (FieldKind, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return "", false
}

// First returns the name of the first field with the given kind.
func (s Schema) First(kind FieldKind) (string, bool) {
	for _, f := range s {
		if f.Kind == kind {
			return f.Name, true
		}
	}
	return "", false
}

// BlockType identifies the structural role of a content block.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockBullet    BlockType = "bullet"
	BlockDivider   BlockType = "divider"
)

// Block is one unit of page content. Text carries the plain-text rendering;
// Link, when set, is a URL attached to the text.
type Block struct {
	Type BlockType
	Text string
	Link string
}

// Body is a page's ordered block content.
type Body []Block

// Page is a durable reference to a page in the target database.
// URL may be empty when the store did not return one with the reference.
type Page struct {
	ID  string
	URL string
}

// Store is the set of operations the upsert engine needs from the document
// store. Implementations return *APIError for store-level failures so
// callers can distinguish transient from permanent ones.
type Store interface {
	// Schema fetches the target database's field schema.
	Schema(ctx context.Context) (Schema, error)

	// FindByDate returns the pages whose date field equals day (YYYY-MM-DD),
	// in the store's enumeration order.
	FindByDate(ctx context.Context, dateField, day string) ([]Page, error)

	// Body fetches a page's current block content.
	Body(ctx context.Context, pageID string) (Body, error)

	// CreatePage creates a page with the given title and date field values
	// and an empty body.
	CreatePage(ctx context.Context, titleField, dateField, title, day string) (Page, error)

	// AppendBlocks appends blocks to the end of a page's body. Existing
	// content is never rewritten.
	AppendBlocks(ctx context.Context, pageID string, blocks []Block) error

	// PageURL returns the page's shareable URL.
	PageURL(ctx context.Context, pageID string) (string, error)
}
