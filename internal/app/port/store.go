package port

import "context"

// Document is one record of a collection. Every document carries an "id".
type Document = map[string]any

// FindOptions paginates Find results.
type FindOptions struct {
	Skip  int
	Limit int
}

// DocumentStore is a keyed document collection store.
type DocumentStore interface {
	// Find returns the documents whose top-level fields equal every filter value.
	Find(ctx context.Context, collection string, filter map[string]any, opts FindOptions) ([]Document, error)
	Count(ctx context.Context, collection string, filter map[string]any) (int, error)
	// Insert adds doc, or updates the document with the same id.
	Insert(ctx context.Context, collection string, doc Document) error
	// InsertNew adds doc only when no document has its id. Reports whether it was added.
	InsertNew(ctx context.Context, collection string, doc Document) (bool, error)
	// UpdateOne applies patch to the first match. A patch with a "$set" key is
	// merged, anything else replaces the document. Missing documents are inserted.
	UpdateOne(ctx context.Context, collection string, match map[string]any, patch Document) error
	// DeleteOne removes the first match. Reports whether a document was removed.
	DeleteOne(ctx context.Context, collection string, match map[string]any) (bool, error)
	// ReplaceAll rewrites the whole collection.
	ReplaceAll(ctx context.Context, collection string, docs []Document) error
}
