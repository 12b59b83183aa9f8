// Package store is the document database contract the roster depends on,
// with Appwrite, SQL and in-memory implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MaxPageSize is the largest page a list call may ask for.
const MaxPageSize = 100

// DefaultListLimit is what a list call returns when it sets no limit.
const DefaultListLimit = 25

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidQuery = errors.New("invalid query")
	ErrUnknown      = errors.New("unknown collection")
)

// Document is a schemaless record. The id lives under "$id".
type Document = map[string]any

const IDField = "$id"

// DocumentID returns the id of doc or "".
func DocumentID(doc Document) string {
	id, _ := doc[IDField].(string)
	return id
}

// DocumentList is one page of a list call. Total counts every match, not
// just the page.
type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// DocumentStore is the subset of a document database the roster uses.
// Collections are logical names; each backend maps them to its own ids.
type DocumentStore interface {
	ListDocuments(ctx context.Context, collection string, queries ...Query) (*DocumentList, error)
	CreateDocument(ctx context.Context, collection, documentID string, data map[string]any) (Document, error)
	UpdateDocument(ctx context.Context, collection, documentID string, data map[string]any) (Document, error)
	DeleteDocument(ctx context.Context, collection, documentID string) error
	Ping(ctx context.Context) error
}

// RemoteError is a non-2xx answer from a remote document API.
type RemoteError struct {
	Status  int
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("document api returned %d (%s): %s", e.Status, e.Type, e.Message)
}

// CallObserver is notified after every backend call.
type CallObserver func(backend, operation, collection string, duration time.Duration, err error)

// Collections maps logical collection names to backend ids.
type Collections map[string]string

func (c Collections) resolve(collection string) (string, error) {
	id, ok := c[collection]
	if !ok || id == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknown, collection)
	}
	return id, nil
}
