// Package store defines the document store the wizard persists drafts to.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists under the id.
var ErrNotFound = errors.New("store: document not found")

// Document is one stored record.
type Document = map[string]interface{}

// Snapshot is the full contents of a collection keyed by document id.
type Snapshot = map[string]Document

// DocumentStore is the persistence contract for drafts and submissions.
// Merge is shallow: top-level fields in partial overwrite, everything
// else is untouched. Callers must sanitize values first; nil-valued
// entries are never sent. Subscribe pushes whole-collection snapshots
// until the returned unsubscribe function is called or ctx is done;
// each delivery is authoritative and replaces consumer state.
type DocumentStore interface {
	Create(ctx context.Context, collection string, value Document) (string, error)
	Merge(ctx context.Context, collection, id string, partial Document) error
	Get(ctx context.Context, collection, id string) (Document, error)
	Delete(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection string, onSnapshot func(Snapshot)) (func(), error)
}
