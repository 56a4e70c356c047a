package core

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Kind identifies a per-user collection in the RemoteStore.
type Kind string

const (
	KindClasses  Kind = "classes"
	KindHomework Kind = "homework"
)

// Server-assigned timestamp fields.
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

type (
	// Fields holds JSON-compatible document values keyed by their camelCase field name.
	Fields map[string]interface{}

	Document struct {
		ID     string
		Fields Fields
	}

	// SnapshotFunc receives the complete current listing of a collection.
	SnapshotFunc func(docs []Document)

	ErrorFunc func(err error)

	// Unsubscribe cancels a live subscription synchronously.
	Unsubscribe func()

	// RemoteStore is the live document store holding each user's collections.
	RemoteStore interface {
		// Subscribe delivers a snapshot of the collection now and after every change, until cancelled.
		Subscribe(userID string, kind Kind, onSnapshot SnapshotFunc, onError ErrorFunc) Unsubscribe
		// Create stamps FieldCreatedAt and FieldUpdatedAt and returns the new document ID.
		Create(ctx context.Context, userID string, kind Kind, fields Fields) (string, error)
		// Update merges fields into an existing document and stamps FieldUpdatedAt.
		// ErrDocumentNotFound is returned if the document does not exist.
		Update(ctx context.Context, userID string, kind Kind, id string, fields Fields) error
		Delete(ctx context.Context, userID string, kind Kind, id string) error
	}
)

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// DataTo decodes the document into v, using json tags. The ID is exposed as the "id" field.
func (d Document) DataTo(v interface{}) error {
	fields := d.Fields.Clone()
	fields["id"] = d.ID
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(err, "encoding document %s", d.ID)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding document %s", d.ID)
	}
	return nil
}
