package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/Abraham77967/Taskmate-Web/core"
)

type remoteStore struct {
	db *DB
}

var _ core.RemoteStore = (*remoteStore)(nil) // interface compliance check

func NewRemoteStore(db *DB) core.RemoteStore {
	return &remoteStore{db: db}
}

func (store *remoteStore) Subscribe(userID string, kind core.Kind, onSnapshot core.SnapshotFunc, onError core.ErrorFunc) core.Unsubscribe {
	key := collectionKey{userID, kind}

	store.db.Lock()
	id := store.db.nextSubID
	store.db.nextSubID++
	if store.db.subs[key] == nil {
		store.db.subs[key] = make(map[int]*subscriber)
	}
	store.db.subs[key][id] = &subscriber{onSnapshot: onSnapshot, onError: onError}
	docs := store.db.snapshot(key)
	store.db.Unlock()

	// initial snapshot
	onSnapshot(docs)

	return func() {
		store.db.Lock()
		defer store.db.Unlock()
		delete(store.db.subs[key], id)
	}
}

func (store *remoteStore) Create(ctx context.Context, userID string, kind core.Kind, fields core.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := collectionKey{userID, kind}

	store.db.Lock()
	if err := store.db.writeErr; err != nil {
		store.db.Unlock()
		return "", err
	}
	now := NowFunc().UTC()
	doc := fields.Clone()
	doc[core.FieldCreatedAt] = now
	doc[core.FieldUpdatedAt] = now

	id := uuid.New().String()
	coll := store.db.collection(key)
	coll.docs[id] = doc
	coll.order = append(coll.order, id)
	store.db.Unlock()

	store.db.publish(key)
	return id, nil
}

func (store *remoteStore) Update(ctx context.Context, userID string, kind core.Kind, id string, fields core.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := collectionKey{userID, kind}

	store.db.Lock()
	if err := store.db.writeErr; err != nil {
		store.db.Unlock()
		return err
	}
	coll, ok := store.db.collections[key]
	if !ok {
		store.db.Unlock()
		return core.ErrDocumentNotFound
	}
	doc, ok := coll.docs[id]
	if !ok {
		store.db.Unlock()
		return core.ErrDocumentNotFound
	}

	// only overwrite set fields
	for k, v := range fields {
		if k == core.FieldCreatedAt {
			continue
		}
		doc[k] = v
	}
	doc[core.FieldUpdatedAt] = NowFunc().UTC()
	store.db.Unlock()

	store.db.publish(key)
	return nil
}

func (store *remoteStore) Delete(ctx context.Context, userID string, kind core.Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := collectionKey{userID, kind}

	store.db.Lock()
	if err := store.db.writeErr; err != nil {
		store.db.Unlock()
		return err
	}
	coll, ok := store.db.collections[key]
	if !ok {
		store.db.Unlock()
		return nil
	}
	if _, ok := coll.docs[id]; !ok {
		store.db.Unlock()
		return nil
	}
	delete(coll.docs, id)
	for i, docID := range coll.order {
		if docID == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	store.db.Unlock()

	store.db.publish(key)
	return nil
}
