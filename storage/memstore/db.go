// Package memstore is an in-process core.RemoteStore with live subscriptions.
// Snapshots are delivered synchronously, on the goroutine performing the write, in insertion order.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/Abraham77967/Taskmate-Web/core"
)

var NowFunc = time.Now // mockable

type (
	collectionKey struct {
		userID string
		kind   core.Kind
	}

	collection struct {
		order []string // document IDs in insertion order
		docs  map[string]core.Fields
	}

	subscriber struct {
		onSnapshot core.SnapshotFunc
		onError    core.ErrorFunc
	}

	DB struct {
		sync.RWMutex
		collections map[collectionKey]*collection
		subs        map[collectionKey]map[int]*subscriber
		nextSubID   int
		writeErr    error
	}
)

func Open() (*DB, error) {
	db := &DB{
		collections: make(map[collectionKey]*collection),
		subs:        make(map[collectionKey]map[int]*subscriber),
	}
	return db, nil
}

// FailWrites makes every following write return err; nil restores normal operation.
func (db *DB) FailWrites(err error) {
	db.Lock()
	defer db.Unlock()
	db.writeErr = err
}

// BreakFeed reports err to every live subscriber of the user's collection.
func (db *DB) BreakFeed(userID string, kind core.Kind, err error) {
	db.RLock()
	subs := db.subscribers(collectionKey{userID, kind})
	db.RUnlock()
	for _, sub := range subs {
		if sub.onError != nil {
			sub.onError(err)
		}
	}
}

// Subscribers returns the number of live subscriptions on the user's collection.
func (db *DB) Subscribers(userID string, kind core.Kind) int {
	db.RLock()
	defer db.RUnlock()
	return len(db.subs[collectionKey{userID, kind}])
}

func (db *DB) collection(key collectionKey) *collection {
	coll, ok := db.collections[key]
	if !ok {
		coll = &collection{docs: make(map[string]core.Fields)}
		db.collections[key] = coll
	}
	return coll
}

// snapshot must be called with the lock held.
func (db *DB) snapshot(key collectionKey) []core.Document {
	coll, ok := db.collections[key]
	if !ok {
		return []core.Document{}
	}
	docs := make([]core.Document, 0, len(coll.order))
	for _, id := range coll.order {
		docs = append(docs, core.Document{ID: id, Fields: coll.docs[id].Clone()})
	}
	return docs
}

// subscribers must be called with the lock held.
func (db *DB) subscribers(key collectionKey) []*subscriber {
	ids := make([]int, 0, len(db.subs[key]))
	for id := range db.subs[key] {
		ids = append(ids, id)
	}
	sort.Ints(ids) // subscription order
	subs := make([]*subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, db.subs[key][id])
	}
	return subs
}

// publish delivers the current snapshot to every subscriber of key. Must be called without the lock.
func (db *DB) publish(key collectionKey) {
	db.RLock()
	subs := db.subscribers(key)
	db.RUnlock()
	for _, sub := range subs {
		db.RLock()
		docs := db.snapshot(key)
		db.RUnlock()
		sub.onSnapshot(docs)
	}
}
