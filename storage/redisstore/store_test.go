package redisstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraham77967/Taskmate-Web/core"
	testutil "github.com/Abraham77967/Taskmate-Web/tests"
)

const quietPeriod = 150 * time.Millisecond

var t0 = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

// feed records what a subscription delivers.
type feed struct {
	snapshots chan []core.Document
	errs      chan error
}

func newFeed() *feed {
	return &feed{snapshots: make(chan []core.Document, 32), errs: make(chan error, 8)}
}

func (f *feed) onSnapshot(docs []core.Document) { f.snapshots <- docs }
func (f *feed) onError(err error)               { f.errs <- err }

func (f *feed) next(t *testing.T) []core.Document {
	t.Helper()
	select {
	case docs := <-f.snapshots:
		return docs
	case err := <-f.errs:
		t.Fatalf("subscription failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
	return nil
}

func (f *feed) assertQuiet(t *testing.T) {
	t.Helper()
	select {
	case docs := <-f.snapshots:
		t.Fatalf("unexpected snapshot: %v", docs)
	case err := <-f.errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(quietPeriod):
	}
}

// tick makes NowFunc advance one minute per call, starting at t0.
func tick(t *testing.T) {
	var mu sync.Mutex
	next := t0
	NowFunc = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Minute)
		return now
	}
	t.Cleanup(func() { NowFunc = time.Now })
}

func setup(t *testing.T) (*miniredis.Miniredis, core.RemoteStore, *testutil.Logger) {
	mr := miniredis.RunT(t)
	client, err := Open(context.Background(), core.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logger := &testutil.Logger{}
	tick(t)
	return mr, NewRemoteStore(client, "test", logger), logger
}

func docIDs(docs []core.Document) []string {
	res := make([]string, 0, len(docs))
	for _, doc := range docs {
		res = append(res, doc.ID)
	}
	return res
}

func stamp(tm time.Time) string { return tm.Format(time.RFC3339Nano) }

func TestOpen_unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), core.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestRemoteStore_Subscribe(t *testing.T) {
	_, store, _ := setup(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "u1", core.KindClasses, core.Fields{"name": "Algebra"})
	require.NoError(t, err)

	f := newFeed()
	unsub := store.Subscribe("u1", core.KindClasses, f.onSnapshot, f.onError)
	defer unsub()

	docs := f.next(t)
	require.Len(t, docs, 1, "initial snapshot")
	assert.Equal(t, first, docs[0].ID)
	assert.Equal(t, "Algebra", docs[0].Fields["name"])
	assert.Equal(t, stamp(t0), docs[0].Fields[core.FieldCreatedAt])
	assert.Equal(t, stamp(t0), docs[0].Fields[core.FieldUpdatedAt])

	second, err := store.Create(ctx, "u1", core.KindClasses, core.Fields{"name": "Biology"})
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, docIDs(f.next(t)), "ordered by creation time")
}

func TestRemoteStore_Subscribe_emptyCollection(t *testing.T) {
	_, store, _ := setup(t)

	f := newFeed()
	unsub := store.Subscribe("u1", core.KindHomework, f.onSnapshot, f.onError)
	defer unsub()

	assert.Empty(t, f.next(t))
}

func TestRemoteStore_Subscribe_isolatesCollections(t *testing.T) {
	_, store, _ := setup(t)
	ctx := context.Background()

	f := newFeed()
	unsub := store.Subscribe("u2", core.KindClasses, f.onSnapshot, f.onError)
	defer unsub()
	assert.Empty(t, f.next(t))

	_, err := store.Create(ctx, "u1", core.KindClasses, core.Fields{"name": "Algebra"})
	require.NoError(t, err)
	_, err = store.Create(ctx, "u2", core.KindHomework, core.Fields{"title": "Essay"})
	require.NoError(t, err)

	f.assertQuiet(t)
}

func TestRemoteStore_Update(t *testing.T) {
	_, store, _ := setup(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "u1", core.KindHomework, core.Fields{"title": "Essay", "status": "pending"})
	require.NoError(t, err)

	f := newFeed()
	unsub := store.Subscribe("u1", core.KindHomework, f.onSnapshot, f.onError)
	defer unsub()
	require.Len(t, f.next(t), 1)

	require.NoError(t, store.Update(ctx, "u1", core.KindHomework, id, core.Fields{"status": "completed"}))

	docs := f.next(t)
	require.Len(t, docs, 1)
	fields := docs[0].Fields
	assert.Equal(t, "Essay", fields["title"], "untouched fields are kept")
	assert.Equal(t, "completed", fields["status"])
	assert.Equal(t, stamp(t0), fields[core.FieldCreatedAt])
	assert.Equal(t, stamp(t0.Add(time.Minute)), fields[core.FieldUpdatedAt])
}

func TestRemoteStore_Update_notFound(t *testing.T) {
	_, store, _ := setup(t)
	ctx := context.Background()

	f := newFeed()
	unsub := store.Subscribe("u1", core.KindHomework, f.onSnapshot, f.onError)
	defer unsub()
	assert.Empty(t, f.next(t))

	err := store.Update(ctx, "u1", core.KindHomework, "missing", core.Fields{"status": "completed"})
	assert.Equal(t, core.ErrDocumentNotFound, err)
	f.assertQuiet(t)
}

func TestRemoteStore_Delete(t *testing.T) {
	mr, store, _ := setup(t)
	ctx := context.Background()

	keep, err := store.Create(ctx, "u1", core.KindClasses, core.Fields{"name": "Algebra"})
	require.NoError(t, err)
	gone, err := store.Create(ctx, "u1", core.KindClasses, core.Fields{"name": "Biology"})
	require.NoError(t, err)

	f := newFeed()
	unsub := store.Subscribe("u1", core.KindClasses, f.onSnapshot, f.onError)
	defer unsub()
	require.Len(t, f.next(t), 2)

	require.NoError(t, store.Delete(ctx, "u1", core.KindClasses, gone))
	assert.Equal(t, []string{keep}, docIDs(f.next(t)))
	stored, err := mr.HKeys(collectionKey("test", "u1", core.KindClasses))
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, stored)

	t.Run("missing document is not announced", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "u1", core.KindClasses, gone))
		f.assertQuiet(t)
	})
}

func TestRemoteStore_unsubscribe(t *testing.T) {
	_, store, _ := setup(t)
	ctx := context.Background()

	f := newFeed()
	unsub := store.Subscribe("u1", core.KindClasses, f.onSnapshot, f.onError)
	assert.Empty(t, f.next(t))

	unsub()
	_, err := store.Create(ctx, "u1", core.KindClasses, core.Fields{"name": "Algebra"})
	require.NoError(t, err)

	f.assertQuiet(t)
}

func TestRemoteStore_skipsUndecodableEntries(t *testing.T) {
	mr, store, logger := setup(t)
	ctx := context.Background()
	mr.HSet(collectionKey("test", "u1", core.KindClasses), "broken", `{"name":`)

	f := newFeed()
	unsub := store.Subscribe("u1", core.KindClasses, f.onSnapshot, f.onError)
	defer unsub()
	assert.Empty(t, f.next(t))
	assert.Equal(t, 1, logger.Count("warn"))

	id, err := store.Create(ctx, "u1", core.KindClasses, core.Fields{"name": "Algebra"})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, docIDs(f.next(t)))
}
