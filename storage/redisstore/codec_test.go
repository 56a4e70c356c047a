package redisstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraham77967/Taskmate-Web/core"
)

func TestCollectionKey(t *testing.T) {
	key := collectionKey("taskmate", "u1", core.KindHomework)
	assert.Equal(t, "taskmate:users:u1:homework", key)
	assert.Equal(t, "taskmate:users:u1:homework:changes", changesChannel(key))
}

func TestDecodeSnapshot_order(t *testing.T) {
	t0 := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	enc := func(name string, created time.Time) string {
		val, err := encodeFields(core.Fields{"name": name, core.FieldCreatedAt: created})
		require.NoError(t, err)
		return val
	}

	docs, errs := decodeSnapshot(map[string]string{
		"b": enc("second", t0),
		"a": enc("first", t0),
		"z": enc("oldest", t0.Add(-time.Hour)),
		"c": enc("newest", t0.Add(time.Minute)),
	})
	assert.Empty(t, errs)

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	assert.Equal(t, []string{"z", "a", "b", "c"}, ids)
}

func TestDecodeSnapshot_skipsMalformed(t *testing.T) {
	docs, errs := decodeSnapshot(map[string]string{
		"ok":   `{"name":"Algebra"}`,
		"bad":  `{"name":`,
		"null": `null`,
	})
	require.Len(t, docs, 1)
	assert.Equal(t, "ok", docs[0].ID)
	assert.Len(t, errs, 2)
}

func TestDecodedDocumentsFeedEntities(t *testing.T) {
	due := time.Date(2024, time.March, 8, 23, 59, 0, 0, time.UTC)
	val, err := encodeFields(core.Fields{"title": "Essay", "dueDate": due, "isCompleted": true})
	require.NoError(t, err)
	fields, err := decodeFields(val)
	require.NoError(t, err)

	var hw struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		DueDate     time.Time `json:"dueDate"`
		IsCompleted bool      `json:"isCompleted"`
	}
	require.NoError(t, core.Document{ID: "h1", Fields: fields}.DataTo(&hw))
	assert.Equal(t, "h1", hw.ID)
	assert.True(t, due.Equal(hw.DueDate))
	assert.True(t, hw.IsCompleted)
}

func TestMergeFields(t *testing.T) {
	created := "2024-03-01T09:00:00Z"
	now := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)
	existing := core.Fields{"title": "Essay", "status": "pending", core.FieldCreatedAt: created}

	merged := mergeFields(existing, core.Fields{"status": "completed", core.FieldCreatedAt: "ignored"}, now)
	assert.Equal(t, "Essay", merged["title"])
	assert.Equal(t, "completed", merged["status"])
	assert.Equal(t, created, merged[core.FieldCreatedAt])
	assert.Equal(t, now, merged[core.FieldUpdatedAt])
	assert.Equal(t, "pending", existing["status"], "existing is not modified")
}
