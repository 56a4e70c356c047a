package redisstore

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core"
)

// collectionKey names the hash holding one user's collection: <prefix>:users:<userID>:<kind>.
func collectionKey(prefix, userID string, kind core.Kind) string {
	return strings.Join([]string{prefix, "users", userID, string(kind)}, ":")
}

// changesChannel is where every write to the collection stored at key is announced.
func changesChannel(key string) string {
	return key + ":changes"
}

func encodeFields(fields core.Fields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", errors.Wrap(err, "encoding document")
	}
	return string(data), nil
}

func decodeFields(raw string) (core.Fields, error) {
	var fields core.Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	if fields == nil {
		return nil, errors.New("decoding document: null")
	}
	return fields, nil
}

// mergeFields applies update onto existing, keeping the creation stamp and stamping updatedAt.
func mergeFields(existing, update core.Fields, now time.Time) core.Fields {
	merged := existing.Clone()
	for k, v := range update {
		if k == core.FieldCreatedAt {
			continue
		}
		merged[k] = v
	}
	merged[core.FieldUpdatedAt] = now
	return merged
}

func createdAt(fields core.Fields) time.Time {
	s, _ := fields[core.FieldCreatedAt].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// decodeSnapshot turns a collection hash into documents ordered by creation time, then ID.
// Entries that cannot be decoded are left out and reported.
func decodeSnapshot(raw map[string]string) ([]core.Document, []error) {
	docs := make([]core.Document, 0, len(raw))
	var errs []error
	for id, val := range raw {
		fields, err := decodeFields(val)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "document %s", id))
			continue
		}
		docs = append(docs, core.Document{ID: id, Fields: fields})
	}
	sort.Slice(docs, func(i, j int) bool {
		ti, tj := createdAt(docs[i].Fields), createdAt(docs[j].Fields)
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, errs
}
