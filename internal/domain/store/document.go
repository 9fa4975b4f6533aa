package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Document is one schema-loose JSON-shaped record in a named collection.
// Writers decide the fields; the store only guarantees id and timestamp.
type Document map[string]any

// Well-known field names populated by the store on insert.
const (
	FieldID        = "id"
	FieldTimestamp = "timestamp"
)

// ID returns the document identifier, or "" when unset.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// String returns the named field as a string, or "" when absent or not a
// string.
func (d Document) String(key string) string {
	v, _ := d[key].(string)
	return v
}

// Timestamp parses the document timestamp. Both time.Time values and
// RFC3339 strings are accepted; anything else yields the zero time.
func (d Document) Timestamp() time.Time {
	switch v := d[FieldTimestamp].(type) {
	case time.Time:
		return v
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts
		}
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Clone returns a shallow copy so callers cannot mutate stored state.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// NewID generates a document identifier.
func NewID() string {
	return uuid.NewString()
}

// normalize assigns the generated id and default timestamp on a copy of doc.
// Timestamps are kept as RFC3339 strings so all three drivers persist the
// same JSON shape.
func normalize(doc Document, now time.Time) Document {
	out := doc.Clone()
	if out.ID() == "" {
		out[FieldID] = NewID()
	}
	if out.Timestamp().IsZero() {
		out[FieldTimestamp] = now.UTC().Format(time.RFC3339Nano)
	} else if ts, ok := out[FieldTimestamp].(time.Time); ok {
		out[FieldTimestamp] = ts.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// sortNewestFirst orders documents descending by timestamp, in place.
func sortNewestFirst(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Timestamp().After(docs[j].Timestamp())
	})
}
