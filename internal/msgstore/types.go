package msgstore

import "database/sql"

// RawMessage is one row from the store's message table, still in wire form.
// Date stays dynamically typed: depending on OS era the column holds an
// INTEGER (seconds or nanoseconds past the Apple epoch), occasionally a
// REAL, and can be NULL. Decoding happens in the merge engine.
type RawMessage struct {
	RowID  int64
	Date   any
	FromMe sql.NullBool
	Text   sql.NullString
}

// Attachment describes one attachment of a message.
type Attachment struct {
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
}
