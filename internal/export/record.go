// Package export is the incremental extraction and merge engine: it turns
// newly fetched store rows into persisted records, keeps each contact's
// merged record set duplicate-free and ordered, maintains the derived daily
// rollup, and advances the progress cursor.
package export

import (
	"github.com/stecurtis/imx/internal/appletime"
	"github.com/stecurtis/imx/internal/msgstore"
)

// SnapshotSchemaVersion identifies the snapshot envelope layout.
const SnapshotSchemaVersion = 1

// Record is one exported DM in its persisted form. RowID is the store's
// own monotonically increasing identifier and is the record's identity;
// records are immutable once merged. Timestamp and Text stay nullable:
// a null store value is preserved as JSON null, distinct from "".
type Record struct {
	RowID       int64                 `json:"row_id"`
	Timestamp   *string               `json:"timestamp"`
	IsFromOwner bool                  `json:"is_from_owner"`
	Text        *string               `json:"text"`
	Attachments []msgstore.Attachment `json:"attachments,omitempty"`
}

// Snapshot is the structured full-snapshot artifact. It always carries the
// entire merged record set; downstream consumers read only the latest
// snapshot, never a diff.
type Snapshot struct {
	SchemaVersion int      `json:"schema_version"`
	UpdatedAt     string   `json:"updated_at"`
	Messages      []Record `json:"messages"`
}

// newRecord decodes a fetched store row into its persisted form.
// Directionality is coerced to a strict boolean (NULL counts as received).
func newRecord(raw msgstore.RawMessage, attachments []msgstore.Attachment) Record {
	rec := Record{
		RowID:       raw.RowID,
		IsFromOwner: raw.FromMe.Valid && raw.FromMe.Bool,
		Attachments: attachments,
	}
	if t, ok := appletime.Decode(raw.Date); ok {
		iso := appletime.FormatISO(t)
		rec.Timestamp = &iso
	}
	if raw.Text.Valid {
		text := raw.Text.String
		rec.Text = &text
	}
	return rec
}
