package msgstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/stecurtis/imx/internal/appletime"
)

// FetchMessages returns message rows owned by the given handles, bounded by
// the scope, ascending by ROWID. The ascending order lets the merge engine
// compute the new cursor in one pass and is the natural chronological order
// for DM history.
//
// An empty handle set returns an empty slice without issuing a query — an
// unfiltered IN clause would otherwise match everything. A nil cursor under
// the Incremental scope means no lower bound (full history).
func (db *DB) FetchMessages(handleIDs []int64, scope ImportScope, cursor *int64) ([]RawMessage, error) {
	if len(handleIDs) == 0 || scope.Kind == KindNone {
		return nil, nil
	}

	placeholders := make([]string, len(handleIDs))
	args := make([]any, 0, len(handleIDs)+2)
	for i, id := range handleIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}

	where := "m.handle_id IN (" + strings.Join(placeholders, ",") + ")"

	switch scope.Kind {
	case KindIncremental:
		if cursor != nil {
			where += " AND m.ROWID > ?"
			args = append(args, *cursor)
		}
	case KindLastNDays:
		// The date column is dual-unit (see appletime), so the lower bound
		// has to be expressed in both encodings.
		since := time.Now().AddDate(0, 0, -scope.Days)
		where += fmt.Sprintf(
			" AND ((m.date > %d AND m.date >= ?) OR (m.date <= %d AND m.date >= ?))",
			appletime.NanosThreshold, appletime.NanosThreshold)
		args = append(args, appletime.EncodeNanos(since), appletime.EncodeSeconds(since))
	case KindAll:
		// No bound.
	}

	query := `
	SELECT m.ROWID, m.date, m.is_from_me, m.text
	FROM message m
	WHERE ` + where + `
	ORDER BY m.ROWID ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RawMessage
	for rows.Next() {
		var m RawMessage
		if err := rows.Scan(&m.RowID, &m.Date, &m.FromMe, &m.Text); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FetchAttachments returns attachment descriptors for a message row. A
// message without attachments yields an empty result, not an error.
func (db *DB) FetchAttachments(messageRowID int64) ([]Attachment, error) {
	rows, err := db.Query(`
	SELECT COALESCE(a.transfer_name, ''), COALESCE(a.mime_type, '')
	FROM attachment a
	JOIN message_attachment_join maj ON maj.attachment_id = a.ROWID
	WHERE maj.message_id = ?
	ORDER BY a.ROWID ASC`, messageRowID)
	if err != nil {
		return nil, fmt.Errorf("query attachments for row %d: %w", messageRowID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.Filename, &a.MediaType); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
