package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stecurtis/imx/internal/atomicfile"
)

// csvHeader is written exactly once per file. Every rewrite repeats it as
// the first line.
var csvHeader = []string{"row_id", "timestamp", "is_from_owner", "text", "attachments"}

// loadSnapshot reads a prior snapshot. A missing file yields an empty
// snapshot with no error; a malformed file yields an empty snapshot plus
// the parse error so the caller can warn and rebuild from scratch.
func loadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Snapshot{SchemaVersion: SnapshotSchemaVersion}, nil
	}
	if err != nil {
		return Snapshot{SchemaVersion: SnapshotSchemaVersion}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{SchemaVersion: SnapshotSchemaVersion}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

// writeSnapshot persists the structured artifact atomically. Nullable
// record fields are emitted faithfully as JSON null.
func writeSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, append(data, '\n'), 0644)
}

// writeCSV rewrites the flat tabular artifact atomically. One record is one
// physical line: embedded line breaks in text are replaced with a single
// space. Null text is coerced to "" here (and only here; the snapshot keeps
// the null).
func writeCSV(path string, records []Record) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create temp csv: %w", err)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(csvHeader)
	for _, rec := range records {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(csvRow(rec))
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write csv: %w", writeErr)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func csvRow(rec Record) []string {
	ts := ""
	if rec.Timestamp != nil {
		ts = *rec.Timestamp
	}
	fromOwner := "0"
	if rec.IsFromOwner {
		fromOwner = "1"
	}
	text := ""
	if rec.Text != nil {
		text = flattenLineBreaks(*rec.Text)
	}
	return []string{
		strconv.FormatInt(rec.RowID, 10),
		ts,
		fromOwner,
		text,
		strconv.Itoa(len(rec.Attachments)),
	}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flattenLineBreaks(s string) string {
	return lineBreaks.Replace(s)
}

// writeRollup persists the daily aggregate artifact atomically.
func writeRollup(path string, r Rollup) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, append(data, '\n'), 0644)
}
