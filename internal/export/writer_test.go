package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotRoundTripPreservesNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")

	text := "hello"
	iso := "2024-06-01T09:00:00Z"
	snap := Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		UpdatedAt:     iso,
		Messages: []Record{
			{RowID: 1, Timestamp: &iso, IsFromOwner: true, Text: &text},
			{RowID: 2}, // null timestamp, null text
		},
	}
	if err := writeSnapshot(path, snap); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Nullable fields must appear as JSON null, not be omitted or coerced.
	if !strings.Contains(string(data), `"timestamp": null`) {
		t.Error("null timestamp not emitted as JSON null")
	}
	if !strings.Contains(string(data), `"text": null`) {
		t.Error("null text not emitted as JSON null")
	}

	loaded, err := loadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(loaded.Messages))
	}
	if loaded.Messages[0].Text == nil || *loaded.Messages[0].Text != "hello" {
		t.Errorf("text = %v", loaded.Messages[0].Text)
	}
	if loaded.Messages[1].Timestamp != nil || loaded.Messages[1].Text != nil {
		t.Error("nulls should survive the round trip")
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	snap, err := loadSnapshot(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("missing snapshot should not error: %v", err)
	}
	if len(snap.Messages) != 0 {
		t.Errorf("messages = %v, want empty", snap.Messages)
	}
}

func TestLoadSnapshotMalformedRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := os.WriteFile(path, []byte("corrupt"), 0644); err != nil {
		t.Fatal(err)
	}

	snap, err := loadSnapshot(path)
	if err == nil {
		t.Error("expected parse error")
	}
	if len(snap.Messages) != 0 {
		t.Error("malformed snapshot should recover to empty")
	}
}

func TestWriteCSVOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	multiline := "first line\nsecond line\r\nthird"
	iso := "2024-06-01T09:00:00Z"
	records := []Record{
		{RowID: 1, Timestamp: &iso, IsFromOwner: true, Text: &multiline},
		{RowID: 2}, // null text coerced to "" in tabular form only
	}
	if err := writeCSV(path, records); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][3] != "first line second line third" {
		t.Errorf("text = %q, want line breaks flattened to single spaces", rows[1][3])
	}
	if rows[2][3] != "" {
		t.Errorf("null text = %q, want empty string", rows[2][3])
	}
	if rows[2][1] != "" {
		t.Errorf("null timestamp = %q, want empty string", rows[2][1])
	}
	if rows[1][2] != "1" || rows[2][2] != "0" {
		t.Errorf("is_from_owner columns = %q/%q, want 1/0", rows[1][2], rows[2][2])
	}

	// One physical line per record: header + records + trailing newline.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(raw), "\n"); lines != 3 {
		t.Errorf("physical lines = %d, want 3", lines)
	}
}

func TestWritersLeaveNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	if err := writeSnapshot(filepath.Join(dir, "s.json"), Snapshot{SchemaVersion: 1}); err != nil {
		t.Fatal(err)
	}
	if err := writeCSV(filepath.Join(dir, "m.csv"), nil); err != nil {
		t.Fatal(err)
	}
	if err := writeRollup(filepath.Join(dir, "r.json"), BuildRollup(nil)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
}
