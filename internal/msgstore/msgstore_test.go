package msgstore

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

// newFixtureStore builds a minimal chat.db with the tables the reader
// queries and returns its path.
func newFixtureStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	schema := []string{
		`CREATE TABLE handle (ROWID INTEGER PRIMARY KEY, id TEXT NOT NULL)`,
		`CREATE TABLE message (ROWID INTEGER PRIMARY KEY, handle_id INTEGER, date INTEGER, is_from_me INTEGER, text TEXT)`,
		`CREATE TABLE attachment (ROWID INTEGER PRIMARY KEY, transfer_name TEXT, mime_type TEXT)`,
		`CREATE TABLE message_attachment_join (message_id INTEGER, attachment_id INTEGER)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture schema: %v", err)
		}
	}
	return path
}

func seed(t *testing.T, path, query string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func openFixture(t *testing.T, path string) *DB {
	t.Helper()
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenMissingStore(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope", "chat.db"))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestResolveHandlesSuffixMatch(t *testing.T) {
	path := newFixtureStore(t)
	seed(t, path, `INSERT INTO handle (ROWID, id) VALUES
		(1, '+447962786922'),
		(2, '447962786922'),
		(3, 'im:+447962786922'),
		(4, '+19999999999')`)

	db := openFixture(t, path)

	ids, err := db.ResolveHandles("+447962786922")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("ids = %v, want [1 2 3]", ids)
	}
	for i, want := range []int64{1, 2, 3} {
		if ids[i] != want {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want)
		}
	}
}

func TestResolveHandlesToleratesPunctuation(t *testing.T) {
	path := newFixtureStore(t)
	seed(t, path, `INSERT INTO handle (ROWID, id) VALUES (1, '+447962786922')`)

	db := openFixture(t, path)

	for _, identifier := range []string{"+44 7962 786922", "+44-7962-786922", "447962786922"} {
		ids, err := db.ResolveHandles(identifier)
		if err != nil {
			t.Fatal(err)
		}
		if len(ids) != 1 || ids[0] != 1 {
			t.Errorf("ResolveHandles(%q) = %v, want [1]", identifier, ids)
		}
	}
}

func TestResolveHandlesNoMatch(t *testing.T) {
	path := newFixtureStore(t)
	seed(t, path, `INSERT INTO handle (ROWID, id) VALUES (1, '+19999999999')`)

	db := openFixture(t, path)

	ids, err := db.ResolveHandles("+447962786922")
	if err != nil {
		t.Fatalf("no match should not be an error, got %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want empty", ids)
	}
}

func TestHandleVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"+447962786922", []string{"+447962786922", "447962786922"}},
		{" +44 79-62 ", []string{"+44 79-62", "+447962", "447962"}},
		{"12345", []string{"12345"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := handleVariants(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("handleVariants(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("handleVariants(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFetchMessagesEmptyHandles(t *testing.T) {
	db := openFixture(t, newFixtureStore(t))

	rows, err := db.FetchMessages(nil, Incremental(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want empty", rows)
	}
}

func TestFetchMessagesCursor(t *testing.T) {
	path := newFixtureStore(t)
	seed(t, path, `INSERT INTO handle (ROWID, id) VALUES (1, '+447962786922')`)
	seed(t, path, `INSERT INTO message (ROWID, handle_id, date, is_from_me, text) VALUES
		(10, 1, 100, 0, 'first'),
		(11, 1, 200, 1, 'second'),
		(12, 1, 300, 0, 'third'),
		(13, 2, 400, 0, 'other contact')`)

	db := openFixture(t, path)

	// Nil cursor fetches full history for the handle set, ascending.
	rows, err := db.FetchMessages([]int64{1}, Incremental(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, want := range []int64{10, 11, 12} {
		if rows[i].RowID != want {
			t.Errorf("rows[%d].RowID = %d, want %d", i, rows[i].RowID, want)
		}
	}

	// Cursor is an exclusive lower bound.
	cursor := int64(11)
	rows, err = db.FetchMessages([]int64{1}, Incremental(), &cursor)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].RowID != 12 {
		t.Errorf("rows = %+v, want only ROWID 12", rows)
	}
}

func TestFetchMessagesScopeNone(t *testing.T) {
	path := newFixtureStore(t)
	seed(t, path, `INSERT INTO handle (ROWID, id) VALUES (1, 'x')`)
	seed(t, path, `INSERT INTO message (ROWID, handle_id, date, is_from_me, text) VALUES (1, 1, 100, 0, 'hi')`)

	db := openFixture(t, path)

	rows, err := db.FetchMessages([]int64{1}, None(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("scope None fetched %d rows", len(rows))
	}
}

func TestFetchMessagesNullFields(t *testing.T) {
	path := newFixtureStore(t)
	seed(t, path, `INSERT INTO handle (ROWID, id) VALUES (1, 'x')`)
	seed(t, path, `INSERT INTO message (ROWID, handle_id, date, is_from_me, text) VALUES (1, 1, NULL, NULL, NULL)`)

	db := openFixture(t, path)

	rows, err := db.FetchMessages([]int64{1}, All(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	m := rows[0]
	if m.Date != nil {
		t.Errorf("Date = %v, want nil", m.Date)
	}
	if m.FromMe.Valid {
		t.Error("FromMe should be invalid for NULL")
	}
	if m.Text.Valid {
		t.Error("Text should be invalid for NULL")
	}
}

func TestFetchAttachments(t *testing.T) {
	path := newFixtureStore(t)
	seed(t, path, `INSERT INTO attachment (ROWID, transfer_name, mime_type) VALUES
		(1, 'IMG_0001.jpg', 'image/jpeg'),
		(2, 'voice.m4a', NULL)`)
	seed(t, path, `INSERT INTO message_attachment_join (message_id, attachment_id) VALUES (7, 1), (7, 2)`)

	db := openFixture(t, path)

	atts, err := db.FetchAttachments(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(atts) != 2 {
		t.Fatalf("attachments = %d, want 2", len(atts))
	}
	if atts[0].Filename != "IMG_0001.jpg" || atts[0].MediaType != "image/jpeg" {
		t.Errorf("atts[0] = %+v", atts[0])
	}
	if atts[1].MediaType != "" {
		t.Errorf("NULL mime_type should scan as empty, got %q", atts[1].MediaType)
	}

	// No attachments is an empty result, not an error.
	atts, err = db.FetchAttachments(99)
	if err != nil {
		t.Fatal(err)
	}
	if len(atts) != 0 {
		t.Errorf("attachments = %v, want empty", atts)
	}
}

func TestStoreIsReadOnly(t *testing.T) {
	path := newFixtureStore(t)
	db := openFixture(t, path)

	if _, err := db.Exec(`INSERT INTO handle (id) VALUES ('x')`); err == nil {
		t.Error("write through read-only store should fail")
	}
}
