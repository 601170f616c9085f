// Package msgstore is a read-only query surface over the macOS Messages
// database (chat.db). It resolves contact identifiers to handle rows and
// fetches message rows beyond a progress cursor. The store is never
// mutated; connections are opened in SQLite read-only mode.
package msgstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// ErrStoreUnavailable reports that the Messages database is missing or
// cannot be opened. Callers match it with errors.Is and print remediation
// guidance (the usual cause is missing Full Disk Access); it is distinct
// from a store that opens fine but matches nothing.
var ErrStoreUnavailable = errors.New("message store unavailable")

// DB wraps a read-only SQLite connection to chat.db.
type DB struct {
	*sql.DB
}

// Open opens the store read-only. A missing or unreadable file surfaces as
// ErrStoreUnavailable.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s (check Full Disk Access): %v", ErrStoreUnavailable, path, err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, path, err)
	}
	return &DB{db}, nil
}
