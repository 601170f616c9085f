package msgstore

import (
	"fmt"
	"strings"
)

// ResolveHandles maps a contact identifier to the handle ROWIDs that
// represent the same contact. The store normalizes and country-code
// prefixes addresses on its own, so matching is by suffix against a few
// punctuation variants rather than exact equality. An empty result is not
// an error; it means the contact has no presence in the store.
func (db *DB) ResolveHandles(identifier string) ([]int64, error) {
	variants := handleVariants(identifier)
	if len(variants) == 0 {
		return nil, nil
	}

	clauses := make([]string, len(variants))
	args := make([]any, len(variants))
	for i, v := range variants {
		clauses[i] = "id LIKE ?"
		args[i] = "%" + v
	}

	query := "SELECT ROWID FROM handle WHERE " + strings.Join(clauses, " OR ") + " ORDER BY ROWID ASC"
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query handles for %q: %w", identifier, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// handleVariants produces the deduplicated suffix candidates for an
// identifier: the trimmed raw string, the string with whitespace and dash
// separators removed, and the digits-only form.
func handleVariants(identifier string) []string {
	raw := strings.TrimSpace(identifier)

	stripped := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '-' {
			return -1
		}
		return r
	}, raw)

	digits := strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, raw)

	var out []string
	seen := make(map[string]bool)
	for _, v := range []string{raw, stripped, digits} {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
