// Package catalog maintains the registered-contact index published at the
// top of the data root. The index is part of the external layout: dashboard
// consumers read it to enumerate contacts.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stecurtis/imx/internal/atomicfile"
)

// Contact is a registered export target. Identity is the Number string.
// Contacts are never deleted, only disabled, so history on disk survives
// deregistration.
type Contact struct {
	Number  string `json:"number"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Index is the persisted contact set.
type Index struct {
	Contacts []Contact `json:"contacts"`
}

// Load reads the index from path. A missing file yields an empty index with
// no error. A malformed file yields an empty index plus the parse error;
// callers log it and continue — availability over strict durability.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Index{}, nil
	}
	if err != nil {
		return &Index{}, fmt.Errorf("read index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return &Index{}, fmt.Errorf("parse index %s: %w", path, err)
	}
	return &idx, nil
}

// Save writes the index atomically.
func Save(path string, idx *Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, append(data, '\n'), 0644)
}

// Upsert registers a contact, or relabels and re-enables an existing one.
// Idempotent on Number.
func (idx *Index) Upsert(number, label string) {
	if label == "" {
		label = number
	}
	for i := range idx.Contacts {
		if idx.Contacts[i].Number == number {
			idx.Contacts[i].Label = label
			idx.Contacts[i].Enabled = true
			return
		}
	}
	idx.Contacts = append(idx.Contacts, Contact{Number: number, Label: label, Enabled: true})
}

// Disable soft-removes a contact. Reports whether anything changed.
func (idx *Index) Disable(number string) bool {
	changed := false
	for i := range idx.Contacts {
		if idx.Contacts[i].Number == number && idx.Contacts[i].Enabled {
			idx.Contacts[i].Enabled = false
			changed = true
		}
	}
	return changed
}

// Enabled returns the contacts eligible for an export run, skipping entries
// with a missing number (a malformed edit by hand must not abort the batch).
func (idx *Index) Enabled() []Contact {
	var out []Contact
	for _, c := range idx.Contacts {
		if c.Number == "" || !c.Enabled {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Get returns the contact with the given number, or nil.
func (idx *Index) Get(number string) *Contact {
	for i := range idx.Contacts {
		if idx.Contacts[i].Number == number {
			return &idx.Contacts[i]
		}
	}
	return nil
}
