// Package atomicfile writes files through a temporary sibling plus rename,
// so a reader never observes partial content and a crash mid-write leaves
// the previous version intact.
package atomicfile

import (
	"fmt"
	"os"
)

// WriteFile writes data to path atomically. The temporary file lives next
// to the target so the rename stays on one filesystem.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
