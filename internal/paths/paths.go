// Package paths centralizes every filesystem location imx touches. Core
// packages never read ambient environment themselves; defaults are resolved
// here once and passed down explicitly through config.
package paths

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.imx, the app-owned directory for config and logs.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".imx")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// LogDir returns the daemon log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the daemon log file path.
func LogPath() string {
	return filepath.Join(LogDir(), "imxd.log")
}

// DefaultStorePath returns the macOS Messages database location.
func DefaultStorePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Messages", "chat.db")
}

// DefaultDataRoot returns the iCloud Drive folder the export layout is
// published under, shared with dashboard consumers on other devices.
func DefaultDataRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home,
		"Library", "Mobile Documents", "com~apple~CloudDocs",
		"Documents", "Social", "Messaging", "iMessage")
}

// IndexPath returns the top-level contact index file under the data root.
func IndexPath(dataRoot string) string {
	return filepath.Join(dataRoot, "index.json")
}

// LockPath returns the run lock file guarding the data root.
func LockPath(dataRoot string) string {
	return filepath.Join(dataRoot, "LOCK")
}

// ContactDir returns the per-contact directory, named by the contact's
// identifier.
func ContactDir(dataRoot, number string) string {
	return filepath.Join(dataRoot, number)
}

// SnapshotPath returns the structured full-snapshot artifact for a contact.
func SnapshotPath(dataRoot, number string) string {
	return filepath.Join(ContactDir(dataRoot, number), "messages_"+number+"_dm.json")
}

// CSVPath returns the flat tabular artifact for a contact.
func CSVPath(dataRoot, number string) string {
	return filepath.Join(ContactDir(dataRoot, number), "messages_"+number+"_dm.csv")
}

// RollupPath returns the per-day aggregate artifact for a contact.
func RollupPath(dataRoot, number string) string {
	return filepath.Join(ContactDir(dataRoot, number), "rollup.json")
}

// StatePath returns the resumption state file for a contact.
func StatePath(dataRoot, number string) string {
	return filepath.Join(ContactDir(dataRoot, number), "state.json")
}

// EnsureBaseDirs creates the app-owned directory tree.
func EnsureBaseDirs() error {
	for _, d := range []string{BaseDir(), LogDir()} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// EnsureDataRoot creates the shared data root.
func EnsureDataRoot(dataRoot string) error {
	return os.MkdirAll(dataRoot, 0755)
}
