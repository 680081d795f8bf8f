package resolve

import "os"

// FileSystem abstracts the filesystem probes the resolver needs, so
// tests can swap in an in-memory fixture instead of touching disk —
// a narrow seam between "what files
// exist" and "what we do with them."
type FileSystem interface {
	// Exists reports whether path exists, and if so whether it is a
	// directory.
	Exists(path string) (isDir bool, ok bool)
	// ReadFile reads the full contents of path.
	ReadFile(path string) ([]byte, error)
}

// OSFileSystem is the real, disk-backed FileSystem.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) (bool, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
