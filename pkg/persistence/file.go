package persistence

import (
	"os"
	"path/filepath"
)

// FileAdapter is a filesystem-backed Adapter: one file per key inside Dir,
// written via a temp-file-then-os.Rename so that a concurrent Load never
// observes a torn write — os.Rename is atomic within a single filesystem,
// the standard Go idiom for atomic file replacement (no third-party
// library in the retrieval pack offers a competing one for this, so the
// standard library is the grounded choice here; see DESIGN.md).
type FileAdapter struct {
	Dir string
}

// NewFileAdapter returns a FileAdapter rooted at dir. dir must already
// exist.
func NewFileAdapter(dir string) *FileAdapter {
	return &FileAdapter{Dir: dir}
}

func (f *FileAdapter) path(key string) string {
	return filepath.Join(f.Dir, filepath.Base(key)+".bin")
}

// Save atomically writes value to the file for key.
func (f *FileAdapter) Save(key string, value []byte) error {
	final := f.path(key)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}

// Load reads the file for key, or returns ErrNotFound if it doesn't exist.
func (f *FileAdapter) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

// Remove deletes the file for key. Removing an absent key is not an error.
func (f *FileAdapter) Remove(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
