// Package upload implements the disk-backed file store behind POST /upload.
// Stored names are prefixed with a unix-millisecond timestamp so repeated
// uploads of the same filename never collide.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
)

// DiskStore writes uploaded files into a single directory.
type DiskStore struct {
	dir   string
	clock clockwork.Clock
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir string, clock clockwork.Clock) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, clock: clock}, nil
}

// Save stores the reader's content and returns the name the file is
// retrievable under.
func (s *DiskStore) Save(name string, r io.Reader) (string, error) {
	stored := fmt.Sprintf("%d-%s", s.clock.Now().UnixMilli(), sanitizeName(name))

	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return stored, nil
}

// sanitizeName strips any path component and replaces whitespace so the
// stored name is safe inside a URL path.
func sanitizeName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "file"
	}
	return strings.Join(strings.Fields(base), "_")
}
