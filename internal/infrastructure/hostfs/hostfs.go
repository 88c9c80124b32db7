// Package hostfs serves ROM files from one directory of the host file system.
package hostfs

import (
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrNotRegular is returned for directories, devices and other non-files.
var ErrNotRegular = errors.New("not a regular file")

// Dir is a host directory served as ROM modules. Names are single path
// elements; callers are expected to reject separators before lookup.
type Dir struct {
	root string
}

// New serves root. An empty root is the process working directory.
func New(root string) *Dir {
	if root == "" {
		root = "."
	}
	return &Dir{root: root}
}

// Root returns the served directory.
func (d *Dir) Root() string { return d.root }

// Stat returns the size of the named regular file in bytes.
func (d *Dir) Stat(name string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(d.path(name), &st); err != nil {
		return 0, fmt.Errorf("stat %q: %w", name, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return 0, fmt.Errorf("stat %q: %w", name, ErrNotRegular)
	}
	if st.Size < 0 {
		return 0, fmt.Errorf("stat %q: negative size %d", name, st.Size)
	}
	return uint64(st.Size), nil
}

// Open opens the named file and returns the raw descriptor.
func (d *Dir) Open(name string, flags int, mode uint32) (int, error) {
	fd, err := unix.Open(d.path(name), flags, mode)
	if err != nil {
		return -1, fmt.Errorf("open %q: %w", name, err)
	}
	return fd, nil
}

// Close closes a descriptor returned by Open.
func (d *Dir) Close(fd int) error {
	return unix.Close(fd)
}

func (d *Dir) path(name string) string {
	return filepath.Join(d.root, name)
}
