package dataspace

import "strings"

// FilenameCapacity is the size of the filename buffer, including the NUL terminator.
const FilenameCapacity = 128

// PathSeparator is rejected anywhere in a filename. Lookups stay inside the serving directory.
const PathSeparator = '/'

// Filename is a validated host file name. The zero value is the empty name.
type Filename struct {
	name string
}

// NewFilename validates s. Names that do not fit are refused, never truncated.
func NewFilename(s string) (Filename, error) {
	if len(s)+1 > FilenameCapacity {
		return Filename{}, &LengthError{Name: s, Capacity: FilenameCapacity}
	}
	if strings.IndexByte(s, PathSeparator) >= 0 {
		return Filename{}, ErrPathSeparator
	}
	if strings.IndexByte(s, 0) >= 0 {
		return Filename{}, ErrInvalidByte
	}
	return Filename{name: s}, nil
}

// String returns the name.
func (f Filename) String() string { return f.name }

// Len returns the name length without the terminator.
func (f Filename) Len() int { return len(f.name) }

// IsEmpty reports whether the name is empty.
func (f Filename) IsEmpty() bool { return f.name == "" }
