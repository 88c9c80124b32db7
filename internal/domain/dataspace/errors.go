package dataspace

import (
	"errors"
	"fmt"
)

// ErrServiceDenied is the only error handed to clients.
var ErrServiceDenied = errors.New("service denied")

// Causes for a rejected filename. They stay on the trusted side.
var (
	ErrPathSeparator = errors.New("file name contains path separator")
	ErrInvalidByte   = errors.New("file name contains NUL byte")
)

// LengthError reports a name that does not fit the filename buffer.
type LengthError struct {
	Name     string
	Capacity int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("file name too long: %d bytes exceed capacity of %d", len(e.Name)+1, e.Capacity)
}

// Denial reasons reported to the Recorder.
const (
	ReasonNameTooLong   = "name_too_long"
	ReasonPathSeparator = "path_separator"
	ReasonInvalidByte   = "invalid_byte"
	ReasonStat          = "stat"
	ReasonSizeOverflow  = "size_overflow"
	ReasonOpen          = "open"
	ReasonCapability    = "capability"
)
