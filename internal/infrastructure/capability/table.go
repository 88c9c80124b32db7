// Package capability turns host file descriptors into capabilities.
//
// A capability is an opaque handle. Its ID is a prefixed ULID and the only way
// to obtain one is through Table.Translate, so clients cannot forge them. The
// table owns every registered descriptor and closes it on Release.
package capability

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/GriffinCanCode/AgentOS/romd/internal/shared/id"
)

var (
	ErrInvalidDescriptor = errors.New("invalid file descriptor")
	ErrTableClosed       = errors.New("capability table is closed")
	ErrNotFound          = errors.New("capability not found")
)

// Capability references one registered descriptor. The zero value is invalid.
type Capability struct {
	id id.CapabilityID
}

// ID returns the capability identifier.
func (c Capability) ID() id.CapabilityID { return c.id }

// IsValid reports whether c was issued by a table.
func (c Capability) IsValid() bool { return c.id != "" }

// String implements fmt.Stringer.
func (c Capability) String() string {
	if !c.IsValid() {
		return "<invalid>"
	}
	return c.id.String()
}

// Table maps capabilities to open host descriptors.
type Table struct {
	mu     sync.RWMutex
	fds    map[id.CapabilityID]int
	close  func(fd int) error
	closed bool
}

// NewTable creates a table. closeFn releases descriptors and defaults to unix.Close.
func NewTable(closeFn func(fd int) error) *Table {
	if closeFn == nil {
		closeFn = unix.Close
	}
	return &Table{
		fds:   make(map[id.CapabilityID]int),
		close: closeFn,
	}
}

// Translate registers fd and returns its capability. On success the table owns fd.
func (t *Table) Translate(fd int) (Capability, error) {
	if fd < 0 {
		return Capability{}, fmt.Errorf("%w: %d", ErrInvalidDescriptor, fd)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return Capability{}, ErrTableClosed
	}

	capID := id.NewCapabilityID()
	t.fds[capID] = fd
	return Capability{id: capID}, nil
}

// Lookup returns the descriptor behind c.
func (t *Table) Lookup(c Capability) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	fd, ok := t.fds[c.id]
	return fd, ok
}

// Release closes the descriptor behind c and forgets it.
func (t *Table) Release(c Capability) error {
	t.mu.Lock()
	fd, ok := t.fds[c.id]
	if ok {
		delete(t.fds, c.id)
	}
	t.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	if err := t.close(fd); err != nil {
		return fmt.Errorf("failed to close descriptor %d: %w", fd, err)
	}
	return nil
}

// Len returns the number of live capabilities.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.fds)
}

// Close releases every descriptor and refuses further translations.
func (t *Table) Close() error {
	t.mu.Lock()
	fds := t.fds
	t.fds = make(map[id.CapabilityID]int)
	t.closed = true
	t.mu.Unlock()

	var errs []error
	for _, fd := range fds {
		if err := t.close(fd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
