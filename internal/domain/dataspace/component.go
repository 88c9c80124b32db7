package dataspace

import (
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/capability"
)

// OwnerID identifies the session that may revoke a dataspace. It is a lookup
// key only; the dataspace never holds its owner.
type OwnerID string

// CacheAttr is the caching policy requested for an iomem region.
type CacheAttr int

const (
	Cached CacheAttr = iota
	WriteCombined
	Uncached
)

// String returns the string representation of the cache attribute
func (c CacheAttr) String() string {
	switch c {
	case Cached:
		return "cached"
	case WriteCombined:
		return "write-combined"
	case Uncached:
		return "uncached"
	default:
		return "unknown"
	}
}

// Kind tells the two backings apart.
type Kind int

const (
	KindFile Kind = iota
	KindIOMem
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindIOMem:
		return "iomem"
	default:
		return "unknown"
	}
}

// Backing is either FileBacking or IOMemBacking.
type Backing interface {
	Kind() Kind
}

// FileBacking is a host file opened read-only.
type FileBacking struct {
	Filename   Filename
	Capability capability.Capability
}

// Kind implements Backing.
func (FileBacking) Kind() Kind { return KindFile }

// IOMemBacking is a physical memory region.
type IOMemBacking struct {
	PhysAddr uint64
	Cache    CacheAttr
}

// Kind implements Backing.
func (IOMemBacking) Kind() Kind { return KindIOMem }

// Component is a constructed dataspace. It has no setters.
type Component struct {
	size    uint64
	backing Backing
	owner   OwnerID
}

// Size returns the dataspace size in bytes.
func (c *Component) Size() uint64 { return c.size }

// Backing returns the backing variant.
func (c *Component) Backing() Backing { return c.backing }

// Kind returns the backing kind.
func (c *Component) Kind() Kind { return c.backing.Kind() }

// Owner returns the owning session, or "" if none was assigned yet.
func (c *Component) Owner() OwnerID { return c.owner }

// Writable is always false on this backend.
func (c *Component) Writable() bool { return false }

// Filename returns the backing file name; empty for iomem.
func (c *Component) Filename() Filename {
	if fb, ok := c.backing.(FileBacking); ok {
		return fb.Filename
	}
	return Filename{}
}

// Capability returns the capability of the backing file; invalid for iomem.
func (c *Component) Capability() capability.Capability {
	if fb, ok := c.backing.(FileBacking); ok {
		return fb.Capability
	}
	return capability.Capability{}
}

// BaseAddress returns the physical address for iomem and 0 for files.
func (c *Component) BaseAddress() uint64 {
	if mb, ok := c.backing.(IOMemBacking); ok {
		return mb.PhysAddr
	}
	return 0
}

// WithOwner returns a copy of c owned by owner.
func (c *Component) WithOwner(owner OwnerID) *Component {
	cp := *c
	cp.owner = owner
	return &cp
}
