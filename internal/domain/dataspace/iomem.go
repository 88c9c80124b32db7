package dataspace

import "go.uber.org/zap"

// NewIOMem builds an iomem-backed dataspace. Linux has no IOMEM, so the
// call only warns. The size is kept as given, unaligned. addrHint and the
// writable request are ignored.
func NewIOMem(size, addrHint, physAddr uint64, cache CacheAttr, writable bool, owner OwnerID, logger *zap.Logger) *Component {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Named("dataspace").Warn("iomem dataspace should not be used on Linux",
		zap.Uint64("size", size),
		zap.Uint64("phys_addr", physAddr),
		zap.Stringer("cache", cache),
		zap.Bool("writable_requested", writable),
	)

	return &Component{
		size:    size,
		backing: IOMemBacking{PhysAddr: physAddr, Cache: cache},
		owner:   owner,
	}
}
