package dataspace

// Page granularity of dataspace mappings.
const (
	PageShift = 12
	PageSize  = 1 << PageShift
)

// PageAlign rounds size up to the next page boundary. It returns false if the
// result does not fit in a uint64.
func PageAlign(size uint64) (uint64, bool) {
	aligned := (size + PageSize - 1) &^ (PageSize - 1)
	if aligned < size {
		return 0, false
	}
	return aligned, true
}
