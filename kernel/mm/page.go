package mm

import "math"

// Frame describes a physical memory page index.
type Frame uint32

const (
	// InvalidFrame is returned by frame allocators when they fail to
	// reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint32)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address pointed to by this Frame.
func (f Frame) Address() uintptr {
	return uintptr(f) << PageShift
}

// FrameFromAddress returns a Frame that corresponds to the given physical
// address. This function can handle both page-aligned and not aligned
// addresses. in the latter case, the input address will be rounded down to the
// frame that contains it.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame(physAddr >> PageShift)
}

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address pointed to by this Page.
func (p Page) Address() uintptr {
	return uintptr(p) << PageShift
}

// DirIndex returns the page directory slot that covers this page.
func (p Page) DirIndex() int {
	return int(uintptr(p) >> TableShift)
}

// TableIndex returns the page table slot for this page within the table
// selected by DirIndex.
func (p Page) TableIndex() int {
	return int(uintptr(p) & (PageTableEntries - 1))
}

// PageFromAddress returns a Page that corresponds to the given virtual
// address. This function can handle both page-aligned and not aligned virtual
// addresses. in the latter case, the input address will be rounded down to the
// page that contains it.
func PageFromAddress(virtAddr uintptr) Page {
	return Page(virtAddr >> PageShift)
}

// PageFromIndices returns the Page addressed by a directory and table slot.
func PageFromIndices(dirIndex, tableIndex int) Page {
	return Page(uintptr(dirIndex)<<TableShift | uintptr(tableIndex))
}

// RoundDown rounds addr down to the nearest page boundary.
func RoundDown(addr uintptr) uintptr {
	return addr &^ (PageSize - 1)
}

// PageAligned returns true if addr is a multiple of PageSize.
func PageAligned(addr uintptr) bool {
	return addr&(PageSize-1) == 0
}
