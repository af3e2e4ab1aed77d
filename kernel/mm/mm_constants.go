package mm

const (
	// PageShift is equal to log2(PageSize). This constant is used when
	// we need to convert a physical address to a page number (shift right by PageShift)
	// and vice-versa.
	PageShift = uintptr(12)

	// PageSize defines the system's page size in bytes.
	PageSize = uintptr(1 << PageShift)

	// TableShift is equal to log2(PageTableEntries); it converts a page
	// index into a page directory index.
	TableShift = uintptr(10)

	// PageTableEntries is the number of entries in a page table.
	PageTableEntries = 1 << TableShift

	// PageDirEntries is the number of entries in a page directory.
	PageDirEntries = 1 << TableShift

	// TableSpan is the number of bytes of virtual address space covered
	// by a single page table.
	TableSpan = PageSize * PageTableEntries
)
