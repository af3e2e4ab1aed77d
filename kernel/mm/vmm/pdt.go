package vmm

import (
	"exofork/kernel"
	"exofork/kernel/mm"
	"unsafe"
)

var (
	// ErrInvalidMapping is returned when trying to lookup a virtual memory
	// address that is not yet mapped.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	errNoHugePageSupport = &kernel.Error{Module: "vmm", Message: "huge pages are not supported"}

	// ptePtrFn returns a pointer to the page table stored in the supplied
	// frame contents. It is used by tests to observe the tables installed by
	// walk.
	ptePtrFn = func(frameContents []byte) unsafe.Pointer {
		return unsafe.Pointer(&frameContents[0])
	}
)

// FrameAllocator is the physical memory interface used by page directories.
// Page table frames are owned by a single directory and are never reference
// counted; mapped frames are.
type FrameAllocator interface {
	AllocFrame() (mm.Frame, *kernel.Error)
	FreeFrame(mm.Frame) *kernel.Error
	Refup(mm.Frame)
	Refdown(mm.Frame) bool
	Bytes(mm.Frame) []byte
}

// pageTable overlays the contents of a frame that holds page table entries.
type pageTable [mm.PageTableEntries]pageTableEntry

// PageDirectoryTable describes the top-most table in the two-level paging
// scheme. The directory and every page table it references live in frames
// obtained from the FrameAllocator.
type PageDirectoryTable struct {
	frames   FrameAllocator
	pdtFrame mm.Frame
}

// Init allocates and clears the frame that stores the page directory.
func (pdt *PageDirectoryTable) Init(frames FrameAllocator) *kernel.Error {
	pdtFrame, err := frames.AllocFrame()
	if err != nil {
		return err
	}

	pdt.frames = frames
	pdt.pdtFrame = pdtFrame
	return nil
}

// Frame returns the frame holding the page directory.
func (pdt *PageDirectoryTable) Frame() mm.Frame {
	return pdt.pdtFrame
}

func (pdt *PageDirectoryTable) table(frame mm.Frame) *pageTable {
	return (*pageTable)(ptePtrFn(pdt.frames.Bytes(frame)))
}

// pageTableWalker is a function that can be passed to the walk method. The
// function receives the current page level and page table entry as its
// arguments. If the function returns false, then the page walk is aborted.
type pageTableWalker func(pteLevel uint8, pte *pageTableEntry) bool

// walk performs a page table walk for the given page. It calls the supplied
// walkFn with the page table entry that corresponds to each page table level.
// Level 0 is the directory entry and level 1 the page table entry. If walkFn
// returns false or the directory entry is not present after walkFn returns,
// the walk is aborted.
func (pdt *PageDirectoryTable) walk(page mm.Page, walkFn pageTableWalker) {
	pde := &pdt.table(pdt.pdtFrame)[page.DirIndex()]
	if !walkFn(0, pde) || !pde.HasFlags(FlagPresent) {
		return
	}

	walkFn(1, &pdt.table(pde.Frame())[page.TableIndex()])
}

// Map establishes a mapping between a virtual page and a physical memory frame
// using this PDT. Missing page tables are allocated from the directory's frame
// allocator. Any frame previously mapped at page is released; the mapped frame
// gains a reference.
func (pdt *PageDirectoryTable) Map(page mm.Page, frame mm.Frame, flags PageTableEntryFlag) *kernel.Error {
	var err *kernel.Error

	pdt.walk(page, func(pteLevel uint8, pte *pageTableEntry) bool {
		// If we reached the last level all we need to do is to map the
		// frame in place. The new frame is referenced before the old one
		// is released so remapping a page onto itself keeps it alive.
		if pteLevel == 1 {
			pdt.frames.Refup(frame)
			if pte.HasFlags(FlagPresent) {
				pdt.frames.Refdown(pte.Frame())
			}

			*pte = 0
			pte.SetFrame(frame)
			pte.SetFlags(flags | FlagPresent)
			return true
		}

		if pte.HasFlags(FlagHugePage) {
			err = errNoHugePageSupport
			return false
		}

		// Next table does not yet exist; we need to allocate a physical
		// frame for it. AllocFrame hands out cleared frames.
		if !pte.HasFlags(FlagPresent) {
			var newTableFrame mm.Frame
			newTableFrame, err = pdt.frames.AllocFrame()
			if err != nil {
				return false
			}

			*pte = 0
			pte.SetFrame(newTableFrame)
			pte.SetFlags(FlagPresent | FlagRW | FlagUserAccessible)
		}

		return true
	})

	return err
}

// Unmap removes a mapping previously installed by a call to Map. Unmapping a
// page that is not mapped is a no-op.
func (pdt *PageDirectoryTable) Unmap(page mm.Page) {
	pdt.walk(page, func(pteLevel uint8, pte *pageTableEntry) bool {
		if pteLevel == 1 && pte.HasFlags(FlagPresent) {
			pdt.frames.Refdown(pte.Frame())
			pte.ClearFlags(PageTableEntryFlag(pteFlagMask))
		}
		return true
	})
}

// Lookup returns the frame and flags of the mapping for page or
// ErrInvalidMapping if the page is not mapped.
func (pdt *PageDirectoryTable) Lookup(page mm.Page) (mm.Frame, PageTableEntryFlag, *kernel.Error) {
	var entry pageTableEntry

	pdt.walk(page, func(pteLevel uint8, pte *pageTableEntry) bool {
		if pteLevel == 1 {
			entry = *pte
		}
		return true
	})

	if !entry.HasFlags(FlagPresent) {
		return mm.InvalidFrame, 0, ErrInvalidMapping
	}
	return entry.Frame(), entry.Flags(), nil
}

// dirFlags returns the flags of a page directory entry.
func (pdt *PageDirectoryTable) dirFlags(dirIndex int) PageTableEntryFlag {
	return pdt.table(pdt.pdtFrame)[dirIndex].Flags()
}

// tableFlags returns the flags of the page table entry for page or 0 if the
// covering page table does not exist.
func (pdt *PageDirectoryTable) tableFlags(page mm.Page) PageTableEntryFlag {
	var flags PageTableEntryFlag
	pdt.walk(page, func(pteLevel uint8, pte *pageTableEntry) bool {
		if pteLevel == 1 {
			flags = pte.Flags()
		}
		return true
	})
	return flags
}

// Destroy releases every mapping below mm.UTOP, every page table and finally
// the directory frame itself. The directory must not be used afterwards.
func (pdt *PageDirectoryTable) Destroy() {
	if pdt.frames == nil {
		return
	}

	dir := pdt.table(pdt.pdtFrame)
	lastDir := mm.PageFromAddress(mm.UTOP).DirIndex()
	for dirIndex := 0; dirIndex < lastDir; dirIndex++ {
		pde := &dir[dirIndex]
		if !pde.HasFlags(FlagPresent) {
			continue
		}

		tableFrame := pde.Frame()
		for _, pte := range pdt.table(tableFrame) {
			if pte.HasFlags(FlagPresent) {
				pdt.frames.Refdown(pte.Frame())
			}
		}

		*pde = 0
		_ = pdt.frames.FreeFrame(tableFrame)
	}

	_ = pdt.frames.FreeFrame(pdt.pdtFrame)
	pdt.frames = nil
	pdt.pdtFrame = mm.InvalidFrame
}

// PageOffset returns the offset within the page specified by a virtual
// address.
func PageOffset(virtAddr uintptr) uintptr {
	return virtAddr & (mm.PageSize - 1)
}
