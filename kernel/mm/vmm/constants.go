package vmm

const (
	// ptePhysPageMask is a mask that allows us to extract the physical
	// frame address pointed to by a page table entry. Bits 12-31 contain
	// the frame address.
	ptePhysPageMask = uint32(0xfffff000)

	// pteFlagMask selects the flag bits of a page table entry.
	pteFlagMask = ^ptePhysPageMask
)

const (
	// FlagPresent is set when the page is available in memory.
	FlagPresent PageTableEntryFlag = 1 << iota

	// FlagRW is set if the page can be written to.
	FlagRW

	// FlagUserAccessible is set if user-mode environments can access this
	// page. If not set only kernel code can access this page.
	FlagUserAccessible

	// FlagWriteThroughCaching implies write-through caching when set and write-back
	// caching if cleared.
	FlagWriteThroughCaching

	// FlagDoNotCache prevents this page from being cached if set.
	FlagDoNotCache

	// FlagAccessed is set by the MMU when this page is accessed.
	FlagAccessed

	// FlagDirty is set by the MMU when this page is modified.
	FlagDirty

	// FlagHugePage is set when using 4Mb pages instead of 4K pages.
	FlagHugePage

	// FlagGlobal if set, prevents the TLB from flushing the cached memory
	// address for this page when the active page directory changes.
	FlagGlobal
)

const (
	// FlagsAvail are the entry bits the MMU ignores; software may use them
	// freely.
	FlagsAvail PageTableEntryFlag = 0xe00

	// FlagCopyOnWrite marks copy-on-write entries. It is one of the
	// FlagsAvail bits so the MMU never interprets it; this flag and FlagRW
	// are mutually exclusive.
	FlagCopyOnWrite PageTableEntryFlag = 0x800

	// FlagsSyscall are the only flags user environments may pass to the
	// page mapping system calls.
	FlagsSyscall = FlagsAvail | FlagPresent | FlagRW | FlagUserAccessible
)
