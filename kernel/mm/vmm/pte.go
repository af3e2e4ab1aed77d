package vmm

import (
	"exofork/kernel/mm"
	"fmt"
	"strings"
)

// PageTableEntryFlag describes a flag that can be applied to a page table entry.
type PageTableEntryFlag uint32

// Has returns true if all the input flags are set.
func (f PageTableEntryFlag) Has(flags PageTableEntryFlag) bool {
	return f&flags == flags
}

// String renders the flags in the P/U/W/COW notation used by the monitor.
func (f PageTableEntryFlag) String() string {
	var parts []string
	for _, named := range []struct {
		flag PageTableEntryFlag
		name string
	}{
		{FlagPresent, "P"},
		{FlagUserAccessible, "U"},
		{FlagRW, "W"},
		{FlagCopyOnWrite, "COW"},
	} {
		if f.Has(named.flag) {
			parts = append(parts, named.name)
		}
	}

	if rest := f &^ (FlagPresent | FlagUserAccessible | FlagRW | FlagCopyOnWrite); rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}

	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}

// pageTableEntry describes a page table entry. These entries encode a
// physical frame address and a set of flags.
type pageTableEntry uint32

// HasFlags returns true if this entry has all the input flags set.
func (pte pageTableEntry) HasFlags(flags PageTableEntryFlag) bool {
	return (uint32(pte) & uint32(flags)) == uint32(flags)
}

// SetFlags sets the input list of flags to the page table entry.
func (pte *pageTableEntry) SetFlags(flags PageTableEntryFlag) {
	*pte = (pageTableEntry)(uint32(*pte) | uint32(flags))
}

// ClearFlags unsets the input list of flags from the page table entry.
func (pte *pageTableEntry) ClearFlags(flags PageTableEntryFlag) {
	*pte = (pageTableEntry)(uint32(*pte) &^ uint32(flags))
}

// Flags returns the flag bits of the entry.
func (pte pageTableEntry) Flags() PageTableEntryFlag {
	return PageTableEntryFlag(uint32(pte) & pteFlagMask)
}

// Frame returns the physical page frame that this page table entry points to.
func (pte pageTableEntry) Frame() mm.Frame {
	return mm.FrameFromAddress(uintptr(uint32(pte) & ptePhysPageMask))
}

// SetFrame updates the page table entry to point the the given physical frame.
func (pte *pageTableEntry) SetFrame(frame mm.Frame) {
	*pte = (pageTableEntry)((uint32(*pte) &^ ptePhysPageMask) | uint32(frame.Address()))
}
