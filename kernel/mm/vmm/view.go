package vmm

import (
	"exofork/kernel/mm"
	"sync"
)

// View is a read-only reflection of an address space's page directory and
// page tables. It lets an environment inspect the permission bits of its own
// mappings without privileged access; it cannot change them.
type View struct {
	pdt  *PageDirectoryTable
	lock sync.Locker
}

// NewView returns a View over pdt. Each read holds lock so that it never
// observes a half-updated entry.
func NewView(pdt *PageDirectoryTable, lock sync.Locker) View {
	return View{pdt: pdt, lock: lock}
}

// DirEntry returns the flags of the page directory entry that covers page.
// Absent entries report 0.
func (v View) DirEntry(page mm.Page) PageTableEntryFlag {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.pdt.frames == nil {
		return 0
	}
	return v.pdt.dirFlags(page.DirIndex())
}

// TableEntry returns the flags of the page table entry for page. Entries in
// a missing page table report 0.
func (v View) TableEntry(page mm.Page) PageTableEntryFlag {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.pdt.frames == nil {
		return 0
	}
	return v.pdt.tableFlags(page)
}

// Mapped returns true if both the directory and the table entry for page are
// present and carry all of the supplied flags.
func (v View) Mapped(page mm.Page, flags PageTableEntryFlag) bool {
	return v.DirEntry(page).Has(FlagPresent) && v.TableEntry(page).Has(FlagPresent|flags)
}
