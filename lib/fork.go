package lib

import (
	"exofork/kernel"
	"exofork/kernel/env"
	"exofork/kernel/mm"
	"exofork/kernel/mm/vmm"
)

var (
	// ErrExofork is returned when the kernel cannot create a child
	// environment. Nothing has been modified when it is returned.
	ErrExofork = &kernel.Error{Module: "fork", Message: "unable to create child environment"}

	// ErrDuppage is returned when a page cannot be duplicated into the
	// child.
	ErrDuppage = &kernel.Error{Module: "fork", Message: "unable to duplicate page", Fatal: true}

	// ErrChildSetup is returned when the child's exception stack, fault
	// upcall or status cannot be set up.
	ErrChildSetup = &kernel.Error{Module: "fork", Message: "unable to set up child environment", Fatal: true}
)

// ChildResult tells the two branches of a fork apart. The parent branch gets
// the child's id; the child branch gets Child set and a zero ID.
type ChildResult struct {
	Child bool
	ID    env.ID
}

// pageDuplicator replicates the mapping of page from the process into the
// child environment.
type pageDuplicator func(p *Process, child env.ID, page mm.Page) *kernel.Error

// Fork creates a child process whose address space is a copy-on-write image
// of p's. Writable and copy-on-write pages end up copy-on-write in both the
// parent and the child; read-only pages are shared as they are. The
// exception stack is never shared.
//
// Like the kernel's exofork, Fork returns twice. The parent branch returns
// once the child is runnable; the child branch runs when the child's
// process calls Fork for the first time, and returns immediately.
//
// Failing to install the fault handler, and any error after the child has
// been created, leaves the parent in an inconsistent state: the parent exits
// and the returned error is fatal.
func Fork(p *Process) (ChildResult, error) {
	return fork(p, func(p *Process, child env.ID) *kernel.Error {
		return duppageRange(p, child, duppage)
	})
}

// Sfork is a variant of Fork tuned for stack-heavy programs. The topmost
// contiguous run of mapped pages below USTACKTOP is treated as the stack and
// is always shared copy-on-write, including read-only pages. Below the first
// gap pages get the same treatment as in Fork.
func Sfork(p *Process) (ChildResult, error) {
	return fork(p, sduppageRange)
}

func fork(p *Process, dupAll func(p *Process, child env.ID) *kernel.Error) (ChildResult, error) {
	if err := SetPgfaultHandler(p, pgfault); err != nil {
		return ChildResult{}, p.panic(err)
	}

	child, err := p.sys.Exofork(p.env)
	if err != nil {
		return ChildResult{}, ErrExofork.Wrap(err)
	}

	if child == 0 {
		p.thisenv = p.sys.GetEnvID(p.env)
		return ChildResult{Child: true}, nil
	}

	if err = dupAll(p, child); err != nil {
		return ChildResult{}, p.panic(err)
	}

	if err = p.sys.PageAlloc(p.env, child, mm.UXSTACKTOP-mm.PageSize, vmm.PermWritable); err != nil {
		return ChildResult{}, p.panic(ErrChildSetup.Wrap(err))
	}
	if err = p.sys.SetPgfaultUpcall(p.env, child, pgfaultUpcall); err != nil {
		return ChildResult{}, p.panic(ErrChildSetup.Wrap(err))
	}
	if err = p.sys.SetStatus(p.env, child, env.Runnable); err != nil {
		return ChildResult{}, p.panic(ErrChildSetup.Wrap(err))
	}

	return ChildResult{ID: child}, nil
}

// duppageRange duplicates every mapped user page in [UTEXT, UTOP) except the
// exception stack.
func duppageRange(p *Process, child env.ID, dup pageDuplicator) *kernel.Error {
	view := p.View()
	xstack := mm.ExceptionStackPage()

	for va := mm.UTEXT; va < mm.UTOP; {
		page := mm.PageFromAddress(va)
		if !view.DirEntry(page).Has(vmm.FlagPresent) {
			va = mm.PageFromIndices(page.DirIndex()+1, 0).Address()
			continue
		}

		if page != xstack && view.TableEntry(page).Has(vmm.FlagPresent|vmm.FlagUserAccessible) {
			if err := dup(p, child, page); err != nil {
				return err
			}
		}
		va += mm.PageSize
	}

	return nil
}

// duppage maps page into the child at the same address. Writable and
// copy-on-write pages are mapped copy-on-write in the child and then
// remapped copy-on-write in the parent; the parent's own mapping keeps its
// write access until that second mapping replaces it. Any other page is
// shared with its current permissions.
func duppage(p *Process, child env.ID, page mm.Page) *kernel.Error {
	va := page.Address()
	flags := p.View().TableEntry(page)

	if flags.Has(vmm.FlagRW) || flags.Has(vmm.FlagCopyOnWrite) {
		return cowpage(p, child, page)
	}

	perm, err := vmm.NewPerm(flags & vmm.FlagsSyscall)
	if err != nil {
		return ErrDuppage.Wrap(err)
	}
	if err = p.sys.PageMap(p.env, 0, va, child, va, perm); err != nil {
		return ErrDuppage.Wrap(err)
	}
	return nil
}

// cowpage shares page copy-on-write between the child and the parent.
func cowpage(p *Process, child env.ID, page mm.Page) *kernel.Error {
	va := page.Address()

	if err := p.sys.PageMap(p.env, 0, va, child, va, vmm.PermCOW); err != nil {
		return ErrDuppage.Wrap(err)
	}
	if err := p.sys.PageMap(p.env, 0, va, 0, va, vmm.PermCOW); err != nil {
		return ErrDuppage.Wrap(err)
	}
	return nil
}

// sduppageRange walks the user stack downwards from USTACKTOP. Pages in the
// topmost contiguous run of mapped pages are shared copy-on-write no matter
// their permissions; every page below the first gap is handled by duppage.
// The exception stack lies above USTACKTOP and is never visited.
func sduppageRange(p *Process, child env.ID) *kernel.Error {
	view := p.View()
	inStack := true

	for va := mm.USTACKTOP - mm.PageSize; va >= mm.UTEXT; va -= mm.PageSize {
		page := mm.PageFromAddress(va)
		if !view.DirEntry(page).Has(vmm.FlagPresent) {
			inStack = false

			// Continue with the last page of the previous table
			va = mm.PageFromIndices(page.DirIndex(), 0).Address()
			continue
		}

		if !view.TableEntry(page).Has(vmm.FlagPresent | vmm.FlagUserAccessible) {
			inStack = false
			continue
		}

		var err *kernel.Error
		if inStack {
			err = cowpage(p, child, page)
		} else {
			err = duppage(p, child, page)
		}
		if err != nil {
			return err
		}
	}

	return nil
}
