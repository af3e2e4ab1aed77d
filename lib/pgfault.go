package lib

import (
	"exofork/kernel"
	"exofork/kernel/env"
	"exofork/kernel/gate"
	"exofork/kernel/mm"
	"exofork/kernel/mm/vmm"
	"fmt"
)

var (
	// ErrNotWrite is returned when the copy-on-write handler sees a fault
	// that was not caused by a write.
	ErrNotWrite = &kernel.Error{Module: "lib", Message: "page fault was not caused by a write", Fatal: true}

	// ErrNoPageDir is returned when the faulting address is not covered by
	// a present page directory entry.
	ErrNoPageDir = &kernel.Error{Module: "lib", Message: "page fault in an unmapped page table", Fatal: true}

	// ErrNotCOW is returned for write faults on pages that are not marked
	// copy-on-write.
	ErrNotCOW = &kernel.Error{Module: "lib", Message: "write fault on a page that is not copy-on-write", Fatal: true}

	// ErrCOWCopy is returned when a private copy of a copy-on-write page
	// cannot be installed.
	ErrCOWCopy = &kernel.Error{Module: "lib", Message: "unable to copy copy-on-write page", Fatal: true}

	// ErrNoHandler is returned by the upcall trampoline if no handler has
	// been set.
	ErrNoHandler = &kernel.Error{Module: "lib", Message: "no page fault handler set", Fatal: true}

	// ErrSetHandler is returned when the exception stack or the upcall
	// trampoline cannot be installed.
	ErrSetHandler = &kernel.Error{Module: "lib", Message: "unable to set page fault handler", Fatal: true}
)

// Handler services a page fault taken by p. A handler that returns an error
// has not repaired the fault and the environment is destroyed.
type Handler func(p *Process, utf *env.UTrapframe) error

// SetPgfaultHandler sets h as the page fault handler of p. The first call
// allocates the exception stack and registers the upcall trampoline with the
// kernel; later calls only swap the handler.
func SetPgfaultHandler(p *Process, h Handler) *kernel.Error {
	if p.env.PgfaultHandler() == nil {
		if err := p.sys.PageAlloc(p.env, 0, mm.UXSTACKTOP-mm.PageSize, vmm.PermWritable); err != nil {
			return ErrSetHandler.Wrap(err)
		}
		if err := p.sys.SetPgfaultUpcall(p.env, 0, pgfaultUpcall); err != nil {
			return ErrSetHandler.Wrap(err)
		}
	}

	// The stored handler is user state and is inherited by forked
	// children, so it must bind to whichever environment faults.
	sys := p.sys
	p.env.SetPgfaultHandler(func(e *env.Env, utf *env.UTrapframe) error {
		return h(NewProcess(sys, e), utf)
	})
	return nil
}

// pgfaultUpcall is the entry point registered with the kernel. It runs on
// the exception stack and calls the handler recorded in the faulting
// environment.
func pgfaultUpcall(e *env.Env, utf *env.UTrapframe) error {
	h := e.PgfaultHandler()
	if h == nil {
		return ErrNoHandler
	}
	return h(e, utf)
}

// pgfault is the copy-on-write fault handler. It replaces the faulting
// copy-on-write mapping with a private writable copy of the page.
func pgfault(p *Process, utf *env.UTrapframe) error {
	var (
		va   = uintptr(utf.FaultVA)
		addr = mm.RoundDown(va)
		page = mm.PageFromAddress(addr)
		view = p.View()
	)

	switch {
	case !utf.Err.Is(gate.FaultWrite):
		return ErrNotWrite.Wrap(fmt.Errorf("va %08x: %s", va, utf.Err.Reason()))
	case !view.DirEntry(page).Has(vmm.FlagPresent):
		return ErrNoPageDir.Wrap(fmt.Errorf("va %08x", va))
	case !view.TableEntry(page).Has(vmm.FlagPresent | vmm.FlagCopyOnWrite):
		return ErrNotCOW.Wrap(fmt.Errorf("va %08x: entry %s", va, view.TableEntry(page)))
	}

	if err := p.sys.PageAlloc(p.env, 0, mm.PFTEMP, vmm.PermWritable); err != nil {
		return ErrCOWCopy.Wrap(err)
	}

	buf := make([]byte, mm.PageSize)
	if err := p.Load(addr, buf); err != nil {
		return ErrCOWCopy.Wrap(err)
	}
	if err := p.Store(mm.PFTEMP, buf); err != nil {
		return ErrCOWCopy.Wrap(err)
	}

	if err := p.sys.PageMap(p.env, 0, mm.PFTEMP, 0, addr, vmm.PermWritable); err != nil {
		return ErrCOWCopy.Wrap(err)
	}
	if err := p.sys.PageUnmap(p.env, 0, mm.PFTEMP); err != nil {
		return ErrCOWCopy.Wrap(err)
	}
	return nil
}
