package env

import (
	"exofork/kernel"
	"exofork/kernel/mm"
	"exofork/kernel/mm/vmm"
)

// The system calls below make up the page mapping service. Each call names
// the environments it touches explicitly; calls that target the same
// environment are serialised by that environment's lock. A single call is
// atomic, but sequences of calls are not: callers that need several calls to
// take effect together must order them and handle failures themselves.

// GetEnvID returns the id of the calling environment.
func (t *Table) GetEnvID(caller *Env) ID {
	return caller.ID()
}

// Cputs prints s to the console, tagged with the caller's id.
func (t *Table) Cputs(caller *Env, s string) {
	caller.lock.Acquire()
	defer caller.lock.Release()

	_, _ = caller.console.Write([]byte(s))
}

// Yield gives up the processor; the caller becomes runnable again.
func (t *Table) Yield(caller *Env) {
	t.lock.Acquire()
	defer t.lock.Release()

	if caller.status == Running {
		caller.status = Runnable
	}
}

// Destroy destroys the environment id, which must be the caller or one of
// its children.
func (t *Table) Destroy(caller *Env, id ID) *kernel.Error {
	e, err := t.Lookup(caller, id, true)
	if err != nil {
		return err
	}

	t.destroy(e, e.ID())
	return nil
}

// Exofork creates a child environment with an empty address space and a
// copy of the caller's saved registers. The child is NotRunnable.
//
// Exofork returns the child's id to the parent. The child's saved context
// records a pending 0 return: the first Exofork call made on the child's
// behalf returns 0 without creating anything, which is how the child learns
// it is the child.
func (t *Table) Exofork(caller *Env) (ID, *kernel.Error) {
	callerID := caller.ID()
	if err := t.alive(caller, callerID); err != nil {
		return 0, err
	}

	caller.lock.Acquire()
	if caller.exoforkPending {
		caller.exoforkPending = false
		caller.regs.EAX = 0
		caller.lock.Release()
		return 0, nil
	}
	regs, handler := caller.regs, caller.pgfaultHandler
	caller.lock.Release()

	child, err := t.Alloc(callerID)
	if err != nil {
		return 0, err
	}
	childID := child.ID()

	child.lock.Acquire()
	child.regs = regs
	child.regs.EAX = 0
	child.pgfaultHandler = handler
	child.exoforkPending = true
	child.lock.Release()

	caller.lock.Acquire()
	caller.regs.EAX = uint32(childID)
	caller.lock.Release()

	return childID, nil
}

// SetStatus sets the status of environment id to Runnable or NotRunnable.
func (t *Table) SetStatus(caller *Env, id ID, status Status) *kernel.Error {
	if status != Runnable && status != NotRunnable {
		return ErrInval
	}

	e, err := t.Lookup(caller, id, true)
	if err != nil {
		return err
	}

	t.lock.Acquire()
	defer t.lock.Release()
	e.status = status
	return nil
}

// SetPgfaultUpcall installs the entry point the fault dispatcher transfers
// control to when environment id page faults.
func (t *Table) SetPgfaultUpcall(caller *Env, id ID, upcall Upcall) *kernel.Error {
	if upcall == nil {
		return ErrInval
	}

	e, err := t.Lookup(caller, id, true)
	if err != nil {
		return err
	}

	e.lock.Acquire()
	e.pgfaultUpcall = upcall
	e.lock.Release()
	return nil
}

// PageAlloc allocates a zeroed frame and maps it at va in environment id
// with permissions perm, replacing any existing mapping.
func (t *Table) PageAlloc(caller *Env, id ID, va uintptr, perm vmm.Perm) *kernel.Error {
	if err := checkUserVA(va, perm); err != nil {
		return err
	}

	e, err := t.Lookup(caller, id, true)
	if err != nil {
		return err
	}

	frame, err := t.frames.AllocFrame()
	if err != nil {
		return ErrNoMem.Wrap(err)
	}

	e.lock.Acquire()
	err = e.pdt.Map(mm.PageFromAddress(va), frame, perm.Flags())
	e.lock.Release()

	if err != nil {
		_ = t.frames.FreeFrame(frame)
		return ErrNoMem.Wrap(err)
	}
	return nil
}

// PageMap maps the frame backing srcVA in environment srcID at dstVA in
// environment dstID with permissions perm. Write permission may only be
// granted if the source mapping is writable.
func (t *Table) PageMap(caller *Env, srcID ID, srcVA uintptr, dstID ID, dstVA uintptr, perm vmm.Perm) *kernel.Error {
	if err := checkUserVA(srcVA, perm); err != nil {
		return err
	}
	if err := checkUserVA(dstVA, perm); err != nil {
		return err
	}

	src, err := t.Lookup(caller, srcID, true)
	if err != nil {
		return err
	}
	dst, err := t.Lookup(caller, dstID, true)
	if err != nil {
		return err
	}

	unlock := lockPair(src, dst)
	defer unlock()

	frame, srcFlags, err := src.pdt.Lookup(mm.PageFromAddress(srcVA))
	switch {
	case err != nil:
		return ErrInval.Wrap(err)
	case !srcFlags.Has(vmm.FlagUserAccessible):
		return ErrInval
	case perm.Writable() && !srcFlags.Has(vmm.FlagRW):
		return ErrInval
	}

	if err = dst.pdt.Map(mm.PageFromAddress(dstVA), frame, perm.Flags()); err != nil {
		return ErrNoMem.Wrap(err)
	}
	return nil
}

// PageUnmap removes the mapping at va in environment id. Unmapping an
// address with no mapping succeeds.
func (t *Table) PageUnmap(caller *Env, id ID, va uintptr) *kernel.Error {
	if va >= mm.UTOP || !mm.PageAligned(va) {
		return ErrInval
	}

	e, err := t.Lookup(caller, id, true)
	if err != nil {
		return err
	}

	e.lock.Acquire()
	e.pdt.Unmap(mm.PageFromAddress(va))
	e.lock.Release()
	return nil
}

func checkUserVA(va uintptr, perm vmm.Perm) *kernel.Error {
	if va >= mm.UTOP || !mm.PageAligned(va) || !perm.Valid() {
		return ErrInval
	}
	return nil
}

// lockPair acquires the locks of two environments in slot order and returns
// a function that releases them.
func lockPair(a, b *Env) func() {
	if a == b {
		a.lock.Acquire()
		return a.lock.Release
	}

	first, second := a, b
	if ENVX(a.ID()) > ENVX(b.ID()) {
		first, second = b, a
	}
	first.lock.Acquire()
	second.lock.Acquire()
	return func() {
		second.lock.Release()
		first.lock.Release()
	}
}
