// Package env implements environments (isolated address spaces), the system
// calls that manipulate their page mappings and the page fault dispatcher
// that reflects faults back to user mode.
package env

import (
	"exofork/kernel/gate"
	"exofork/kernel/kfmt"
	"exofork/kernel/mm/vmm"
	"exofork/kernel/sync"
	"fmt"
)

const (
	// logNEnv is log2 of the maximum number of environments.
	logNEnv = 10

	// NEnv is the maximum number of environments a Table can hold.
	NEnv = 1 << logNEnv

	// envGenShift is the lowest bit of the generation part of an ID.
	envGenShift = 12
)

// ID identifies an environment. The low bits select the table slot and the
// high bits carry a generation number that changes whenever a slot is
// reused, so stale ids never resolve to a new environment. The zero ID means
// "the calling environment" when passed to a system call.
type ID int32

// ENVX returns the table slot of an environment id.
func ENVX(id ID) int {
	return int(id) & (NEnv - 1)
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return fmt.Sprintf("%08x", uint32(id))
}

// Status describes the scheduling state of an environment.
type Status uint8

const (
	// Free slots do not hold an environment.
	Free Status = iota

	// Dying environments are being torn down.
	Dying

	// Runnable environments may be resumed.
	Runnable

	// Running is the status of the environment currently executing.
	Running

	// NotRunnable environments exist but may not be resumed; children
	// created by Exofork start in this state.
	NotRunnable
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Free:
		return "free"
	case Dying:
		return "dying"
	case Runnable:
		return "runnable"
	case Running:
		return "running"
	case NotRunnable:
		return "not-runnable"
	default:
		return "unknown"
	}
}

// Upcall is a user-mode entry point the kernel transfers control to while an
// environment services one of its own page faults.
type Upcall func(e *Env, utf *UTrapframe) error

// fault dispatcher states
const (
	faultIdle uint32 = iota
	faultDispatching
	faultInHandler
)

// Env describes an environment: an address space plus the state the kernel
// keeps for the single execution context that owns it.
type Env struct {
	table *Table

	// id, parentID and status are guarded by the table lock.
	id       ID
	parentID ID
	status   Status
	runs     int

	// lock guards the fields below.
	lock sync.Spinlock

	pdt  vmm.PageDirectoryTable
	regs gate.Registers

	// pgfaultUpcall is installed by SetPgfaultUpcall and is the entry
	// the dispatcher jumps to.
	pgfaultUpcall Upcall

	// pgfaultHandler is user-level state: the handler the upcall
	// trampoline calls. Like any other user variable it is inherited by
	// children at Exofork time.
	pgfaultHandler Upcall

	// exoforkPending is set on children created by Exofork whose saved
	// context has not yet observed the 0 return value.
	exoforkPending bool

	faultState uint32

	console kfmt.PrefixWriter
}

// Table returns the environment table that owns e.
func (e *Env) Table() *Table {
	return e.table
}

// ID returns the environment id.
func (e *Env) ID() ID {
	e.table.lock.Acquire()
	defer e.table.lock.Release()
	return e.id
}

// ParentID returns the id of the environment that created e.
func (e *Env) ParentID() ID {
	e.table.lock.Acquire()
	defer e.table.lock.Release()
	return e.parentID
}

// Status returns the scheduling state of e.
func (e *Env) Status() Status {
	e.table.lock.Acquire()
	defer e.table.lock.Release()
	return e.status
}

// Regs returns a copy of the saved register state.
func (e *Env) Regs() gate.Registers {
	e.lock.Acquire()
	defer e.lock.Release()
	return e.regs
}

// SetRegs replaces the saved register state. The monitor uses it to toggle
// single-stepping on a trapped environment.
func (e *Env) SetRegs(regs gate.Registers) {
	e.lock.Acquire()
	e.regs = regs
	e.lock.Release()
}

// View returns a read-only reflection of the environment's page tables.
func (e *Env) View() vmm.View {
	return vmm.NewView(&e.pdt, &e.lock)
}

// PgfaultHandler returns the user-level page fault handler or nil.
func (e *Env) PgfaultHandler() Upcall {
	e.lock.Acquire()
	defer e.lock.Release()
	return e.pgfaultHandler
}

// SetPgfaultHandler records the user-level page fault handler invoked by the
// upcall trampoline.
func (e *Env) SetPgfaultHandler(h Upcall) {
	e.lock.Acquire()
	e.pgfaultHandler = h
	e.lock.Release()
}

// HasPgfaultUpcall returns true once a fault upcall has been registered.
func (e *Env) HasPgfaultUpcall() bool {
	e.lock.Acquire()
	defer e.lock.Release()
	return e.pgfaultUpcall != nil
}
