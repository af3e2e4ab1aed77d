package env

import (
	"exofork/kernel"
	"exofork/kernel/gate"
	"exofork/kernel/kfmt"
	"exofork/kernel/mm/pmm"
	"exofork/kernel/sync"
	"fmt"
	"io"
)

var (
	// ErrBadEnv is returned for ids that do not resolve to a live
	// environment, or when the caller lacks permission to act on it.
	ErrBadEnv = &kernel.Error{Module: "env", Message: "bad environment"}

	// ErrInval is returned for invalid system call arguments.
	ErrInval = &kernel.Error{Module: "env", Message: "invalid parameter"}

	// ErrNoMem is returned when a physical frame cannot be allocated.
	ErrNoMem = &kernel.Error{Module: "env", Message: "out of memory"}

	// ErrNoFreeEnv is returned when the environment table is full.
	ErrNoFreeEnv = &kernel.Error{Module: "env", Message: "out of environments"}

	// ErrEnvDead is returned when an environment that is no longer alive
	// tries to execute.
	ErrEnvDead = &kernel.Error{Module: "env", Message: "environment is not alive", Fatal: true}
)

// Table holds every environment of the system and the physical frame arena
// their address spaces draw from.
type Table struct {
	lock sync.Spinlock

	frames   *pmm.Arena
	envs     []Env
	freeList []int
	out      io.Writer
}

// sinkWriter forwards console output to the active kfmt sink.
type sinkWriter struct{}

func (sinkWriter) Write(p []byte) (int, error) {
	kfmt.Printf("%s", p)
	return len(p), nil
}

// NewTable returns a table with room for maxEnvs environments whose address
// spaces allocate frames from frames. A nil out sends environment console
// output to kfmt.
func NewTable(frames *pmm.Arena, maxEnvs int, out io.Writer) (*Table, *kernel.Error) {
	if maxEnvs <= 0 || maxEnvs > NEnv {
		return nil, ErrInval
	}
	if out == nil {
		out = sinkWriter{}
	}

	t := &Table{
		frames:   frames,
		envs:     make([]Env, maxEnvs),
		freeList: make([]int, 0, maxEnvs),
		out:      out,
	}

	// Slots are handed out in increasing order
	for slot := maxEnvs - 1; slot >= 0; slot-- {
		t.envs[slot].table = t
		t.freeList = append(t.freeList, slot)
	}

	return t, nil
}

// Frames returns the arena backing all address spaces.
func (t *Table) Frames() *pmm.Arena {
	return t.frames
}

// Alloc creates a new environment with an empty address space. The new
// environment is NotRunnable; parentID is recorded for permission checks.
func (t *Table) Alloc(parentID ID) (*Env, *kernel.Error) {
	t.lock.Acquire()
	if len(t.freeList) == 0 {
		t.lock.Release()
		return nil, ErrNoFreeEnv
	}
	slot := t.freeList[len(t.freeList)-1]
	t.freeList = t.freeList[:len(t.freeList)-1]
	e := &t.envs[slot]

	// Generate an env id that differs from the one previously held by
	// this slot.
	generation := (e.id + (1 << envGenShift)) &^ (NEnv - 1)
	if generation <= 0 {
		generation = 1 << envGenShift
	}
	e.id = generation | ID(slot)
	e.parentID = parentID
	e.status = Dying
	e.runs = 0
	t.lock.Release()

	e.lock.Acquire()
	err := e.pdt.Init(t.frames)
	e.regs = gate.Registers{}
	e.pgfaultUpcall = nil
	e.pgfaultHandler = nil
	e.exoforkPending = false
	e.faultState = faultIdle
	e.console = kfmt.PrefixWriter{Sink: t.out, Prefix: []byte(fmt.Sprintf("[%s] ", e.id))}
	e.lock.Release()

	t.lock.Acquire()
	defer t.lock.Release()
	if err != nil {
		e.status = Free
		t.freeList = append(t.freeList, slot)
		return nil, ErrNoMem.Wrap(err)
	}
	e.status = NotRunnable
	return e, nil
}

// Lookup converts an environment id to an environment. ID 0 resolves to
// caller. If checkPerm is set, the target must be caller itself or one of its
// immediate children.
func (t *Table) Lookup(caller *Env, id ID, checkPerm bool) (*Env, *kernel.Error) {
	if id == 0 {
		if caller == nil {
			return nil, ErrBadEnv
		}
		return caller, nil
	}

	t.lock.Acquire()
	defer t.lock.Release()

	slot := ENVX(id)
	if slot >= len(t.envs) {
		return nil, ErrBadEnv
	}

	e := &t.envs[slot]
	if e.status == Free || e.id != id {
		return nil, ErrBadEnv
	}

	if checkPerm && e != caller && (caller == nil || e.parentID != caller.id) {
		return nil, ErrBadEnv
	}

	return e, nil
}

// Resume marks a runnable environment as running and returns it. The caller
// then executes on the environment's behalf.
func (t *Table) Resume(id ID) (*Env, *kernel.Error) {
	e, err := t.Lookup(nil, id, false)
	if err != nil {
		return nil, err
	}

	t.lock.Acquire()
	defer t.lock.Release()
	if e.status != Runnable {
		return nil, ErrInval
	}
	e.status = Running
	e.runs++
	return e, nil
}

// destroy tears down the address space of e and returns its slot to the free
// list, provided the slot still holds the environment identified by id. Any id
// referring to e stops resolving.
func (t *Table) destroy(e *Env, id ID) {
	t.lock.Acquire()
	if e.id != id || e.status == Free || e.status == Dying {
		t.lock.Release()
		return
	}
	e.status = Dying
	t.lock.Release()

	e.lock.Acquire()
	e.pdt.Destroy()
	e.pgfaultUpcall = nil
	e.pgfaultHandler = nil
	e.lock.Release()

	kfmt.Printf("[%s] free env %s\n", id, id)

	t.lock.Acquire()
	e.status = Free
	t.freeList = append(t.freeList, ENVX(id))
	t.lock.Release()
}

// alive returns ErrEnvDead unless e still holds the live environment id.
func (t *Table) alive(e *Env, id ID) *kernel.Error {
	t.lock.Acquire()
	defer t.lock.Release()

	if e.id != id || e.status == Free || e.status == Dying {
		return ErrEnvDead
	}
	return nil
}

// Info is a snapshot of an environment's bookkeeping used by the monitor.
type Info struct {
	ID       ID
	ParentID ID
	Status   Status
	Runs     int
}

// Envs returns a snapshot of every live environment ordered by slot.
func (t *Table) Envs() []Info {
	t.lock.Acquire()
	defer t.lock.Release()

	var infos []Info
	for slot := range t.envs {
		e := &t.envs[slot]
		if e.status == Free {
			continue
		}
		infos = append(infos, Info{ID: e.id, ParentID: e.parentID, Status: e.status, Runs: e.runs})
	}
	return infos
}
