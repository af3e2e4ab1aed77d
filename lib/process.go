// Package lib is the user-level library environments link against. It
// provides the copy-on-write fork, the page fault handler that backs it and
// thin wrappers around the kernel's system calls.
package lib

import (
	"encoding/binary"
	"exofork/kernel"
	"exofork/kernel/env"
	"exofork/kernel/mm/vmm"
	"fmt"
)

// Process is the library's view of the environment it runs in. All memory
// accesses made through a Process behave like user-mode loads and stores and
// may therefore fault.
type Process struct {
	sys Syscalls
	env *env.Env

	// thisenv caches the id of the running environment; the child branch
	// of fork refreshes it.
	thisenv env.ID
}

// NewProcess returns a Process that executes as e using the supplied system
// call interface.
func NewProcess(sys Syscalls, e *env.Env) *Process {
	return &Process{sys: sys, env: e, thisenv: sys.GetEnvID(e)}
}

// ID returns the id of the environment the process runs as.
func (p *Process) ID() env.ID {
	return p.thisenv
}

// Env returns the underlying environment.
func (p *Process) Env() *env.Env {
	return p.env
}

// View returns a read-only view of the process' own page tables.
func (p *Process) View() vmm.View {
	return p.env.View()
}

// Child returns a Process executing as the child environment id. It is how a
// driver resumes the child branch of a fork.
func (p *Process) Child(id env.ID) (*Process, error) {
	e, err := p.sys.Lookup(p.env, id, true)
	if err != nil {
		return nil, err
	}
	return NewProcess(p.sys, e), nil
}

// Load reads len(buf) bytes at va.
func (p *Process) Load(va uintptr, buf []byte) error {
	return p.sys.Load(p.env, va, buf)
}

// Store writes data at va.
func (p *Process) Store(va uintptr, data []byte) error {
	return p.sys.Store(p.env, va, data)
}

// Load32 reads a little-endian 32-bit word at va.
func (p *Process) Load32(va uintptr) (uint32, error) {
	var buf [4]byte
	if err := p.Load(va, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Store32 writes v at va as a little-endian 32-bit word.
func (p *Process) Store32(va uintptr, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return p.Store(va, buf[:])
}

// Printf formats according to a format specifier and writes the result to
// the console.
func (p *Process) Printf(format string, args ...interface{}) {
	p.sys.Cputs(p.env, fmt.Sprintf(format, args...))
}

// Yield gives up the processor.
func (p *Process) Yield() {
	p.sys.Yield(p.env)
}

// Exit destroys the process. Exiting twice is harmless: the second call no
// longer resolves the process' id.
func (p *Process) Exit() {
	_ = p.sys.Destroy(p.env, p.thisenv)
}

// panic reports err on the console and exits the process. It returns err so
// callers can hand it to their own caller.
func (p *Process) panic(err *kernel.Error) error {
	p.Printf("user panic in %s: %s\n", err.Module, err.Error())
	p.Exit()
	return err
}
