// Package pmm manages the physical frames that back every address space. All
// frames live in a single arena; sharing between address spaces is tracked with
// per-frame reference counts instead of raw address aliasing.
package pmm

import (
	"exofork/kernel"
	"exofork/kernel/mm"
	"exofork/kernel/sync"
)

// MaxFrames is the number of frames addressable through a 32-bit physical
// address.
const MaxFrames = 1 << (32 - mm.PageShift)

var (
	// ErrOutOfMemory is returned when the arena has no free frames left.
	ErrOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of physical memory"}

	// ErrInvalidFrame is returned for frames outside the arena or frames
	// that are still referenced when freed.
	ErrInvalidFrame = &kernel.Error{Module: "pmm", Message: "invalid frame"}

	// ErrArenaSize is returned when an arena is requested with no frames or
	// with more frames than a page table entry can address.
	ErrArenaSize = &kernel.Error{Module: "pmm", Message: "invalid frame arena size"}

	errArenaBacking = &kernel.Error{Module: "pmm", Message: "unable to reserve memory for the frame arena"}

	// allocBackingFn is used by tests to override the arena memory source.
	allocBackingFn = allocBacking
)

// Arena is a fixed-size pool of physical frames.
type Arena struct {
	lock sync.Spinlock

	mem     []byte
	refs    []int32
	free    []mm.Frame
	release func() error
}

// NewArena reserves memory for frameCount frames and returns an arena with
// all frames free. frameCount must be in the range [1, MaxFrames].
func NewArena(frameCount int) (*Arena, *kernel.Error) {
	if frameCount <= 0 || frameCount > MaxFrames {
		return nil, ErrArenaSize
	}

	mem, release, err := allocBackingFn(frameCount * int(mm.PageSize))
	if err != nil {
		return nil, errArenaBacking.Wrap(err)
	}

	a := &Arena{
		mem:     mem,
		refs:    make([]int32, frameCount),
		free:    make([]mm.Frame, 0, frameCount),
		release: release,
	}

	// Push frames in reverse so that allocation hands out low frames first
	for f := frameCount - 1; f >= 0; f-- {
		a.free = append(a.free, mm.Frame(f))
	}

	return a, nil
}

// Close releases the arena memory. The arena must not be used afterwards.
func (a *Arena) Close() error {
	a.lock.Acquire()
	defer a.lock.Release()

	a.free, a.refs = nil, nil
	a.mem = nil
	if a.release == nil {
		return nil
	}
	return a.release()
}

// AllocFrame reserves a zero-filled frame. The returned frame has a reference
// count of 0; callers bump it via Refup once the frame is mapped.
func (a *Arena) AllocFrame() (mm.Frame, *kernel.Error) {
	a.lock.Acquire()
	if len(a.free) == 0 {
		a.lock.Release()
		return mm.InvalidFrame, ErrOutOfMemory
	}

	f := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	a.lock.Release()

	kernel.Memset(a.Bytes(f), 0)
	return f, nil
}

// FreeFrame returns an unreferenced frame to the arena.
func (a *Arena) FreeFrame(f mm.Frame) *kernel.Error {
	a.lock.Acquire()
	defer a.lock.Release()

	if !a.owns(f) || a.refs[f] != 0 {
		return ErrInvalidFrame
	}
	a.free = append(a.free, f)
	return nil
}

// Refup increments the reference count of f.
func (a *Arena) Refup(f mm.Frame) {
	a.lock.Acquire()
	a.refs[f]++
	a.lock.Release()
}

// Refdown decrements the reference count of f and returns the frame to the
// arena once no mappings refer to it. It returns true if the frame was freed.
func (a *Arena) Refdown(f mm.Frame) bool {
	a.lock.Acquire()
	defer a.lock.Release()

	a.refs[f]--
	switch {
	case a.refs[f] < 0:
		panic(ErrInvalidFrame)
	case a.refs[f] == 0:
		a.free = append(a.free, f)
		return true
	}
	return false
}

// Refcnt returns the number of mappings that refer to f.
func (a *Arena) Refcnt(f mm.Frame) int {
	a.lock.Acquire()
	defer a.lock.Release()

	return int(a.refs[f])
}

// FreeFrames returns the number of frames available for allocation.
func (a *Arena) FreeFrames() int {
	a.lock.Acquire()
	defer a.lock.Release()

	return len(a.free)
}

// Bytes returns the contents of frame f. The returned slice aliases arena
// memory and is exactly one page long.
func (a *Arena) Bytes(f mm.Frame) []byte {
	start := f.Address()
	return a.mem[start : start+mm.PageSize : start+mm.PageSize]
}

func (a *Arena) owns(f mm.Frame) bool {
	return f.Valid() && int(f) < len(a.refs)
}
