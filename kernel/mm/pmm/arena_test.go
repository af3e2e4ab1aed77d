package pmm

import (
	"errors"
	"exofork/kernel/mm"
	"testing"
)

func TestArenaAllocAndRefcount(t *testing.T) {
	arena, err := NewArena(4)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = arena.Close() }()

	if exp, got := 4, arena.FreeFrames(); got != exp {
		t.Fatalf("expected %d free frames; got %d", exp, got)
	}

	f, err := arena.AllocFrame()
	if err != nil {
		t.Fatal(err)
	}
	if f != mm.Frame(0) {
		t.Fatalf("expected first allocation to return frame 0; got %d", f)
	}

	// Dirty the frame, release it and make sure the next allocation
	// receives a zeroed copy.
	page := arena.Bytes(f)
	if len(page) != int(mm.PageSize) {
		t.Fatalf("expected frame contents to be %d bytes; got %d", mm.PageSize, len(page))
	}
	page[0], page[len(page)-1] = 0xaa, 0xbb

	arena.Refup(f)
	arena.Refup(f)
	if exp, got := 2, arena.Refcnt(f); got != exp {
		t.Fatalf("expected refcount %d; got %d", exp, got)
	}

	if arena.Refdown(f) {
		t.Fatal("expected frame to remain allocated while still referenced")
	}
	if !arena.Refdown(f) {
		t.Fatal("expected frame to be freed when its last reference is dropped")
	}

	f2, err := arena.AllocFrame()
	if err != nil {
		t.Fatal(err)
	}
	if f2 != f {
		t.Fatalf("expected freed frame %d to be reused; got %d", f, f2)
	}
	if page := arena.Bytes(f2); page[0] != 0 || page[len(page)-1] != 0 {
		t.Fatal("expected reused frame to be zero-filled")
	}
}

func TestArenaExhaustion(t *testing.T) {
	arena, err := NewArena(2)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = arena.Close() }()

	for i := 0; i < 2; i++ {
		if _, err = arena.AllocFrame(); err != nil {
			t.Fatal(err)
		}
	}

	f, err := arena.AllocFrame()
	if err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory; got %v", err)
	}
	if f.Valid() {
		t.Fatal("expected failed allocation to return InvalidFrame")
	}
}

func TestArenaFreeFrame(t *testing.T) {
	arena, err := NewArena(1)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = arena.Close() }()

	f, _ := arena.AllocFrame()

	arena.Refup(f)
	if err = arena.FreeFrame(f); err != ErrInvalidFrame {
		t.Fatalf("expected freeing a referenced frame to fail with ErrInvalidFrame; got %v", err)
	}

	arena.Refdown(f)
	if err = arena.FreeFrame(mm.Frame(7)); err != ErrInvalidFrame {
		t.Fatalf("expected freeing a frame outside the arena to fail; got %v", err)
	}
	if got := arena.FreeFrames(); got != 1 {
		t.Fatalf("expected Refdown to return the frame to the arena; %d free frames", got)
	}
}

func TestArenaBackingError(t *testing.T) {
	defer func(origFn func(int) ([]byte, func() error, error)) {
		allocBackingFn = origFn
	}(allocBackingFn)

	expErr := errors.New("mmap failed")
	allocBackingFn = func(_ int) ([]byte, func() error, error) {
		return nil, nil, expErr
	}

	if _, err := NewArena(8); !errors.Is(err, errArenaBacking) || !errors.Is(err, expErr) {
		t.Fatalf("expected errArenaBacking wrapping the mmap error; got %v", err)
	}
}

func TestArenaSizeLimits(t *testing.T) {
	defer func(origFn func(int) ([]byte, func() error, error)) {
		allocBackingFn = origFn
	}(allocBackingFn)

	var reserved int
	allocBackingFn = func(size int) ([]byte, func() error, error) {
		reserved = size
		return nil, nil, nil
	}

	for specIndex, frameCount := range []int{-1, 0, MaxFrames + 1} {
		reserved = -1
		if _, err := NewArena(frameCount); err != ErrArenaSize {
			t.Errorf("[spec %d] expected ErrArenaSize for %d frames; got %v", specIndex, frameCount, err)
		}
		if reserved != -1 {
			t.Errorf("[spec %d] expected no memory to be reserved for %d frames", specIndex, frameCount)
		}
	}

	arena, err := NewArena(MaxFrames)
	if err != nil {
		t.Fatalf("expected an arena of MaxFrames frames to be accepted; got %v", err)
	}
	if exp := MaxFrames * int(mm.PageSize); reserved != exp {
		t.Fatalf("expected %d bytes to be reserved; got %d", exp, reserved)
	}
	_ = arena.Close()
}

func TestHostPageSize(t *testing.T) {
	if got := HostPageSize(); got <= 0 || got&(got-1) != 0 {
		t.Fatalf("expected host page size to be a power of 2; got %d", got)
	}
}
