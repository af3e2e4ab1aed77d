package mm

import "testing"

func TestFrameMethods(t *testing.T) {
	for frameIndex := uint32(0); frameIndex < 128; frameIndex++ {
		frame := Frame(frameIndex)

		if !frame.Valid() {
			t.Errorf("expected frame %d to be valid", frameIndex)
		}

		if exp, got := uintptr(frameIndex)<<PageShift, frame.Address(); got != exp {
			t.Errorf("expected frame (%d, index: %d) call to Address() to return %x; got %x", frame, frameIndex, exp, got)
		}
	}

	invalidFrame := InvalidFrame
	if invalidFrame.Valid() {
		t.Error("expected InvalidFrame.Valid() to return false")
	}
}

func TestFrameFromAddress(t *testing.T) {
	specs := []struct {
		input    uintptr
		expFrame Frame
	}{
		{0, Frame(0)},
		{4095, Frame(0)},
		{4096, Frame(1)},
		{4123, Frame(1)},
	}

	for specIndex, spec := range specs {
		if got := FrameFromAddress(spec.input); got != spec.expFrame {
			t.Errorf("[spec %d] expected returned frame to be %v; got %v", specIndex, spec.expFrame, got)
		}
	}
}

func TestPageIndices(t *testing.T) {
	specs := []struct {
		input         uintptr
		expPage       Page
		expDirIndex   int
		expTableIndex int
	}{
		{0, Page(0), 0, 0},
		{4123, Page(1), 0, 1},
		{UTEXT, Page(0x800), 2, 0},
		{PFTEMP, Page(0x7ff), 1, 1023},
		{UXSTACKTOP - 1, Page(0xeebff), 0x3ba, 0x3ff},
	}

	for specIndex, spec := range specs {
		page := PageFromAddress(spec.input)
		if page != spec.expPage {
			t.Errorf("[spec %d] expected page to be %x; got %x", specIndex, spec.expPage, page)
			continue
		}

		if got := page.DirIndex(); got != spec.expDirIndex {
			t.Errorf("[spec %d] expected dir index %x; got %x", specIndex, spec.expDirIndex, got)
		}

		if got := page.TableIndex(); got != spec.expTableIndex {
			t.Errorf("[spec %d] expected table index %x; got %x", specIndex, spec.expTableIndex, got)
		}

		if got := PageFromIndices(page.DirIndex(), page.TableIndex()); got != page {
			t.Errorf("[spec %d] expected PageFromIndices to return %x; got %x", specIndex, page, got)
		}
	}
}

func TestMemoryLayout(t *testing.T) {
	if ExceptionStackPage().Address() != 0xeebff000 {
		t.Errorf("expected exception stack page at 0xeebff000; got %x", ExceptionStackPage().Address())
	}

	if USTACKTOP != 0xeebfe000 {
		t.Errorf("expected USTACKTOP to be 0xeebfe000; got %x", USTACKTOP)
	}

	if PFTEMP >= UTEXT {
		t.Error("expected PFTEMP to lie below UTEXT")
	}

	for _, addr := range []uintptr{UTOP, USTACKTOP, UTEXT, PFTEMP} {
		if !PageAligned(addr) || RoundDown(addr+1) != addr {
			t.Errorf("expected %x to be page aligned", addr)
		}
	}
}
