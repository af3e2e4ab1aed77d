package env

import (
	"exofork/kernel"
	"exofork/kernel/gate"
	"exofork/kernel/mm"
	"exofork/kernel/mm/vmm"
)

// Load copies len(buf) bytes starting at va in e's address space into buf,
// exactly as a user-mode read would: accesses that the page tables do not
// permit raise a page fault that is reflected to e's fault upcall, and the
// access is retried once the upcall returns.
func (t *Table) Load(e *Env, va uintptr, buf []byte) error {
	return t.access(e, va, buf, false)
}

// Store copies data into e's address space starting at va as a user-mode
// write would. See Load for the fault semantics.
func (t *Table) Store(e *Env, va uintptr, data []byte) error {
	return t.access(e, va, data, true)
}

func (t *Table) access(e *Env, va uintptr, buf []byte, write bool) error {
	id := e.ID()
	if err := t.alive(e, id); err != nil {
		return err
	}

	for len(buf) != 0 {
		n := int(mm.PageSize - vmm.PageOffset(va))
		if n > len(buf) {
			n = len(buf)
		}

		for repaired := false; ; repaired = true {
			code, ok := t.copyPage(e, va, buf[:n], write)
			if ok {
				break
			}

			// The upcall already had its chance to fix this mapping
			if repaired {
				return t.fatalFault(e, id, va, code, ErrFaultNotRepaired)
			}

			if err := t.pageFault(e, id, va, code); err != nil {
				return err
			}
		}

		buf = buf[n:]
		va += uintptr(n)
	}

	return nil
}

// copyPage performs the part of an access that falls within a single page.
// If the page tables do not permit the access it returns the page fault
// error code the MMU would have raised.
func (t *Table) copyPage(e *Env, va uintptr, chunk []byte, write bool) (gate.PageFaultCode, bool) {
	code := gate.FaultUser
	if write {
		code |= gate.FaultWrite
	}

	e.lock.Acquire()
	defer e.lock.Release()

	if va >= mm.UTOP {
		return code | gate.FaultProtection, false
	}

	frame, flags, err := e.pdt.Lookup(mm.PageFromAddress(va))
	if err != nil {
		return code, false
	}

	if !flags.Has(vmm.FlagUserAccessible) || (write && !flags.Has(vmm.FlagRW)) {
		return code | gate.FaultProtection, false
	}

	offset := vmm.PageOffset(va)
	mem := t.frames.Bytes(frame)[offset : offset+uintptr(len(chunk))]
	if write {
		kernel.Memcopy(chunk, mem)
	} else {
		kernel.Memcopy(mem, chunk)
	}
	return 0, true
}
