// Package gate describes the machine state saved when an environment traps
// into the kernel.
package gate

import (
	"exofork/kernel/kfmt"
	"io"
)

// Registers contains a snapshot of all register values when an exception or
// syscall occurs.
type Registers struct {
	EDI uint32
	ESI uint32
	EBP uint32
	EBX uint32
	EDX uint32
	ECX uint32
	EAX uint32

	// Info contains the exception code for exceptions or the syscall
	// number for syscall entries.
	Info uint32

	// The return frame used by IRET
	EIP    uint32
	EFlags uint32
	ESP    uint32
}

// DumpTo outputs the register contents to w.
func (r *Registers) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "EAX = %08x EBX = %08x\n", r.EAX, r.EBX)
	kfmt.Fprintf(w, "ECX = %08x EDX = %08x\n", r.ECX, r.EDX)
	kfmt.Fprintf(w, "ESI = %08x EDI = %08x\n", r.ESI, r.EDI)
	kfmt.Fprintf(w, "EBP = %08x\n", r.EBP)
	kfmt.Fprintf(w, "\n")
	kfmt.Fprintf(w, "EIP = %08x ESP = %08x\n", r.EIP, r.ESP)
	kfmt.Fprintf(w, "EFL = %08x\n", r.EFlags)
}

// FlagTrap is the EFLAGS trap flag; when set the CPU raises a debug exception
// after every instruction.
const FlagTrap uint32 = 1 << 8

// PageFaultCode describes the error code pushed by the CPU for a page fault.
type PageFaultCode uint32

const (
	// FaultProtection is set if the fault was caused by a protection
	// violation; if clear the page was not present.
	FaultProtection PageFaultCode = 1 << iota

	// FaultWrite is set if the faulting access was a write.
	FaultWrite

	// FaultUser is set if the fault occurred while running in user mode.
	FaultUser
)

// Is returns true if all the input bits are set.
func (c PageFaultCode) Is(bits PageFaultCode) bool {
	return c&bits == bits
}

// Reason returns a human readable description of the fault cause.
func (c PageFaultCode) Reason() string {
	switch c &^ FaultUser {
	case 0:
		return "read from non-present page"
	case FaultProtection:
		return "page protection violation (read)"
	case FaultWrite:
		return "write to non-present page"
	case FaultProtection | FaultWrite:
		return "page protection violation (write)"
	default:
		return "unknown"
	}
}
