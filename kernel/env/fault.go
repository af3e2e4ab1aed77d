package env

import (
	"encoding/binary"
	"exofork/kernel"
	"exofork/kernel/gate"
	"exofork/kernel/kfmt"
	"exofork/kernel/mm"
	"exofork/kernel/mm/vmm"
	"fmt"
	"sync/atomic"
)

// UTrapframe is the fault record the dispatcher pushes on the user exception
// stack before invoking the fault upcall. It only lives for the duration of
// one fault.
type UTrapframe struct {
	// FaultVA is the faulting virtual address.
	FaultVA uint32

	// Err describes the faulting access.
	Err gate.PageFaultCode

	// Regs is the register state at the time of the fault; it is
	// restored once the upcall returns.
	Regs gate.Registers
}

var (
	// utrapframeSize is the number of bytes a UTrapframe occupies on the
	// exception stack.
	utrapframeSize = binary.Size(UTrapframe{})

	// ErrUnhandledFault is returned when an environment without a fault
	// upcall page faults.
	ErrUnhandledFault = &kernel.Error{Module: "env", Message: "page fault with no upcall registered", Fatal: true}

	// ErrNoExceptionStack is returned when the user exception stack is not
	// mapped writable at fault time.
	ErrNoExceptionStack = &kernel.Error{Module: "env", Message: "user exception stack is not mapped writable", Fatal: true}

	// ErrNestedFault is returned when an environment faults while it is
	// already servicing a fault.
	ErrNestedFault = &kernel.Error{Module: "env", Message: "page fault while servicing a page fault", Fatal: true}

	// ErrFaultNotRepaired is returned when an access faults again right
	// after the upcall returned.
	ErrFaultNotRepaired = &kernel.Error{Module: "env", Message: "page fault upcall did not repair the faulting mapping", Fatal: true}

	// ErrUpcallFailed is returned when the fault upcall reports an error.
	ErrUpcallFailed = &kernel.Error{Module: "env", Message: "page fault upcall failed", Fatal: true}
)

// pageFault reflects a page fault raised by e back to e's own fault upcall.
// The upcall runs on the environment's exception stack; on return the saved
// context is restored so that the faulting access can be retried. A fault
// raised while a previous one is still being serviced is fatal.
func (t *Table) pageFault(e *Env, id ID, va uintptr, code gate.PageFaultCode) error {
	if !atomic.CompareAndSwapUint32(&e.faultState, faultIdle, faultDispatching) {
		return t.fatalFault(e, id, va, code, ErrNestedFault)
	}

	var (
		utf    UTrapframe
		upcall Upcall
		err    *kernel.Error
	)

	e.lock.Acquire()
	upcall = e.pgfaultUpcall
	saved := e.regs
	if upcall == nil {
		err = ErrUnhandledFault
	} else if err = t.pushUTrapframe(e, &UTrapframe{FaultVA: uint32(va), Err: code, Regs: saved}, &utf); err == nil {
		e.regs.ESP = uint32(mm.UXSTACKTOP) - uint32(utrapframeSize)
	}
	e.lock.Release()

	if err != nil {
		return t.fatalFault(e, id, va, code, err)
	}

	atomic.StoreUint32(&e.faultState, faultInHandler)
	if upcallErr := invokeUpcall(upcall, e, &utf); upcallErr != nil {
		return t.fatalFault(e, id, va, code, ErrUpcallFailed.Wrap(upcallErr))
	}

	e.lock.Acquire()
	e.regs = saved
	e.lock.Release()

	atomic.StoreUint32(&e.faultState, faultIdle)
	return nil
}

// pushUTrapframe serialises rec at the top of the exception stack and reads
// it back into out, the copy handed to the upcall. e.lock must be held.
func (t *Table) pushUTrapframe(e *Env, rec, out *UTrapframe) *kernel.Error {
	frame, flags, err := e.pdt.Lookup(mm.ExceptionStackPage())
	if err != nil || !flags.Has(vmm.FlagPresent|vmm.FlagUserAccessible|vmm.FlagRW) {
		return ErrNoExceptionStack
	}

	stack := t.frames.Bytes(frame)
	top := stack[len(stack)-utrapframeSize:]
	if _, encErr := binary.Encode(top, binary.LittleEndian, rec); encErr != nil {
		return ErrNoExceptionStack
	}
	if _, decErr := binary.Decode(top, binary.LittleEndian, out); decErr != nil {
		return ErrNoExceptionStack
	}
	return nil
}

// invokeUpcall runs the upcall, converting a panic inside it into an error.
func invokeUpcall(upcall Upcall, e *Env, utf *UTrapframe) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("%v", v)
			}
		}
	}()

	err = upcall(e, utf)

	// Upcalls often return a system call result directly
	if kerr, ok := err.(*kernel.Error); ok && kerr == nil {
		return nil
	}
	return err
}

// fatalFault reports an unrecoverable fault and destroys the environment.
// The returned error wraps cause along with everything cause wraps.
func (t *Table) fatalFault(e *Env, id ID, va uintptr, code gate.PageFaultCode, cause *kernel.Error) error {
	// The environment may already have been torn down by a nested fault
	if t.alive(e, id) != nil {
		return cause
	}

	regs := e.Regs()
	kfmt.Printf("[%s] user fault va %08x: %s\nReason: %s\n\nRegisters:\n", id, va, cause.Error(), code.Reason())
	regs.DumpTo(kfmt.GetOutputSink())

	t.destroy(e, id)
	return fmt.Errorf("va %08x: %s: %w", va, code.Reason(), cause)
}
