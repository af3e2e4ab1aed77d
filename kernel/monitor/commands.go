package monitor

import (
	"encoding/binary"
	"exofork/kernel/env"
	"exofork/kernel/gate"
	"exofork/kernel/kfmt"
	"exofork/kernel/mm"
	"exofork/kernel/mm/pmm"
	"exofork/kernel/mm/vmm"
	"runtime"
	"strconv"
	"strings"
	"time"
)

var (
	// nowFn is mocked by tests.
	nowFn = time.Now
)

func defaultCommands() []Command {
	return []Command{
		{"help", "Display this list of commands", monHelp},
		{"kerninfo", "Display information about the kernel", monKerninfo},
		{"backtrace", "Display a stack backtrace", monBacktrace},
		{"time", "Measure the running time of a command", monTime},
		{"c", "Debug: continue the trapped environment", monContinue},
		{"si", "Debug: single-step the trapped environment", monStep},
		{"x", "Debug: display a word of the trapped environment's memory", monExamine},
		{"fork", "Run the copy-on-write fork demonstration", monFork},
		{"sfork", "Run the fork demonstration with stack-sharing fork", monSfork},
		{"forkstress", "Fork and fault n parent/child pairs concurrently", monForkstress},
		{"envs", "List environments", monEnvs},
	}
}

func monHelp(m *Monitor, _ int, _ []string, _ *env.Env) int {
	for _, cmd := range m.commands {
		kfmt.Printf("%s - %s\n", cmd.Name, cmd.Desc)
	}
	return 0
}

func monKerninfo(m *Monitor, _ int, _ []string, _ *env.Env) int {
	frames := m.table.Frames()

	kfmt.Printf("Memory layout:\n")
	kfmt.Printf("  UTOP       %08x\n", mm.UTOP)
	kfmt.Printf("  UXSTACKTOP %08x\n", mm.UXSTACKTOP)
	kfmt.Printf("  USTACKTOP  %08x\n", mm.USTACKTOP)
	kfmt.Printf("  UTEXT      %08x\n", mm.UTEXT)
	kfmt.Printf("  PFTEMP     %08x\n", mm.PFTEMP)
	kfmt.Printf("Page size %d bytes (host %d bytes)\n", mm.PageSize, pmm.HostPageSize())
	kfmt.Printf("Physical frames: %d free\n", frames.FreeFrames())
	kfmt.Printf("Environments: %d live\n", len(m.table.Envs()))
	return 0
}

func monBacktrace(_ *Monitor, _ int, _ []string, _ *env.Env) int {
	kfmt.Printf("Stack backtrace:\n")

	pcs := make([]uintptr, 32)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		kfmt.Printf("  pc %08x\n    %s:%d: %s\n", frame.PC, frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}

	kfmt.Printf("Backtrace success\n")
	return 0
}

func monTime(m *Monitor, argc int, argv []string, tf *env.Env) int {
	if argc == 1 {
		kfmt.Printf("Usage: time <command> [args...]\n")
		return 0
	}

	cmd := m.lookup(argv[1])
	if cmd == nil {
		kfmt.Printf("Unknown command '%s'\n", argv[1])
		return 0
	}

	start := nowFn()
	ret := cmd.Func(m, argc-1, argv[1:], tf)
	kfmt.Printf("%s time: %s\n", argv[1], nowFn().Sub(start))
	return ret
}

func monContinue(_ *Monitor, _ int, _ []string, tf *env.Env) int {
	if tf == nil {
		kfmt.Printf("Debug error\n")
		return -1
	}

	regs := tf.Regs()
	regs.EFlags &^= gate.FlagTrap
	tf.SetRegs(regs)
	return -1
}

func monStep(_ *Monitor, _ int, _ []string, tf *env.Env) int {
	if tf == nil {
		kfmt.Printf("Debug error\n")
		return -1
	}

	regs := tf.Regs()
	kfmt.Printf("tf_eip=%08x\n", regs.EIP)
	regs.EFlags |= gate.FlagTrap
	tf.SetRegs(regs)
	return -1
}

func monExamine(m *Monitor, argc int, argv []string, tf *env.Env) int {
	if tf == nil {
		kfmt.Printf("Debug error\n")
		return -1
	}
	if argc < 2 {
		kfmt.Printf("Usage: x <hex address>\n")
		return 0
	}

	va, err := strconv.ParseUint(strings.TrimPrefix(argv[1], "0x"), 16, 32)
	if err != nil {
		kfmt.Printf("x: invalid address '%s'\n", argv[1])
		return 0
	}

	// Examining memory must never fault the trapped environment
	if uintptr(va)+4 > mm.UTOP {
		kfmt.Printf("x: %08x is not mapped\n", va)
		return 0
	}
	for _, page := range []uintptr{uintptr(va), uintptr(va) + 3} {
		if !tf.View().Mapped(mm.PageFromAddress(page), vmm.FlagUserAccessible) {
			kfmt.Printf("x: %08x is not mapped\n", va)
			return 0
		}
	}

	var word [4]byte
	if err := m.table.Load(tf, uintptr(va), word[:]); err != nil {
		kfmt.Printf("x: %s\n", err.Error())
		return 0
	}
	kfmt.Printf("%d\n", int32(binary.LittleEndian.Uint32(word[:])))
	return 0
}

func monEnvs(m *Monitor, _ int, _ []string, _ *env.Env) int {
	for _, info := range m.table.Envs() {
		kfmt.Printf("%s parent %s %-12s runs %d\n", info.ID, info.ParentID, info.Status, info.Runs)
	}
	return 0
}
