// Package kmain wires the kernel together: it reserves physical memory,
// creates the environment table and hands control to the monitor.
package kmain

import (
	"exofork/kernel/env"
	"exofork/kernel/kfmt"
	"exofork/kernel/mm"
	"exofork/kernel/mm/pmm"
	"exofork/kernel/monitor"
	"io"
)

var (
	// panicFn is mocked by tests.
	panicFn = kfmt.Panic
)

// Config holds the boot parameters.
type Config struct {
	// Frames is the number of physical frames to reserve.
	Frames int

	// MaxEnvs is the number of environment slots.
	MaxEnvs int

	// Prompt is printed by the monitor before reading a command.
	Prompt string

	// Input feeds the monitor; Output receives all console output.
	Input  io.Reader
	Output io.Writer
}

// DefaultConfig returns a Config with 16MB of physical memory and a full
// environment table.
func DefaultConfig() Config {
	return Config{
		Frames:  (16 << 20) / int(mm.PageSize),
		MaxEnvs: env.NEnv,
		Prompt:  "K> ",
	}
}

// Kmain boots the kernel described by cfg and runs the monitor until it
// exits or its input is exhausted. Errors during boot are passed to
// kfmt.Panic.
func Kmain(cfg Config) {
	kfmt.SetOutputSink(cfg.Output)

	arena, err := pmm.NewArena(cfg.Frames)
	if err != nil {
		panicFn(err)
		return
	}
	defer func() { _ = arena.Close() }()

	table, err := env.NewTable(arena, cfg.MaxEnvs, nil)
	if err != nil {
		panicFn(err)
		return
	}

	kfmt.Printf("[kmain] %d KB of physical memory in %d frames, %d environment slots\n",
		cfg.Frames*int(mm.PageSize)>>10, cfg.Frames, cfg.MaxEnvs)

	monitor.New(table, cfg.Prompt).Run(cfg.Input, nil)

	if envs := table.Envs(); len(envs) != 0 {
		kfmt.Printf("[kmain] %d environments still live\n", len(envs))
	}
}
