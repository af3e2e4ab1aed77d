// Package monitor implements the interactive kernel monitor: a small command
// interpreter used to inspect the system and to run the fork demonstrations.
package monitor

import (
	"bufio"
	"exofork/kernel/env"
	"exofork/kernel/kfmt"
	"io"
	"strings"
)

const (
	// MaxArgs is the maximum number of whitespace separated tokens a
	// command line may contain, including the command name.
	MaxArgs = 16

	whitespace = "\t\r\n "
)

// CmdFunc implements a monitor command. argv[0] is the command name and tf
// is the trapped environment the monitor was entered for, or nil. A negative
// return value makes the monitor exit.
type CmdFunc func(m *Monitor, argc int, argv []string, tf *env.Env) int

// Command describes a monitor command.
type Command struct {
	Name string
	Desc string
	Func CmdFunc
}

// Monitor is the kernel monitor.
type Monitor struct {
	table    *env.Table
	prompt   string
	commands []Command
}

// New returns a monitor operating on the environments of table.
func New(table *env.Table, prompt string) *Monitor {
	return &Monitor{
		table:    table,
		prompt:   prompt,
		commands: defaultCommands(),
	}
}

// Commands returns the monitor's command table.
func (m *Monitor) Commands() []Command {
	return m.commands
}

// Run prints a welcome banner and executes the commands read from in until
// a command returns a negative value or in is exhausted. If tf is not nil the
// trapped environment's registers are printed first.
func (m *Monitor) Run(in io.Reader, tf *env.Env) {
	kfmt.Printf("Welcome to the exofork kernel monitor!\n")
	kfmt.Printf("Type 'help' for a list of commands.\n")

	if tf != nil {
		regs := tf.Regs()
		kfmt.Printf("Trapframe of environment %s:\n", tf.ID())
		regs.DumpTo(kfmt.GetOutputSink())
	}

	scanner := bufio.NewScanner(in)
	for {
		kfmt.Printf("%s", m.prompt)
		if !scanner.Scan() {
			kfmt.Printf("\n")
			return
		}
		if m.Runcmd(scanner.Text(), tf) < 0 {
			return
		}
	}
}

// Runcmd tokenises line and executes the named command. Empty lines, unknown
// commands and lines with too many arguments are reported and yield 0.
func (m *Monitor) Runcmd(line string, tf *env.Env) int {
	var argv []string

	for {
		line = strings.TrimLeft(line, whitespace)
		if line == "" {
			break
		}

		// Keep a slot free for the terminating argument
		if len(argv) == MaxArgs-1 {
			kfmt.Printf("Too many arguments (max %d)\n", MaxArgs)
			return 0
		}

		end := strings.IndexAny(line, whitespace)
		if end == -1 {
			end = len(line)
		}
		argv = append(argv, line[:end])
		line = line[end:]
	}

	if len(argv) == 0 {
		return 0
	}

	if cmd := m.lookup(argv[0]); cmd != nil {
		return cmd.Func(m, len(argv), argv, tf)
	}

	kfmt.Printf("Unknown command '%s'\n", argv[0])
	return 0
}

func (m *Monitor) lookup(name string) *Command {
	for i := range m.commands {
		if m.commands[i].Name == name {
			return &m.commands[i]
		}
	}
	return nil
}
