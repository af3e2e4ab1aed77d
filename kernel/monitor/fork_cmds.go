package monitor

import (
	"exofork/kernel"
	"exofork/kernel/env"
	"exofork/kernel/kfmt"
	"exofork/kernel/mm"
	"exofork/kernel/mm/vmm"
	"exofork/lib"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

const (
	// counterVA holds the word the demonstration programs increment.
	counterVA = mm.UTEXT
)

type forkFunc func(*lib.Process) (lib.ChildResult, error)

func monFork(m *Monitor, _ int, _ []string, _ *env.Env) int {
	if err := m.forkDemo(lib.Fork); err != nil {
		kfmt.Printf("fork: %s\n", err.Error())
	}
	return 0
}

func monSfork(m *Monitor, _ int, _ []string, _ *env.Env) int {
	if err := m.forkDemo(lib.Sfork); err != nil {
		kfmt.Printf("sfork: %s\n", err.Error())
	}
	return 0
}

func monForkstress(m *Monitor, argc int, argv []string, _ *env.Env) int {
	if argc != 2 {
		kfmt.Printf("Usage: forkstress <pairs>\n")
		return 0
	}

	pairs, err := strconv.Atoi(argv[1])
	if err != nil || pairs <= 0 {
		kfmt.Printf("forkstress: invalid pair count '%s'\n", argv[1])
		return 0
	}

	start := nowFn()
	if err = m.forkStress(pairs); err != nil {
		kfmt.Printf("forkstress: %s\n", err.Error())
		return 0
	}
	kfmt.Printf("forkstress: %d pairs ok in %s\n", pairs, nowFn().Sub(start))
	return 0
}

// spawn creates a running environment whose data page holds the counter,
// initialised to 1, and which owns a one-page stack.
func (m *Monitor) spawn() (*lib.Process, error) {
	e, err := m.table.Alloc(0)
	if err != nil {
		return nil, err
	}

	for _, va := range []uintptr{counterVA, mm.USTACKTOP - mm.PageSize} {
		if err = m.table.PageAlloc(e, 0, va, vmm.PermWritable); err != nil {
			_ = m.table.Destroy(e, 0)
			return nil, err
		}
	}

	p := lib.NewProcess(m.table, e)
	if storeErr := p.Store32(counterVA, 1); storeErr != nil {
		p.Exit()
		return nil, storeErr
	}

	if err = m.table.SetStatus(e, 0, env.Runnable); err != nil {
		_ = m.table.Destroy(e, 0)
		return nil, err
	}
	if _, err = m.table.Resume(e.ID()); err != nil {
		_ = m.table.Destroy(e, 0)
		return nil, err
	}
	return p, nil
}

// forkPair runs forkFn in parent and resumes the resulting child, returning
// the child's process once it has observed its side of the fork.
func (m *Monitor) forkPair(parent *lib.Process, forkFn forkFunc) (*lib.Process, error) {
	res, err := forkFn(parent)
	if err != nil {
		return nil, err
	}

	child, err := parent.Child(res.ID)
	if err != nil {
		return nil, err
	}
	if _, resumeErr := m.table.Resume(res.ID); resumeErr != nil {
		return nil, resumeErr
	}

	cres, err := forkFn(child)
	switch {
	case err != nil:
		return nil, err
	case !cres.Child:
		return nil, &kernel.Error{Module: "monitor", Message: "child did not observe the child side of fork"}
	}
	return child, nil
}

// forkDemo forks a process holding i = 1. The child increments i twice and
// exits, then the parent prints its own, unchanged, copy of i.
func (m *Monitor) forkDemo(forkFn forkFunc) error {
	parent, err := m.spawn()
	if err != nil {
		return err
	}
	defer parent.Exit()

	child, err := m.forkPair(parent, forkFn)
	if err != nil {
		return err
	}

	if err = incrementCounter(child, 2, true); err != nil {
		return err
	}
	child.Exit()

	i, err := parent.Load32(counterVA)
	if err != nil {
		return err
	}
	parent.Printf("parent: i = %d\n", i)
	return nil
}

// incrementCounter increments the counter n times from p, yielding after
// every step.
func incrementCounter(p *lib.Process, n int, verbose bool) error {
	for ; n > 0; n-- {
		i, err := p.Load32(counterVA)
		if err != nil {
			return err
		}
		if err = p.Store32(counterVA, i+1); err != nil {
			return err
		}
		if verbose {
			p.Printf("child: i = %d\n", i+1)
		}
		p.Yield()
	}
	return nil
}

// forkStress runs the fork demonstration for pairs parent/child pairs at
// once. Each side of every pair faults on the shared counter page
// concurrently with all other environments.
func (m *Monitor) forkStress(pairs int) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for n := 0; n < pairs; n++ {
		g.Go(func() error {
			parent, err := m.spawn()
			if err != nil {
				return err
			}
			defer parent.Exit()

			child, err := m.forkPair(parent, lib.Fork)
			if err != nil {
				return err
			}
			defer child.Exit()

			var sides errgroup.Group
			sides.Go(func() error { return incrementCounter(child, n+1, false) })
			sides.Go(func() error { return incrementCounter(parent, 1, false) })
			if err = sides.Wait(); err != nil {
				return err
			}

			for _, side := range []struct {
				p   *lib.Process
				exp uint32
			}{{child, uint32(n + 2)}, {parent, 2}} {
				got, loadErr := side.p.Load32(counterVA)
				if loadErr != nil {
					return loadErr
				}
				if got != side.exp {
					return fmt.Errorf("env %s: expected i = %d; got %d", side.p.ID(), side.exp, got)
				}
			}
			return nil
		})
	}

	return g.Wait()
}
