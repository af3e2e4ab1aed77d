package kmain

import (
	"bytes"
	"exofork/kernel"
	"exofork/kernel/env"
	"exofork/kernel/kfmt"
	"exofork/kernel/mm/pmm"
	"strings"
	"testing"
)

func TestKmain(t *testing.T) {
	defer kfmt.SetOutputSink(nil)

	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Frames = 64
	cfg.MaxEnvs = 8
	cfg.Input = strings.NewReader("fork\nenvs\n")
	cfg.Output = &out

	Kmain(cfg)

	for _, exp := range []string{
		"[kmain] 256 KB of physical memory in 64 frames, 8 environment slots\n",
		"Welcome to the exofork kernel monitor!\n",
		"] parent: i = 1\n",
	} {
		if !strings.Contains(out.String(), exp) {
			t.Errorf("expected output to contain %q; got %q", exp, out.String())
		}
	}
	if strings.Contains(out.String(), "still live") {
		t.Errorf("expected all environments to exit; got %q", out.String())
	}
}

func TestKmainBootErrors(t *testing.T) {
	defer func() {
		panicFn = kfmt.Panic
		kfmt.SetOutputSink(nil)
	}()

	var got interface{}
	panicFn = func(e interface{}) { got = e }

	specs := []struct {
		frames, maxEnvs int
		expErr          *kernel.Error
	}{
		{64, 0, env.ErrInval},
		{64, env.NEnv + 1, env.ErrInval},
		{0, 8, pmm.ErrArenaSize},
		{pmm.MaxFrames + 1, 8, pmm.ErrArenaSize},
	}

	for specIndex, spec := range specs {
		got = nil

		Kmain(Config{Frames: spec.frames, MaxEnvs: spec.maxEnvs, Input: strings.NewReader(""), Output: &bytes.Buffer{}})

		if got != spec.expErr {
			t.Errorf("[spec %d] expected panic with %v; got %v", specIndex, spec.expErr, got)
		}
	}
}
