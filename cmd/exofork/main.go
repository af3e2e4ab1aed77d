// Command exofork boots the kernel in a host process and runs its monitor on
// the terminal.
package main

import (
	"exofork/kernel/kmain"
	"flag"
	"os"
)

func main() {
	cfg := kmain.DefaultConfig()

	flag.IntVar(&cfg.Frames, "frames", cfg.Frames, "number of physical frames to reserve")
	flag.IntVar(&cfg.MaxEnvs, "envs", cfg.MaxEnvs, "number of environment slots")
	flag.StringVar(&cfg.Prompt, "prompt", cfg.Prompt, "monitor prompt")
	flag.Parse()

	cfg.Input = os.Stdin
	cfg.Output = os.Stdout

	kmain.Kmain(cfg)
}
