package lib

import (
	"exofork/kernel"
	"exofork/kernel/env"
	"exofork/kernel/mm/vmm"
)

//go:generate mockgen -destination=syscalls_mock_test.go -package=lib exofork/lib Syscalls

// Syscalls is the kernel interface the library is written against. The
// kernel's environment table implements it; tests substitute a mock to
// inject failures at precise points of a system call sequence.
type Syscalls interface {
	GetEnvID(caller *env.Env) env.ID
	Cputs(caller *env.Env, s string)
	Yield(caller *env.Env)
	Destroy(caller *env.Env, id env.ID) *kernel.Error
	Lookup(caller *env.Env, id env.ID, checkPerm bool) (*env.Env, *kernel.Error)

	Exofork(caller *env.Env) (env.ID, *kernel.Error)
	SetStatus(caller *env.Env, id env.ID, status env.Status) *kernel.Error
	SetPgfaultUpcall(caller *env.Env, id env.ID, upcall env.Upcall) *kernel.Error

	PageAlloc(caller *env.Env, id env.ID, va uintptr, perm vmm.Perm) *kernel.Error
	PageMap(caller *env.Env, srcID env.ID, srcVA uintptr, dstID env.ID, dstVA uintptr, perm vmm.Perm) *kernel.Error
	PageUnmap(caller *env.Env, id env.ID, va uintptr) *kernel.Error

	Load(e *env.Env, va uintptr, buf []byte) error
	Store(e *env.Env, va uintptr, data []byte) error
}

var _ Syscalls = (*env.Table)(nil)
