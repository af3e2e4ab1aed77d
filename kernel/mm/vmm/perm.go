package vmm

import "exofork/kernel"

var (
	// ErrInvalidPerm is returned for permission sets that user mappings
	// may not carry.
	ErrInvalidPerm = &kernel.Error{Module: "vmm", Message: "invalid permission set for a user mapping"}
)

// Perm is a validated permission set for a user page mapping. A Perm can only
// be obtained through NewPerm so combinations such as COW without Present can
// never reach a page table.
type Perm struct {
	flags PageTableEntryFlag
}

var (
	// PermReadOnly maps a page that the environment may only read.
	PermReadOnly = MustPerm(FlagPresent | FlagUserAccessible)

	// PermWritable maps a private, writable page.
	PermWritable = MustPerm(FlagPresent | FlagUserAccessible | FlagRW)

	// PermCOW maps a page shared copy-on-write.
	PermCOW = MustPerm(FlagPresent | FlagUserAccessible | FlagCopyOnWrite)
)

// NewPerm validates flags and wraps them in a Perm. The set must include
// FlagPresent and FlagUserAccessible, may only use FlagsSyscall bits and must
// not combine FlagCopyOnWrite with FlagRW.
func NewPerm(flags PageTableEntryFlag) (Perm, *kernel.Error) {
	switch {
	case !flags.Has(FlagPresent | FlagUserAccessible),
		flags&^FlagsSyscall != 0,
		flags.Has(FlagCopyOnWrite | FlagRW):
		return Perm{}, ErrInvalidPerm
	}

	return Perm{flags: flags}, nil
}

// MustPerm is like NewPerm but panics if flags are invalid. It is meant for
// package-level permission values.
func MustPerm(flags PageTableEntryFlag) Perm {
	perm, err := NewPerm(flags)
	if err != nil {
		panic(err)
	}
	return perm
}

// Flags returns the raw entry flags of the permission set.
func (p Perm) Flags() PageTableEntryFlag {
	return p.flags
}

// Valid returns false for the zero Perm.
func (p Perm) Valid() bool {
	return p.flags != 0
}

// Writable returns true if the set grants hardware write access.
func (p Perm) Writable() bool {
	return p.flags.Has(FlagRW)
}

// CopyOnWrite returns true if the set marks the page copy-on-write.
func (p Perm) CopyOnWrite() bool {
	return p.flags.Has(FlagCopyOnWrite)
}

// String implements fmt.Stringer.
func (p Perm) String() string {
	return p.flags.String()
}
