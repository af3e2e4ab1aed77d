package mm

// The user portion of every address space has the following layout:
//
//	UTOP, UXSTACKTOP -> +------------------------------+ 0xeec00000
//	                    |   user exception stack       |
//	                    +------------------------------+ 0xeebff000
//	                    |   empty guard page           |
//	USTACKTOP        -> +------------------------------+ 0xeebfe000
//	                    |   normal user stack          |
//	                    +------------------------------+ 0xeebfd000
//	                    ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
//	UTEXT            -> +------------------------------+ 0x00800000
//	PFTEMP           -> |   page fault scratch page    | 0x007ff000
//	UTEMP            -> +------------------------------+ 0x00400000
const (
	// UTOP is the first address above the user-mappable range.
	UTOP = uintptr(0xeec00000)

	// UXSTACKTOP is the top of the one-page user exception stack.
	UXSTACKTOP = UTOP

	// USTACKTOP is the top of the normal user stack; one guard page
	// separates it from the exception stack.
	USTACKTOP = UTOP - 2*PageSize

	// UTEMP is the start of a table-sized region used for temporary
	// mappings.
	UTEMP = TableSpan

	// PFTEMP is the scratch address the page fault handler uses while
	// building a private page copy.
	PFTEMP = UTEMP + TableSpan - PageSize

	// UTEXT is where program text starts; it is the lowest address
	// eligible for duplication by fork.
	UTEXT = 2 * TableSpan
)

// ExceptionStackPage returns the page backing the user exception stack.
func ExceptionStackPage() Page {
	return PageFromAddress(UXSTACKTOP - PageSize)
}
