package vm

// execJump is an unconditional branch to a resolved label target.
func (vm *VM) execJump(args []Arg) *Fault {
	vm.IP = args[0].Target
	return nil
}

// execJumpCond branches to the label when the popped/resolved condition
// is zero (jumpzero) or nonzero (jumpnonzero).
func (vm *VM) execJumpCond(args []Arg, onZero bool) *Fault {
	cond, f := vm.argValue(args[1])
	if f != nil {
		return f
	}
	take := cond.IsZero()
	if !onZero {
		take = !take
	}
	if take {
		vm.IP = args[0].Target
	}
	return nil
}

// execJumpRelative adds a signed offset to the instruction pointer.
// Out-of-range results are caught as FaultInvalidJumpTarget at the top
// of the next step, not here.
func (vm *VM) execJumpRelative(args []Arg) *Fault {
	offset, f := vm.argValue(args[0])
	if f != nil {
		return f
	}
	vm.IP += int(offset.Int64())
	return nil
}
