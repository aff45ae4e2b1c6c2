package vm

// execShift dispatches lshift/rshift: both are logical shifts (they
// shift in zeros regardless of the value's sign tag), amount taken
// modulo 96.
func (vm *VM) execShift(op Opcode, args []Arg) *Fault {
	v, f := vm.argValue(args[0])
	if f != nil {
		return f
	}
	n, f := vm.argValue(args[1])
	if f != nil {
		return f
	}
	amount := uint(n.Uint64())
	switch op {
	case OpLshift:
		return vm.pushResult(Lshift(v, amount))
	case OpRshift:
		return vm.pushResult(Rshift(v, amount))
	default:
		return vm.faultValue(FaultInvalidJumpTarget, "unreachable shift opcode")
	}
}
