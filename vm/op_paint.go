package vm

// execGetPaint pushes the origin site's host-owned paint value (a
// rendering hint distinct from the atom's data bits).
func (vm *VM) execGetPaint(args []Arg) *Fault {
	return vm.pushResult(vm.Paint)
}

// execSetPaint overwrites the origin site's paint value.
func (vm *VM) execSetPaint(args []Arg) *Fault {
	v, f := vm.argValue(args[0])
	if f != nil {
		return f
	}
	vm.Paint = v
	return nil
}
