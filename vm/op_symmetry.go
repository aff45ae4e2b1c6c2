package vm

// execUseSymmetries sets the active symmetry set for subsequent
// instructions (until changed again or restored), saving the set it
// replaces so a later restoresymmetries unwinds back to it rather than
// falling through to the program's compile-time default.
func (vm *VM) execUseSymmetries(args []Arg) *Fault {
	if err := vm.Stack.PushSymmetrySave(vm.activeSymmetries); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	vm.activeSymmetries = args[0].Syms
	return nil
}

// execSaveSymmetries pushes the active symmetry set as a checkpoint.
func (vm *VM) execSaveSymmetries(args []Arg) *Fault {
	if err := vm.Stack.PushSymmetrySave(vm.activeSymmetries); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}

// execRestoreSymmetries pops the most recent checkpoint and makes it
// active again. Restoring with no checkpoint on the save stack is not a
// fault: it resets to the program's declared default symmetry set.
func (vm *VM) execRestoreSymmetries(args []Arg) *Fault {
	set, ok := vm.Stack.PopSymmetrySave()
	if !ok {
		set = vm.Program.DefaultSymmetries
	}
	vm.activeSymmetries = set
	return nil
}
