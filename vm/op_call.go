package vm

// execCall implements `call L N`: pushes a return frame with N argument
// slots carried over from the caller, and branches to L.
func (vm *VM) execCall(args []Arg) *Fault {
	n := int(args[1].Const.Uint64())
	_, err := vm.Stack.Call(n, vm.IP+1)
	if err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	vm.IP = args[0].Target
	return nil
}

// execRet implements `ret N`: unwinds the current frame, preserving the
// top N value slots as the call's result, and resumes at the saved
// return address.
func (vm *VM) execRet(args []Arg) *Fault {
	n := int(args[0].Const.Uint64())
	retIP, err := vm.Stack.Ret(n)
	if err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	vm.IP = retIP
	return nil
}
