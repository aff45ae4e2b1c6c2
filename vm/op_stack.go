package vm

// execPush implements both `push <const>` and the `push0`..`push40`
// literal shorthands; both decode to a single ArgConst operand carrying
// the value to push.
func (vm *VM) execPush(args []Arg) *Fault {
	v, f := vm.argValue(args[0])
	if f != nil {
		return f
	}
	if err := vm.Stack.PushValue(v); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}

func (vm *VM) execPop(args []Arg) *Fault {
	if _, err := vm.Stack.PopValue(); err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	return nil
}

func (vm *VM) execDup(args []Arg) *Fault {
	top, err := vm.Stack.PeekValue(0)
	if err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	if err := vm.Stack.PushValue(top); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}

func (vm *VM) execOver(args []Arg) *Fault {
	v, err := vm.Stack.PeekValue(1)
	if err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	if err := vm.Stack.PushValue(v); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}

func (vm *VM) execSwap(args []Arg) *Fault {
	b, err := vm.Stack.PopValue()
	if err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	a, err := vm.Stack.PopValue()
	if err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	_ = vm.Stack.PushValue(b)
	_ = vm.Stack.PushValue(a)
	return nil
}

// execRot implements the classic ( a b c -- b c a ) rotation of the top
// three value slots.
func (vm *VM) execRot(args []Arg) *Fault {
	c, err := vm.Stack.PopValue()
	if err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	b, err := vm.Stack.PopValue()
	if err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	a, err := vm.Stack.PopValue()
	if err != nil {
		return vm.faultValue(FaultStackUnderflow, err.Error())
	}
	_ = vm.Stack.PushValue(b)
	_ = vm.Stack.PushValue(c)
	_ = vm.Stack.PushValue(a)
	return nil
}
