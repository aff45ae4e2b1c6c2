package vm

// execGetRegister pushes the value of register n, or a freshly sampled
// uniform 96-bit value for the read-only r? pseudo-register.
func (vm *VM) execGetRegister(args []Arg) *Fault {
	n, f := vm.argIndex(args[0])
	if f != nil {
		return f
	}
	var v Value
	if n == RandomRegister {
		v = vm.RNG.Uint96()
	} else {
		if n < 0 || n >= RegisterCount {
			return vm.faultValue(FaultInvalidRegister, "register index out of range")
		}
		v = vm.Registers.Get(n)
	}
	if err := vm.Stack.PushValue(v); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}

// execSetRegister writes a value into register n. r? is read-only: an
// attempt to write it faults rather than silently discarding the write.
func (vm *VM) execSetRegister(args []Arg) *Fault {
	n, f := vm.argIndex(args[0])
	if f != nil {
		return f
	}
	v, f := vm.argValue(args[1])
	if f != nil {
		return f
	}
	if n == RandomRegister {
		return vm.faultValue(FaultInvalidRegister, "r? is read-only")
	}
	if n < 0 || n >= RegisterCount {
		return vm.faultValue(FaultInvalidRegister, "register index out of range")
	}
	vm.Registers.Set(n, v)
	return nil
}

// execGetSite pushes the full 96-bit contents of the atom at site s
// (after symmetry permutation) onto the stack.
func (vm *VM) execGetSite(args []Arg) *Fault {
	s, f := vm.argIndex(args[0])
	if f != nil {
		return f
	}
	site, f := vm.resolveSite(s)
	if f != nil {
		return f
	}
	a := vm.Window.Get(site)
	if err := vm.Stack.PushValue(a.Value); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}

// execSetSite writes a full atom value to site s. Writes to a void site
// silently no-op, per spec.md §3; a site index outside the window
// faults with FaultInvalidSite.
func (vm *VM) execSetSite(args []Arg) *Fault {
	s, f := vm.argIndex(args[0])
	if f != nil {
		return f
	}
	v, f := vm.argValue(args[1])
	if f != nil {
		return f
	}
	site, f := vm.resolveSite(s)
	if f != nil {
		return f
	}
	vm.Window.Set(site, Atom{v})
	return nil
}

// execSwapSites exchanges the full atoms at two sites. This is the
// primitive a `move`/exchange idiom compiles down to.
func (vm *VM) execSwapSites(args []Arg) *Fault {
	s1, f := vm.argIndex(args[0])
	if f != nil {
		return f
	}
	s2, f := vm.argIndex(args[1])
	if f != nil {
		return f
	}
	site1, f := vm.resolveSite(s1)
	if f != nil {
		return f
	}
	site2, f := vm.resolveSite(s2)
	if f != nil {
		return f
	}
	a1 := vm.Window.Get(site1)
	a2 := vm.Window.Get(site2)
	vm.Window.Set(site1, a2)
	vm.Window.Set(site2, a1)
	return nil
}

// resolveSite range-checks a raw site index and applies this
// instruction's sampled symmetry permutation.
func (vm *VM) resolveSite(s int) (int, *Fault) {
	if s < 0 || s >= WindowSiteCount {
		return 0, vm.faultValue(FaultInvalidSite, "site index out of range")
	}
	return vm.site(s), nil
}

// execGetParameter pushes the compile-time constant-pool value at the
// given index (a `.parameter` declared element tunable).
func (vm *VM) execGetParameter(args []Arg) *Fault {
	idx := int(args[0].Const.Uint64())
	v, ok := vm.Program.ParameterValue(idx)
	if !ok {
		return vm.faultValue(FaultInvalidField, "parameter index out of range")
	}
	if err := vm.Stack.PushValue(v); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}

// execGetType pushes the numeric type id a `%Name` reference was
// resolved to at compile time, for comparison against a field's type
// bits.
func (vm *VM) execGetType(args []Arg) *Fault {
	idx, f := vm.argIndex(args[0])
	if f != nil {
		return f
	}
	ref, ok := vm.Program.TypeNumber(idx)
	if !ok {
		return vm.faultValue(FaultInvalidField, "type reference out of range")
	}
	if err := vm.Stack.PushValue(Unsigned(uint64(ref.Num))); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}
