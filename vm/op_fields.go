package vm

// execGetField reads a declared field, either from the origin atom
// (site==0, the common `getfield`/`getsignedfield` case) or from an
// explicit site (`getsitefield`/`getsignedsitefield`). Only the opcode
// decides sign extension: the signed accessors sign-extend, and an
// unsigned accessor reads the raw bits zero-extended even on a field
// declared `signed`.
func (vm *VM) execGetField(args []Arg, isSite bool, signed bool) *Fault {
	var siteRaw, fieldIdx int
	var f *Fault
	if isSite {
		siteRaw, f = vm.argIndex(args[0])
		if f != nil {
			return f
		}
		fieldIdx, f = vm.argIndex(args[1])
	} else {
		fieldIdx, f = vm.argIndex(args[0])
	}
	if f != nil {
		return f
	}

	decl, ok := vm.Program.Field(fieldIdx)
	if !ok {
		return vm.faultValue(FaultInvalidField, "field index out of range")
	}

	site := 0
	if isSite {
		site, f = vm.resolveSite(siteRaw)
		if f != nil {
			return f
		}
	}

	atom := vm.Window.Get(site)
	v := GetField(atom, decl.Selector, signed)
	if err := vm.Stack.PushValue(v); err != nil {
		return vm.faultValue(FaultStackOverflow, err.Error())
	}
	return nil
}

// execSetField writes a declared field of the origin atom or an
// explicit site. The reserved header fields (type, checksum, the raw
// header slice) are read-only: a write attempt faults rather than
// silently corrupting the atom's identity.
func (vm *VM) execSetField(args []Arg, isSite bool) *Fault {
	var siteRaw, fieldIdx int
	var valueArg Arg
	var f *Fault
	if isSite {
		siteRaw, f = vm.argIndex(args[0])
		if f != nil {
			return f
		}
		fieldIdx, f = vm.argIndex(args[1])
		valueArg = args[2]
	} else {
		fieldIdx, f = vm.argIndex(args[0])
		valueArg = args[1]
	}
	if f != nil {
		return f
	}

	if fieldIdx == FieldIDType || fieldIdx == FieldIDChecksum || fieldIdx == FieldIDHeader {
		return vm.faultValue(FaultInvalidField, "header fields are read-only")
	}

	decl, ok := vm.Program.Field(fieldIdx)
	if !ok {
		return vm.faultValue(FaultInvalidField, "field index out of range")
	}

	v, f := vm.argValue(valueArg)
	if f != nil {
		return f
	}

	site := 0
	if isSite {
		site, f = vm.resolveSite(siteRaw)
		if f != nil {
			return f
		}
	}

	atom := vm.Window.Get(site)
	atom = SetField(atom, decl.Selector, v)
	vm.Window.Set(site, atom)
	return nil
}
