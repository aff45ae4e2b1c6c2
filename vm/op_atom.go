package vm

// execChecksum implements `checksum`: pushes 1 if the origin atom's
// stored checksum disagrees with a fresh recompute, else 0. Pure: the
// atom is never rewritten.
func (vm *VM) execChecksum(args []Arg) *Fault {
	origin := vm.Window.Get(0)
	return vm.pushResult(FromBool(origin.ChecksumMismatch()))
}

// execScan implements `scan %Name`: pushes a 41-bit mask with bit i set
// when site i (after symmetry permutation) holds an atom of the given
// type. Used to test "is there a neighbor of type X" without a loop
// over every site.
func (vm *VM) execScan(args []Arg) *Fault {
	idx, f := vm.argIndex(args[0])
	if f != nil {
		return f
	}
	ref, ok := vm.Program.TypeNumber(idx)
	if !ok {
		return vm.faultValue(FaultInvalidField, "type reference out of range")
	}

	var mask Value
	for i := 0; i < WindowSiteCount; i++ {
		site := vm.site(i)
		if vm.Window.Get(site).Type() == ref.Num {
			mask = mask.setBit(i, 1)
		}
	}
	return vm.pushResult(mask)
}
