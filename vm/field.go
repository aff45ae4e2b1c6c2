package vm

// FieldSelector is a (offset, length) bitslice descriptor: 0 <= offset,
// offset+length <= 96 in general, or <= DataBits when the field is
// declared as a sub-slice of an atom's user data (the common case for
// `.field` declarations).
type FieldSelector struct {
	Offset int
	Length int
}

// Valid reports whether the selector lies within a value of the given
// total width (96 for whole-atom fields, DataBits for user fields).
func (f FieldSelector) Valid(width int) bool {
	return f.Offset >= 0 && f.Length >= 1 && f.Offset+f.Length <= width
}

// read extracts the bitslice from v, zero-extending unless signed is
// requested, in which case the result is sign-extended from bit
// (Length-1) of the slice.
func (f FieldSelector) read(v Value, signed bool) Value {
	var r Value
	for i := 0; i < f.Length; i++ {
		r = r.setBit(i, v.bit(f.Offset+i))
	}
	if signed && f.Length > 0 && r.bit(f.Length-1) == 1 {
		for i := f.Length; i < ValueBits; i++ {
			r = r.setBit(i, 1)
		}
		r.Signed = true
	}
	return r
}

// write splices src, truncated to Length bits, into v at Offset, leaving
// the rest of v unchanged. This is the `setfield`/`setsitefield` write
// path, and also the atom-builder's internal use.
func (f FieldSelector) write(v Value, src Value) Value {
	for i := 0; i < f.Length; i++ {
		v = v.setBit(f.Offset+i, src.bit(i))
	}
	return v
}

// GetField reads a field from an atom's full 96-bit representation
// (used for the builtin `type`/`checksum`/`header` fields and any field
// declared against the whole atom rather than just its data slice).
func GetField(a Atom, f FieldSelector, signed bool) Value {
	return f.read(a.Value, signed)
}

// SetField splices v into the field's data bits of the atom, returning
// the updated atom. Per spec idempotence: SetField(SetField(a,f,v),f,v)
// == SetField(a,f,v), and GetField(SetField(a,f,v),f) == v mod 2^length.
func SetField(a Atom, f FieldSelector, v Value) Atom {
	return Atom{f.write(a.Value, v)}
}
