package vm

// Atom is the 96-bit contents of one cell: a 16-bit type number, a 9-bit
// ECC checksum, and 71 bits of user data, packed high to low in that
// order. The header (type + checksum) is read-only through instructions:
// `checksum`, `scan` and reads of the builtin type/checksum/header fields
// inspect it, and none of them mutates it.
type Atom struct {
	Value
}

// EmptyAtom is the canonical void atom: Type == TypeEmpty, all else zero.
var EmptyAtom = Atom{}

// NewAtom builds an atom from a type number and up to DataBits of user
// data, computing and embedding the ECC checksum.
func NewAtom(typeNum uint16, data Value) Atom {
	a := Atom{}
	a = a.withType(typeNum)
	a = a.withData(data)
	a = a.withChecksum(a.computeChecksum())
	return a
}

func (a Atom) withType(t uint16) Atom {
	sel := FieldSelector{Offset: TypeShift, Length: TypeBits}
	return Atom{sel.write(a.Value, Unsigned(uint64(t)))}
}

// Type returns the atom's type number.
func (a Atom) Type() uint16 {
	sel := FieldSelector{Offset: TypeShift, Length: TypeBits}
	return uint16(sel.read(a.Value, false).Uint64())
}

func (a Atom) withChecksum(c uint16) Atom {
	sel := FieldSelector{Offset: ChecksumShift, Length: ChecksumBits}
	return Atom{sel.write(a.Value, Unsigned(uint64(c)))}
}

// StoredChecksum returns the checksum bits as stored in the header.
func (a Atom) StoredChecksum() uint16 {
	sel := FieldSelector{Offset: ChecksumShift, Length: ChecksumBits}
	return uint16(sel.read(a.Value, false).Uint64())
}

func (a Atom) withData(v Value) Atom {
	sel := FieldSelector{Offset: 0, Length: DataBits}
	return Atom{sel.write(a.Value, v)}
}

// Data returns the 71-bit user-data slice, zero-extended.
func (a Atom) Data() Value {
	sel := FieldSelector{Offset: 0, Length: DataBits}
	return sel.read(a.Value, false)
}

// computeChecksum recomputes the 9-bit ECC over the atom's type and data
// bits. The code is a simple additive checksum: a real Hamming/SECDED
// code is out of scope for this VM (the spec treats `checksum` as an
// opaque recompute-and-compare primitive, not a correction code), but the
// shape -- a function of (type, data) stored alongside the header that
// `checksum` recomputes and compares -- matches the manual's contract.
func (a Atom) computeChecksum() uint16 {
	var sum uint32
	sum += uint32(a.Type())
	data := a.Data()
	sum += uint32(data.Lo) + uint32(data.Lo>>32) + uint32(data.Hi)
	return uint16(sum) & (1<<ChecksumBits - 1)
}

// ChecksumMismatch implements `checksum`: it pushes 1 if the recomputed
// ECC differs from the stored checksum, else 0. It is pure: it never
// mutates the atom.
func (a Atom) ChecksumMismatch() bool {
	return a.computeChecksum() != a.StoredChecksum()
}

// IsEmpty reports whether the atom is the canonical void atom (type 0).
func (a Atom) IsEmpty() bool {
	return a.Type() == TypeEmpty
}
