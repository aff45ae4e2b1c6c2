package encoder

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mfmvm/elementvm/vm"
)

// Encode serializes a resolved Program to the element bytecode wire
// format: magic, version, build tag, symbol tables, then the flat code
// array, all big-endian (spec.md §4.3).
func Encode(prog *vm.Program) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(VersionMajor)
	buf.WriteByte(VersionMinor)

	writeString(&buf, prog.BuildTag)
	writeString(&buf, prog.SelfTypeName)
	writeU16(&buf, prog.SelfTypeNum)

	writeU16(&buf, uint16(len(prog.Metadata)))
	for k, v := range prog.Metadata {
		writeString(&buf, k)
		writeString(&buf, v)
	}

	writeU16(&buf, uint16(len(prog.Fields)))
	for _, fd := range prog.Fields {
		writeString(&buf, fd.Name)
		writeU16(&buf, uint16(fd.Selector.Offset))
		writeU16(&buf, uint16(fd.Selector.Length))
		writeBool(&buf, fd.Signed)
	}

	writeU16(&buf, uint16(len(prog.Parameters)))
	for _, v := range prog.Parameters {
		writeValue(&buf, v)
	}

	writeU16(&buf, uint16(len(prog.Types)))
	for _, t := range prog.Types {
		writeString(&buf, t.Name)
		writeU16(&buf, t.Num)
		writeBool(&buf, t.Resolved)
	}

	buf.WriteByte(byte(prog.DefaultSymmetries))

	writeU32(&buf, uint32(len(prog.Code)))
	for _, inst := range prog.Code {
		buf.WriteByte(byte(inst.Op))
		buf.WriteByte(byte(len(inst.Args)))
		for _, a := range inst.Args {
			if err := writeArg(&buf, a); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}

func writeArg(buf *bytes.Buffer, a vm.Arg) error {
	buf.WriteByte(argKindWireTag(a.Kind))
	writeBool(buf, a.Skip)
	switch a.Kind {
	case vm.ArgConst:
		writeValue(buf, a.Const)
	case vm.ArgRegister:
		writeU16(buf, uint16(a.Reg))
	case vm.ArgField:
		writeU16(buf, uint16(a.Field))
	case vm.ArgSite:
		writeU16(buf, uint16(a.Site))
	case vm.ArgTypeRef:
		writeU16(buf, uint16(a.Type))
	case vm.ArgLabel:
		writeU32(buf, uint32(a.Target))
	case vm.ArgSymmetrySet:
		buf.WriteByte(byte(a.Syms))
	case vm.ArgNone:
		// nothing to write
	default:
		return fmt.Errorf("encoder: unknown arg kind %d", a.Kind)
	}
	return nil
}

func argKindWireTag(k vm.ArgKind) byte {
	switch k {
	case vm.ArgConst:
		return wireArgConst
	case vm.ArgRegister:
		return wireArgRegister
	case vm.ArgField:
		return wireArgField
	case vm.ArgSite:
		return wireArgSite
	case vm.ArgTypeRef:
		return wireArgTypeRef
	case vm.ArgLabel:
		return wireArgLabel
	case vm.ArgSymmetrySet:
		return wireArgSymmetrySet
	default:
		return wireArgNone
	}
}

func writeString(buf *bytes.Buffer, s string) {
	writeU16(buf, uint16(len(s)))
	buf.WriteString(s)
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func writeValue(buf *bytes.Buffer, v vm.Value) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v.Hi)
	buf.Write(b[:])
	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], v.Lo)
	buf.Write(b8[:])
	writeBool(buf, v.Signed)
}
