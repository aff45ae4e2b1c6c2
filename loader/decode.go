// Package loader decodes and validates the element bytecode wire format
// produced by package encoder, and binds unresolved type references
// against a host-supplied Physics table before handing back a Program
// the vm package can run.
package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mfmvm/elementvm/encoder"
	"github.com/mfmvm/elementvm/vm"
)

var (
	// ErrBadMagic is returned when the file doesn't start with the
	// expected 4-byte magic number.
	ErrBadMagic = errors.New("loader: bad magic number")
	// ErrVersionMismatch is returned when the major version differs
	// from what this loader understands.
	ErrVersionMismatch = errors.New("loader: unsupported bytecode version")
	// ErrTruncated is returned when the stream ends mid-record.
	ErrTruncated = errors.New("loader: truncated bytecode stream")
)

type reader struct {
	b   []byte
	pos int
}

func (r *reader) remaining() int { return len(r.b) - r.pos }

func (r *reader) readBytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, ErrTruncated
	}
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) readByte() (byte, error) {
	b, err := r.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (r *reader) readU16() (uint16, error) {
	b, err := r.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) readU32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) readString() (string, error) {
	n, err := r.readU16()
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) readValue() (vm.Value, error) {
	hiB, err := r.readBytes(4)
	if err != nil {
		return vm.Value{}, err
	}
	loB, err := r.readBytes(8)
	if err != nil {
		return vm.Value{}, err
	}
	signed, err := r.readBool()
	if err != nil {
		return vm.Value{}, err
	}
	return vm.Value{Hi: binary.BigEndian.Uint32(hiB), Lo: binary.BigEndian.Uint64(loB), Signed: signed}, nil
}

// Decode parses raw bytecode bytes into a Program, validating the
// header and every index the code array references (spec.md §4.3/§7):
// bad magic, version mismatch, truncation, and out-of-range jump
// targets, field ids, register ids, and site ids are all caught here,
// before the VM ever sees the program.
func Decode(data []byte) (*vm.Program, error) {
	r := &reader{b: data}

	magic, err := r.readBytes(4)
	if err != nil {
		return nil, ErrTruncated
	}
	if !bytes.Equal(magic, encoder.Magic[:]) {
		return nil, ErrBadMagic
	}

	major, err := r.readByte()
	if err != nil {
		return nil, ErrTruncated
	}
	minor, err := r.readByte()
	if err != nil {
		return nil, ErrTruncated
	}
	if major != encoder.VersionMajor {
		return nil, fmt.Errorf("%w: file is v%d.%d, loader understands v%d.x", ErrVersionMismatch, major, minor, encoder.VersionMajor)
	}

	prog := vm.NewProgram()

	if prog.BuildTag, err = r.readString(); err != nil {
		return nil, err
	}
	if prog.SelfTypeName, err = r.readString(); err != nil {
		return nil, err
	}
	selfNum, err := r.readU16()
	if err != nil {
		return nil, err
	}
	prog.SelfTypeNum = selfNum

	metaCount, err := r.readU16()
	if err != nil {
		return nil, err
	}
	prog.Metadata = make(map[string]string, metaCount)
	for i := 0; i < int(metaCount); i++ {
		k, err := r.readString()
		if err != nil {
			return nil, err
		}
		v, err := r.readString()
		if err != nil {
			return nil, err
		}
		prog.Metadata[k] = v
	}

	fieldCount, err := r.readU16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(fieldCount); i++ {
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		offset, err := r.readU16()
		if err != nil {
			return nil, err
		}
		length, err := r.readU16()
		if err != nil {
			return nil, err
		}
		signed, err := r.readBool()
		if err != nil {
			return nil, err
		}
		prog.Fields = append(prog.Fields, vm.FieldDecl{
			Name:     name,
			Selector: vm.FieldSelector{Offset: int(offset), Length: int(length)},
			Signed:   signed,
		})
	}

	paramCount, err := r.readU16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(paramCount); i++ {
		v, err := r.readValue()
		if err != nil {
			return nil, err
		}
		prog.Parameters = append(prog.Parameters, v)
	}

	typeCount, err := r.readU16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(typeCount); i++ {
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		num, err := r.readU16()
		if err != nil {
			return nil, err
		}
		resolved, err := r.readBool()
		if err != nil {
			return nil, err
		}
		prog.Types = append(prog.Types, vm.TypeRef{Name: name, Num: num, Resolved: resolved})
	}

	symByte, err := r.readByte()
	if err != nil {
		return nil, err
	}
	prog.DefaultSymmetries = vm.SymmetrySet(symByte)

	codeCount, err := r.readU32()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(codeCount); i++ {
		opByte, err := r.readByte()
		if err != nil {
			return nil, err
		}
		argCount, err := r.readByte()
		if err != nil {
			return nil, err
		}
		inst := vm.Instruction{Op: vm.Opcode(opByte)}
		for j := 0; j < int(argCount); j++ {
			a, err := readArg(r)
			if err != nil {
				return nil, err
			}
			inst.Args = append(inst.Args, a)
		}
		prog.Code = append(prog.Code, inst)
	}

	if err := validate(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

func readArg(r *reader) (vm.Arg, error) {
	kindByte, err := r.readByte()
	if err != nil {
		return vm.Arg{}, err
	}
	skip, err := r.readBool()
	if err != nil {
		return vm.Arg{}, err
	}
	a := vm.Arg{Kind: wireTagToArgKind(kindByte), Skip: skip}

	switch kindByte {
	case 1: // const
		v, err := r.readValue()
		if err != nil {
			return vm.Arg{}, err
		}
		a.Const = v
	case 2: // register
		v, err := r.readU16()
		if err != nil {
			return vm.Arg{}, err
		}
		a.Reg = int(v)
	case 3: // field
		v, err := r.readU16()
		if err != nil {
			return vm.Arg{}, err
		}
		a.Field = int(v)
	case 4: // site
		v, err := r.readU16()
		if err != nil {
			return vm.Arg{}, err
		}
		a.Site = int(v)
	case 5: // type ref
		v, err := r.readU16()
		if err != nil {
			return vm.Arg{}, err
		}
		a.Type = int(v)
	case 6: // label
		v, err := r.readU32()
		if err != nil {
			return vm.Arg{}, err
		}
		a.Target = int(v)
	case 7: // symmetry set
		v, err := r.readByte()
		if err != nil {
			return vm.Arg{}, err
		}
		a.Syms = vm.SymmetrySet(v)
	case 0:
		// no payload
	default:
		return vm.Arg{}, fmt.Errorf("loader: unknown wire arg kind %d", kindByte)
	}
	return a, nil
}

func wireTagToArgKind(tag byte) vm.ArgKind {
	switch tag {
	case 1:
		return vm.ArgConst
	case 2:
		return vm.ArgRegister
	case 3:
		return vm.ArgField
	case 4:
		return vm.ArgSite
	case 5:
		return vm.ArgTypeRef
	case 6:
		return vm.ArgLabel
	case 7:
		return vm.ArgSymmetrySet
	default:
		return vm.ArgNone
	}
}

// validate checks every index a decoded instruction references against
// the symbol tables actually present, so a corrupt or hand-edited
// bytecode file fails at load time with a precise error instead of
// faulting (or worse, misbehaving) mid-run.
func validate(prog *vm.Program) error {
	for i, inst := range prog.Code {
		for _, a := range inst.Args {
			switch a.Kind {
			case vm.ArgField:
				if !a.Skip && (a.Field < 0 || a.Field >= len(prog.Fields)) {
					return fmt.Errorf("loader: instruction %d: field index %d out of range", i, a.Field)
				}
			case vm.ArgSite:
				if !a.Skip && (a.Site < 0 || a.Site >= vm.WindowSiteCount) {
					return fmt.Errorf("loader: instruction %d: site index %d out of range", i, a.Site)
				}
			case vm.ArgRegister:
				if !a.Skip && a.Reg != vm.RandomRegister && (a.Reg < 0 || a.Reg >= vm.RegisterCount) {
					return fmt.Errorf("loader: instruction %d: register index %d out of range", i, a.Reg)
				}
			case vm.ArgTypeRef:
				if !a.Skip && (a.Type < 0 || a.Type >= len(prog.Types)) {
					return fmt.Errorf("loader: instruction %d: type index %d out of range", i, a.Type)
				}
			case vm.ArgLabel:
				if !prog.ValidJumpTarget(a.Target) {
					return fmt.Errorf("loader: instruction %d: jump target %d out of range", i, a.Target)
				}
			}
		}
	}
	return nil
}
