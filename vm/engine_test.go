package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func runProgram(t *testing.T, prog *Program) *VM {
	t.Helper()
	window := NewSimpleWindow()
	regs := NewRegisterSet()
	rng := NewRNG(1)
	m := NewVM(prog, window, regs, rng, 1000)
	m.Run()
	return m
}

// TestPushAddExit exercises the simplest possible program: push two
// constants, add them, leave the result on the stack, exit cleanly.
func TestPushAddExit(t *testing.T) {
	prog := NewProgram()
	prog.Code = []Instruction{
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: Unsigned(2)}}},
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: Unsigned(3)}}},
		{Op: OpAdd},
		{Op: OpExit},
	}

	m := runProgram(t, prog)
	assert.Equal(t, StateExited, m.State)
	v, err := m.Stack.PeekValue(0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(5), v.Lo)
}

// TestJumpZeroSkipsBranch verifies conditional control flow: a zero
// top-of-stack takes the jumpzero branch past the poison instruction.
func TestJumpZeroSkipsBranch(t *testing.T) {
	prog := NewProgram()
	prog.Code = []Instruction{
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: ZeroValue}}},
		{Op: OpJumpZero, Args: []Arg{{Kind: ArgLabel, Target: 3}}},
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: Unsigned(999)}}}, // skipped
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: Unsigned(42)}}},
		{Op: OpExit},
	}

	m := runProgram(t, prog)
	assert.Equal(t, StateExited, m.State)
	v, err := m.Stack.PeekValue(0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), v.Lo)
}

// TestInvalidJumpTargetFaults confirms a program counter that runs off
// the end of Code faults rather than panicking.
func TestInvalidJumpTargetFaults(t *testing.T) {
	prog := NewProgram()
	prog.Code = []Instruction{
		{Op: OpJump, Args: []Arg{{Kind: ArgLabel, Target: 50}}},
	}

	m := runProgram(t, prog)
	assert.Equal(t, StateFaulted, m.State)
	assert.Equal(t, FaultInvalidJumpTarget, m.Fault.Kind)
}

// TestCallRetRoundTrip: a call into a subroutine that adds one to its
// argument and returns it.
func TestCallRetRoundTrip(t *testing.T) {
	prog := NewProgram()
	prog.Code = []Instruction{
		// main:
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: Unsigned(10)}}}, // arg
		{Op: OpCall, Args: []Arg{
			{Kind: ArgLabel, Target: 3},
			{Kind: ArgConst, Const: Unsigned(1)}, // n=1 arg passed
		}},
		{Op: OpExit},
		// addone (ip 3):
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: Unsigned(1)}}},
		{Op: OpAdd},
		{Op: OpRet, Args: []Arg{{Kind: ArgConst, Const: Unsigned(1)}}}, // n=1 return value
	}

	m := runProgram(t, prog)
	assert.Equal(t, StateExited, m.State)
	v, err := m.Stack.PeekValue(0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(11), v.Lo)
}

// TestDivideByZeroFaults confirms the VM surfaces a fault rather than
// panicking or silently producing garbage.
func TestDivideByZeroFaults(t *testing.T) {
	prog := NewProgram()
	prog.Code = []Instruction{
		// div's stack operands are popped in operand order: the dividend
		// from the top, then the divisor beneath it.
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: ZeroValue}}},
		{Op: OpPush, Args: []Arg{{Kind: ArgConst, Const: Unsigned(1)}}},
		{Op: OpDiv},
		{Op: OpExit},
	}

	m := runProgram(t, prog)
	assert.Equal(t, StateFaulted, m.State)
	assert.Equal(t, FaultDivideByZero, m.Fault.Kind)
}

// TestChecksumOpcodeReadsOrigin checks the checksum opcode against a
// freshly constructed (and therefore valid) origin atom.
func TestChecksumOpcodeReadsOrigin(t *testing.T) {
	prog := NewProgram()
	prog.Code = []Instruction{
		{Op: OpChecksum},
		{Op: OpExit},
	}

	window := NewSimpleWindow()
	window.Set(0, NewAtom(7, Unsigned(3)))
	m := NewVM(prog, window, NewRegisterSet(), NewRNG(1), 1000)
	m.Run()

	assert.Equal(t, StateExited, m.State)
	v, err := m.Stack.PeekValue(0)
	assert.NoError(t, err)
	assert.False(t, v.Bool(), "a freshly constructed atom must not show a checksum mismatch")
}

// TestFieldRoundTripThroughVM exercises getfield/setfield end to end,
// rather than directly through the vm package's field helpers.
func TestFieldRoundTripThroughVM(t *testing.T) {
	prog := NewProgram()
	prog.Fields = []FieldDecl{
		{Name: "type", Selector: FieldSelector{Offset: TypeShift, Length: TypeBits}},
		{Name: "checksum", Selector: FieldSelector{Offset: ChecksumShift, Length: ChecksumBits}},
		{Name: "header", Selector: FieldSelector{Offset: ChecksumShift, Length: TypeBits + ChecksumBits}},
		{Name: "data", Selector: FieldSelector{Offset: 0, Length: DataBits}},
		{Name: "counter", Selector: FieldSelector{Offset: 0, Length: 8}},
	}
	const fieldCounter = 4

	prog.Code = []Instruction{
		{Op: OpSetField, Args: []Arg{
			{Kind: ArgField, Field: fieldCounter},
			{Kind: ArgConst, Const: Unsigned(200)},
		}},
		{Op: OpGetField, Args: []Arg{{Kind: ArgField, Field: fieldCounter}}},
		{Op: OpExit},
	}

	window := NewSimpleWindow()
	window.Set(0, NewAtom(9, ZeroValue))
	m := NewVM(prog, window, NewRegisterSet(), NewRNG(1), 1000)
	m.Run()

	assert.Equal(t, StateExited, m.State)
	v, err := m.Stack.PeekValue(0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(200), v.Lo)
}
