package vm

import "fmt"

// Opcode is an 8-bit instruction code (spec.md §2: "dispatcher over an
// 8-bit opcode space").
type Opcode byte

const (
	OpNop Opcode = iota
	OpExit

	// Stack
	OpPush
	OpPushLit // push0..push40, arg carries the literal 0..40
	OpPop
	OpDup
	OpOver
	OpSwap
	OpRot

	// Register / site / parameter / type transfer
	OpGetRegister
	OpSetRegister
	OpGetSite
	OpSetSite
	OpSwapSites
	OpGetParameter
	OpGetType

	// Field accessors
	OpGetField
	OpGetSiteField
	OpGetSignedField
	OpGetSignedSiteField
	OpSetField
	OpSetSiteField

	// Arithmetic
	OpAdd
	OpSub
	OpNeg
	OpMul
	OpDiv
	OpMod

	// Comparison & logic
	OpLess
	OpLessEqual
	OpEqual
	OpOr
	OpAnd
	OpXor
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpBitCount
	OpBitScanForward
	OpBitScanReverse

	// Shifts
	OpLshift
	OpRshift

	// Atom ops
	OpChecksum
	OpScan

	// Symmetry
	OpUseSymmetries
	OpRestoreSymmetries
	OpSaveSymmetries

	// Control flow
	OpJump
	OpJumpZero
	OpJumpNonZero
	OpJumpRelativeOffset

	// Calls
	OpCall
	OpRet

	// Paint (host ops)
	OpGetPaint
	OpSetPaint

	opcodeCount
)

// ArgKind classifies what an operand slot holds, for both the parser's
// argument grammar (spec.md §4.1) and the bytecode code index's
// type-byte (spec.md §4.3).
type ArgKind int

const (
	ArgNone ArgKind = iota
	ArgConst                // literal / constant-pool value, possibly signed
	ArgRegister              // rN or r?
	ArgField                 // $name field id
	ArgSite                  // #N window site
	ArgTypeRef               // %Name element type number
	ArgLabel                 // jump target, resolved to an absolute ip at compile time
	ArgSymmetrySet           // a symmetry set literal
)

// OperandSpec describes one operand slot of an opcode: its kind, and
// whether `_` (pop the operand from the stack instead of an immediate)
// is permitted there.
type OperandSpec struct {
	Kind       ArgKind
	AllowsSkip bool
}

// OpInfo is the static description of one opcode: its mnemonic and
// operand shape, shared by the compiler (to check arities, spec.md
// §4.2) and the engine (to take operands an instruction leaves off
// from the stack).
type OpInfo struct {
	Opcode   Opcode
	Mnemonic string
	Operands []OperandSpec
}

func c(kind ArgKind, skip bool) OperandSpec { return OperandSpec{Kind: kind, AllowsSkip: skip} }

// opTable is the single source of truth for opcode shape, indexed by
// Opcode. Keep in sync with the mnemonic table used by the parser.
var opTable = [opcodeCount]OpInfo{
	OpNop:  {OpNop, "nop", nil},
	OpExit: {OpExit, "exit", nil},

	OpPush:    {OpPush, "push", []OperandSpec{c(ArgConst, false)}},
	OpPushLit: {OpPushLit, "pushN", []OperandSpec{c(ArgConst, false)}},
	OpPop:     {OpPop, "pop", nil},
	OpDup:     {OpDup, "dup", nil},
	OpOver:    {OpOver, "over", nil},
	OpSwap:    {OpSwap, "swap", nil},
	OpRot:     {OpRot, "rot", nil},

	OpGetRegister: {OpGetRegister, "getregister", []OperandSpec{c(ArgRegister, true)}},
	OpSetRegister: {OpSetRegister, "setregister", []OperandSpec{c(ArgRegister, true), c(ArgConst, true)}},
	OpGetSite:     {OpGetSite, "getsite", []OperandSpec{c(ArgSite, true)}},
	OpSetSite:     {OpSetSite, "setsite", []OperandSpec{c(ArgSite, true), c(ArgConst, true)}},
	OpSwapSites:   {OpSwapSites, "swapsites", []OperandSpec{c(ArgSite, true), c(ArgSite, true)}},
	OpGetParameter: {OpGetParameter, "getparameter", []OperandSpec{c(ArgConst, false)}},
	OpGetType:     {OpGetType, "gettype", []OperandSpec{c(ArgTypeRef, false)}},

	OpGetField:           {OpGetField, "getfield", []OperandSpec{c(ArgField, false)}},
	OpGetSiteField:       {OpGetSiteField, "getsitefield", []OperandSpec{c(ArgSite, true), c(ArgField, false)}},
	OpGetSignedField:     {OpGetSignedField, "getsignedfield", []OperandSpec{c(ArgField, false)}},
	OpGetSignedSiteField: {OpGetSignedSiteField, "getsignedsitefield", []OperandSpec{c(ArgSite, true), c(ArgField, false)}},
	OpSetField:           {OpSetField, "setfield", []OperandSpec{c(ArgField, false), c(ArgConst, true)}},
	OpSetSiteField:       {OpSetSiteField, "setsitefield", []OperandSpec{c(ArgSite, true), c(ArgField, false), c(ArgConst, true)}},

	OpAdd: {OpAdd, "add", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpSub: {OpSub, "sub", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpNeg: {OpNeg, "neg", []OperandSpec{c(ArgConst, true)}},
	OpMul: {OpMul, "mul", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpDiv: {OpDiv, "div", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpMod: {OpMod, "mod", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},

	OpLess:             {OpLess, "less", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpLessEqual:        {OpLessEqual, "lessequal", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpEqual:            {OpEqual, "equal", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpOr:                {OpOr, "or", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpAnd:               {OpAnd, "and", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpXor:               {OpXor, "xor", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpBitAnd:            {OpBitAnd, "bitand", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpBitOr:             {OpBitOr, "bitor", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpBitXor:            {OpBitXor, "bitxor", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpBitNot:            {OpBitNot, "bitnot", []OperandSpec{c(ArgConst, true)}},
	OpBitCount:          {OpBitCount, "bitcount", []OperandSpec{c(ArgConst, true)}},
	OpBitScanForward:    {OpBitScanForward, "bitscanforward", []OperandSpec{c(ArgConst, true)}},
	OpBitScanReverse:    {OpBitScanReverse, "bitscanreverse", []OperandSpec{c(ArgConst, true)}},

	OpLshift: {OpLshift, "lshift", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},
	OpRshift: {OpRshift, "rshift", []OperandSpec{c(ArgConst, true), c(ArgConst, true)}},

	OpChecksum: {OpChecksum, "checksum", nil},
	OpScan:     {OpScan, "scan", []OperandSpec{c(ArgTypeRef, true)}},

	OpUseSymmetries:     {OpUseSymmetries, "usesymmetries", []OperandSpec{c(ArgSymmetrySet, false)}},
	OpRestoreSymmetries: {OpRestoreSymmetries, "restoresymmetries", nil},
	OpSaveSymmetries:    {OpSaveSymmetries, "savesymmetries", nil},

	OpJump:               {OpJump, "jump", []OperandSpec{c(ArgLabel, false)}},
	OpJumpZero:           {OpJumpZero, "jumpzero", []OperandSpec{c(ArgLabel, false), c(ArgConst, true)}},
	OpJumpNonZero:        {OpJumpNonZero, "jumpnonzero", []OperandSpec{c(ArgLabel, false), c(ArgConst, true)}},
	OpJumpRelativeOffset: {OpJumpRelativeOffset, "jumprelativeoffset", []OperandSpec{c(ArgConst, true)}},

	OpCall: {OpCall, "call", []OperandSpec{c(ArgLabel, false), c(ArgConst, false)}},
	OpRet:  {OpRet, "ret", []OperandSpec{c(ArgConst, false)}},

	OpGetPaint: {OpGetPaint, "getpaint", nil},
	OpSetPaint: {OpSetPaint, "setpaint", []OperandSpec{c(ArgConst, true)}},
}

var mnemonicToOpcode map[string]Opcode

func init() {
	mnemonicToOpcode = make(map[string]Opcode, opcodeCount)
	for op := Opcode(0); op < opcodeCount; op++ {
		info := opTable[op]
		if info.Mnemonic == "" {
			continue
		}
		mnemonicToOpcode[info.Mnemonic] = op
	}
	// push0..push40 all decode to OpPushLit; they're recognized
	// specially by the encoder's resolver rather than the mnemonic table.

	// popsymmetries is a named alias for restoresymmetries.
	mnemonicToOpcode["popsymmetries"] = OpRestoreSymmetries
}

// Info returns the static shape description for an opcode.
func (op Opcode) Info() OpInfo {
	if op >= opcodeCount {
		return OpInfo{}
	}
	return opTable[op]
}

func (op Opcode) String() string {
	if op >= opcodeCount || opTable[op].Mnemonic == "" {
		return fmt.Sprintf("Opcode(%d)", byte(op))
	}
	return opTable[op].Mnemonic
}

// LookupMnemonic resolves an opcode keyword to its Opcode, if valid.
func LookupMnemonic(name string) (Opcode, bool) {
	op, ok := mnemonicToOpcode[name]
	return op, ok
}

// ArgCount returns how many operand slots the opcode takes.
func (op Opcode) ArgCount() int {
	return len(op.Info().Operands)
}
