// Package encoder performs semantic resolution (names to indices,
// labels to instruction addresses) and bytecode encoding of a parsed
// element program.
package encoder

import (
	"fmt"

	"github.com/mfmvm/elementvm/parser"
	"github.com/mfmvm/elementvm/vm"
)

// Resolve turns a parsed Module into a decoded, runnable vm.Program.
// Errors (undefined label, undefined field, etc.) are appended to the
// returned ErrorList; the caller must check HasErrors before running
// the result.
func Resolve(mod *parser.Module) (*vm.Program, *parser.ErrorList) {
	errs := &parser.ErrorList{}
	prog := vm.NewProgram()
	prog.Metadata = mod.Metadata
	prog.BuildTag = mod.BuildTag
	prog.SelfTypeName = mod.SelfType

	fieldIndex := seedBuiltinFields(prog)
	for _, fd := range mod.Fields {
		sel := vm.FieldSelector{Offset: fd.Offset, Length: fd.Length}
		if !sel.Valid(vm.DataBits) {
			errs.AddError(parser.NewError(fd.Pos, parser.ErrorInvalidOperand,
				fmt.Sprintf("field %q selector (%d,%d) exceeds the %d-bit data slice", fd.Name, fd.Offset, fd.Length, vm.DataBits)))
			continue
		}
		idx := len(prog.Fields)
		prog.Fields = append(prog.Fields, vm.FieldDecl{Name: fd.Name, Selector: sel, Signed: fd.Signed})
		fieldIndex[fd.Name] = idx
	}

	typeIndex := make(map[string]int)
	for _, td := range mod.Types {
		idx := len(prog.Types)
		prog.Types = append(prog.Types, vm.TypeRef{Name: td.Name, Num: uint16(td.Number), Resolved: true})
		typeIndex[td.Name] = idx
	}

	paramIndex := make(map[string]int)
	for _, pd := range mod.Parameters {
		if pd.Value.Kind != parser.OperandConst {
			errs.AddError(parser.NewError(pd.Pos, parser.ErrorInvalidOperand,
				fmt.Sprintf("parameter %q must be a constant", pd.Name)))
			continue
		}
		idx := len(prog.Parameters)
		prog.Parameters = append(prog.Parameters, constOperandValue(pd.Value))
		paramIndex[pd.Name] = idx
	}

	if len(mod.Symmetries) > 0 {
		prog.DefaultSymmetries = resolveSymmetrySet(mod.Symmetries)
	}

	labels := make(map[string]int)
	for i, inst := range mod.Instructions {
		for _, l := range inst.Labels {
			if _, dup := labels[l]; dup {
				errs.AddError(parser.NewError(inst.Pos, parser.ErrorDuplicateLabel, "duplicate label "+l))
				continue
			}
			labels[l] = i
		}
	}
	prog.Labels = labels

	r := &resolver{
		prog:       prog,
		errs:       errs,
		fieldIndex: fieldIndex,
		typeIndex:  typeIndex,
		paramIndex: paramIndex,
		labels:     labels,
	}

	for _, inst := range mod.Instructions {
		r.resolveInstruction(inst)
	}

	if name := mod.SelfType; name != "" {
		if idx, ok := typeIndex[name]; ok {
			prog.SelfTypeNum = prog.Types[idx].Num
		}
	}

	return prog, errs
}

// seedBuiltinFields pre-populates the four reserved field ids (type,
// checksum, header, data) at their fixed indices, so user `.field`
// declarations append starting at vm.FirstUserFieldID.
func seedBuiltinFields(prog *vm.Program) map[string]int {
	prog.Fields = []vm.FieldDecl{
		{Name: "type", Selector: vm.FieldSelector{Offset: vm.TypeShift, Length: vm.TypeBits}},
		{Name: "checksum", Selector: vm.FieldSelector{Offset: vm.ChecksumShift, Length: vm.ChecksumBits}},
		{Name: "header", Selector: vm.FieldSelector{Offset: vm.ChecksumShift, Length: vm.TypeBits + vm.ChecksumBits}},
		{Name: "data", Selector: vm.FieldSelector{Offset: 0, Length: vm.DataBits}},
	}
	return map[string]int{"type": vm.FieldIDType, "checksum": vm.FieldIDChecksum, "header": vm.FieldIDHeader, "data": vm.FieldIDData}
}

func resolveSymmetrySet(names []string) vm.SymmetrySet {
	var set vm.SymmetrySet
	for _, n := range names {
		if n == "ALL" {
			return vm.AllSymmetrySet
		}
		if sym, ok := vm.ParseSymmetry(n); ok {
			set |= vm.SymmetrySetOf(sym)
		}
	}
	if set == 0 {
		return vm.DefaultSymmetrySet
	}
	return set
}

func constOperandValue(op parser.Operand) vm.Value {
	if op.Signed {
		return vm.Signed(op.IntValue)
	}
	return vm.Unsigned(uint64(op.IntValue))
}

type resolver struct {
	prog       *vm.Program
	errs       *parser.ErrorList
	fieldIndex map[string]int
	typeIndex  map[string]int
	paramIndex map[string]int
	labels     map[string]int
}

func (r *resolver) resolveInstruction(inst parser.Instruction) {
	op, ok := vm.LookupMnemonic(inst.Mnemonic)
	isPushLit, lit := false, 0
	if !ok {
		isPushLit, lit = parsePushLitMnemonic(inst.Mnemonic)
		if isPushLit {
			op = vm.OpPushLit
		}
	}
	if !ok && !isPushLit {
		r.errs.AddError(parser.NewError(inst.Pos, parser.ErrorInvalidInstruction, "unknown instruction "+inst.Mnemonic))
		r.prog.Code = append(r.prog.Code, vm.Instruction{Op: vm.OpNop})
		return
	}

	var args []vm.Arg
	if isPushLit {
		args = []vm.Arg{{Kind: vm.ArgConst, Const: vm.Unsigned(uint64(lit))}}
	} else {
		spec := op.Info().Operands
		// Trailing operands that allow `_` may be left off; the engine
		// then takes them from the stack.
		arityOK := len(inst.Operands) <= len(spec)
		for i := len(inst.Operands); arityOK && i < len(spec); i++ {
			arityOK = spec[i].AllowsSkip
		}
		if !arityOK {
			r.errs.AddError(parser.NewError(inst.Pos, parser.ErrorInvalidOperand,
				fmt.Sprintf("%s expects %d operand(s), got %d", inst.Mnemonic, len(spec), len(inst.Operands))))
		}
		for i, po := range inst.Operands {
			if i >= len(spec) {
				break
			}
			if op == vm.OpGetParameter && po.Kind == parser.OperandLabel {
				idx, ok := r.paramIndex[po.Name]
				if !ok {
					r.errs.AddError(parser.NewError(po.Pos, parser.ErrorUndefinedParameter, "undefined parameter "+po.Name))
				}
				args = append(args, vm.Arg{Kind: vm.ArgConst, Const: vm.Unsigned(uint64(idx))})
				continue
			}
			args = append(args, r.resolveOperand(po, spec[i]))
		}
	}

	r.prog.Code = append(r.prog.Code, vm.Instruction{Op: op, Args: args})
}

func parsePushLitMnemonic(name string) (bool, int) {
	if len(name) < 5 || name[:4] != "push" {
		return false, 0
	}
	n := 0
	for _, c := range name[4:] {
		if c < '0' || c > '9' {
			return false, 0
		}
		n = n*10 + int(c-'0')
	}
	if n < 0 || n > 40 {
		return false, 0
	}
	return true, n
}

func (r *resolver) resolveOperand(po parser.Operand, spec vm.OperandSpec) vm.Arg {
	if po.Kind == parser.OperandSkip {
		if !spec.AllowsSkip {
			r.errs.AddError(parser.NewError(po.Pos, parser.ErrorInvalidOperand, "`_` is not permitted for this operand"))
		}
		return vm.Arg{Kind: spec.Kind, Skip: true}
	}

	switch po.Kind {
	case parser.OperandConst:
		return vm.Arg{Kind: vm.ArgConst, Const: constOperandValue(po)}
	case parser.OperandRegister:
		n := int(po.IntValue)
		if po.IsRandom {
			n = vm.RandomRegister
		}
		return vm.Arg{Kind: vm.ArgRegister, Reg: n}
	case parser.OperandField:
		idx, ok := r.fieldIndex[po.Name]
		if !ok {
			r.errs.AddError(parser.NewError(po.Pos, parser.ErrorUndefinedField, "undefined field $"+po.Name))
		}
		return vm.Arg{Kind: vm.ArgField, Field: idx}
	case parser.OperandSite:
		return vm.Arg{Kind: vm.ArgSite, Site: int(po.IntValue)}
	case parser.OperandTypeRef:
		idx, ok := r.typeIndex[po.Name]
		if !ok {
			idx = len(r.prog.Types)
			r.prog.Types = append(r.prog.Types, vm.TypeRef{Name: po.Name})
			r.typeIndex[po.Name] = idx
		}
		return vm.Arg{Kind: vm.ArgTypeRef, Type: idx}
	case parser.OperandLabel:
		idx, ok := r.labels[po.Name]
		if !ok {
			r.errs.AddError(parser.NewError(po.Pos, parser.ErrorUndefinedLabel, "undefined label "+po.Name))
		}
		return vm.Arg{Kind: vm.ArgLabel, Target: idx}
	case parser.OperandSymmetrySet:
		return vm.Arg{Kind: vm.ArgSymmetrySet, Syms: resolveSymmetrySet(po.SymmetryNames)}
	default:
		r.errs.AddError(parser.NewError(po.Pos, parser.ErrorInvalidOperand, "unresolvable operand"))
		return vm.Arg{}
	}
}
