package tools

import (
	"fmt"

	"github.com/mfmvm/elementvm/vm"
)

// LintFinding is one static-analysis warning about a resolved program.
type LintFinding struct {
	IP      int
	Message string
}

func (f LintFinding) String() string {
	return fmt.Sprintf("ip=%d: %s", f.IP, f.Message)
}

// Lint runs a handful of cheap static checks over a resolved program:
// unreachable code after an unconditional exit/jump, a field write that
// provably truncates its source value, and a symmetry restore with no
// matching save anywhere before it in straight-line code.
func Lint(prog *vm.Program) []LintFinding {
	var findings []LintFinding
	findings = append(findings, lintUnreachable(prog)...)
	findings = append(findings, lintTruncatingWrites(prog)...)
	findings = append(findings, lintUnmatchedRestore(prog)...)
	return findings
}

// lintUnreachable flags any instruction immediately following an
// unconditional exit or jump that is not itself the target of some
// label (a jump target makes it reachable after all).
func lintUnreachable(prog *vm.Program) []LintFinding {
	targets := make(map[int]bool)
	for _, inst := range prog.Code {
		for _, a := range inst.Args {
			if a.Kind == vm.ArgLabel {
				targets[a.Target] = true
			}
		}
	}

	var findings []LintFinding
	for i, inst := range prog.Code {
		if inst.Op != vm.OpExit && inst.Op != vm.OpJump {
			continue
		}
		next := i + 1
		if next < len(prog.Code) && !targets[next] {
			findings = append(findings, LintFinding{IP: next, Message: "unreachable: falls through after an unconditional exit/jump"})
		}
	}
	return findings
}

// lintTruncatingWrites flags a setfield/setsitefield whose source is a
// literal constant that provably does not fit in the field's declared
// width, so it would silently truncate.
func lintTruncatingWrites(prog *vm.Program) []LintFinding {
	var findings []LintFinding
	for i, inst := range prog.Code {
		isSite := inst.Op == vm.OpSetSiteField
		if inst.Op != vm.OpSetField && !isSite {
			continue
		}
		fieldArgIdx := 0
		valueArgIdx := 1
		if isSite {
			fieldArgIdx = 1
			valueArgIdx = 2
		}
		if fieldArgIdx >= len(inst.Args) || valueArgIdx >= len(inst.Args) {
			continue
		}
		fieldArg := inst.Args[fieldArgIdx]
		valueArg := inst.Args[valueArgIdx]
		if fieldArg.Skip || valueArg.Skip {
			continue
		}
		decl, ok := prog.Field(fieldArg.Field)
		if !ok {
			continue
		}
		if decl.Selector.Length >= 64 {
			continue
		}
		limit := uint64(1) << uint(decl.Selector.Length)
		if valueArg.Const.Hi == 0 && valueArg.Const.Lo >= limit {
			findings = append(findings, LintFinding{IP: i, Message: fmt.Sprintf("literal does not fit in %d-bit field %q", decl.Selector.Length, decl.Name)})
		}
	}
	return findings
}

// lintUnmatchedRestore flags a restoresymmetries with no preceding
// savesymmetries anywhere earlier in the straight-line instruction
// stream. It is a heuristic (it does not trace branches), so it can
// miss cases reachable only through a jump, but it is cheap and catches
// the common copy-paste mistake of a restore with no matching save.
func lintUnmatchedRestore(prog *vm.Program) []LintFinding {
	var findings []LintFinding
	saves := 0
	for i, inst := range prog.Code {
		switch inst.Op {
		case vm.OpSaveSymmetries:
			saves++
		case vm.OpRestoreSymmetries:
			if saves == 0 {
				findings = append(findings, LintFinding{IP: i, Message: "restoresymmetries with no preceding savesymmetries in straight-line code"})
			} else {
				saves--
			}
		}
	}
	return findings
}
