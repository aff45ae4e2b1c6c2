package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders a decoded Program back into readable assembly
// text, resolving field/type/label indices back to names where
// possible. It is meant for diagnostics, not for round-tripping back
// through the parser.
func Disassemble(prog *Program) string {
	var sb strings.Builder

	labelAt := make(map[int][]string)
	for name, ip := range prog.Labels {
		labelAt[ip] = append(labelAt[ip], name)
	}

	for i, inst := range prog.Code {
		for _, name := range labelAt[i] {
			sb.WriteString(name)
			sb.WriteString(":\n")
		}
		sb.WriteString(fmt.Sprintf("    %-6d %-20s", i, inst.Op.String()))
		parts := make([]string, 0, len(inst.Args))
		for _, a := range inst.Args {
			parts = append(parts, disasmArg(prog, a))
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func disasmArg(prog *Program, a Arg) string {
	if a.Skip {
		return "_"
	}
	switch a.Kind {
	case ArgConst:
		return a.Const.String()
	case ArgRegister:
		if a.Reg == RandomRegister {
			return "r?"
		}
		return fmt.Sprintf("r%d", a.Reg)
	case ArgField:
		if decl, ok := prog.Field(a.Field); ok {
			return "$" + decl.Name
		}
		return fmt.Sprintf("$<%d>", a.Field)
	case ArgSite:
		return fmt.Sprintf("#%d", a.Site)
	case ArgTypeRef:
		if ref, ok := prog.TypeNumber(a.Type); ok {
			return "%" + ref.Name
		}
		return fmt.Sprintf("%%<%d>", a.Type)
	case ArgLabel:
		for name, ip := range prog.Labels {
			if ip == a.Target {
				return name
			}
		}
		return fmt.Sprintf("L%d", a.Target)
	case ArgSymmetrySet:
		members := a.Syms.Members()
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = m.String()
		}
		return strings.Join(names, "|")
	default:
		return "?"
	}
}
