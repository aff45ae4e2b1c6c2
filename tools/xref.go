// Package tools provides disassembly-adjacent static analysis: a
// field/label cross-reference and a small set of lint checks over a
// resolved program.
package tools

import (
	"fmt"
	"sort"

	"github.com/mfmvm/elementvm/vm"
)

// XrefEntry records every instruction index that references one field
// or label.
type XrefEntry struct {
	Name string
	Uses []int
}

// FieldXref returns, for every declared field, the instruction indices
// that read or write it.
func FieldXref(prog *vm.Program) []XrefEntry {
	uses := make(map[int][]int)
	for i, inst := range prog.Code {
		for _, a := range inst.Args {
			if a.Kind == vm.ArgField && !a.Skip {
				uses[a.Field] = append(uses[a.Field], i)
			}
		}
	}
	var out []XrefEntry
	for idx, field := range prog.Fields {
		out = append(out, XrefEntry{Name: field.Name, Uses: uses[idx]})
	}
	return out
}

// LabelXref returns, for every label, the instruction indices that jump
// or call to it.
func LabelXref(prog *vm.Program) []XrefEntry {
	uses := make(map[int][]int)
	for i, inst := range prog.Code {
		for _, a := range inst.Args {
			if a.Kind == vm.ArgLabel {
				uses[a.Target] = append(uses[a.Target], i)
			}
		}
	}
	names := make([]string, 0, len(prog.Labels))
	for name := range prog.Labels {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []XrefEntry
	for _, name := range names {
		idx := prog.Labels[name]
		out = append(out, XrefEntry{Name: name, Uses: uses[idx]})
	}
	return out
}

// FormatXref renders a cross-reference table for terminal output.
func FormatXref(entries []XrefEntry) string {
	out := ""
	for _, e := range entries {
		out += fmt.Sprintf("%-20s %v\n", e.Name, e.Uses)
	}
	return out
}
