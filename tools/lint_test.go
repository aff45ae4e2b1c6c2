package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfmvm/elementvm/vm"
)

func TestLintUnreachableAfterExit(t *testing.T) {
	prog := vm.NewProgram()
	prog.Code = []vm.Instruction{
		{Op: vm.OpExit},
		{Op: vm.OpNop},
	}
	findings := Lint(prog)
	assert.Contains(t, findings, LintFinding{IP: 1, Message: "unreachable: falls through after an unconditional exit/jump"})
}

func TestLintNoFindingWhenNextIsAJumpTarget(t *testing.T) {
	prog := vm.NewProgram()
	prog.Code = []vm.Instruction{
		{Op: vm.OpJump, Args: []vm.Arg{{Kind: vm.ArgLabel, Target: 1}}},
		{Op: vm.OpNop},
	}
	findings := lintUnreachable(prog)
	assert.Empty(t, findings)
}

func TestLintTruncatingWrite(t *testing.T) {
	prog := vm.NewProgram()
	prog.Fields = []vm.FieldDecl{{Name: "nibble", Selector: vm.FieldSelector{Offset: 0, Length: 4}}}
	prog.Code = []vm.Instruction{
		{Op: vm.OpSetField, Args: []vm.Arg{
			{Kind: vm.ArgField, Field: 0},
			{Kind: vm.ArgConst, Const: vm.Unsigned(0xFF)},
		}},
	}
	findings := lintTruncatingWrites(prog)
	assert.Len(t, findings, 1)
	assert.Equal(t, 0, findings[0].IP)
}

func TestLintUnmatchedRestore(t *testing.T) {
	prog := vm.NewProgram()
	prog.Code = []vm.Instruction{
		{Op: vm.OpRestoreSymmetries},
	}
	findings := lintUnmatchedRestore(prog)
	assert.Len(t, findings, 1)
}

func TestLintMatchedSaveRestoreIsClean(t *testing.T) {
	prog := vm.NewProgram()
	prog.Code = []vm.Instruction{
		{Op: vm.OpSaveSymmetries},
		{Op: vm.OpRestoreSymmetries},
	}
	findings := lintUnmatchedRestore(prog)
	assert.Empty(t, findings)
}
