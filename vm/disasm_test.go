package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassembleResolvesNames(t *testing.T) {
	prog := NewProgram()
	prog.Fields = []FieldDecl{{Name: "counter", Selector: FieldSelector{Offset: 0, Length: 8}}}
	prog.Labels = map[string]int{"loop": 0}
	prog.Code = []Instruction{
		{Op: OpGetField, Args: []Arg{{Kind: ArgField, Field: 0}}},
		{Op: OpJump, Args: []Arg{{Kind: ArgLabel, Target: 0}}},
	}

	out := Disassemble(prog)
	assert.True(t, strings.Contains(out, "loop:"))
	assert.True(t, strings.Contains(out, "$counter"))
	assert.True(t, strings.Contains(out, "loop"))
}

func TestDisasmArgSkipAlwaysUnderscore(t *testing.T) {
	assert.Equal(t, "_", disasmArg(NewProgram(), Arg{Skip: true, Kind: ArgConst}))
}
