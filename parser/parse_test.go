package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFieldDirective(t *testing.T) {
	mod, errs := Parse("test.mfm", ".field counter 4 8 signed\nexit\n")
	assert.False(t, errs.HasErrors())
	assert.Len(t, mod.Fields, 1)
	assert.Equal(t, FieldDecl{Name: "counter", Offset: 4, Length: 8, Signed: true, Pos: mod.Fields[0].Pos}, mod.Fields[0])
}

func TestParseParameterDirective(t *testing.T) {
	mod, errs := Parse("test.mfm", ".parameter threshold 10\nexit\n")
	assert.False(t, errs.HasErrors())
	assert.Len(t, mod.Parameters, 1)
	assert.Equal(t, "threshold", mod.Parameters[0].Name)
	assert.Equal(t, int64(10), mod.Parameters[0].Value.IntValue)
}

func TestParseTypeNumberDirective(t *testing.T) {
	mod, errs := Parse("test.mfm", ".typenumber Wall 3\nexit\n")
	assert.False(t, errs.HasErrors())
	assert.Len(t, mod.Types, 1)
	assert.Equal(t, "Wall", mod.Types[0].Name)
	assert.Equal(t, 3, mod.Types[0].Number)
}

func TestParseSymmetriesDirectiveList(t *testing.T) {
	mod, errs := Parse("test.mfm", ".symmetries R000L|R090L\nexit\n")
	assert.False(t, errs.HasErrors())
	assert.Equal(t, []string{"R000L", "R090L"}, mod.Symmetries)
}

func TestParseSplatDirectiveIsUnsupported(t *testing.T) {
	mod, errs := Parse("test.mfm", ".splat\nexit\n")
	assert.True(t, mod.Splat)
	assert.True(t, errs.HasErrors())
	assert.Equal(t, ErrorUnsupportedDirective, errs.Errors[0].Kind)
}

func TestParseUnknownDirectiveErrors(t *testing.T) {
	_, errs := Parse("test.mfm", ".bogus\nexit\n")
	assert.True(t, errs.HasErrors())
	assert.Equal(t, ErrorInvalidDirective, errs.Errors[0].Kind)
}

func TestParseInstructionWithMultipleLabels(t *testing.T) {
	mod, errs := Parse("test.mfm", "a: b: push 1\n")
	assert.False(t, errs.HasErrors())
	assert.Equal(t, []string{"a", "b"}, mod.Instructions[0].Labels)
}

func TestParseCommaSeparatedOperands(t *testing.T) {
	mod, errs := Parse("test.mfm", "setfield $f, _\n")
	assert.False(t, errs.HasErrors())
	assert.Len(t, mod.Instructions[0].Operands, 2)
	assert.Equal(t, OperandField, mod.Instructions[0].Operands[0].Kind)
	assert.Equal(t, OperandSkip, mod.Instructions[0].Operands[1].Kind)
}

func TestParseUseSymmetriesOperandIsSymmetrySet(t *testing.T) {
	mod, errs := Parse("test.mfm", "usesymmetries R000L|R090L\n")
	assert.False(t, errs.HasErrors())
	assert.Len(t, mod.Instructions[0].Operands, 1)
	op := mod.Instructions[0].Operands[0]
	assert.Equal(t, OperandSymmetrySet, op.Kind)
	assert.Equal(t, []string{"R000L", "R090L"}, op.SymmetryNames)
}

func TestParseBlankLinesAndCommentsAreSkipped(t *testing.T) {
	mod, errs := Parse("test.mfm", "\n// a comment\n\npush 1\n")
	assert.False(t, errs.HasErrors())
	assert.Len(t, mod.Instructions, 1)
}
