package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfmvm/elementvm/parser"
	"github.com/mfmvm/elementvm/vm"
)

func mustParse(t *testing.T, src string) *parser.Module {
	t.Helper()
	mod, errs := parser.Parse("test.mfm", src)
	assert.False(t, errs.HasErrors(), "unexpected parse errors: %v", errs.Errors)
	return mod
}

func TestResolveSimpleProgram(t *testing.T) {
	mod := mustParse(t, "push 1\npush 2\nadd\nexit\n")
	prog, errs := Resolve(mod)
	assert.False(t, errs.HasErrors())
	assert.Len(t, prog.Code, 4)
	assert.Equal(t, vm.OpAdd, prog.Code[2].Op)
}

func TestResolveLabelsAndJumps(t *testing.T) {
	mod := mustParse(t, "loop: push 1\njump loop\n")
	prog, errs := Resolve(mod)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, 0, prog.Code[1].Args[0].Target)
}

func TestResolveUndefinedLabelErrors(t *testing.T) {
	mod := mustParse(t, "jump nowhere\n")
	_, errs := Resolve(mod)
	assert.True(t, errs.HasErrors())
	assert.Equal(t, parser.ErrorUndefinedLabel, errs.Errors[0].Kind)
}

func TestResolveUndefinedFieldErrors(t *testing.T) {
	mod := mustParse(t, "getfield $nosuch\n")
	_, errs := Resolve(mod)
	assert.True(t, errs.HasErrors())
	assert.Equal(t, parser.ErrorUndefinedField, errs.Errors[0].Kind)
}

func TestResolveBuiltinFieldsPreSeeded(t *testing.T) {
	mod := mustParse(t, "getfield $type\n")
	prog, errs := Resolve(mod)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, vm.FieldIDType, prog.Code[0].Args[0].Field)
}

func TestResolveUserFieldStartsAfterBuiltins(t *testing.T) {
	mod := mustParse(t, ".field counter 0 8\ngetfield $counter\n")
	prog, errs := Resolve(mod)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, vm.FirstUserFieldID, prog.Code[0].Args[0].Field)
}

func TestResolvePushLitMnemonic(t *testing.T) {
	mod := mustParse(t, "push7\n")
	prog, errs := Resolve(mod)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, vm.OpPushLit, prog.Code[0].Op)
	assert.Equal(t, uint64(7), prog.Code[0].Args[0].Const.Lo)
}

func TestResolveDefaultSymmetriesALL(t *testing.T) {
	mod := mustParse(t, ".symmetries ALL\nexit\n")
	prog, errs := Resolve(mod)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, vm.AllSymmetrySet, prog.DefaultSymmetries)
}

func TestResolveWrongOperandCountErrors(t *testing.T) {
	mod := mustParse(t, "add 1, 2, 3\n")
	_, errs := Resolve(mod)
	assert.True(t, errs.HasErrors())
}

func TestResolveSkipOperandRejectedWhereNotAllowed(t *testing.T) {
	// push's single operand is ArgConst without AllowsSkip: constants are
	// always literal at the push site, so `_` there must be flagged.
	mod := mustParse(t, "push _\n")
	_, errs := Resolve(mod)
	assert.True(t, errs.HasErrors())
	assert.Equal(t, parser.ErrorInvalidOperand, errs.Errors[0].Kind)
}
