package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfmvm/elementvm/encoder"
	"github.com/mfmvm/elementvm/loader"
	"github.com/mfmvm/elementvm/parser"
	"github.com/mfmvm/elementvm/vm"
)

// compileAndRun drives a full source-to-execution pipeline: lex/parse,
// resolve, encode to bytecode, decode the bytecode back, and run it.
// This is the same path main.go's compile+run subcommands exercise, just
// in-process so the resulting VM can be inspected directly.
func compileAndRun(t *testing.T, src string) *vm.VM {
	t.Helper()

	mod, errs := parser.Parse("scenario.mfm", src)
	require.False(t, errs.HasErrors(), "parse errors: %v", errs.Errors)

	resolved, errs := encoder.Resolve(mod)
	require.False(t, errs.HasErrors(), "resolve errors: %v", errs.Errors)

	data, err := encoder.Encode(resolved)
	require.NoError(t, err)

	prog, err := loader.Decode(data)
	require.NoError(t, err)

	window := vm.NewSimpleWindow()
	window.Set(0, vm.NewAtom(prog.SelfTypeNum, vm.ZeroValue))

	m := vm.NewVM(prog, window, vm.NewRegisterSet(), vm.NewRNG(1), 1000)
	result := m.Run()
	require.Equal(t, vm.StateExited, result.State, "fault: %v", result.Fault)
	return m
}

// TestScenarioCallRetFraming is spec scenario 4: push 1, 2, 3, then
// `call sum2 2` where sum2 is `add; ret 1`. The call's two argument
// slots are consumed by the subroutine, and ret 1 preserves only its
// own top value, leaving the caller's untouched bottom value below it.
func TestScenarioCallRetFraming(t *testing.T) {
	src := `push 1
push 2
push 3
call sum2, 2
exit
sum2:
add
ret 1
`
	m := compileAndRun(t, src)
	assert.Equal(t, 2, m.Stack.Depth())
	top, err := m.Stack.PopValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), top.Lo)
	bottom, err := m.Stack.PopValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bottom.Lo)
}

// TestScenarioFieldRoundTrip is spec scenario 5: declaring a 4-bit
// field at offset 10, writing 0xF into it at the origin site, then
// reading it back leaves 0xF on top of the stack.
func TestScenarioFieldRoundTrip(t *testing.T) {
	src := `.field f 10 4
push 0xF
setfield $f, _
push0
getfield $f
exit
`
	m := compileAndRun(t, src)
	top, err := m.Stack.PopValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(0xF), top.Lo)
	next, err := m.Stack.PopValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), next.Lo)
}
