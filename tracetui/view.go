// Package tracetui is a read-only terminal viewer for replaying a
// captured execution trace, step by step.
package tracetui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/mfmvm/elementvm/vm"
)

// Viewer replays a vm.Trace: arrow keys step through recorded
// instructions, showing the opcode, stack depth, and sampled symmetry
// at each point.
type Viewer struct {
	app     *tview.Application
	list    *tview.List
	detail  *tview.TextView
	trace   *vm.Trace
	program *vm.Program
	cursor  int
}

// NewViewer builds a Viewer over trace; prog, when non-nil, supplies
// each step's operand count for the detail pane.
func NewViewer(prog *vm.Program, trace *vm.Trace) *Viewer {
	v := &Viewer{
		app:     tview.NewApplication(),
		list:    tview.NewList().ShowSecondaryText(false),
		detail:  tview.NewTextView().SetDynamicColors(true),
		trace:   trace,
		program: prog,
	}

	for i, rec := range trace.Records {
		v.list.AddItem(fmt.Sprintf("%4d  %-18s depth=%-4d sym=%s", rec.IP, rec.Op.String(), rec.StackDepth, rec.Symmetry), "", 0, nil)
		_ = i
	}
	v.list.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		v.cursor = index
		v.renderDetail()
	})

	flex := tview.NewFlex().
		AddItem(v.list, 0, 1, true).
		AddItem(v.detail, 0, 2, false)

	v.app.SetRoot(flex, true)
	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			v.app.Stop()
			return nil
		}
		return event
	})

	v.renderDetail()
	return v
}

func (v *Viewer) renderDetail() {
	if v.cursor < 0 || v.cursor >= len(v.trace.Records) {
		v.detail.SetText("")
		return
	}
	rec := v.trace.Records[v.cursor]
	text := fmt.Sprintf("ip:       %d\nopcode:   %s\nstack:    %d\nsymmetry: %s\n",
		rec.IP, rec.Op.String(), rec.StackDepth, rec.Symmetry)
	if v.program != nil && v.program.ValidJumpTarget(rec.IP) {
		inst := v.program.Code[rec.IP]
		text += fmt.Sprintf("args:     %d\n", len(inst.Args))
	}
	v.detail.SetText(text)
}

// Run blocks until the viewer is closed (Esc or 'q').
func (v *Viewer) Run() error {
	return v.app.Run()
}
