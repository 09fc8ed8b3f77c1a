// Command amldbg is an interactive single-step debugger for the AML
// evaluator. It loads a small hand-built TermList, binds it under a fresh
// in-memory namespace, and lets you step the frame/op-context machine one
// primitive action at a time while watching locals, args, and the pending
// operation stack.
package main

import (
	"flag"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/gopher-aml/machine/aml"
	"github.com/gopher-aml/machine/aml/amltest"
)

// sample is the fixture the debugger always loads: Local0 = 0; While
// (Local0 < 5) { Increment(Local0) }; Return(Local0). No flag selects a
// different blob.
func sample() []byte {
	pred := amltest.LLess(amltest.New().Local(0).Bytes(), amltest.New().ByteConst(5).Bytes())
	loopBody := amltest.Increment([]byte{0x60})
	return amltest.New().
		Raw(amltest.Store(amltest.New().Zero().Bytes(), []byte{0x60})...).
		Raw(amltest.While(pred, loopBody)...).
		Raw(amltest.Return(amltest.New().Local(0).Bytes())...).
		Bytes()
}

type model struct {
	ev   *aml.Evaluator
	rec  *amltest.Recorder
	code []byte

	steps  int
	prevPC uint32
	err    error
	done   bool
}

func (m model) Init() tea.Cmd {
	m.ev.Begin(m.ev.Namespace().Root(), m.code)
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			if m.done {
				return m, nil
			}
			if f := m.ev.CurrentFrame(); f != nil {
				m.prevPC = f.Offset
			}
			finished, _, err := m.ev.Step()
			m.steps++
			if err != nil {
				m.err = err
				m.done = true
				return m, nil
			}
			if finished {
				m.done = true
			}
		}
	}
	return m, nil
}

func (m model) renderFrame() string {
	f := m.ev.CurrentFrame()
	if f == nil {
		return "no active frame"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "offset: %d/%d (was %d)\n", f.Offset, f.CodeLen, m.prevPC)
	fmt.Fprintf(&b, "depth:  %d\n", m.ev.FrameDepth())
	fmt.Fprintf(&b, "blocks: %d\n", f.Blocks)
	if f.Scope != nil {
		fmt.Fprintf(&b, "scope:  %s\n", f.Scope.Path())
	}
	fmt.Fprintf(&b, "pending ops: %s\n", strings.Join(f.PendingOps, " > "))
	b.WriteString("locals:\n")
	for i, l := range f.Locals {
		if l != nil {
			fmt.Fprintf(&b, "  Local%d = %s\n", i, spew.Sdump(l))
		}
	}
	b.WriteString("args:\n")
	for i, a := range f.Args {
		if a != nil {
			fmt.Fprintf(&b, "  Arg%d = %s\n", i, spew.Sdump(a))
		}
	}
	return b.String()
}

func (m model) status() string {
	if m.err != nil {
		return fmt.Sprintf("steps: %d\nerror: %v", m.steps, m.err)
	}
	if m.done {
		return fmt.Sprintf("steps: %d\nfinished", m.steps)
	}
	return fmt.Sprintf("steps: %d\nrunning", m.steps)
}

func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.renderFrame(),
			"  "+m.status(),
		),
		"",
		"space/j: step   q: quit",
	)
}

func main() {
	flag.Parse()

	ns := aml.NewNamespace()
	rec := amltest.NewRecorder()
	ev := aml.NewEvaluator(ns, rec, 2)

	prog, err := tea.NewProgram(model{
		ev:   ev,
		rec:  rec,
		code: sample(),
	}).Run()
	if err != nil {
		fmt.Println("debugger error:", err)
		return
	}
	final := prog.(model)
	if final.err != nil {
		fmt.Println("evaluation error:", final.err)
	}
	for _, line := range rec.Logs {
		fmt.Println("log:", line)
	}
}
