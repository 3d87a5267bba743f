package evmdebug

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/evmspec/evmcore/vm"
)

// RunTerminalUI starts a tview-based UI that drives the Debugger and
// displays code, stack, memory, and the final result. Because the Debugger
// only observes a single call frame directly (CALL-family sub-frames are
// stepped through but not separately displayed), bytecode is shown exactly
// as passed in.
//
// results MUST return the buffer/error that vm.Execute produced once
// d.Done() returns true; it is typically a closure over the *vm.Result
// populated by the goroutine driving vm.Execute alongside this UI.
func (d *Debugger) RunTerminalUI(callData []byte, results func() ([]byte, error), bytecode []byte) error {
	t := &termDBG{
		Debugger: d,
		results:  results,
	}
	t.initComponents()
	t.initApp()
	t.populateCallData(callData)
	t.populateCode(bytecode)
	return t.app.Run()
}

type termDBG struct {
	*Debugger
	app *tview.Application

	stack, memory    *tview.List
	callData, result *tview.TextView

	code         *tview.List
	pcToCodeItem map[int]int

	results func() ([]byte, error)
}

func (*termDBG) styleBox(b *tview.Box, title string) *tview.Box {
	return b.SetBorder(true).
		SetTitle(title).
		SetTitleAlign(tview.AlignLeft)
}

func (t *termDBG) initComponents() {
	const codeTitle = "Code"
	for title, l := range map[string]**tview.List{
		"Stack":   &t.stack,
		"Memory":  &t.memory,
		codeTitle: &t.code,
	} {
		*l = tview.NewList()
		(*l).ShowSecondaryText(false).
			SetSelectedFocusOnly(title != codeTitle)
		t.styleBox((*l).Box, title)
	}

	t.code.SetChangedFunc(func(int, string, string, rune) {
		t.onStep()
	})

	for title, v := range map[string]**tview.TextView{
		"calldata": &t.callData,
		"Result":   &t.result,
	} {
		*v = tview.NewTextView()
		t.styleBox((*v).Box, title)
	}
}

func (t *termDBG) initApp() {
	t.app = tview.NewApplication().SetRoot(t.createLayout(), true)
	t.app.SetInputCapture(t.inputCapture)
}

func (t *termDBG) createLayout() tview.Primitive {
	// Components have borders of 2, which need to be accounted for in
	// absolute dimensions.
	const (
		hStack = 2 + 16
		wStack = 2 + 5 + 64 // w/ 4-digit decimal label & space
		wMem   = 2 + 3 + 64 // w/ 2-digit hex offset & space
	)
	middle := tview.NewFlex().
		AddItem(t.code, 0, 1, false).
		AddItem(t.stack, wStack, 0, false).
		AddItem(t.memory, wMem, 0, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.callData, 0, 1, false).
		AddItem(middle, hStack, 0, false).
		AddItem(t.result, 0, 1, false)

	t.styleBox(root.Box, "EVMCORE").SetTitleAlign(tview.AlignCenter)

	return root
}

func (t *termDBG) populateCallData(cd []byte) {
	t.callData.SetText(fmt.Sprintf("%x", cd))
}

func (t *termDBG) populateCode(code []byte) {
	t.pcToCodeItem = make(map[int]int)

	var skip int
	for i := 0; i < len(code); i++ {
		if skip > 0 {
			skip--
			continue
		}

		op := vm.OpCode(code[i])
		var text string
		switch {
		case op == vm.PUSH0:
			text = op.String()
		case op.IsPush():
			n := op.PushSize()
			end := i + 1 + n
			if end > len(code) {
				end = len(code)
			}
			skip = end - (i + 1)
			text = fmt.Sprintf("%s %#x", op.String(), code[i+1:end])
		default:
			text = op.String()
		}

		t.pcToCodeItem[i] = t.code.GetItemCount()
		t.code.AddItem(text, "", 0, nil)
	}

	t.code.AddItem("--- END ---", "", 0, nil)
}

func (t *termDBG) highlightPC() {
	t.code.SetCurrentItem(t.pcToCodeItem[t.State().PC] + 1)
}

// onStep is triggered by t.code's ChangedFunc.
func (t *termDBG) onStep() {
	if !t.Done() {
		return
	}
	t.result.SetText(t.resultToDisplay())
}

func (t *termDBG) resultToDisplay() string {
	out, err := t.results()
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	return fmt.Sprintf("%x", out)
}

func (t *termDBG) inputCapture(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		t.app.Stop()
		return ev

	case tcell.KeyEnd:
		t.FastForward()
		t.highlightPC()

	case tcell.KeyEscape:
		if t.Done() {
			t.app.Stop()
		}
	}

	switch ev.Rune() {
	case ' ':
		if !t.Done() {
			t.Step()
			t.highlightPC()
		}

	case 'q':
		if t.Done() {
			t.app.Stop()
		}
	}

	t.populateStack()
	t.populateMemory()

	return nil
}

func (t *termDBG) populateStack() {
	stack := t.State().Stack

	t.stack.Clear()
	for i, n := 0, len(stack); i < n; i++ {
		w := stack[n-1-i]
		t.stack.AddItem(fmt.Sprintf("%4d %64x", n-i, w[:]), "", 0, nil)
	}

	for t.stack.GetItemCount() < 16 {
		t.stack.InsertItem(0, "", "", 0, nil)
	}
}

func (t *termDBG) populateMemory() {
	mem := t.State().Memory

	t.memory.Clear()
	for i := 0; i < len(mem); i += 32 {
		end := i + 32
		if end > len(mem) {
			end = len(mem)
		}
		t.memory.AddItem(fmt.Sprintf("%02x %x", i, mem[i:end]), "", 0, nil)
	}
}
