package component

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/ipscannr/internal/ui/key"
	"github.com/robgonnella/ipscannr/internal/ui/style"
)

type RangeInput struct {
	root     *tview.InputField
	onSubmit func(text string)
}

func NewRangeInput(onSubmit func(text string)) *RangeInput {

	input := tview.NewInputField()
	input.SetFieldStyle(style.StyleDefault.Dim(!style.Compat()))
	input.SetBorderPadding(0, 0, 1, 1)
	input.SetPlaceholderStyle(style.StyleDefault.Dim(!style.Compat()))

	input.SetFocusFunc(func() {
		input.SetBorder(true)
		input.SetBorderColor(style.ColorPurple)
		input.SetPlaceholder("Enter range: 192.168.1.0/24, 10.0.0.1-50, 10.0.0.5")
	})

	input.SetBlurFunc(func() {
		input.SetBorder(false)
		input.SetPlaceholder("")
	})

	ri := &RangeInput{
		root:     input,
		onSubmit: onSubmit,
	}

	ri.root.SetDoneFunc(func(k tcell.Key) {
		if k == key.KeyEnter {
			ri.onSubmit(ri.root.GetText())
			ri.root.SetText("")
		}
	})

	return ri
}

func (i *RangeInput) Primitive() tview.Primitive {
	return i.root
}
