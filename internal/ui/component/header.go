package component

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	"github.com/robgonnella/ipscannr/internal/event"
	"github.com/robgonnella/ipscannr/internal/ui/style"
)

const appText = `
 _
(_)_ __  ___  ___ __ _ _ __  _ __  _ __
| | '_ \/ __|/ __/ _' | '_ \| '_ \| '__|
| | |_) \__ \ (_| (_| | | | | | | | |
|_| .__/|___/\___\__,_|_| |_|_| |_|_|
  |_|`

var legend = []string{
	"s - start scan",
	"p - pause / resume",
	"c - cancel scan",
	"w - wake selected host",
	"e - export results to csv",
	"r - rescan ports of selected host",
	"v - save selected host to file",
	"f - toggle all / online hosts",
	": - change range",
	"tab - switch table",
	"q - quit",
}

type Header struct {
	root            *tview.Flex
	legendContainer *tview.Flex
	status          *tview.TextView
	notice          *tview.TextView
	rangeInput      *RangeInput
	showingInput    bool
}

func NewHeader(userIP string, onRangeSubmit func(text string)) *Header {
	h := &Header{}

	h.root = tview.NewFlex().SetDirection(tview.FlexRow)

	h.legendContainer = tview.NewFlex().SetDirection(tview.FlexColumn)

	h.setLegend()

	h.root.AddItem(h.legendContainer, 0, 1, false)

	h.status = tview.NewTextView()
	h.status.SetTextColor(style.ColorLightGreen)
	h.status.SetTextAlign(tview.AlignLeft)

	h.notice = tview.NewTextView()
	h.notice.SetTextColor(style.ColorOrange)
	h.notice.SetTextAlign(tview.AlignLeft)

	if userIP != "" {
		h.notice.SetText("IP: " + userIP)
	}

	h.rangeInput = NewRangeInput(onRangeSubmit)

	h.root.AddItem(h.status, 1, 1, false)
	h.root.AddItem(h.notice, 1, 1, false)
	h.root.AddItem(h.rangeInput.Primitive(), 3, 1, false)

	return h
}

func (h *Header) Primitive() tview.Primitive {
	return h.root
}

// SetStatus renders the range, state and progress of the current scan
func (h *Header) SetStatus(state string, summary event.Summary) {
	pct := 0

	if summary.Total > 0 {
		pct = summary.Done * 100 / summary.Total
	}

	h.status.SetText(fmt.Sprintf(
		"Range: %s | State: %s | Progress: %d/%d (%d%%) | Online: %d",
		summary.Range,
		state,
		summary.Done,
		summary.Total,
		pct,
		summary.Online,
	))
}

// SetNotice shows a one line message under the status
func (h *Header) SetNotice(text string) {
	h.notice.SetText(text)
}

func (h *Header) ShowRangeInput() {
	h.showingInput = true
}

func (h *Header) HideRangeInput() {
	h.showingInput = false
}

func (h *Header) IsShowingRangeInput() bool {
	return h.showingInput
}

func (h *Header) RangeInput() *RangeInput {
	return h.rangeInput
}

func (h *Header) setLegend() {
	title := tview.NewTextView().
		SetText(appText).
		SetTextColor(style.ColorPurple)

	keys := tview.NewTextView().
		SetText(strings.Join(legend, "\n")).
		SetTextColor(style.ColorOrange).
		SetTextAlign(tview.AlignLeft)

	h.legendContainer.AddItem(title, 45, 1, false)
	h.legendContainer.AddItem(keys, 0, 1, false)
}
