package component

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/ipscannr/internal/event"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/ui/style"
)

type EventTable struct {
	table         *tview.Table
	columnHeaders []string
	count         uint
	maxEvents     uint
}

func NewEventTable() *EventTable {
	columnHeaders := []string{"NO", "EVENT TYPE", "IP", "DETAIL"}

	return &EventTable{
		table:         createTable("events", columnHeaders),
		columnHeaders: columnHeaders,
		count:         0,
		maxEvents:     50,
	}
}

func (t *EventTable) Primitive() tview.Primitive {
	return t.table
}

func (t *EventTable) UpdateTable(evt *event.Event) {
	ip, detail, ok := describe(evt)

	if !ok {
		return
	}

	t.count++

	row := []string{strconv.Itoa(int(t.count)), string(evt.Type), ip, detail}

	setRow(t.table, t.table.GetRowCount(), row, func(col int, text string) tcell.Color {
		if evt.Type == event.ScanError {
			return style.ColorRed
		}

		return style.ColorWhite
	})

	if t.count > t.maxEvents {
		t.table.RemoveRow(2)
	}
}

// describe renders an event, skipping the noise of offline hosts
func describe(evt *event.Event) (string, string, bool) {
	switch p := evt.Payload.(type) {
	case host.Record:
		switch evt.Type {
		case event.HostLiveness:
			if !p.Alive() {
				return "", "", false
			}

			return p.IP.String(), fmt.Sprintf("online via %s %s", p.Method, formatRTT(p.RTT)), true
		case event.DNSResolved:
			return p.IP.String(), p.Hostname, true
		case event.MACResolved:
			return p.IP.String(), fmt.Sprintf("%s %s", p.MAC, p.Vendor), true
		default:
			return "", "", false
		}
	case event.PortPayload:
		return p.IP.String(), fmt.Sprintf("%d/%s", p.Port.ID, p.Port.Service), true
	case event.ErrorPayload:
		return "", p.Reason, true
	case event.Summary:
		return "", fmt.Sprintf("%s %d/%d done, %d online", p.Range, p.Done, p.Total, p.Online), true
	}

	return "", "", false
}
