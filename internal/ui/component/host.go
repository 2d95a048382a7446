package component

import (
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/ui/style"
)

// HostTable lists probed hosts ordered by address. Only live hosts are
// shown unless ShowAll is toggled on.
type HostTable struct {
	table         *tview.Table
	columnHeaders []string
	records       map[netip.Addr]host.Record
	order         []netip.Addr
	visible       []netip.Addr
	showAll       bool
}

func NewHostTable() *HostTable {
	columnHeaders := []string{"IP", "STATUS", "RTT", "HOSTNAME", "MAC", "VENDOR", "PORTS"}

	return &HostTable{
		table:         createTable("hosts", columnHeaders),
		columnHeaders: columnHeaders,
		records:       map[netip.Addr]host.Record{},
		order:         []netip.Addr{},
		visible:       []netip.Addr{},
	}
}

func (t *HostTable) Primitive() tview.Primitive {
	return t.table
}

// Reset replaces every row with records
func (t *HostTable) Reset(records []host.Record) {
	t.records = map[netip.Addr]host.Record{}
	t.order = []netip.Addr{}

	for _, r := range records {
		t.insert(r)
	}

	t.render()
}

// UpdateRecord adds or replaces the row for a host
func (t *HostTable) UpdateRecord(r host.Record) {
	t.insert(r)
	t.render()
}

// SetPorts replaces the open ports of an existing row
func (t *HostTable) SetPorts(ip netip.Addr, ports []host.Port) {
	r, ok := t.records[ip]

	if !ok {
		return
	}

	r.Ports = slices.Clone(ports)
	t.records[ip] = r
	t.render()
}

// ToggleShowAll switches between live hosts only and every probed host.
// Returns true when every host is shown.
func (t *HostTable) ToggleShowAll() bool {
	t.showAll = !t.showAll
	t.render()

	return t.showAll
}

// AddPort appends an open port to an existing row
func (t *HostTable) AddPort(ip netip.Addr, port host.Port) {
	r, ok := t.records[ip]

	if !ok {
		return
	}

	r.Ports = slices.Clone(r.Ports)

	if r.AddPort(port) {
		t.records[ip] = r
		t.render()
	}
}

// Len returns the number of visible rows
func (t *HostTable) Len() int {
	return len(t.visible)
}

// Selected returns the record of the selected row
func (t *HostTable) Selected() (host.Record, bool) {
	row, _ := t.table.GetSelection()

	idx := row - 2

	if idx < 0 || idx >= len(t.visible) {
		return host.Record{}, false
	}

	return t.records[t.visible[idx]], true
}

func (t *HostTable) insert(r host.Record) {
	if _, ok := t.records[r.IP]; !ok {
		idx, _ := slices.BinarySearchFunc(t.order, r.IP, func(a, b netip.Addr) int {
			return a.Compare(b)
		})
		t.order = slices.Insert(t.order, idx, r.IP)
	}

	t.records[r.IP] = r
}

func (t *HostTable) render() {
	t.visible = t.visible[:0]

	for _, ip := range t.order {
		r := t.records[ip]
		if t.showAll || r.Alive() {
			t.visible = append(t.visible, ip)
		}
	}

	for t.table.GetRowCount() > len(t.visible)+2 {
		t.table.RemoveRow(t.table.GetRowCount() - 1)
	}

	for i, ip := range t.visible {
		r := t.records[ip]

		row := []string{
			r.IP.String(),
			string(r.Status),
			formatRTT(r.RTT),
			r.Hostname,
			r.MAC,
			r.Vendor,
			formatPorts(r.Ports),
		}

		setRow(t.table, i+2, row, func(col int, text string) tcell.Color {
			if col == 1 && text == string(host.StatusOnline) {
				return style.ColorMediumGreen
			}

			if col == 1 && text == string(host.StatusOffline) {
				return style.ColorDimGrey
			}

			return style.ColorWhite
		})
	}
}

func formatRTT(rtt time.Duration) string {
	if rtt <= 0 {
		return ""
	}

	return fmt.Sprintf("%.1fms", float64(rtt)/float64(time.Millisecond))
}

func formatPorts(ports []host.Port) string {
	result := make([]string, 0, len(ports))

	for _, p := range ports {
		result = append(result, strconv.Itoa(int(p.ID)))
	}

	return strings.Join(result, ",")
}
