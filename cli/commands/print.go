package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/robgonnella/ipscannr/internal/history"
	"github.com/robgonnella/ipscannr/internal/host"
)

// printRecords renders the live hosts in records as a table
func printRecords(w io.Writer, records []host.Record) {
	table := tablewriter.NewWriter(w)
	table.Header("IP", "Status", "RTT", "Hostname", "MAC", "Vendor", "Ports")

	for _, r := range records {
		if !r.Alive() {
			continue
		}

		_ = table.Append([]string{
			r.IP.String(),
			color.GreenString(string(r.Status)),
			formatRTT(r.RTT),
			r.Hostname,
			r.MAC,
			r.Vendor,
			formatPorts(r.Ports),
		})
	}

	_ = table.Render()
}

// printSightings renders a host's scan history as a table
func printSightings(w io.Writer, sightings []*history.Sighting) {
	table := tablewriter.NewWriter(w)
	table.Header("Seen", "Range", "Hostname", "MAC", "Vendor", "Ports")

	for _, s := range sightings {
		ports, err := s.OpenPorts()

		if err != nil {
			ports = []host.Port{}
		}

		_ = table.Append([]string{
			s.SeenAt.Local().Format("2006-01-02 15:04:05"),
			s.RangeKey,
			s.Hostname,
			s.MAC,
			s.Vendor,
			formatPorts(ports),
		})
	}

	_ = table.Render()
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
		result = append(result, strconv.Itoa(int(p.ID))+"/"+p.Service)
	}

	return strings.Join(result, ", ")
}
