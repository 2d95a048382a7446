package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robgonnella/ipscannr/internal/cache"
	"github.com/robgonnella/ipscannr/internal/host"
)

// Format represents a supported export format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// FileName returns the default export file name for a point in time
func FileName(format Format, now time.Time) string {
	return fmt.Sprintf("ipscannr_export_%d.%s", now.Unix(), format)
}

func csvHeader() []string {
	return []string{"IP", "Status", "RTT (ms)", "Hostname", "MAC", "Vendor", "Ports"}
}

func csvRow(r host.Record) []string {
	rtt := ""

	if r.RTT > 0 {
		rtt = strconv.FormatFloat(float64(r.RTT)/float64(time.Millisecond), 'f', 1, 64)
	}

	ports := make([]string, 0, len(r.Ports))

	for _, p := range r.Ports {
		ports = append(ports, strconv.Itoa(int(p.ID)))
	}

	return []string{
		r.IP.String(),
		string(r.Status),
		rtt,
		r.Hostname,
		r.MAC,
		r.Vendor,
		strings.Join(ports, ";"),
	}
}

// CSV writes one row per record
func CSV(w io.Writer, records []host.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		if err := writer.Write(csvRow(r)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// JSON writes records as an indented array in their persisted form
func JSON(w io.Writer, records []host.Record) error {
	entry := cache.NewEntry("", "", nil, time.Time{}, time.Time{}, records)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(entry.Hosts); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

// Write dispatches to the writer for format
func Write(w io.Writer, format Format, records []host.Record) error {
	switch format {
	case FormatCSV:
		return CSV(w, records)
	case FormatJSON:
		return JSON(w, records)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}

// WriteFile creates path and writes records to it
func WriteFile(path string, format Format, records []host.Record) error {
	f, err := os.Create(path)

	if err != nil {
		return err
	}

	if err := Write(f, format, records); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
