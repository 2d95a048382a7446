package oui

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

//go:embed oui.txt
var embedded []byte

// Table read-only mapping of MAC prefix (AA:BB:CC) to vendor name
type Table struct {
	vendors map[string]string
}

var (
	defaultTable *Table
	loadOnce     sync.Once
)

// Default returns the table built from the embedded vendor file. It is
// parsed once on first use.
func Default() *Table {
	loadOnce.Do(func() {
		t, err := Parse(embedded)

		if err != nil {
			panic(fmt.Sprintf("embedded oui table is invalid: %s", err))
		}

		defaultTable = t
	})

	return defaultTable
}

// Parse builds a table from tab separated "AA:BB:CC<TAB>vendor" lines.
// Blank lines and lines beginning with # are ignored.
func Parse(data []byte) (*Table, error) {
	vendors := map[string]string{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		prefix, vendor, ok := strings.Cut(line, "\t")

		if !ok || len(prefix) != 8 {
			return nil, fmt.Errorf("line %d: malformed entry %q", lineNo, line)
		}

		vendors[strings.ToUpper(prefix)] = strings.TrimSpace(vendor)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Table{vendors: vendors}, nil
}

// Len returns the number of known prefixes
func (t *Table) Len() int {
	return len(t.vendors)
}

// Lookup returns the vendor for the given MAC address in any common
// notation
func (t *Table) Lookup(mac string) (string, bool) {
	normalized, ok := NormalizeMAC(mac)

	if !ok {
		return "", false
	}

	vendor, ok := t.vendors[normalized[:8]]

	return vendor, ok
}

// NormalizeMAC returns mac as upper case, colon separated, zero padded
// hex (AA:BB:CC:DD:EE:FF). Accepts ":" or "-" separators with one or two
// digit groups as printed by various arp implementations, as well as
// anything net.ParseMAC understands.
func NormalizeMAC(mac string) (string, bool) {
	mac = strings.TrimSpace(mac)

	groups := strings.FieldsFunc(mac, func(r rune) bool {
		return r == ':' || r == '-'
	})

	if len(groups) == 6 {
		octets := make([]string, 0, 6)

		for _, g := range groups {
			if len(g) == 0 || len(g) > 2 {
				return "", false
			}

			n, err := strconv.ParseUint(g, 16, 8)

			if err != nil {
				return "", false
			}

			octets = append(octets, fmt.Sprintf("%02X", n))
		}

		return strings.Join(octets, ":"), true
	}

	hw, err := net.ParseMAC(mac)

	if err != nil || len(hw) != 6 {
		return "", false
	}

	return strings.ToUpper(hw.String()), true
}
