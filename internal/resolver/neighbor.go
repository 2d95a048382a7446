package resolver

import (
	"bufio"
	"bytes"
	"context"
	"net/netip"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/robgonnella/ipscannr/internal/oui"
)

// ProcNetARP location of the linux neighbor table
const ProcNetARP = "/proc/net/arp"

// ProcTable reads the linux neighbor table from procfs
type ProcTable struct {
	path string
}

// NewProcTable returns a neighbor table reading the procfs file at path
func NewProcTable(path string) *ProcTable {
	return &ProcTable{path: path}
}

// Lookup implements NeighborTable
func (t *ProcTable) Lookup(ctx context.Context, ip netip.Addr) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(t.path)

	if err != nil {
		return "", err
	}

	return parseProcARP(data, ip), nil
}

// CommandTable shells out to the platform arp utility
type CommandTable struct {
	windows bool
}

// NewCommandTable returns a neighbor table backed by the arp command
func NewCommandTable() *CommandTable {
	return &CommandTable{windows: runtime.GOOS == "windows"}
}

// Lookup implements NeighborTable
func (t *CommandTable) Lookup(ctx context.Context, ip netip.Addr) (string, error) {
	flag := "-n"

	if t.windows {
		flag = "-a"
	}

	out, err := exec.CommandContext(ctx, "arp", flag, ip.String()).Output()

	if err != nil && len(out) == 0 {
		return "", err
	}

	return parseArpOutput(out, ip), nil
}

// DefaultNeighborTable returns the best neighbor table for this platform
func DefaultNeighborTable() NeighborTable {
	if runtime.GOOS == "linux" {
		if _, err := os.Stat(ProcNetARP); err == nil {
			return NewProcTable(ProcNetARP)
		}
	}

	return NewCommandTable()
}

// parseProcARP finds ip in /proc/net/arp content:
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0
func parseProcARP(data []byte, ip netip.Addr) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	target := ip.String()

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		if len(fields) < 4 || fields[0] != target {
			continue
		}

		// 0x0 incomplete entry
		if fields[2] == "0x0" {
			return ""
		}

		return fields[3]
	}

	return ""
}

// parseArpOutput finds the hardware address on the line describing ip in
// the output of "arp -n" (linux net-tools, BSD, macOS) or "arp -a" (windows)
func parseArpOutput(out []byte, ip netip.Addr) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	target := ip.String()

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		if !containsAddr(fields, target) {
			continue
		}

		for _, f := range fields {
			if _, ok := oui.NormalizeMAC(f); ok {
				return f
			}
		}
	}

	return ""
}

func containsAddr(fields []string, target string) bool {
	for _, f := range fields {
		if strings.Trim(f, "()") == target {
			return true
		}
	}

	return false
}
