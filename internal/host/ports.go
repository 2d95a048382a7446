package host

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/robgonnella/ipscannr/internal/exception"
)

// CommonPorts default list of ports probed on live hosts
var CommonPorts = []uint16{
	21, 22, 23, 25, 53, 80, 110, 111, 135, 139, 143, 443, 445, 993, 995,
	1433, 1521, 3306, 3389, 5432, 5900, 6379, 8080, 8443, 27017,
}

// DiscoveryPorts ordered list of ports used to prove a host is alive
var DiscoveryPorts = []uint16{80, 443, 22, 445, 139, 135, 3389, 21, 23, 25, 53}

var services = map[uint16]string{
	21:    "ftp",
	22:    "ssh",
	23:    "telnet",
	25:    "smtp",
	53:    "dns",
	80:    "http",
	110:   "pop3",
	111:   "rpc",
	135:   "msrpc",
	139:   "netbios",
	143:   "imap",
	443:   "https",
	445:   "smb",
	993:   "imaps",
	995:   "pop3s",
	1433:  "mssql",
	1521:  "oracle",
	3306:  "mysql",
	3389:  "rdp",
	5432:  "postgres",
	5900:  "vnc",
	6379:  "redis",
	8080:  "http-alt",
	8443:  "https-alt",
	27017: "mongodb",
}

// ServiceName returns the well known service name for a port or "unknown"
func ServiceName(port uint16) string {
	if name, ok := services[port]; ok {
		return name
	}

	return "unknown"
}

// ParsePorts parses a port list like "80,443,1000-2000" into a sorted,
// de-duplicated slice
func ParsePorts(list string) ([]uint16, error) {
	ports := []uint16{}

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)

		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := parsePort(lo)

			if err != nil {
				return nil, fmt.Errorf("%w: %q: %s", exception.ErrInvalidPorts, part, err)
			}

			end, err := parsePort(hi)

			if err != nil {
				return nil, fmt.Errorf("%w: %q: %s", exception.ErrInvalidPorts, part, err)
			}

			if start > end {
				return nil, fmt.Errorf("%w: %q: reversed bounds", exception.ErrInvalidPorts, part)
			}

			for p := int(start); p <= int(end); p++ {
				ports = append(ports, uint16(p))
			}

			continue
		}

		p, err := parsePort(part)

		if err != nil {
			return nil, fmt.Errorf("%w: %q: %s", exception.ErrInvalidPorts, part, err)
		}

		ports = append(ports, p)
	}

	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: empty port list", exception.ErrInvalidPorts)
	}

	slices.Sort(ports)

	return slices.Compact(ports), nil
}

// FormatPorts renders ports using the same syntax ParsePorts accepts
func FormatPorts(ports []uint16) string {
	strs := make([]string, 0, len(ports))

	for _, p := range ports {
		strs = append(strs, strconv.Itoa(int(p)))
	}

	return strings.Join(strs, ",")
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))

	if err != nil {
		return 0, fmt.Errorf("not a number")
	}

	if n < 1 || n > 65535 {
		return 0, fmt.Errorf("out of range 1-65535")
	}

	return uint16(n), nil
}
