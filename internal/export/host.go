package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/robgonnella/ipscannr/internal/host"
)

// HostFileName returns the default file name for a single host's details
func HostFileName(r host.Record) string {
	return fmt.Sprintf("ipscannr_host_%s.txt", r.IP)
}

// HostDetails writes a plain text summary of one host
func HostDetails(w io.Writer, r host.Record) error {
	b := strings.Builder{}

	status := "Offline"

	if r.Alive() {
		status = "Online"
	}

	fmt.Fprintf(&b, "IP:     %s\n", r.IP)
	fmt.Fprintf(&b, "Status: %s\n", status)

	if r.RTT > 0 {
		fmt.Fprintf(&b, "RTT:    %dms\n", r.RTT.Milliseconds())
	}

	if r.Hostname != "" {
		fmt.Fprintf(&b, "Host:   %s\n", r.Hostname)
	}

	if r.MAC != "" {
		fmt.Fprintf(&b, "MAC:    %s\n", r.MAC)

		if r.Vendor != "" {
			fmt.Fprintf(&b, "Vendor: %s\n", r.Vendor)
		}
	}

	if len(r.Ports) > 0 {
		b.WriteString("\nOpen Ports:\n")

		for _, p := range r.Ports {
			if p.Service != "" {
				fmt.Fprintf(&b, "  %d (%s)\n", p.ID, p.Service)
				continue
			}

			fmt.Fprintf(&b, "  %d\n", p.ID)
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// SaveHost writes a host's details to HostFileName in dir and returns the
// path written
func SaveHost(dir string, r host.Record) (string, error) {
	path := filepath.Join(dir, HostFileName(r))

	f, err := os.Create(path)

	if err != nil {
		return "", err
	}

	if err := HostDetails(f, r); err != nil {
		f.Close()
		return "", err
	}

	return path, f.Close()
}

