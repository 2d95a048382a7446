package cache

import (
	"fmt"
	"math"
	"net/netip"
	"slices"
	"time"

	"github.com/robgonnella/ipscannr/internal/host"
)

// HostEntry persisted form of a host.Record
type HostEntry struct {
	IP        string           `json:"ip"`
	Alive     bool             `json:"is_alive"`
	Status    host.Status      `json:"status"`
	Method    host.ProbeMethod `json:"method,omitempty"`
	RTTMillis float64          `json:"rtt_ms,omitempty"`
	Hostname  string           `json:"hostname,omitempty"`
	MAC       string           `json:"mac_address,omitempty"`
	Vendor    string           `json:"mac_vendor,omitempty"`
	OpenPorts []host.Port      `json:"open_ports"`
	LastSeen  time.Time        `json:"last_seen"`
}

// Entry persisted snapshot of a single scan session
type Entry struct {
	Range     string      `json:"range"`
	SessionID string      `json:"session_id"`
	Ports     []uint16    `json:"ports"`
	Started   time.Time   `json:"started"`
	Finished  time.Time   `json:"finished"`
	Hosts     []HostEntry `json:"hosts"`
}

// NewEntry builds a cache entry from a finished session's records
func NewEntry(
	key string,
	sessionID string,
	ports []uint16,
	started time.Time,
	finished time.Time,
	records []host.Record,
) *Entry {
	hosts := make([]HostEntry, 0, len(records))

	for _, r := range records {
		hosts = append(hosts, HostEntry{
			IP:        r.IP.String(),
			Alive:     r.Alive(),
			Status:    r.Status,
			Method:    r.Method,
			RTTMillis: float64(r.RTT) / float64(time.Millisecond),
			Hostname:  r.Hostname,
			MAC:       r.MAC,
			Vendor:    r.Vendor,
			OpenPorts: slices.Clone(r.Ports),
			LastSeen:  normalizeTime(r.LastSeen),
		})
	}

	return &Entry{
		Range:     key,
		SessionID: sessionID,
		Ports:     slices.Clone(ports),
		Started:   normalizeTime(started),
		Finished:  normalizeTime(finished),
		Hosts:     hosts,
	}
}

// Records converts the entry back into host records
func (e *Entry) Records() ([]host.Record, error) {
	records := make([]host.Record, 0, len(e.Hosts))

	for _, h := range e.Hosts {
		ip, err := netip.ParseAddr(h.IP)

		if err != nil {
			return nil, fmt.Errorf("invalid cached host address %q: %w", h.IP, err)
		}

		ports := slices.Clone(h.OpenPorts)

		if ports == nil {
			ports = []host.Port{}
		}

		status := h.Status

		if status == "" {
			status = host.StatusOffline

			if h.Alive {
				status = host.StatusOnline
			}
		}

		records = append(records, host.Record{
			IP:       ip,
			Status:   status,
			Method:   h.Method,
			RTT:      time.Duration(math.Round(h.RTTMillis * float64(time.Millisecond))),
			Ports:    ports,
			Hostname: h.Hostname,
			MAC:      h.MAC,
			Vendor:   h.Vendor,
			LastSeen: h.LastSeen,
		})
	}

	return records, nil
}

// Online returns the number of live hosts in the entry
func (e *Entry) Online() int {
	count := 0

	for _, h := range e.Hosts {
		if h.Alive {
			count++
		}
	}

	return count
}

func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	return t.UTC().Round(0)
}
