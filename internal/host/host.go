package host

import (
	"net/netip"
	"slices"
	"time"
)

// Status represents the liveness of a probed address
type Status string

// ProbeMethod represents the probe that first proved a host was alive
type ProbeMethod string

const (
	StatusUnknown Status = "unknown"
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"

	MethodNone ProbeMethod = ""
	MethodICMP ProbeMethod = "icmp"
	MethodTCP  ProbeMethod = "tcp"
)

// Port represents an open port with a hint at the service behind it
type Port struct {
	ID      uint16 `json:"port"`
	Service string `json:"service"`
}

// NewPort returns a Port with its service hint filled in
func NewPort(id uint16) Port {
	return Port{ID: id, Service: ServiceName(id)}
}

// Record represents everything learned about a single target address
type Record struct {
	IP       netip.Addr
	Status   Status
	Method   ProbeMethod
	RTT      time.Duration
	Ports    []Port
	Hostname string
	MAC      string
	Vendor   string
	LastSeen time.Time
}

// NewRecord returns a record for an address that has not been probed yet
func NewRecord(ip netip.Addr) *Record {
	return &Record{
		IP:     ip,
		Status: StatusUnknown,
		Ports:  []Port{},
	}
}

// Alive returns true if the record was found online
func (r *Record) Alive() bool {
	return r.Status == StatusOnline
}

// AddPort inserts port keeping Ports sorted and unique. Returns false if
// the port was already present.
func (r *Record) AddPort(port Port) bool {
	idx, found := slices.BinarySearchFunc(r.Ports, port.ID, func(p Port, id uint16) int {
		return int(p.ID) - int(id)
	})

	if found {
		return false
	}

	r.Ports = slices.Insert(r.Ports, idx, port)

	return true
}

// PortIDs returns just the port numbers of the record's open ports
func (r *Record) PortIDs() []uint16 {
	ids := make([]uint16, 0, len(r.Ports))

	for _, p := range r.Ports {
		ids = append(ids, p.ID)
	}

	return ids
}

// Copy returns a deep copy safe to hand to other goroutines
func (r *Record) Copy() Record {
	c := *r
	c.Ports = slices.Clone(r.Ports)

	if c.Ports == nil {
		c.Ports = []Port{}
	}

	return c
}
