package discovery

import (
	"net/netip"
	"time"

	"github.com/robgonnella/ipscannr/internal/host"
)

// HostResult represents the liveness classification of a target
type HostResult struct {
	IP     netip.Addr
	Status host.Status
	Method host.ProbeMethod
	RTT    time.Duration
}

// Alive returns true if the host answered any probe
func (r *HostResult) Alive() bool {
	return r.Status == host.StatusOnline
}

// PortResult represents an open port found on a host
type PortResult struct {
	IP   netip.Addr
	Port host.Port
}
