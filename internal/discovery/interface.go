package discovery

import (
	"context"
	"net"
	"net/netip"
)

//go:generate mockgen -destination=../mock/discovery/mock_discovery.go -package=mock_discovery . Dialer,Prober,Discoverer,PortScanner

// Dialer opens network connections, satisfied by *net.Dialer
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Gate blocks the launch of new probes while a scan is paused
type Gate interface {
	Wait(ctx context.Context) error
}

// Prober determines whether a single address is alive
type Prober interface {
	Probe(ctx context.Context, ip netip.Addr) *HostResult
}

// Discoverer classifies every target, streaming each result as soon as it
// is known
type Discoverer interface {
	Discover(ctx context.Context, targets []netip.Addr, gate Gate, results chan<- *HostResult) error
}

// PortScanner probes a list of ports on a live host, streaming each open
// port as soon as it is found
type PortScanner interface {
	ScanPorts(ctx context.Context, ip netip.Addr, ports []uint16, gate Gate, results chan<- *PortResult) error
}
