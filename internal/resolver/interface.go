package resolver

import (
	"context"
	"net/netip"
)

//go:generate mockgen -destination=../mock/resolver/mock_resolver.go -package=mock_resolver . HostnameResolver,MACResolver,NeighborTable

// MACInfo hardware address and vendor of a host
type MACInfo struct {
	MAC    string
	Vendor string
}

// HostnameResolver reverse resolves addresses to hostnames
type HostnameResolver interface {
	Resolve(ctx context.Context, ip netip.Addr) (string, bool)
}

// MACResolver finds the hardware address and vendor of a host
type MACResolver interface {
	Resolve(ctx context.Context, ip netip.Addr) (*MACInfo, bool)
}

// NeighborTable returns the raw hardware address the OS has recorded for
// an ip, or "" when there is no entry
type NeighborTable interface {
	Lookup(ctx context.Context, ip netip.Addr) (string, error)
}
