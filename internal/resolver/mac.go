package resolver

import (
	"context"
	"net/netip"

	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/oui"
)

const (
	incompleteMAC = "00:00:00:00:00:00"
	broadcastMAC  = "FF:FF:FF:FF:FF:FF"
)

// MAC resolves hardware addresses from the OS neighbor table and joins
// them against the vendor table
type MAC struct {
	table   NeighborTable
	vendors *oui.Table
	log     logger.Logger
}

// NewMAC returns a new MAC resolver
func NewMAC(table NeighborTable, vendors *oui.Table) *MAC {
	return &MAC{
		table:   table,
		vendors: vendors,
		log:     logger.New(),
	}
}

// Resolve returns the MAC and vendor for ip. A missing neighbor entry is
// not an error, it simply yields false.
func (m *MAC) Resolve(ctx context.Context, ip netip.Addr) (*MACInfo, bool) {
	raw, err := m.table.Lookup(ctx, ip)

	if err != nil {
		m.log.Debug().Err(err).Str("ip", ip.String()).Msg("neighbor table lookup failed")
		return nil, false
	}

	mac, ok := oui.NormalizeMAC(raw)

	if !ok || mac == incompleteMAC || mac == broadcastMAC {
		return nil, false
	}

	vendor, _ := m.vendors.Lookup(mac)

	return &MACInfo{MAC: mac, Vendor: vendor}, true
}
