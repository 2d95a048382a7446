package util

import (
	"errors"
	"net"
	"net/netip"
	"os"

	"github.com/jackpal/gateway"
	"github.com/robgonnella/ipscannr/internal/config"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/targets"
)

type NetworkInfo struct {
	Hostname  string
	Interface *net.Interface
	Gateway   netip.Addr
	UserIP    netip.Addr
	Prefix    netip.Prefix
}

// Range returns the scannable range of the local network
func (n *NetworkInfo) Range() string {
	return RangeForPrefix(n.Prefix)
}

// RangeForPrefix masks prefix to its network address. Networks larger than
// the scanner accepts are narrowed to the /24 holding the address.
func RangeForPrefix(prefix netip.Prefix) string {
	bits := prefix.Bits()

	if bits < targets.MinPrefixBits {
		bits = 24
	}

	return netip.PrefixFrom(prefix.Addr(), bits).Masked().String()
}

// get network interface associated with ip
func getIPNetByIP(ip netip.Addr) (*net.Interface, netip.Prefix, error) {
	interfaces, err := net.Interfaces()

	if err != nil {
		return nil, netip.Prefix{}, err
	}

	for _, iface := range interfaces {
		addrs, err := iface.Addrs()

		if err != nil {
			continue
		}

		for _, addr := range addrs {
			prefix, err := netip.ParsePrefix(addr.String())

			if err != nil {
				continue
			}

			if prefix.Contains(ip) {
				return &iface, netip.PrefixFrom(ip, prefix.Bits()), nil
			}
		}
	}

	return nil, netip.Prefix{}, errors.New("failed to find IPNet")
}

// GetNetworkInfo returns the preferred outbound address of this machine
// and the network it belongs to
func GetNetworkInfo() (*NetworkInfo, error) {
	gw, err := gateway.DiscoverGateway()

	if err != nil {
		return nil, err
	}

	hostname, err := os.Hostname()

	if err != nil {
		return nil, err
	}

	// udp doesn't make a full connection and will find the default ip
	// that traffic will use if say 2 are configured (wired and wireless)
	conn, err := net.Dial("udp4", net.JoinHostPort(gw.String(), "80"))

	if err != nil {
		return nil, err
	}

	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)

	userIP, ok := netip.AddrFromSlice(localAddr.IP)

	if !ok {
		return nil, errors.New("failed to parse local address")
	}

	userIP = userIP.Unmap()

	iface, prefix, err := getIPNetByIP(userIP)

	if err != nil {
		return nil, err
	}

	gwAddr, _ := netip.AddrFromSlice(gw)

	return &NetworkInfo{
		Hostname:  hostname,
		Interface: iface,
		Gateway:   gwAddr.Unmap(),
		UserIP:    userIP,
		Prefix:    prefix,
	}, nil
}

// DefaultRange returns the local network range, or the fallback range
// when the network cannot be detected
func DefaultRange() string {
	info, err := GetNetworkInfo()

	if err != nil {
		logger.New().Debug().Err(err).Msg("failed to detect local network")
		return config.FallbackRange
	}

	return info.Range()
}
