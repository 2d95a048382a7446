package wol

import (
	"bytes"
	"fmt"
	"net"

	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/oui"
)

// PacketSize length of a magic packet
const PacketSize = 102

// BroadcastAddr where magic packets are sent
const BroadcastAddr = "255.255.255.255:9"

// MagicPacket returns 6 bytes of 0xFF followed by the hardware address
// repeated 16 times
func MagicPacket(mac string) ([]byte, error) {
	normalized, ok := oui.NormalizeMAC(mac)

	if !ok {
		return nil, fmt.Errorf("invalid mac address: %q", mac)
	}

	hw, err := net.ParseMAC(normalized)

	if err != nil {
		return nil, err
	}

	packet := bytes.Repeat([]byte{0xFF}, 6)
	packet = append(packet, bytes.Repeat(hw, 16)...)

	return packet, nil
}

// Send broadcasts a magic packet for mac on the local network
func Send(mac string) error {
	return SendTo(mac, BroadcastAddr)
}

// SendTo sends a magic packet for mac to addr
func SendTo(mac, addr string) error {
	packet, err := MagicPacket(mac)

	if err != nil {
		return err
	}

	conn, err := net.Dial("udp4", addr)

	if err != nil {
		return err
	}

	defer conn.Close()

	if _, err := conn.Write(packet); err != nil {
		return err
	}

	logger.New().Info().Str("mac", mac).Str("addr", addr).Msg("sent wake-on-lan packet")

	return nil
}
