package discovery

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/robgonnella/ipscannr/internal/logger"
	"golang.org/x/net/icmp"
)

var echoPayload = []byte("ipscannr")

type echoKey struct {
	ip  netip.Addr
	seq uint16
}

// Pinger sends ICMP echo requests over an unprivileged datagram socket
// and matches replies to waiting callers
type Pinger struct {
	conn    *icmp.PacketConn
	id      uint16
	mux     sync.Mutex
	seq     uint16
	pending map[echoKey]chan time.Time
	done    chan struct{}
	log     logger.Logger
}

// NewPinger opens the ICMP socket and starts reading replies. It returns
// an error when the platform does not allow unprivileged ICMP, in which
// case callers should fall back to TCP probing alone.
func NewPinger() (*Pinger, error) {
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")

	if err != nil {
		return nil, err
	}

	p := &Pinger{
		conn:    conn,
		id:      uint16(os.Getpid() & 0xffff),
		pending: map[echoKey]chan time.Time{},
		done:    make(chan struct{}),
		log:     logger.New(),
	}

	go p.readLoop()

	return p, nil
}

// Ping sends a single echo request and waits for the reply or ctx
func (p *Pinger) Ping(ctx context.Context, ip netip.Addr) (time.Duration, bool) {
	if !ip.Is4() {
		return 0, false
	}

	reply := make(chan time.Time, 1)

	p.mux.Lock()
	p.seq++
	key := echoKey{ip: ip, seq: p.seq}
	p.pending[key] = reply
	p.mux.Unlock()

	defer func() {
		p.mux.Lock()
		delete(p.pending, key)
		p.mux.Unlock()
	}()

	msg, err := encodeEcho(p.id, key.seq, echoPayload)

	if err != nil {
		p.log.Error().Err(err).Msg("failed to encode echo request")
		return 0, false
	}

	start := time.Now()

	if _, err := p.conn.WriteTo(msg, &net.UDPAddr{IP: ip.AsSlice()}); err != nil {
		p.log.Debug().Err(err).Str("ip", ip.String()).Msg("echo request failed")
		return 0, false
	}

	select {
	case at := <-reply:
		return at.Sub(start), true
	case <-ctx.Done():
		return 0, false
	case <-p.done:
		return 0, false
	}
}

// Close stops the read loop and closes the socket
func (p *Pinger) Close() error {
	select {
	case <-p.done:
		return nil
	default:
		close(p.done)
	}

	return p.conn.Close()
}

func (p *Pinger) readLoop() {
	buf := make([]byte, 1500)

	for {
		n, peer, err := p.conn.ReadFrom(buf)

		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-p.done:
				return
			default:
				continue
			}
		}

		at := time.Now()

		seq, ok := decodeEchoReply(buf[:n])

		if !ok {
			continue
		}

		udp, ok := peer.(*net.UDPAddr)

		if !ok {
			continue
		}

		ip, ok := netip.AddrFromSlice(udp.IP)

		if !ok {
			continue
		}

		p.mux.Lock()
		reply, found := p.pending[echoKey{ip: ip.Unmap(), seq: seq}]
		p.mux.Unlock()

		if !found {
			continue
		}

		select {
		case reply <- at:
		default:
		}
	}
}

func encodeEcho(id, seq uint16, payload []byte) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()

	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}

	echo := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
		Id:       id,
		Seq:      seq,
	}

	if err := gopacket.SerializeLayers(buf, opts, echo, gopacket.Payload(payload)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decodeEchoReply returns the sequence number of an echo reply. The id is
// not checked since datagram sockets rewrite it.
func decodeEchoReply(b []byte) (uint16, bool) {
	packet := gopacket.NewPacket(b, layers.LayerTypeICMPv4, gopacket.NoCopy)

	layer := packet.Layer(layers.LayerTypeICMPv4)

	if layer == nil {
		return 0, false
	}

	echo, ok := layer.(*layers.ICMPv4)

	if !ok || echo.TypeCode.Type() != layers.ICMPv4TypeEchoReply {
		return 0, false
	}

	return echo.Seq, true
}
