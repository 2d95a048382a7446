package discovery_test

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/robgonnella/ipscannr/internal/discovery"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/metrics"
	mock_discovery "github.com/robgonnella/ipscannr/internal/mock/discovery"
	"github.com/stretchr/testify/assert"
)

type inFlight struct {
	current atomic.Int64
	max     atomic.Int64
}

func (f *inFlight) enter() {
	n := f.current.Add(1)

	for {
		m := f.max.Load()

		if n <= m || f.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (f *inFlight) leave() {
	f.current.Add(-1)
}

// fakeDialer answers open ports, refuses refused ports and lets everything
// else hang until the dial context expires
type fakeDialer struct {
	inFlight
	open    map[uint16]bool
	refused map[uint16]bool
	delay   time.Duration
}

func (d *fakeDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.enter()
	defer d.leave()

	ap, err := netip.ParseAddrPort(address)

	if err != nil {
		return nil, err
	}

	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	switch {
	case d.open[ap.Port()]:
		client, server := net.Pipe()
		server.Close()
		return client, nil
	case d.refused[ap.Port()]:
		return nil, &net.OpError{
			Op:  "dial",
			Net: network,
			Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
		}
	}

	<-ctx.Done()

	return nil, ctx.Err()
}

type errGate struct {
	err error
}

func (g errGate) Wait(ctx context.Context) error {
	return g.err
}

func addrs(n int) []netip.Addr {
	result := []netip.Addr{}
	ip := netip.MustParseAddr("10.0.0.1")

	for i := 0; i < n; i++ {
		result = append(result, ip)
		ip = ip.Next()
	}

	return result
}

func TestHostScanner(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	t.Run("never exceeds worker limit", func(st *testing.T) {
		mockProber := mock_discovery.NewMockProber(ctrl)
		tracker := &inFlight{}
		targets := addrs(30)
		results := make(chan *discovery.HostResult, len(targets))

		mockProber.EXPECT().Probe(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, ip netip.Addr) *discovery.HostResult {
				tracker.enter()
				defer tracker.leave()
				time.Sleep(5 * time.Millisecond)
				return &discovery.HostResult{IP: ip, Status: host.StatusOffline}
			}).
			Times(len(targets))

		scanner := discovery.NewHostScanner(mockProber, 5, metrics.New())

		err := scanner.Discover(context.Background(), targets, nil, results)

		assert.NoError(st, err)
		assert.Len(st, results, len(targets))
		assert.LessOrEqual(st, tracker.max.Load(), int64(5))
	})

	t.Run("streams every result", func(st *testing.T) {
		mockProber := mock_discovery.NewMockProber(ctrl)
		targets := addrs(4)
		results := make(chan *discovery.HostResult, len(targets))

		mockProber.EXPECT().Probe(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, ip netip.Addr) *discovery.HostResult {
				if ip == targets[2] {
					return &discovery.HostResult{IP: ip, Status: host.StatusOnline, Method: host.MethodTCP}
				}
				return &discovery.HostResult{IP: ip, Status: host.StatusOffline}
			}).
			Times(len(targets))

		scanner := discovery.NewHostScanner(mockProber, 2, nil)

		err := scanner.Discover(context.Background(), targets, nil, results)

		assert.NoError(st, err)

		close(results)

		online := []netip.Addr{}
		count := 0

		for r := range results {
			count++
			if r.Alive() {
				online = append(online, r.IP)
			}
		}

		assert.Equal(st, len(targets), count)
		assert.Equal(st, []netip.Addr{targets[2]}, online)
	})

	t.Run("stops launching when cancelled", func(st *testing.T) {
		mockProber := mock_discovery.NewMockProber(ctrl)
		results := make(chan *discovery.HostResult, 10)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		scanner := discovery.NewHostScanner(mockProber, 2, nil)

		err := scanner.Discover(ctx, addrs(10), nil, results)

		assert.ErrorIs(st, err, context.Canceled)
		assert.Len(st, results, 0)
	})

	t.Run("returns gate error", func(st *testing.T) {
		mockProber := mock_discovery.NewMockProber(ctrl)
		results := make(chan *discovery.HostResult, 10)
		gateErr := errors.New("gate closed")

		scanner := discovery.NewHostScanner(mockProber, 2, nil)

		err := scanner.Discover(context.Background(), addrs(10), errGate{err: gateErr}, results)

		assert.ErrorIs(st, err, gateErr)
	})
}

func TestNetProber(t *testing.T) {
	ip := netip.MustParseAddr("10.0.0.7")

	t.Run("refused connection means online", func(st *testing.T) {
		dialer := &fakeDialer{refused: map[uint16]bool{22: true}}

		prober := discovery.NewNetProber(
			dialer,
			nil,
			host.DiscoveryPorts,
			50*time.Millisecond,
			time.Second,
		)

		r := prober.Probe(context.Background(), ip)

		assert.Equal(st, ip, r.IP)
		assert.Equal(st, host.StatusOnline, r.Status)
		assert.Equal(st, host.MethodTCP, r.Method)
	})

	t.Run("accepted connection means online", func(st *testing.T) {
		dialer := &fakeDialer{open: map[uint16]bool{443: true}}

		prober := discovery.NewNetProber(
			dialer,
			nil,
			host.DiscoveryPorts,
			50*time.Millisecond,
			time.Second,
		)

		r := prober.Probe(context.Background(), ip)

		assert.True(st, r.Alive())
	})

	t.Run("silent host is offline every time", func(st *testing.T) {
		dialer := &fakeDialer{}

		prober := discovery.NewNetProber(
			dialer,
			nil,
			host.DiscoveryPorts,
			10*time.Millisecond,
			200*time.Millisecond,
		)

		first := prober.Probe(context.Background(), ip)
		second := prober.Probe(context.Background(), ip)

		assert.Equal(st, host.StatusOffline, first.Status)
		assert.Equal(st, host.MethodNone, first.Method)
		assert.Equal(st, first, second)
	})

	t.Run("limits dials per host", func(st *testing.T) {
		dialer := &fakeDialer{}

		prober := discovery.NewNetProber(
			dialer,
			nil,
			host.DiscoveryPorts,
			10*time.Millisecond,
			200*time.Millisecond,
		)

		prober.Probe(context.Background(), ip)

		assert.LessOrEqual(st, dialer.max.Load(), int64(discovery.BatchSize))
	})
}

func TestTCPPortScanner(t *testing.T) {
	ip := netip.MustParseAddr("10.0.0.9")

	t.Run("reports only open ports", func(st *testing.T) {
		dialer := &fakeDialer{
			open:    map[uint16]bool{22: true, 80: true},
			refused: map[uint16]bool{21: true},
		}

		results := make(chan *discovery.PortResult, 10)

		scanner := discovery.NewTCPPortScanner(dialer, 20*time.Millisecond, 2, metrics.New())

		err := scanner.ScanPorts(context.Background(), ip, []uint16{21, 22, 80, 443}, nil, results)

		assert.NoError(st, err)

		close(results)

		found := []int{}

		for r := range results {
			assert.Equal(st, ip, r.IP)
			found = append(found, int(r.Port.ID))
		}

		sort.Ints(found)

		assert.Equal(st, []int{22, 80}, found)
	})

	t.Run("never exceeds worker limit", func(st *testing.T) {
		dialer := &fakeDialer{
			open:  map[uint16]bool{},
			delay: 2 * time.Millisecond,
		}

		ports := []uint16{}

		for p := uint16(1); p <= 40; p++ {
			dialer.open[p] = true
			ports = append(ports, p)
		}

		results := make(chan *discovery.PortResult, len(ports))

		scanner := discovery.NewTCPPortScanner(dialer, 50*time.Millisecond, 3, nil)

		wg := sync.WaitGroup{}

		// two hosts share the same limit
		for _, target := range []netip.Addr{ip, ip.Next()} {
			wg.Add(1)
			go func(target netip.Addr) {
				defer wg.Done()
				scanner.ScanPorts(context.Background(), target, ports[:20], nil, results)
			}(target)
		}

		wg.Wait()

		assert.Len(st, results, 40)
		assert.LessOrEqual(st, dialer.max.Load(), int64(3))
	})
}

func TestEchoCodec(t *testing.T) {
	t.Run("request is not taken for a reply", func(st *testing.T) {
		msg, err := discovery.EncodeEcho(7, 3, []byte("hi"))

		assert.NoError(st, err)

		_, ok := discovery.DecodeEchoReply(msg)

		assert.False(st, ok)
	})

	t.Run("decodes reply sequence", func(st *testing.T) {
		buf := gopacket.NewSerializeBuffer()

		reply := &layers.ICMPv4{
			TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoReply, 0),
			Id:       99,
			Seq:      42,
		}

		err := gopacket.SerializeLayers(
			buf,
			gopacket.SerializeOptions{ComputeChecksums: true},
			reply,
			gopacket.Payload([]byte("ipscannr")),
		)

		assert.NoError(st, err)

		seq, ok := discovery.DecodeEchoReply(buf.Bytes())

		assert.True(st, ok)
		assert.Equal(st, uint16(42), seq)
	})

	t.Run("ignores garbage", func(st *testing.T) {
		_, ok := discovery.DecodeEchoReply([]byte{0x01})

		assert.False(st, ok)
	})
}

func TestHostAnswered(t *testing.T) {
	refused := &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	assert.True(t, discovery.HostAnswered(nil))
	assert.True(t, discovery.HostAnswered(refused))
	assert.True(t, discovery.HostAnswered(errors.New("dial tcp 10.0.0.1:22: connection refused")))
	assert.False(t, discovery.HostAnswered(context.DeadlineExceeded))
}
