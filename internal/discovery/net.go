package discovery

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// batchSize number of discovery ports dialed at once per host
const batchSize = 4

// HostScanner runs a Prober against many targets with a hard limit on the
// number of in-flight probes
type HostScanner struct {
	prober  Prober
	sem     *semaphore.Weighted
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewHostScanner returns a new HostScanner limited to workers concurrent
// probes
func NewHostScanner(prober Prober, workers int, m *metrics.Metrics) *HostScanner {
	return &HostScanner{
		prober:  prober,
		sem:     semaphore.NewWeighted(int64(workers)),
		metrics: m,
		log:     logger.New(),
	}
}

// Discover implements Discoverer. It returns once every launched probe
// has finished, or early with ctx's error when cancelled.
func (s *HostScanner) Discover(
	ctx context.Context,
	targets []netip.Addr,
	gate Gate,
	results chan<- *HostResult,
) error {
	s.log.Info().Int("targets", len(targets)).Msg("Scanning network...")

	wg := sync.WaitGroup{}

	defer wg.Wait()

	for _, ip := range targets {
		if err := waitGate(ctx, gate); err != nil {
			return err
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			return err
		}

		wg.Add(1)

		go func(ip netip.Addr) {
			defer wg.Done()

			s.metrics.HostProbeStarted()

			r := s.prober.Probe(ctx, ip)

			s.metrics.HostProbeFinished(r.Alive())
			s.sem.Release(1)

			if ctx.Err() != nil {
				return
			}

			select {
			case results <- r:
			case <-ctx.Done():
			}
		}(ip)
	}

	return nil
}

// NetProber decides liveness with TCP connect probes to a list of
// commonly open ports, racing an ICMP echo when a Pinger is available
type NetProber struct {
	dialer       Dialer
	pinger       *Pinger
	ports        []uint16
	probeTimeout time.Duration
	hostTimeout  time.Duration
	log          logger.Logger
}

// NewNetProber returns a new NetProber. pinger may be nil.
func NewNetProber(
	dialer Dialer,
	pinger *Pinger,
	ports []uint16,
	probeTimeout time.Duration,
	hostTimeout time.Duration,
) *NetProber {
	return &NetProber{
		dialer:       dialer,
		pinger:       pinger,
		ports:        ports,
		probeTimeout: probeTimeout,
		hostTimeout:  hostTimeout,
		log:          logger.New(),
	}
}

// Probe implements Prober
func (p *NetProber) Probe(ctx context.Context, ip netip.Addr) *HostResult {
	hostCtx, cancel := context.WithTimeout(ctx, p.hostTimeout)
	defer cancel()

	p.log.Debug().Str("ip", ip.String()).Msg("Scanning target")

	found := make(chan *HostResult, 2)
	wg := sync.WaitGroup{}

	if p.pinger != nil {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if rtt, ok := p.pinger.Ping(hostCtx, ip); ok {
				found <- &HostResult{IP: ip, Status: host.StatusOnline, Method: host.MethodICMP, RTT: rtt}
			}
		}()
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		if rtt, ok := p.tcpProbe(hostCtx, ip); ok {
			found <- &HostResult{IP: ip, Status: host.StatusOnline, Method: host.MethodTCP, RTT: rtt}
		}
	}()

	go func() {
		wg.Wait()
		close(found)
	}()

	if r, ok := <-found; ok {
		return r
	}

	return &HostResult{IP: ip, Status: host.StatusOffline}
}

// tcpProbe dials the discovery ports in order, batchSize at a time, until
// one answers
func (p *NetProber) tcpProbe(ctx context.Context, ip netip.Addr) (time.Duration, bool) {
	for i := 0; i < len(p.ports); i += batchSize {
		end := min(i+batchSize, len(p.ports))

		if rtt, ok := p.dialBatch(ctx, ip, p.ports[i:end]); ok {
			return rtt, true
		}

		if ctx.Err() != nil {
			return 0, false
		}
	}

	return 0, false
}

func (p *NetProber) dialBatch(ctx context.Context, ip netip.Addr, ports []uint16) (time.Duration, bool) {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	answered := make(chan time.Duration, len(ports))
	wg := sync.WaitGroup{}

	for _, port := range ports {
		wg.Add(1)

		go func(port uint16) {
			defer wg.Done()

			start := time.Now()

			if err := dial(batchCtx, p.dialer, ip, port, p.probeTimeout); hostAnswered(err) {
				answered <- time.Since(start)
			}
		}(port)
	}

	go func() {
		wg.Wait()
		close(answered)
	}()

	rtt, ok := <-answered

	return rtt, ok
}

func dial(ctx context.Context, dialer Dialer, ip netip.Addr, port uint16, timeout time.Duration) error {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", netip.AddrPortFrom(ip, port).String())

	if err != nil {
		return err
	}

	return conn.Close()
}

// hostAnswered a refused connection still proves the host is up
func hostAnswered(err error) bool {
	if err == nil {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	return strings.HasSuffix(err.Error(), "connection refused")
}

func waitGate(ctx context.Context, gate Gate) error {
	if gate == nil {
		return ctx.Err()
	}

	return gate.Wait(ctx)
}
