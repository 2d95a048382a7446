package discovery

import (
	"context"
	"net/netip"
	"sync"
	"time"

	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// TCPPortScanner probes ports with full TCP connects. The worker limit is
// shared by every host scanned through the same instance.
type TCPPortScanner struct {
	dialer  Dialer
	timeout time.Duration
	sem     *semaphore.Weighted
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewTCPPortScanner returns a new TCPPortScanner
func NewTCPPortScanner(
	dialer Dialer,
	timeout time.Duration,
	workers int,
	m *metrics.Metrics,
) *TCPPortScanner {
	return &TCPPortScanner{
		dialer:  dialer,
		timeout: timeout,
		sem:     semaphore.NewWeighted(int64(workers)),
		metrics: m,
		log:     logger.New(),
	}
}

// ScanPorts implements PortScanner
func (s *TCPPortScanner) ScanPorts(
	ctx context.Context,
	ip netip.Addr,
	ports []uint16,
	gate Gate,
	results chan<- *PortResult,
) error {
	s.log.Debug().Str("ip", ip.String()).Int("ports", len(ports)).Msg("Scanning ports")

	wg := sync.WaitGroup{}

	defer wg.Wait()

	for _, port := range ports {
		if err := waitGate(ctx, gate); err != nil {
			return err
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			return err
		}

		wg.Add(1)

		go func(port uint16) {
			defer wg.Done()

			s.metrics.PortProbeStarted()

			// only a completed handshake counts as open
			err := dial(ctx, s.dialer, ip, port, s.timeout)

			s.metrics.PortProbeFinished(err == nil)
			s.sem.Release(1)

			if err != nil || ctx.Err() != nil {
				return
			}

			select {
			case results <- &PortResult{IP: ip, Port: host.NewPort(port)}:
			case <-ctx.Done():
			}
		}(port)
	}

	return nil
}
