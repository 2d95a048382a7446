package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robgonnella/ipscannr/internal/logger"
)

const namespace = "ipscannr"

// Metrics engine counters and gauges registered on a private registry.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry          *prometheus.Registry
	hostProbes        *prometheus.CounterVec
	portProbes        *prometheus.CounterVec
	scans             *prometheus.CounterVec
	discoveryInflight prometheus.Gauge
	portInflight      prometheus.Gauge
}

// New returns a new set of engine metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		hostProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_probes_total",
			Help:      "Host liveness probes by result",
		}, []string{"result"}),
		portProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "port_probes_total",
			Help:      "Port connect probes by result",
		}, []string{"result"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scans by outcome",
		}, []string{"outcome"}),
		discoveryInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovery_inflight",
			Help:      "Host probes currently executing",
		}),
		portInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "port_inflight",
			Help:      "Port probes currently executing",
		}),
	}

	m.registry.MustRegister(
		m.hostProbes,
		m.portProbes,
		m.scans,
		m.discoveryInflight,
		m.portInflight,
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

// HostProbeStarted marks a host probe in flight
func (m *Metrics) HostProbeStarted() {
	if m == nil {
		return
	}

	m.discoveryInflight.Inc()
}

// HostProbeFinished records the result of a host probe
func (m *Metrics) HostProbeFinished(alive bool) {
	if m == nil {
		return
	}

	m.discoveryInflight.Dec()
	m.hostProbes.WithLabelValues(result(alive, "online", "offline")).Inc()
}

// PortProbeStarted marks a port probe in flight
func (m *Metrics) PortProbeStarted() {
	if m == nil {
		return
	}

	m.portInflight.Inc()
}

// PortProbeFinished records the result of a port probe
func (m *Metrics) PortProbeFinished(open bool) {
	if m == nil {
		return
	}

	m.portInflight.Dec()
	m.portProbes.WithLabelValues(result(open, "open", "closed")).Inc()
}

// ScanFinished records a scan outcome (completed, cancelled, error)
func (m *Metrics) ScanFinished(outcome string) {
	if m == nil {
		return
	}

	m.scans.WithLabelValues(outcome).Inc()
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	log := logger.New()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("serving metrics")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}

	return no
}
