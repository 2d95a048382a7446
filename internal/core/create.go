package core

import (
	"net"

	"github.com/robgonnella/ipscannr/internal/cache"
	"github.com/robgonnella/ipscannr/internal/config"
	"github.com/robgonnella/ipscannr/internal/discovery"
	"github.com/robgonnella/ipscannr/internal/history"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/metrics"
	"github.com/robgonnella/ipscannr/internal/oui"
	"github.com/robgonnella/ipscannr/internal/resolver"
	"github.com/spf13/viper"
)

// CreateNewAppCore creates and returns a new instance of *core.Core wired
// to the real network
func CreateNewAppCore(conf *config.Config, m *metrics.Metrics) (*Core, error) {
	log := logger.New()

	cachePath, err := cache.ResolvePath(viper.GetString("cache-file"))

	if err != nil {
		return nil, err
	}

	store := cache.NewJSONStore(cachePath)

	dialer := &net.Dialer{}

	options := []Option{WithMetrics(m)}

	var pinger *discovery.Pinger

	if conf.ICMP {
		pinger, err = discovery.NewPinger()

		if err != nil {
			log.Debug().Err(err).Msg("icmp unavailable, using tcp probes only")
			pinger = nil
		} else {
			options = append(options, WithCloser(pinger))
		}
	}

	prober := discovery.NewNetProber(
		dialer,
		pinger,
		conf.DiscoveryPorts,
		conf.ProbeTimeout,
		conf.HostTimeout,
	)

	hostScanner := discovery.NewHostScanner(prober, conf.DiscoveryWorkers, m)

	portScanner := discovery.NewTCPPortScanner(
		dialer,
		conf.PortTimeout,
		conf.PortWorkers,
		m,
	)

	if conf.ResolveHostnames {
		options = append(
			options,
			WithHostnameResolver(resolver.NewDNS(conf.DNSTimeout, conf.DNSWorkers)),
		)
	}

	if conf.DetectMAC {
		options = append(
			options,
			WithMACResolver(resolver.NewMAC(resolver.DefaultNeighborTable(), oui.Default())),
		)
	}

	if conf.History {
		repo, err := history.NewSqliteDatabase(viper.GetString("database-file"))

		if err != nil {
			log.Warn().Err(err).Msg("scan history disabled")
		} else {
			options = append(options, WithHistory(history.NewService(repo)))
		}
	}

	return New(
		Options{
			Ports:     conf.Ports,
			ScanPorts: conf.ScanPorts,
		},
		hostScanner,
		portScanner,
		store,
		options...,
	), nil
}
