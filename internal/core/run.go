package core

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/robgonnella/ipscannr/internal/cache"
	"github.com/robgonnella/ipscannr/internal/discovery"
	"github.com/robgonnella/ipscannr/internal/event"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/resolver"
	"github.com/robgonnella/ipscannr/internal/targets"
)

type msgKind int

const (
	msgHostname msgKind = iota
	msgMAC
	msgPort
	msgHostDone
)

// hostMsg result of enriching a live host, sent back to the run loop
type hostMsg struct {
	kind     msgKind
	ip       netip.Addr
	hostname string
	mac      *resolver.MACInfo
	port     host.Port
}

// run drives a single session. It is the only writer of sess, workers
// report back over channels.
func (c *Core) run(
	ctx context.Context,
	gen uint64,
	sess *Session,
	g *gate,
	targetRange *targets.Range,
) {
	liveness := make(chan *discovery.HostResult, 256)
	enriched := make(chan *hostMsg, 256)
	discoverDone := make(chan error, 1)

	go func() {
		discoverDone <- c.discoverer.Discover(ctx, targetRange.Addrs, g, liveness)
	}()

	discovering := true
	pending := 0

	for {
		if !discovering && pending == 0 && len(liveness) == 0 {
			c.finish(ctx, gen, g)
			return
		}

		select {
		case <-ctx.Done():
			return
		case err := <-discoverDone:
			discovering = false

			if err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Str("session", sess.ID).Msg("discovery failed")
				c.update(gen, func(sess *Session) *event.Event {
					return c.newEvent(event.ScanError, event.ErrorPayload{
						Reason: fmt.Sprintf("discovery failed: %s", err),
						Err:    err,
					})
				})
			}
		case r := <-liveness:
			if c.handleLiveness(gen, r) {
				pending++
				go c.enrich(ctx, g, r.IP, sess.Ports, enriched)
			}
		case m := <-enriched:
			if m.kind == msgHostDone {
				pending--
			}

			c.handleHostMsg(gen, m)
		}
	}
}

// handleLiveness records a classification. Returns true when the host is
// alive and still needs enriching.
func (c *Core) handleLiveness(gen uint64, r *discovery.HostResult) bool {
	fresh := false

	c.update(gen, func(sess *Session) *event.Event {
		if existing, ok := sess.Hosts[r.IP]; ok && existing.Status != host.StatusUnknown {
			return nil
		}

		fresh = true

		rec := sess.record(r.IP)
		rec.Status = r.Status
		rec.Method = r.Method
		rec.RTT = r.RTT

		if r.Alive() {
			rec.LastSeen = time.Now()
		}

		return c.newEvent(event.HostLiveness, rec.Copy())
	})

	if !fresh {
		return false
	}

	if !r.Alive() {
		c.completeHost(gen, r.IP)
		return false
	}

	return true
}

func (c *Core) handleHostMsg(gen uint64, m *hostMsg) {
	if m.kind == msgHostDone {
		c.completeHost(gen, m.ip)
		return
	}

	c.update(gen, func(sess *Session) *event.Event {
		rec := sess.record(m.ip)

		switch m.kind {
		case msgHostname:
			rec.Hostname = m.hostname
			return c.newEvent(event.DNSResolved, rec.Copy())
		case msgMAC:
			rec.MAC = m.mac.MAC
			rec.Vendor = m.mac.Vendor
			return c.newEvent(event.MACResolved, rec.Copy())
		case msgPort:
			if !rec.AddPort(m.port) {
				return nil
			}

			return c.newEvent(event.PortOpen, event.PortPayload{IP: m.ip, Port: m.port})
		}

		return nil
	})
}

func (c *Core) completeHost(gen uint64, ip netip.Addr) {
	c.update(gen, func(sess *Session) *event.Event {
		sess.Done++
		return c.newEvent(event.HostCompleted, sess.record(ip).Copy())
	})
}

// enrich resolves the hostname and hardware address of a live host and
// scans its ports, reporting each finding in order followed by msgHostDone
func (c *Core) enrich(
	ctx context.Context,
	g *gate,
	ip netip.Addr,
	ports []uint16,
	out chan<- *hostMsg,
) {
	deliver := func(m *hostMsg) {
		select {
		case out <- m:
		case <-ctx.Done():
		}
	}

	defer deliver(&hostMsg{kind: msgHostDone, ip: ip})

	if c.dns != nil {
		if name, ok := c.dns.Resolve(ctx, ip); ok {
			deliver(&hostMsg{kind: msgHostname, ip: ip, hostname: name})
		}
	}

	if c.mac != nil {
		if info, ok := c.mac.Resolve(ctx, ip); ok {
			deliver(&hostMsg{kind: msgMAC, ip: ip, mac: info})
		}
	}

	if !c.opts.ScanPorts || c.portScanner == nil || len(ports) == 0 {
		return
	}

	results := make(chan *discovery.PortResult)

	go func() {
		defer close(results)

		if err := c.portScanner.ScanPorts(ctx, ip, ports, g, results); err != nil && ctx.Err() == nil {
			c.logger.Warn().Err(err).Str("ip", ip.String()).Msg("port scan failed")
		}
	}()

	for r := range results {
		deliver(&hostMsg{kind: msgPort, ip: ip, port: r.Port})
	}
}

// finish persists the session and marks it completed. A paused session
// is not completed until resumed.
func (c *Core) finish(ctx context.Context, gen uint64, g *gate) {
	var (
		entry   *cache.Entry
		records []host.Record
		id      string
		key     string
	)

	for {
		if err := g.Wait(ctx); err != nil {
			return
		}

		paused := false

		ok := c.update(gen, func(sess *Session) *event.Event {
			if c.state == StatePaused {
				paused = true
				return nil
			}

			sess.Finished = time.Now()
			records = sess.records()
			id = sess.ID
			key = sess.Range
			entry = cache.NewEntry(sess.Range, sess.ID, sess.Ports, sess.Started, sess.Finished, records)

			return nil
		})

		if !ok {
			return
		}

		if !paused {
			break
		}
	}

	if err := c.store.Save(entry); err != nil {
		c.logger.Error().Err(err).Str("session", id).Msg("failed to save scan results")

		c.update(gen, func(sess *Session) *event.Event {
			return c.newEvent(event.ScanError, event.ErrorPayload{
				Reason: fmt.Sprintf("failed to save results: %s", err),
				Err:    err,
			})
		})
	}

	if c.history != nil {
		if n, err := c.history.Record(id, key, records); err != nil {
			c.logger.Warn().Err(err).Msg("failed to record scan history")
		} else {
			c.logger.Debug().Int("sightings", n).Msg("scan history recorded")
		}
	}

	completed := c.update(gen, func(sess *Session) *event.Event {
		c.state = StateCompleted
		sess.State = StateCompleted

		return c.newEvent(event.ScanCompleted, sess.summary())
	})

	if completed {
		c.metrics.ScanFinished("completed")
		c.logger.Info().Str("session", id).Msg("Scan completed")
	}
}
