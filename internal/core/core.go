package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/robgonnella/ipscannr/internal/cache"
	"github.com/robgonnella/ipscannr/internal/discovery"
	"github.com/robgonnella/ipscannr/internal/event"
	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/history"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/metrics"
	"github.com/robgonnella/ipscannr/internal/resolver"
	"github.com/robgonnella/ipscannr/internal/targets"
	"github.com/robgonnella/ipscannr/internal/wol"
)

type EventListener struct {
	id      int
	channel chan *event.Event
	removed chan struct{}
}

// Options scan behaviour settings
type Options struct {
	Ports     []uint16
	ScanPorts bool
}

// Option configures optional collaborators of Core
type Option func(c *Core)

// WithHostnameResolver enables reverse DNS lookups of live hosts
func WithHostnameResolver(r resolver.HostnameResolver) Option {
	return func(c *Core) {
		c.dns = r
	}
}

// WithMACResolver enables hardware address lookups of live hosts
func WithMACResolver(r resolver.MACResolver) Option {
	return func(c *Core) {
		c.mac = r
	}
}

// WithHistory records live hosts of every completed scan
func WithHistory(h history.Service) Option {
	return func(c *Core) {
		c.history = h
	}
}

// WithMetrics instruments scan outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Core) {
		c.metrics = m
	}
}

// WithWaker replaces the wake-on-lan sender
func WithWaker(fn func(mac string) error) Option {
	return func(c *Core) {
		c.waker = fn
	}
}

// WithCloser registers a resource released by Stop
func WithCloser(closer io.Closer) Option {
	return func(c *Core) {
		c.closers = append(c.closers, closer)
	}
}

// Core represents our core data structure
type Core struct {
	opts           Options
	discoverer     discovery.Discoverer
	portScanner    discovery.PortScanner
	store          cache.Store
	dns            resolver.HostnameResolver
	mac            resolver.MACResolver
	history        history.Service
	metrics        *metrics.Metrics
	waker          func(mac string) error
	closers        []io.Closer
	logger         logger.Logger
	state          State
	session        *Session
	generation     uint64
	cancel         context.CancelFunc
	gate           *gate
	evtListeners   []*EventListener
	nextListenerId int
	mux            sync.Mutex
	emitMux        sync.Mutex
}

// New returns new core module
func New(
	opts Options,
	discoverer discovery.Discoverer,
	portScanner discovery.PortScanner,
	store cache.Store,
	options ...Option,
) *Core {
	c := &Core{
		opts:           opts,
		discoverer:     discoverer,
		portScanner:    portScanner,
		store:          store,
		waker:          wol.Send,
		closers:        []io.Closer{},
		logger:         logger.New(),
		state:          StateIdle,
		evtListeners:   []*EventListener{},
		nextListenerId: 1,
	}

	for _, o := range options {
		o(c)
	}

	return c
}

// Stop cancels any running scan and releases held resources
func (c *Core) Stop() error {
	if err := c.Cancel(); err != nil && !errors.Is(err, exception.ErrInvalidTransition) {
		return err
	}

	errs := []error{}

	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}

	return errors.Join(errs...)
}

// Start begins a new scan of expr. A nil ports list scans the configured
// ports. Parse failures are returned without changing state.
func (c *Core) Start(expr string, ports []uint16) (string, error) {
	targetRange, err := targets.Parse(expr)

	if err != nil {
		return "", err
	}

	if ports == nil {
		ports = c.opts.Ports
	}

	c.emitMux.Lock()
	defer c.emitMux.Unlock()

	c.mux.Lock()

	if c.state == StateScanning || c.state == StatePaused {
		c.mux.Unlock()
		return "", exception.ErrScanInProgress
	}

	ctx, cancel := context.WithCancel(context.Background())

	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.gate = newGate()
	c.session = newSession(uuid.NewString(), targetRange.Key(), ports, targetRange.Len())
	c.state = StateScanning

	sess := c.session
	g := c.gate
	evt := c.newEvent(event.ScanStarted, sess.summary())
	listeners := slices.Clone(c.evtListeners)

	c.mux.Unlock()

	c.logger.Info().
		Str("session", sess.ID).
		Str("range", sess.Range).
		Int("targets", sess.Total).
		Msg("Starting scan")

	send(listeners, evt)

	go c.run(ctx, gen, sess, g, targetRange)

	return sess.ID, nil
}

// Pause stops new probes from launching, in-flight probes still finish
func (c *Core) Pause() error {
	return c.transition(StateScanning, StatePaused, event.ScanPaused, func() {
		c.gate.close()
	})
}

// Resume lets a paused scan continue
func (c *Core) Resume() error {
	return c.transition(StatePaused, StateScanning, event.ScanResumed, func() {
		c.gate.open()
	})
}

// Cancel aborts the running scan. No event of the cancelled session is
// emitted after its cancellation event.
func (c *Core) Cancel() error {
	c.emitMux.Lock()
	defer c.emitMux.Unlock()

	c.mux.Lock()

	if c.state != StateScanning && c.state != StatePaused {
		c.mux.Unlock()
		return fmt.Errorf("%w: cannot cancel from %s", exception.ErrInvalidTransition, c.state)
	}

	c.generation++
	c.cancel()
	c.gate.open()
	c.state = StateCancelled
	c.session.State = StateCancelled

	evt := c.newEvent(event.ScanCancelled, c.session.summary())
	listeners := slices.Clone(c.evtListeners)

	c.mux.Unlock()

	c.logger.Info().Str("session", evt.SessionID).Msg("Scan cancelled")
	c.metrics.ScanFinished("cancelled")

	send(listeners, evt)

	return nil
}

func (c *Core) transition(from, to State, evtType event.EventType, apply func()) error {
	c.emitMux.Lock()
	defer c.emitMux.Unlock()

	c.mux.Lock()

	if c.state != from {
		c.mux.Unlock()
		return fmt.Errorf("%w: cannot move from %s to %s", exception.ErrInvalidTransition, c.state, to)
	}

	apply()

	c.state = to
	c.session.State = to

	evt := c.newEvent(evtType, c.session.summary())
	listeners := slices.Clone(c.evtListeners)

	c.mux.Unlock()

	c.logger.Info().Str("session", evt.SessionID).Str("state", string(to)).Msg("Scan state changed")

	send(listeners, evt)

	return nil
}

// State returns the current engine state
func (c *Core) State() State {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.state
}

// Status returns the current state along with the session summary
func (c *Core) Status() (State, event.Summary) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.session == nil {
		return c.state, event.Summary{}
	}

	return c.state, c.session.summary()
}

// SessionID returns the id of the current or last session
func (c *Core) SessionID() string {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.session == nil {
		return ""
	}

	return c.session.ID
}

// Progress returns the number of finished targets and the total
func (c *Core) Progress() (int, int) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.session == nil {
		return 0, 0
	}

	return c.session.Done, c.session.Total
}

// Summary returns a short description of the current results
func (c *Core) Summary() string {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.session == nil {
		return "0 hosts (0 online)"
	}

	return fmt.Sprintf("%d hosts (%d online)", len(c.session.order), c.session.online())
}

// Snapshot returns a copy of every record of the current session in
// discovery order
func (c *Core) Snapshot() []host.Record {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.session == nil {
		return []host.Record{}
	}

	return c.session.records()
}

// Cached returns the cached results of a previous scan of expr
func (c *Core) Cached(expr string) (*cache.Entry, error) {
	key, err := targets.NormalizeKey(expr)

	if err != nil {
		return nil, err
	}

	return c.store.Get(key)
}

// ScanHostPorts probes ports on a single host outside of any session and
// returns the open ones in ascending order. Nil ports scans the configured
// port list.
func (c *Core) ScanHostPorts(ctx context.Context, ip netip.Addr, ports []uint16) ([]host.Port, error) {
	if c.portScanner == nil {
		return nil, errors.New("port scanning is unavailable")
	}

	if ports == nil {
		ports = c.opts.Ports
	}

	results := make(chan *discovery.PortResult)
	errChan := make(chan error, 1)

	go func() {
		defer close(results)
		errChan <- c.portScanner.ScanPorts(ctx, ip, ports, newGate(), results)
	}()

	r := host.NewRecord(ip)

	for res := range results {
		r.AddPort(res.Port)
	}

	if err := <-errChan; err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("ip", ip.String()).
		Int("open", len(r.Ports)).
		Msg("Rescanned host ports")

	return r.Ports, nil
}

// WakeHost sends a wake-on-lan packet to mac
func (c *Core) WakeHost(mac string) error {
	return c.waker(mac)
}

func (c *Core) RegisterEventListener(channel chan *event.Event) int {
	c.mux.Lock()
	defer c.mux.Unlock()

	listener := &EventListener{
		id:      c.nextListenerId,
		channel: channel,
		removed: make(chan struct{}),
	}
	c.evtListeners = append(c.evtListeners, listener)
	c.nextListenerId++

	return listener.id
}

func (c *Core) RemoveEventListener(id int) {
	c.mux.Lock()
	defer c.mux.Unlock()

	listeners := []*EventListener{}
	for _, listener := range c.evtListeners {
		if listener.id != id {
			listeners = append(listeners, listener)
			continue
		}

		// releases any send already blocked on this listener
		close(listener.removed)
	}

	c.evtListeners = listeners
}

// newEvent must be called with mux held
func (c *Core) newEvent(evtType event.EventType, payload any) *event.Event {
	return &event.Event{
		Type:      evtType,
		SessionID: c.session.ID,
		Payload:   payload,
	}
}

// update runs fn against the session of generation gen and delivers the
// event it returns, if any. Returns false once gen is stale, in which case
// fn is not run.
func (c *Core) update(gen uint64, fn func(sess *Session) *event.Event) bool {
	c.emitMux.Lock()
	defer c.emitMux.Unlock()

	c.mux.Lock()

	if c.generation != gen {
		c.mux.Unlock()
		return false
	}

	evt := fn(c.session)
	listeners := slices.Clone(c.evtListeners)

	c.mux.Unlock()

	if evt != nil {
		send(listeners, evt)
	}

	return true
}

func send(listeners []*EventListener, evt *event.Event) {
	for _, listener := range listeners {
		select {
		case listener.channel <- evt:
		case <-listener.removed:
		}
	}
}
