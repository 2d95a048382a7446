package core

import (
	"context"
	"net/netip"
	"slices"
	"sync"
	"time"

	"github.com/robgonnella/ipscannr/internal/event"
	"github.com/robgonnella/ipscannr/internal/host"
)

// State represents the lifecycle state of the scan engine
type State string

const (
	StateIdle      State = "idle"
	StateScanning  State = "scanning"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Session represents a single scan over a target range
type Session struct {
	ID       string
	Range    string
	Ports    []uint16
	State    State
	Hosts    map[netip.Addr]*host.Record
	Started  time.Time
	Finished time.Time
	Total    int
	Done     int
	order    []netip.Addr
}

func newSession(id, key string, ports []uint16, total int) *Session {
	return &Session{
		ID:      id,
		Range:   key,
		Ports:   slices.Clone(ports),
		State:   StateScanning,
		Hosts:   map[netip.Addr]*host.Record{},
		Started: time.Now(),
		Total:   total,
		order:   []netip.Addr{},
	}
}

// record returns the record for ip, creating it on first sight
func (s *Session) record(ip netip.Addr) *host.Record {
	if r, ok := s.Hosts[ip]; ok {
		return r
	}

	r := host.NewRecord(ip)
	s.Hosts[ip] = r
	s.order = append(s.order, ip)

	return r
}

// records deep copies every record in discovery order
func (s *Session) records() []host.Record {
	result := make([]host.Record, 0, len(s.order))

	for _, ip := range s.order {
		result = append(result, s.Hosts[ip].Copy())
	}

	return result
}

func (s *Session) online() int {
	count := 0

	for _, r := range s.Hosts {
		if r.Alive() {
			count++
		}
	}

	return count
}

func (s *Session) summary() event.Summary {
	return event.Summary{
		Range:    s.Range,
		Total:    s.Total,
		Done:     s.Done,
		Online:   s.online(),
		Started:  s.Started,
		Finished: s.Finished,
	}
}

// gate is open while its channel is closed
type gate struct {
	mux sync.Mutex
	ch  chan struct{}
}

func newGate() *gate {
	ch := make(chan struct{})
	close(ch)

	return &gate{ch: ch}
}

func (g *gate) close() {
	g.mux.Lock()
	defer g.mux.Unlock()

	select {
	case <-g.ch:
		g.ch = make(chan struct{})
	default:
	}
}

func (g *gate) open() {
	g.mux.Lock()
	defer g.mux.Unlock()

	select {
	case <-g.ch:
	default:
		close(g.ch)
	}
}

// Wait blocks until the gate is open or ctx is done
func (g *gate) Wait(ctx context.Context) error {
	g.mux.Lock()
	ch := g.ch
	g.mux.Unlock()

	select {
	case <-ch:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
