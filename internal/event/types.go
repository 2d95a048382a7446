package event

import (
	"net/netip"
	"time"

	"github.com/robgonnella/ipscannr/internal/host"
)

// EventType identifies the kind of event emitted by the scan engine
type EventType string

const (
	HostLiveness  EventType = "host-liveness"
	PortOpen      EventType = "port-open"
	HostCompleted EventType = "host-completed"
	DNSResolved   EventType = "dns-resolved"
	MACResolved   EventType = "mac-resolved"
	ScanStarted   EventType = "scan-started"
	ScanPaused    EventType = "scan-paused"
	ScanResumed   EventType = "scan-resumed"
	ScanCompleted EventType = "scan-completed"
	ScanCancelled EventType = "scan-cancelled"
	ScanError     EventType = "scan-error"
)

// Event data structure representing any event we may want to react to.
//
// Payload types by event:
//
//	HostLiveness, HostCompleted, DNSResolved, MACResolved: host.Record
//	PortOpen: PortPayload
//	ScanStarted, ScanPaused, ScanResumed, ScanCompleted, ScanCancelled: Summary
//	ScanError: ErrorPayload
type Event struct {
	Type      EventType
	SessionID string
	Payload   any
}

// PortPayload payload for PortOpen events
type PortPayload struct {
	IP   netip.Addr
	Port host.Port
}

// Summary payload for scan status events
type Summary struct {
	Range    string
	Total    int
	Done     int
	Online   int
	Started  time.Time
	Finished time.Time
}

// ErrorPayload payload for ScanError events
type ErrorPayload struct {
	Reason string
	Err    error
}

// Terminal returns true for events after which a session emits nothing else
func (e *Event) Terminal() bool {
	return e.Type == ScanCompleted || e.Type == ScanCancelled
}
