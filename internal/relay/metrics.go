package relay

import "sync/atomic"

// Metrics counts relay activity. All fields are updated atomically.
type Metrics struct {
	ConnectionsAccepted int64
	ConnectionsActive   int64
	Requests            int64
	DecodeErrors        int64
	UnknownCommands     int64
	HandlerFailures     int64
}

func (m *Metrics) incAccepted()        { atomic.AddInt64(&m.ConnectionsAccepted, 1) }
func (m *Metrics) incActive()          { atomic.AddInt64(&m.ConnectionsActive, 1) }
func (m *Metrics) decActive()          { atomic.AddInt64(&m.ConnectionsActive, -1) }
func (m *Metrics) incRequests()        { atomic.AddInt64(&m.Requests, 1) }
func (m *Metrics) incDecodeErrors()    { atomic.AddInt64(&m.DecodeErrors, 1) }
func (m *Metrics) incUnknownCommands() { atomic.AddInt64(&m.UnknownCommands, 1) }
func (m *Metrics) incHandlerFailures() { atomic.AddInt64(&m.HandlerFailures, 1) }

// Snapshot returns a point-in-time copy suitable for JSON output.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"connections_accepted": atomic.LoadInt64(&m.ConnectionsAccepted),
		"connections_active":   atomic.LoadInt64(&m.ConnectionsActive),
		"requests":             atomic.LoadInt64(&m.Requests),
		"decode_errors":        atomic.LoadInt64(&m.DecodeErrors),
		"unknown_commands":     atomic.LoadInt64(&m.UnknownCommands),
		"handler_failures":     atomic.LoadInt64(&m.HandlerFailures),
	}
}
