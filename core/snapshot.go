package core

import "github.com/rene-schmidt/embedded-iot-controller/protocol"

// StaleAfterMS is the freshness window for sensor snapshots: a value
// older than this is treated as absent.
const StaleAfterMS = 2000

// A snapshot pairs the last decoded value with the tick at which it was
// captured. Each snapshot has exactly one writer (the CAN RX interrupt
// path) and any number of readers in the main loop. The value and stamp
// are small enough that a torn read costs at most one 2-second display
// glitch, which this application tolerates; no locking is used.

// HeartbeatSnapshot is the last 0x101 decode result.
type HeartbeatSnapshot struct {
	value   protocol.Heartbeat
	stamp   uint32
	written bool
}

// Store records a new heartbeat. Producer context only.
func (s *HeartbeatSnapshot) Store(hb protocol.Heartbeat, now uint32) {
	s.value = hb
	s.stamp = now
	s.written = true
}

// Load returns the snapshot if one exists and is fresh at now.
func (s *HeartbeatSnapshot) Load(now uint32) (protocol.Heartbeat, bool) {
	if !s.written || now-s.stamp > StaleAfterMS {
		return protocol.Heartbeat{}, false
	}
	return s.value, true
}

// Text returns the formatted heartbeat, or "none" when stale.
func (s *HeartbeatSnapshot) Text(now uint32) string {
	hb, ok := s.Load(now)
	if !ok {
		return "none"
	}
	return hb.Text()
}

// LightSnapshot is the last 0x120 decode result.
type LightSnapshot struct {
	value   protocol.LightReading
	stamp   uint32
	written bool
}

// Store records a new light reading. Producer context only.
func (s *LightSnapshot) Store(lr protocol.LightReading, now uint32) {
	s.value = lr
	s.stamp = now
	s.written = true
}

// Load returns the snapshot if one exists and is fresh at now.
func (s *LightSnapshot) Load(now uint32) (protocol.LightReading, bool) {
	if !s.written || now-s.stamp > StaleAfterMS {
		return protocol.LightReading{}, false
	}
	return s.value, true
}

// Text returns the formatted reading, or "none" when stale.
func (s *LightSnapshot) Text(now uint32) string {
	lr, ok := s.Load(now)
	if !ok {
		return "none"
	}
	return lr.Text()
}
