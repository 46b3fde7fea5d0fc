package core

import "github.com/rene-schmidt/embedded-iot-controller/protocol"

// CANSource is the receive side of the target CAN controller. Poll
// returns one pending frame without blocking; controllers with RX
// interrupts may instead call CANMonitor.HandleFrame directly from the
// handler and leave Poll returning false.
type CANSource interface {
	Poll() (protocol.Frame, bool)
}

// CANMonitor decodes received frames into freshness-stamped snapshots.
// HandleFrame is the single producer for both snapshots; all getters are
// main-loop consumers.
type CANMonitor struct {
	clock Clock

	heartbeat HeartbeatSnapshot
	light     LightSnapshot

	lastText string
}

func NewCANMonitor(clock Clock) *CANMonitor {
	return &CANMonitor{clock: clock, lastText: "no data"}
}

// HandleFrame decodes one received frame. Safe to call from interrupt
// context: it only stores small values and formats short strings.
func (m *CANMonitor) HandleFrame(f *protocol.Frame) {
	now := m.clock.NowMS()

	if hb, ok := protocol.DecodeHeartbeat(f); ok {
		m.heartbeat.Store(hb, now)
		m.lastText = hb.Text()
		return
	}
	if lr, ok := protocol.DecodeLightReading(f); ok {
		m.light.Store(lr, now)
		m.lastText = lr.Text()
	}
}

// canDrainMax bounds the frames consumed per Service visit, so a noisy
// bus cannot monopolize a loop iteration. The MCP2515 buffers two
// frames; the margin covers sources with deeper queues.
const canDrainMax = 8

// Service drains frames pending on a polled controller, at most
// canDrainMax per call.
func (m *CANMonitor) Service(src CANSource) {
	if src == nil {
		return
	}
	for i := 0; i < canDrainMax; i++ {
		f, ok := src.Poll()
		if !ok {
			return
		}
		m.HandleFrame(&f)
	}
}

// LastText returns the most recent decode of either ID, with no
// freshness applied ("no data" before the first frame).
func (m *CANMonitor) LastText() string {
	return m.lastText
}

// HeartbeatText returns the 0x101 text, or "none" when stale.
func (m *CANMonitor) HeartbeatText() string {
	return m.heartbeat.Text(m.clock.NowMS())
}

// LightText returns the 0x120 text, or "none" when stale.
func (m *CANMonitor) LightText() string {
	return m.light.Text(m.clock.NowMS())
}

// HeartbeatValid reports a fresh 0x101 snapshot.
func (m *CANMonitor) HeartbeatValid() bool {
	_, ok := m.heartbeat.Load(m.clock.NowMS())
	return ok
}

// LightValid reports a fresh 0x120 snapshot.
func (m *CANMonitor) LightValid() bool {
	_, ok := m.light.Load(m.clock.NowMS())
	return ok
}

// Light returns the last light reading regardless of freshness; check
// LightValid before trusting it.
func (m *CANMonitor) Light() protocol.LightReading {
	return m.light.value
}

// Lux returns the integer lux of the last 0x120 frame.
func (m *CANMonitor) Lux() uint32 {
	return m.light.value.Lux()
}

// Full returns the broadband channel of the last 0x120 frame.
func (m *CANMonitor) Full() uint16 {
	return m.light.value.Full
}

// IR returns the infrared channel of the last 0x120 frame.
func (m *CANMonitor) IR() uint16 {
	return m.light.value.IR
}
