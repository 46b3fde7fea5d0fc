package core

import "github.com/rene-schmidt/embedded-iot-controller/protocol"

// The session machine drives two telemetry channels to one remote
// endpoint through the NetStack abstraction: a stateless datagram
// channel and a reconnecting connection-oriented channel. The stack is
// non-blocking and callback-driven, mirroring a NO_SYS lwIP style; all
// callbacks are delivered from within Poll, on the main loop.

// UDPSender sends one datagram to the configured remote endpoint,
// fire-and-forget.
type UDPSender interface {
	Send(p []byte) error
}

// TCPConn is one connection attempt handle. Send queues the payload for
// transmission; completion is reported through the OnSent callback, and
// until then the session keeps the message in flight.
type TCPConn interface {
	Send(p []byte) error
	Close()
	Abort()
}

// TCPCallbacks are installed at dial time. The stack invokes them from
// Poll: OnConnected once the handshake resolves, OnRecv for inbound
// data (eof=true when the remote closed), OnSent when queued payload
// was acknowledged, OnError on hard transport failure (after which the
// conn handle is dead).
type TCPCallbacks struct {
	OnConnected func(err error)
	OnRecv      func(p []byte, eof bool)
	OnSent      func(n int)
	OnError     func(err error)
}

// NetStack is the target's network layer.
type NetStack interface {
	// Poll pumps the stack: input processing, protocol timers, and
	// delivery of any pending callbacks.
	Poll(now uint32)
	NewUDP() (UDPSender, error)
	Dial(cb *TCPCallbacks) (TCPConn, error)
}

// TCP channel states.
type TCPState uint8

const (
	TCPDown TCPState = iota
	TCPConnecting
	TCPUp
)

const (
	netPollMS      = 10
	netSendMS      = 1000
	tcpReconnectMS = 2000
)

// NetSession owns both telemetry channels.
type NetSession struct {
	stack NetStack

	udp        UDPSender
	udpDropped uint32

	conn  TCPConn
	state TCPState
	cb    TCPCallbacks

	// Single-message TX buffer; len 0 means nothing in flight. Cleared
	// only by the sent callback or forced teardown, never by the sender.
	txbuf [protocol.MaxTelemetryLen]byte
	txlen int

	nextReconnect uint32
	everTried     bool

	pollDL Deadline
	sendDL Deadline

	lastUDP string
	lastTCP string

	// Sample produces the current telemetry snapshot; installed by the
	// application during wiring.
	Sample func(now uint32) protocol.Telemetry
}

func NewNetSession(stack NetStack) *NetSession {
	s := &NetSession{
		stack:   stack,
		lastUDP: "-",
		lastTCP: "-",
	}
	s.cb = TCPCallbacks{
		OnConnected: s.onConnected,
		OnRecv:      s.onRecv,
		OnSent:      s.onSent,
		OnError:     s.onError,
	}
	return s
}

// State returns the connection-oriented channel state.
func (s *NetSession) State() TCPState {
	return s.state
}

// TCPIsConnected reports an established connection.
func (s *NetSession) TCPIsConnected() bool {
	return s.state == TCPUp && s.conn != nil
}

// UDPDropped counts samples lost to allocation or send failures.
func (s *NetSession) UDPDropped() uint32 {
	return s.udpDropped
}

// LastUDP returns a short description of the last datagram payload.
func (s *NetSession) LastUDP() string { return s.lastUDP }

// LastTCP returns a short description of the last stream payload.
func (s *NetSession) LastTCP() string { return s.lastTCP }

// SendUDP serializes t and fires one datagram. Failures are counted,
// not reported upward.
func (s *NetSession) SendUDP(t *protocol.Telemetry) bool {
	if s.udp == nil {
		u, err := s.stack.NewUDP()
		if err != nil {
			s.udpDropped++
			return false
		}
		s.udp = u
	}

	var buf [protocol.MaxTelemetryLen]byte
	payload := t.AppendJSON(buf[:0])
	if err := s.udp.Send(payload); err != nil {
		s.udpDropped++
		return false
	}
	return true
}

// SendTCP serializes t into the single-message buffer and queues it.
// Rejected while not connected or while a previous message is still in
// flight; the buffered message is never altered by a rejected send.
func (s *NetSession) SendTCP(t *protocol.Telemetry) bool {
	if !s.TCPIsConnected() {
		return false
	}
	if s.txlen != 0 {
		return false
	}

	payload := t.AppendJSON(s.txbuf[:0])
	if len(payload) > len(s.txbuf) {
		return false
	}
	s.txlen = len(payload)

	if err := s.conn.Send(s.txbuf[:s.txlen]); err != nil {
		s.txlen = 0
		return false
	}
	return true
}

// teardown gracefully closes the connection and resets channel state.
func (s *NetSession) teardown() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.state = TCPDown
	s.txlen = 0
}

// abort force-drops the connection on hard errors.
func (s *NetSession) abort() {
	if s.conn != nil {
		s.conn.Abort()
		s.conn = nil
	}
	s.state = TCPDown
	s.txlen = 0
}

func (s *NetSession) onConnected(err error) {
	if err != nil {
		s.abort()
		return
	}
	s.state = TCPUp
}

func (s *NetSession) onRecv(p []byte, eof bool) {
	if eof {
		// Remote closed; inbound data is otherwise ignored.
		s.teardown()
	}
}

func (s *NetSession) onSent(n int) {
	s.txlen = 0
}

func (s *NetSession) onError(err error) {
	// The conn handle is already dead; do not Close/Abort it.
	s.conn = nil
	s.state = TCPDown
	s.txlen = 0
}

// startConnect begins one connection attempt. No-op while connecting or
// up.
func (s *NetSession) startConnect(now uint32) {
	if s.state == TCPUp || s.state == TCPConnecting {
		return
	}

	conn, err := s.stack.Dial(&s.cb)
	if err != nil {
		s.state = TCPDown
		s.nextReconnect = now + tcpReconnectMS
		return
	}
	s.conn = conn
	s.state = TCPConnecting
}

// Poll pumps the stack and drives reconnect attempts with the fixed
// backoff.
func (s *NetSession) Poll(now uint32) {
	s.stack.Poll(now)

	if !s.TCPIsConnected() {
		if !s.everTried || Elapsed(now, s.nextReconnect) {
			s.everTried = true
			s.startConnect(now)
			s.nextReconnect = now + tcpReconnectMS
		}
	}
}

// Service runs the two cadences: stack pump every 10 ms, telemetry send
// every 1000 ms.
func (s *NetSession) Service(now uint32) {
	if s.pollDL.Due(now, netPollMS) {
		s.Poll(now)
	}

	if s.sendDL.Due(now, netSendMS) && s.Sample != nil {
		t := s.Sample(now)

		s.lastUDP = "ts=" + utoa(t.NowMS) + " i2c=" + itoa(int(t.I2CTemp))
		c101 := t.CAN101
		if len(c101) > 58 {
			c101 = c101[:58]
		}
		s.lastTCP = "C101=" + c101

		s.SendUDP(&t)
		s.SendTCP(&t)
	}
}
