package core

import (
	"errors"

	"github.com/rene-schmidt/embedded-iot-controller/protocol"
)

// fakeClock is a manually advanced millisecond clock.
type fakeClock struct {
	ms uint32
}

func (c *fakeClock) NowMS() uint32 {
	return c.ms
}

func (c *fakeClock) advance(ms uint32) {
	c.ms += ms
}

// fakePin records the last level set on a control line.
type fakePin struct {
	high bool
	sets int
}

func (p *fakePin) Set(high bool) {
	p.high = high
	p.sets++
}

// fakeSPI implements drivers.SPI and records transmitted bytes. failN
// makes the next N Tx calls fail.
type fakeSPI struct {
	sent  []byte
	txns  int
	failN int
}

var errSPI = errors.New("spi fault")

func (s *fakeSPI) Tx(w, r []byte) error {
	s.txns++
	if s.failN > 0 {
		s.failN--
		return errSPI
	}
	s.sent = append(s.sent, w...)
	return nil
}

func (s *fakeSPI) Transfer(b byte) (byte, error) {
	if err := s.Tx([]byte{b}, nil); err != nil {
		return 0, err
	}
	return 0, nil
}

// fakeI2C implements drivers.I2C with a scripted error sequence and a
// fixed response payload.
type fakeI2C struct {
	response [2]byte
	script   []error // error per call; nil entries succeed
	calls    int
}

func (b *fakeI2C) Tx(addr uint16, w, r []byte) error {
	var err error
	if b.calls < len(b.script) {
		err = b.script[b.calls]
	}
	b.calls++
	if err != nil {
		return err
	}
	copy(r, b.response[:])
	return nil
}

// fakeRecovery records the recovery sequence.
type fakeRecovery struct {
	detached    int
	reattached  int
	sclPulses   int
	sdaHigh     bool // line state observed during pulsing
	lastSCL     bool
	reattachErr error
}

func (f *fakeRecovery) DetachBus() { f.detached++ }

func (f *fakeRecovery) SetSCL(high bool) {
	if !f.lastSCL && high {
		f.sclPulses++
	}
	f.lastSCL = high
}

func (f *fakeRecovery) SetSDA(high bool) {}

func (f *fakeRecovery) ReadSDA() bool { return f.sdaHigh }

func (f *fakeRecovery) ReattachBus() error {
	f.reattached++
	return f.reattachErr
}

// fakeTransport is a console transport with a controllable busy state.
type fakeTransport struct {
	written []byte
	writes  int
	busyN   int // next N writes report busy
}

func (t *fakeTransport) Write(p []byte) error {
	t.writes++
	if t.busyN > 0 {
		t.busyN--
		return ErrTxBusy
	}
	t.written = append(t.written, p...)
	return nil
}

// fakeStack is a scriptable NetStack. Dial hands out fakeConns and
// stores the callbacks so tests can fire them.
type fakeStack struct {
	polls    int
	dials    int
	dialErr  error
	udpErr   error
	udp      *fakeUDP
	lastConn *fakeConn
	lastCB   *TCPCallbacks
}

type fakeUDP struct {
	sent    [][]byte
	sendErr error
}

func (u *fakeUDP) Send(p []byte) error {
	if u.sendErr != nil {
		return u.sendErr
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	u.sent = append(u.sent, cp)
	return nil
}

type fakeConn struct {
	sent    [][]byte
	sendErr error
	closed  bool
	aborted bool
}

func (c *fakeConn) Send(p []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	c.sent = append(c.sent, cp)
	return nil
}

func (c *fakeConn) Close() { c.closed = true }
func (c *fakeConn) Abort() { c.aborted = true }

func (s *fakeStack) Poll(now uint32) { s.polls++ }

func (s *fakeStack) NewUDP() (UDPSender, error) {
	if s.udpErr != nil {
		return nil, s.udpErr
	}
	if s.udp == nil {
		s.udp = &fakeUDP{}
	}
	return s.udp, nil
}

func (s *fakeStack) Dial(cb *TCPCallbacks) (TCPConn, error) {
	s.dials++
	if s.dialErr != nil {
		return nil, s.dialErr
	}
	s.lastConn = &fakeConn{}
	s.lastCB = cb
	return s.lastConn, nil
}

// fakeCANSource feeds a fixed queue of frames.
type fakeCANSource struct {
	frames []protocol.Frame
}

func (s *fakeCANSource) Poll() (protocol.Frame, bool) {
	if len(s.frames) == 0 {
		return protocol.Frame{}, false
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, true
}

func (s *fakeCANSource) push(f protocol.Frame) {
	s.frames = append(s.frames, f)
}
