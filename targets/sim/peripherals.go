//go:build !tinygo

package main

import (
	"github.com/rene-schmidt/embedded-iot-controller/core"
	"github.com/rene-schmidt/embedded-iot-controller/protocol"
)

// sinkSPI discards pixel data while counting it, standing in for the
// display controller.
type sinkSPI struct {
	bytes uint64
}

func (s *sinkSPI) Tx(w, r []byte) error {
	s.bytes += uint64(len(w))
	return nil
}

func (s *sinkSPI) Transfer(b byte) (byte, error) {
	s.bytes++
	return 0, nil
}

type nopPin struct{}

func (nopPin) Set(high bool) {}

// simI2C simulates the temperature sensor: a slow triangle wave between
// 18 and 30 degrees. With fault injection enabled every eighth read
// fails until a bus recovery has run, which exercises the full
// classify/recover/retry path.
type simI2C struct {
	clock core.Clock
	flaky bool

	reads uint32
	stuck bool
}

func newSimI2C(clock core.Clock, flaky bool) *simI2C {
	return &simI2C{clock: clock, flaky: flaky}
}

func (b *simI2C) temperature() int16 {
	phase := (b.clock.NowMS() / 1000) % 24
	if phase < 12 {
		return int16(18 + phase)
	}
	return int16(30 - (phase - 12))
}

func (b *simI2C) Tx(addr uint16, w, r []byte) error {
	if b.stuck {
		return core.ErrBusTimeout
	}

	b.reads++
	if b.flaky && b.reads%8 == 0 {
		b.stuck = true
		return core.ErrBusNACK
	}

	t := b.temperature()
	if len(r) >= 2 {
		r[0] = byte(t)
		r[1] = byte(uint16(t) >> 8)
	}
	return nil
}

// simI2C doubles as its own recovery pins: a recovery unsticks the bus.

func (b *simI2C) DetachBus() {}

func (b *simI2C) SetSCL(high bool) {}

func (b *simI2C) SetSDA(high bool) {}

func (b *simI2C) ReadSDA() bool { return true }

func (b *simI2C) ReattachBus() error {
	b.stuck = false
	return nil
}

// simCAN generates the two frame types on their natural cadences: a
// heartbeat once a second and a light reading every 700 ms.
type simCAN struct {
	clock core.Clock

	hbDL    core.Deadline
	lightDL core.Deadline
	seq     uint8
	pending []protocol.Frame
}

func newSimCAN(clock core.Clock) *simCAN {
	return &simCAN{clock: clock}
}

func (s *simCAN) Poll() (protocol.Frame, bool) {
	now := s.clock.NowMS()

	if s.hbDL.Due(now, 1000) {
		s.seq++
		s.pending = append(s.pending, protocol.Frame{
			ID:     protocol.CANIDHeartbeat,
			Length: 1,
			Data:   [8]byte{s.seq},
		})
	}

	if s.lightDL.Due(now, 700) {
		// Lux sweeps 0..1023, on a sunlight-ish scale.
		lux100 := ((now / 100) % 1024) * 100
		full := uint16(lux100 / 50)
		ir := full / 3

		var f protocol.Frame
		f.ID = protocol.CANIDLight
		f.Length = 8
		f.Data[0] = byte(lux100)
		f.Data[1] = byte(lux100 >> 8)
		f.Data[2] = byte(lux100 >> 16)
		f.Data[3] = byte(lux100 >> 24)
		f.Data[4] = byte(full)
		f.Data[5] = byte(full >> 8)
		f.Data[6] = byte(ir)
		f.Data[7] = byte(ir >> 8)
		s.pending = append(s.pending, f)
	}

	if len(s.pending) == 0 {
		return protocol.Frame{}, false
	}
	f := s.pending[0]
	s.pending = s.pending[1:]
	return f, true
}
