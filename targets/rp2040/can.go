//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers/mcp2515"

	"github.com/rene-schmidt/embedded-iot-controller/protocol"
)

// mcp2515Source adapts the external MCP2515 CAN controller to the
// monitor's polled source interface. The controller buffers received
// frames internally; Poll drains one at a time.
type mcp2515Source struct {
	dev *mcp2515.Device
}

func newCANSource(spi *machine.SPI, cs machine.Pin) (*mcp2515Source, error) {
	dev := mcp2515.New(spi, cs)
	dev.Configure()
	if err := dev.Begin(mcp2515.CAN500kBps, mcp2515.Clock8MHz); err != nil {
		return nil, err
	}
	return &mcp2515Source{dev: dev}, nil
}

func (s *mcp2515Source) Poll() (protocol.Frame, bool) {
	if !s.dev.Received() {
		return protocol.Frame{}, false
	}
	msg, err := s.dev.Rx()
	if err != nil {
		return protocol.Frame{}, false
	}

	f := protocol.Frame{
		ID:     msg.ID,
		Length: msg.Dlc,
	}
	if f.Length > 8 {
		f.Length = 8
	}
	copy(f.Data[:], msg.Data[:f.Length])
	return f, true
}
