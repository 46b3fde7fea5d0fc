//go:build rp2040 || rp2350

package main

import (
	"errors"

	"github.com/rene-schmidt/embedded-iot-controller/core"
)

var errNoNetwork = errors.New("no network interface")

// nullStack satisfies the session machine on boards without a network
// interface. Every dial and allocation fails, keeping the TCP channel
// permanently down and the datagram drop counter honest.
type nullStack struct{}

func (nullStack) Poll(now uint32) {}

func (nullStack) NewUDP() (core.UDPSender, error) {
	return nil, errNoNetwork
}

func (nullStack) Dial(cb *core.TCPCallbacks) (core.TCPConn, error) {
	return nil, errNoNetwork
}
