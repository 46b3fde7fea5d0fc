//go:build !tinygo

package main

import (
	"net"
	"time"

	"github.com/rene-schmidt/embedded-iot-controller/core"
)

// hostStack implements the firmware's network stack abstraction on top
// of the operating system's sockets. Blocking socket work runs in
// goroutines; completions are queued as closures and delivered from
// Poll, on the main loop, matching the callback contract the firmware
// code is written against.
type hostStack struct {
	udpAddr string
	tcpAddr string

	events chan func()
}

func newHostStack(udpAddr, tcpAddr string) *hostStack {
	return &hostStack{
		udpAddr: udpAddr,
		tcpAddr: tcpAddr,
		events:  make(chan func(), 64),
	}
}

// post queues one callback for the next Poll. Drops when the queue is
// full rather than block a socket goroutine.
func (h *hostStack) post(fn func()) {
	select {
	case h.events <- fn:
	default:
	}
}

func (h *hostStack) Poll(now uint32) {
	for {
		select {
		case fn := <-h.events:
			fn()
		default:
			return
		}
	}
}

type hostUDP struct {
	conn net.Conn
}

func (u *hostUDP) Send(p []byte) error {
	_, err := u.conn.Write(p)
	return err
}

func (h *hostStack) NewUDP() (core.UDPSender, error) {
	conn, err := net.Dial("udp", h.udpAddr)
	if err != nil {
		return nil, err
	}
	return &hostUDP{conn: conn}, nil
}

type hostConn struct {
	stack *hostStack
	cb    *core.TCPCallbacks

	conn net.Conn // set once the dial goroutine resolves
	dead bool
}

func (c *hostConn) Send(p []byte) error {
	if c.conn == nil || c.dead {
		return net.ErrClosed
	}

	// Sockets buffer far more than one telemetry line; treat the write
	// as queued and report completion on the next poll.
	cp := make([]byte, len(p))
	copy(cp, p)
	go func() {
		n, err := c.conn.Write(cp)
		if err != nil {
			c.stack.post(func() {
				if !c.dead && c.cb.OnError != nil {
					c.dead = true
					c.cb.OnError(err)
				}
			})
			return
		}
		c.stack.post(func() {
			if !c.dead && c.cb.OnSent != nil {
				c.cb.OnSent(n)
			}
		})
	}()
	return nil
}

func (c *hostConn) Close() {
	c.dead = true
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *hostConn) Abort() {
	c.Close()
}

func (h *hostStack) Dial(cb *core.TCPCallbacks) (core.TCPConn, error) {
	c := &hostConn{stack: h, cb: cb}

	go func() {
		conn, err := net.DialTimeout("tcp", h.tcpAddr, 2*time.Second)
		h.post(func() {
			if c.dead {
				if conn != nil {
					conn.Close()
				}
				return
			}
			if err != nil {
				if cb.OnConnected != nil {
					cb.OnConnected(err)
				}
				return
			}
			c.conn = conn
			go c.readLoop()
			if cb.OnConnected != nil {
				cb.OnConnected(nil)
			}
		})
	}()

	return c, nil
}

// readLoop forwards inbound data and the remote close.
func (c *hostConn) readLoop() {
	buf := make([]byte, 512)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			c.stack.post(func() {
				if !c.dead && c.cb.OnRecv != nil {
					c.cb.OnRecv(data, false)
				}
			})
		}
		if err != nil {
			c.stack.post(func() {
				if !c.dead && c.cb.OnRecv != nil {
					c.dead = true
					c.cb.OnRecv(nil, true)
				}
			})
			return
		}
	}
}
