package core

import (
	"errors"

	"github.com/rene-schmidt/embedded-iot-controller/protocol"
)

// ErrTxBusy is returned by a ConsoleTransport while a previous packet is
// still in flight.
var ErrTxBusy = errors.New("console: transmitter busy")

// ConsoleTransport is the byte-level output of the USB serial console.
// Write attempts one non-blocking transmit of p, all or nothing.
type ConsoleTransport interface {
	Write(p []byte) error
}

const (
	consoleLineMax  = 128
	consoleTxSize   = 512
	consoleTxChunk  = 64
	consolePrompt   = "> "
	consoleGreeting = "Terminal ready\r\n> "
)

// Console implements the interactive serial console: a byte-at-a-time
// line editor fed from the receive interrupt, a single-slot "line
// ready" mailbox read by the main loop, and a TX ring drained in
// bounded chunks.
//
// HandleRx runs in interrupt context and only ever touches the line
// buffer and the TX ring, so its worst-case execution time is bounded
// by ring writes, never by transmission.
type Console struct {
	transport ConsoleTransport

	tx *protocol.ByteRing

	// Line editor state, owned by the RX context.
	line    [consoleLineMax]byte
	lineLen int

	// Single-slot mailbox: last-writer-wins, no queueing.
	ready     bool
	readyLine [consoleLineMax]byte
	readyLen  int

	promptPending bool
}

func NewConsole(transport ConsoleTransport) *Console {
	return &Console{
		transport: transport,
		tx:        protocol.NewByteRing(consoleTxSize),
	}
}

// Greet queues the banner and first prompt.
func (c *Console) Greet() {
	c.tx.WriteString(consoleGreeting)
}

// HandleRx consumes received bytes. Interrupt context.
func (c *Console) HandleRx(buf []byte) {
	for _, b := range buf {
		switch {
		case b == 0x1B:
			// ESC introduces arrow-key control sequences; discard the
			// in-progress line rather than absorb garbage.
			c.lineLen = 0

		case b == 0x08 || b == 0x7F:
			if c.lineLen > 0 {
				c.lineLen--
				c.tx.WriteString("\b \b")
			}

		case b == '\r' || b == '\n':
			c.tx.WriteString("\r\n")
			if c.lineLen > 0 {
				c.readyLen = copy(c.readyLine[:], c.line[:c.lineLen])
				c.lineLen = 0
				c.ready = true
			}
			c.promptPending = true

		case b < 0x20:
			// Other control bytes are ignored.

		case c.lineLen < consoleLineMax-1:
			c.line[c.lineLen] = b
			c.lineLen++
			c.tx.WriteByte(b)

		default:
			c.lineLen = 0
			c.tx.WriteString("\r\nERR: line too long\r\n")
			c.promptPending = true
		}
	}
}

// ReadLine consumes the mailbox. Returns false when no complete line is
// pending.
func (c *Console) ReadLine() (string, bool) {
	if !c.ready {
		return "", false
	}

	state := disableInterrupts()
	c.ready = false
	line := string(c.readyLine[:c.readyLen])
	restoreInterrupts(state)

	return line, true
}

// PrintSafe queues s for output while preserving the user's in-progress
// input line: clear the current terminal line, print the text on a
// clean line, then redraw whatever was typed.
func (c *Console) PrintSafe(s string) {
	var snap [consoleLineMax]byte

	state := disableInterrupts()
	snapLen := copy(snap[:], c.line[:c.lineLen])
	restoreInterrupts(state)

	c.tx.WriteString("\r\033[2K")
	c.tx.WriteString("\r\n")
	c.tx.WriteString(s)

	if n := len(s); n == 0 || (s[n-1] != '\n' && s[n-1] != '\r') {
		c.tx.WriteString("\r\n")
	}

	if snapLen > 0 {
		c.tx.Write(snap[:snapLen])
	}
}

// TxService drains at most one chunk from the TX ring and attempts a
// single non-blocking transmit. On a busy transport the chunk is pushed
// back and retried on the next call, so no output is lost.
func (c *Console) TxService() {
	if c.tx.IsEmpty() {
		if !c.promptPending {
			return
		}
		c.promptPending = false
		c.tx.WriteString(consolePrompt)
	}

	var chunk [consoleTxChunk]byte

	state := disableInterrupts()
	n := c.tx.Read(chunk[:])
	restoreInterrupts(state)

	if n == 0 {
		return
	}

	if err := c.transport.Write(chunk[:n]); err != nil {
		state = disableInterrupts()
		c.tx.Rewind(n)
		restoreInterrupts(state)
	}
}

// TxIsEmpty reports a fully drained console, the precondition for the
// idle low-power wait.
func (c *Console) TxIsEmpty() bool {
	return c.tx.IsEmpty() && !c.promptPending
}
