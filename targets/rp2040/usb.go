//go:build rp2040 || rp2350

package main

import (
	"machine"

	"github.com/rene-schmidt/embedded-iot-controller/core"
)

// usbTransport is the console byte sink over USB CDC-ACM. On the
// RP2040, machine.Serial is USB CDC; TinyGo's runtime owns the
// descriptors and endpoint buffering.
type usbTransport struct{}

func (usbTransport) Write(p []byte) error {
	// The CDC endpoint absorbs a full chunk or nothing useful; treat a
	// short write as busy so the console pushes the chunk back.
	n, err := machine.Serial.Write(p)
	if err != nil || n != len(p) {
		return core.ErrTxBusy
	}
	return nil
}

// usbReaderLoop feeds received bytes into the console's line editor.
// Runs in its own goroutine; the editor path is bounded, so consuming
// here never stalls the endpoint.
func usbReaderLoop(console *core.Console) {
	var buf [16]byte
	for {
		n := 0
		for n < len(buf) && machine.Serial.Buffered() > 0 {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				break
			}
			buf[n] = b
			n++
		}
		if n > 0 {
			console.HandleRx(buf[:n])
		} else {
			waitForEvent()
		}
	}
}
