//go:build !tinygo

// Host-side simulator: runs the full firmware application against
// simulated peripherals and the host network stack. Useful for
// exercising the console, telemetry and UI plumbing without a board.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rene-schmidt/embedded-iot-controller/core"
)

var (
	udpAddr = flag.String("udp", "127.0.0.1:9095", "UDP telemetry destination")
	tcpAddr = flag.String("tcp", "127.0.0.1:9096", "TCP telemetry destination")
	flaky   = flag.Bool("flaky-i2c", false, "Inject periodic I2C bus faults")
)

const simVersion = "embedded-iot-controller sim v1.0.0"

// wallClock maps the host monotonic clock onto the firmware's 32-bit
// millisecond time base.
type wallClock struct {
	start time.Time
}

func (c *wallClock) NowMS() uint32 {
	return uint32(time.Since(c.start) / time.Millisecond)
}

// stdoutTransport writes console output straight to the terminal.
type stdoutTransport struct{}

func (stdoutTransport) Write(p []byte) error {
	_, err := os.Stdout.Write(p)
	return err
}

// stdinReader feeds terminal input into the console line editor.
func stdinReader(console *core.Console) {
	var buf [64]byte
	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil {
			return
		}
		console.HandleRx(buf[:n])
	}
}

func main() {
	flag.Parse()

	clock := &wallClock{start: time.Now()}

	// The display streams into a byte sink; only the engine's pacing
	// and line rendering are exercised here.
	display := core.NewDisplay(&sinkSPI{}, nopPin{}, nopPin{}, nopPin{})
	display.Init()

	bus := newSimI2C(clock, *flaky)
	temp := core.NewTempSensor(bus, bus)

	can := core.NewCANMonitor(clock)
	canSrc := newSimCAN(clock)

	console := core.NewConsole(stdoutTransport{})
	stack := newHostStack(*udpAddr, *tcpAddr)
	net := core.NewNetSession(stack)

	app := core.NewApp(clock, display, temp, can, canSrc, net, console)
	app.CLI().Version = simVersion
	temp.Log = console.PrintSafe
	app.WaitForEvent = func() { time.Sleep(time.Millisecond) }

	go stdinReader(console)

	fmt.Fprintf(os.Stderr, "sim: udp=%s tcp=%s\n", *udpAddr, *tcpAddr)

	app.Start()
	app.Run()
}
