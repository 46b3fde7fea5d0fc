//go:build rp2040 || rp2350

package main

import (
	"device/arm"
	"machine"
	"runtime"

	"github.com/rene-schmidt/embedded-iot-controller/core"
)

const firmwareVersion = "embedded-iot-controller rp2040 v1.0.0"

// Pin assignment.
const (
	// SPI0: TFT display.
	pinTFTSCK machine.Pin = machine.GPIO2
	pinTFTTX  machine.Pin = machine.GPIO3
	pinTFTCS  machine.Pin = machine.GPIO20
	pinTFTDC  machine.Pin = machine.GPIO21
	pinTFTRST machine.Pin = machine.GPIO22

	// SPI1: MCP2515 CAN controller.
	pinCANSCK machine.Pin = machine.GPIO10
	pinCANTX  machine.Pin = machine.GPIO11
	pinCANRX  machine.Pin = machine.GPIO12
	pinCANCS  machine.Pin = machine.GPIO13

	// I2C0: temperature sensor.
	pinSDA machine.Pin = machine.GPIO4
	pinSCL machine.Pin = machine.GPIO5
)

const i2cFreqHz = 100_000

// outPin adapts machine.Pin to the display's control line interface.
type outPin struct {
	p machine.Pin
}

func (o outPin) Set(high bool) {
	o.p.Set(high)
}

func waitForEvent() {
	// Let other goroutines run first, then sleep until the next
	// interrupt wakes the core.
	runtime.Gosched()
	arm.Asm("wfi")
}

func main() {
	// Disable the watchdog on boot to clear any state left over from a
	// previous reset.
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	machine.Serial.Configure(machine.UARTConfig{})

	// Display bus.
	machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 12_000_000,
		SCK:       pinTFTSCK,
		SDO:       pinTFTTX,
		Mode:      0,
	})
	for _, p := range []machine.Pin{pinTFTCS, pinTFTDC, pinTFTRST} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.High()
	}

	// CAN controller bus.
	machine.SPI1.Configure(machine.SPIConfig{
		Frequency: 500_000,
		SCK:       pinCANSCK,
		SDO:       pinCANTX,
		SDI:       pinCANRX,
		Mode:      0,
	})
	pinCANCS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinCANCS.High()

	// Sensor bus.
	machine.I2C0.Configure(machine.I2CConfig{
		Frequency: i2cFreqHz,
		SCL:       pinSCL,
		SDA:       pinSDA,
	})

	clock := hwClock{}

	display := core.NewDisplay(machine.SPI0,
		outPin{pinTFTCS}, outPin{pinTFTDC}, outPin{pinTFTRST})
	display.Init()

	recovery := newI2CRecovery(machine.I2C0, pinSCL, pinSDA, i2cFreqHz)
	temp := core.NewTempSensor(machine.I2C0, recovery)

	can := core.NewCANMonitor(clock)

	// Controller absent or misconfigured: run without CAN rather than
	// refuse to boot.
	var src core.CANSource
	if s, err := newCANSource(machine.SPI1, pinCANCS); err == nil {
		src = s
	}

	console := core.NewConsole(usbTransport{})

	// The Pico variant carries no network interface; telemetry sends
	// are counted as dropped and the UI shows the channel down.
	net := core.NewNetSession(nullStack{})

	app := core.NewApp(clock, display, temp, can, src, net, console)
	app.CLI().Version = firmwareVersion
	temp.Log = console.PrintSafe
	app.WaitForEvent = waitForEvent

	go usbReaderLoop(console)

	app.Start()
	app.Run()
}
