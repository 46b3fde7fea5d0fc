package core

import "github.com/rene-schmidt/embedded-iot-controller/protocol"

// App composes every subsystem and runs the cooperative main loop.
//
// One iteration services each subsystem exactly once, in fixed order.
// There are no priorities beyond call order and no preemption; each
// subsystem throttles itself against its own deadline and bounds its
// per-visit work, which is what keeps very different cadences (10 ms
// network pump vs multi-second logging) coexisting in one flat loop.
type App struct {
	clock Clock

	display *Display
	ui      UIManager
	temp    *TempSensor
	can     *CANMonitor
	canSrc  CANSource
	net     *NetSession
	console *Console
	cli     *CLI

	canDL Deadline
	uiDL  Deadline

	// WaitForEvent, when set, is invoked after a fully idle iteration
	// (console drained, display idle) to enter a low-power wait until
	// the next interrupt.
	WaitForEvent func()
}

const (
	canServiceMS = 50
	uiRefreshMS  = 50
)

func NewApp(clock Clock, display *Display, temp *TempSensor, can *CANMonitor,
	canSrc CANSource, net *NetSession, console *Console) *App {

	a := &App{
		clock:   clock,
		display: display,
		temp:    temp,
		can:     can,
		canSrc:  canSrc,
		net:     net,
		console: console,
	}
	a.cli = NewCLI(console, temp, can, net)
	net.Sample = a.sampleTelemetry
	return a
}

// CLI exposes the command handler, mainly so targets can set Version.
func (a *App) CLI() *CLI {
	return a.cli
}

// Start queues the console greeting and clears the display.
func (a *App) Start() {
	a.console.Greet()
	a.ui.ClearAll()
	a.display.StartFill(0x0000)
}

// sampleTelemetry captures the current system state for the wire.
func (a *App) sampleTelemetry(now uint32) protocol.Telemetry {
	return protocol.Telemetry{
		NowMS:   now,
		I2CTemp: int32(a.temp.TempC()),
		CAN101:  a.can.HeartbeatText(),
		CAN120:  a.can.LightText(),
	}
}

// feedUI refreshes the desired text of every display line. Rendering is
// throttled separately; setting unchanged text is a no-op.
func (a *App) feedUI() {
	black := uint16(0x0000)

	if a.temp.IsOk() {
		a.ui.SetLine(UILineI2C, RGB565(255, 255, 0), black,
			"I2C: "+itoa(a.temp.TempC())+" C")
	} else {
		a.ui.SetLine(UILineI2C, RGB565(255, 0, 0), black,
			"I2C: ERR "+a.temp.LastErr())
	}

	if a.can.HeartbeatValid() {
		a.ui.SetLine(UILineCAN101, RGB565(255, 0, 255), black,
			"CAN 0x101: "+a.can.HeartbeatText())
	} else {
		a.ui.SetLine(UILineCAN101, RGB565(255, 0, 0), black,
			"CAN 0x101: (no data)")
	}

	if a.can.LightValid() {
		a.ui.SetLine(UILineCAN120, RGB565(255, 0, 255), black, "CAN 0x120:")
		a.ui.SetLine(UILineLux, RGB565(100, 0, 100), black, "lux : "+utoa(a.can.Lux()))
		a.ui.SetLine(UILineFull, RGB565(100, 0, 100), black, "full: "+utoa(uint32(a.can.Full())))
		a.ui.SetLine(UILineIR, RGB565(100, 0, 100), black, "ir  : "+utoa(uint32(a.can.IR())))
	} else {
		a.ui.SetLine(UILineCAN120, RGB565(255, 0, 0), black, "CAN 0x120: (no data)")
		a.ui.SetLine(UILineLux, black, black, "")
		a.ui.SetLine(UILineFull, black, black, "")
		a.ui.SetLine(UILineIR, black, black, "")
	}

	if a.net.TCPIsConnected() {
		a.ui.SetLine(UILineNetTCP, RGB565(0, 255, 255), black, "NET TCP: UP")
	} else {
		a.ui.SetLine(UILineNetTCP, RGB565(0, 255, 255), black, "NET TCP: DOWN")
	}
	a.ui.SetLine(UILineTCPPayload, RGB565(0, 100, 100), black, "TCP: "+a.net.LastTCP())
	a.ui.SetLine(UILineNetUDP, RGB565(0, 255, 255), black, "NET UDP: TX 1Hz")
	a.ui.SetLine(UILineUDPPayload, RGB565(0, 100, 100), black, "UDP: "+a.net.LastUDP())
}

// ServiceOnce is one main-loop iteration at time now.
func (a *App) ServiceOnce(now uint32) {
	// Network telemetry + stack pump.
	a.net.Service(now)

	// Console TX drain.
	a.console.TxService()

	// CAN wrapper; RX itself may be interrupt-driven.
	if a.canDL.Due(now, canServiceMS) {
		a.can.Service(a.canSrc)
	}

	// I2C polling + recovery.
	a.temp.Service(now)

	// Display engine + throttled UI render.
	a.display.Pump()
	a.feedUI()
	if a.uiDL.Due(now, uiRefreshMS) {
		a.ui.PumpOnce(a.display)
	}

	// Command processing.
	a.cli.Service(now)

	// Periodic status log.
	a.cli.LogService(now)
}

// Idle reports that every queue is provably empty, allowing the
// processor to sleep until the next interrupt.
func (a *App) Idle() bool {
	return a.console.TxIsEmpty() && !a.display.IsBusy()
}

// Run executes the main loop forever.
func (a *App) Run() {
	for {
		now := a.clock.NowMS()
		a.ServiceOnce(now)

		if a.Idle() && a.WaitForEvent != nil {
			a.WaitForEvent()
		}
	}
}
