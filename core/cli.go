package core

// CLI implements the USB console command set. Line editing lives in the
// Console; this layer only sees complete lines.

const (
	logPeriodDefaultMS = 5000
	logPeriodMinMS     = 200
	logPeriodMaxMS     = 60000
)

const cliHelp = "Commands:\r\n" +
	"  help\r\n" +
	"  status\r\n" +
	"  status json\r\n" +
	"  get i2c\r\n" +
	"  get can\r\n" +
	"  get can101\r\n" +
	"  get can120\r\n" +
	"  uptime\r\n" +
	"  log on|off\r\n" +
	"  rate <ms>\r\n" +
	"  version\r\n"

type CLI struct {
	console *Console
	temp    *TempSensor
	can     *CANMonitor
	net     *NetSession

	logEnabled bool
	lastPrint  uint32
	periodMS   uint32

	// Version is the firmware identification line; set by the target.
	Version string
}

func NewCLI(console *Console, temp *TempSensor, can *CANMonitor, net *NetSession) *CLI {
	return &CLI{
		console:  console,
		temp:     temp,
		can:      can,
		net:      net,
		periodMS: logPeriodDefaultMS,
		Version:  "embedded-iot-controller",
	}
}

func (c *CLI) i2cText() string {
	if c.temp.IsOk() {
		return "Temp: " + itoa(c.temp.TempC()) + " C"
	}
	return "ERR: " + c.temp.LastErr()
}

func (c *CLI) statusLine() string {
	return "[I2C]: " + c.i2cText() + " | [CAN]: " + c.can.LastText() + "\r\n"
}

func (c *CLI) statusJSON() string {
	if c.temp.IsOk() {
		return `{"i2c":{"ok":true,"temp_c":` + itoa(c.temp.TempC()) +
			`},"can":{"text":"` + c.can.LastText() + `"}}` + "\r\n"
	}
	return `{"i2c":{"ok":false,"err":"` + c.temp.LastErr() +
		`"},"can":{"text":"` + c.can.LastText() + `"}}` + "\r\n"
}

// Execute runs one command line and queues the response.
func (c *CLI) Execute(line string, now uint32) {
	// Skip leading whitespace.
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	cmd := line[i:]

	switch {
	case cmd == "":
		// Empty line: ignore.

	case cmd == "help":
		c.console.PrintSafe(cliHelp)

	case cmd == "status":
		c.console.PrintSafe(c.statusLine())

	case cmd == "status json":
		c.console.PrintSafe(c.statusJSON())

	case cmd == "get i2c":
		c.console.PrintSafe("[I2C]: " + c.i2cText() + "\r\n")

	case cmd == "get can":
		c.console.PrintSafe("[CAN]: " + c.can.LastText() + "\r\n")

	case cmd == "get can101":
		c.console.PrintSafe("[CAN101]: " + c.can.HeartbeatText() + "\r\n")

	case cmd == "get can120":
		c.console.PrintSafe("[CAN120]: " + c.can.LightText() + "\r\n")

	case cmd == "uptime":
		c.console.PrintSafe("Uptime: " + utoa(now) + " ms\r\n")

	case cmd == "log on":
		c.logEnabled = true
		c.lastPrint = now
		c.console.PrintSafe("OK: log enabled\r\n")

	case cmd == "log off":
		c.logEnabled = false
		c.console.PrintSafe("OK: log disabled\r\n")

	case cmd == "rate" || (len(cmd) >= 5 && cmd[:5] == "rate "):
		arg := ""
		if len(cmd) > 5 {
			arg = cmd[5:]
		}
		// A missing or unparsable argument reads as 0 and clamps to
		// the minimum.
		ms, ok := parseUint(arg)
		if !ok {
			ms = 0
		}
		if ms < logPeriodMinMS {
			ms = logPeriodMinMS
		}
		if ms > logPeriodMaxMS {
			ms = logPeriodMaxMS
		}
		c.periodMS = ms
		c.console.PrintSafe("OK: rate=" + utoa(c.periodMS) + " ms\r\n")

	case cmd == "version":
		c.console.PrintSafe("FW: " + c.Version + "\r\n")

	default:
		c.console.PrintSafe("ERR: unknown cmd. Type 'help'\r\n")
	}
}

// Service processes at most one pending command line per call.
func (c *CLI) Service(now uint32) {
	line, ok := c.console.ReadLine()
	if !ok {
		return
	}
	c.Execute(line, now)
}

// LogService prints the periodic status line when logging is enabled.
func (c *CLI) LogService(now uint32) {
	if !c.logEnabled {
		return
	}
	if now-c.lastPrint < c.periodMS {
		return
	}
	c.lastPrint = now
	c.console.PrintSafe(c.statusLine())
}

// LogEnabled reports whether periodic logging is active.
func (c *CLI) LogEnabled() bool {
	return c.logEnabled
}

// LogPeriodMS returns the current logging cadence.
func (c *CLI) LogPeriodMS() uint32 {
	return c.periodMS
}
