package protocol

// Telemetry is one sample of the aggregated system state, sent over both
// the UDP and TCP channels.
type Telemetry struct {
	NowMS   uint32 // monotonic ms at sample time
	I2CTemp int32  // degrees Celsius, last good sensor value
	CAN101  string // heartbeat text or "none"
	CAN120  string // light reading text or "none"
}

// MaxTelemetryLen bounds the encoded payload. Matches the original
// single-message TX buffer size.
const MaxTelemetryLen = 256

// AppendJSON appends the newline-terminated compact JSON wire form:
//
//	{"ts":<u32>,"i2c":<i32>,"can101":"<s>","can120":"<s>"}\n
//
// The CAN text fields are escaped for quotes and backslashes; the
// decoders only ever produce plain ASCII so this is normally a copy.
func (t *Telemetry) AppendJSON(dst []byte) []byte {
	dst = append(dst, `{"ts":`...)
	dst = append(dst, utoa(t.NowMS)...)
	dst = append(dst, `,"i2c":`...)
	dst = append(dst, itoa(t.I2CTemp)...)
	dst = append(dst, `,"can101":"`...)
	dst = appendEscaped(dst, t.CAN101)
	dst = append(dst, `","can120":"`...)
	dst = appendEscaped(dst, t.CAN120)
	dst = append(dst, '"', '}', '\n')
	return dst
}

func appendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c < 0x20:
			// Control bytes cannot appear in the fixed texts; drop
			// rather than emit invalid JSON.
		default:
			dst = append(dst, c)
		}
	}
	return dst
}
