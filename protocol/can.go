package protocol

// CAN frame IDs understood by this firmware. Both are standard 11-bit IDs.
const (
	CANIDHeartbeat = 0x101 // byte 0 = rolling sequence counter
	CANIDLight     = 0x120 // 8-byte light sensor payload
)

// Frame is one received CAN data frame.
type Frame struct {
	ID       uint32
	Length   uint8
	Data     [8]byte
	Extended bool // 29-bit identifier
	Remote   bool // remote transmission request
}

// Heartbeat is the decoded 0x101 payload.
type Heartbeat struct {
	Seq uint8
}

// LightReading is the decoded 0x120 payload.
// LuxX100 is the illuminance scaled by 100; Full and IR are the raw
// broadband and infrared channel counts.
type LightReading struct {
	LuxX100 uint32
	Full    uint16
	IR      uint16
}

// Lux returns the integer illuminance value.
func (l LightReading) Lux() uint32 {
	return l.LuxX100 / 100
}

func u16le(p []byte) uint16 {
	return uint16(p[0]) | uint16(p[1])<<8
}

func u32le(p []byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}

// DecodeHeartbeat decodes a 0x101 frame. Frames with the wrong ID, an
// extended identifier, a remote request flag, or an empty payload are
// rejected.
func DecodeHeartbeat(f *Frame) (Heartbeat, bool) {
	if f.ID != CANIDHeartbeat || f.Extended || f.Remote || f.Length < 1 {
		return Heartbeat{}, false
	}
	return Heartbeat{Seq: f.Data[0]}, true
}

// DecodeLightReading decodes a 0x120 frame. The payload must be exactly
// 8 bytes: u32 LE lux*100, u16 LE full, u16 LE ir.
func DecodeLightReading(f *Frame) (LightReading, bool) {
	if f.ID != CANIDLight || f.Extended || f.Remote || f.Length != 8 {
		return LightReading{}, false
	}
	return LightReading{
		LuxX100: u32le(f.Data[0:4]),
		Full:    u16le(f.Data[4:6]),
		IR:      u16le(f.Data[6:8]),
	}, true
}

// Text renders the heartbeat in the fixed form shown on the display and
// in telemetry: "HB seq=N".
func (h Heartbeat) Text() string {
	return "HB seq=" + utoa(uint32(h.Seq))
}

// Text renders the light reading as "LIGHT lux=L full=F ir=I" with lux
// presented as an integer.
func (l LightReading) Text() string {
	return "LIGHT lux=" + utoa(l.Lux()) +
		" full=" + utoa(uint32(l.Full)) +
		" ir=" + utoa(uint32(l.IR))
}
