package core

import (
	"errors"
	"strings"
	"time"

	"tinygo.org/x/drivers"
)

// Bus error taxonomy. Vendor error codes are classified into this
// closed set at the read site; nothing above this layer sees raw
// peripheral errors.
var (
	ErrBusNACK        = errors.New("i2c: no acknowledge")
	ErrBusTimeout     = errors.New("i2c: timeout")
	ErrBusFault       = errors.New("i2c: bus error")
	ErrBusArbitration = errors.New("i2c: arbitration lost")
	ErrBusOverrun     = errors.New("i2c: overrun")
	ErrBusTransfer    = errors.New("i2c: transfer error")
)

// ClassifyBusError translates a vendor peripheral error into the closed
// sentinel set. Errors already in the set pass through unchanged; for
// the rest the controller's message text decides the class. TinyGo's
// machine package reports a slave NACK as a transfer abort, hence the
// abort mapping.
func ClassifyBusError(err error) error {
	if err == nil {
		return nil
	}
	for _, s := range []error{
		ErrBusNACK, ErrBusTimeout, ErrBusFault,
		ErrBusArbitration, ErrBusOverrun, ErrBusTransfer,
	} {
		if errors.Is(err, s) {
			return err
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return ErrBusTimeout
	case strings.Contains(msg, "nack"),
		strings.Contains(msg, "not acknowledged"),
		strings.Contains(msg, "abort"):
		return ErrBusNACK
	case strings.Contains(msg, "arbitration"):
		return ErrBusArbitration
	case strings.Contains(msg, "overrun"):
		return ErrBusOverrun
	case strings.Contains(msg, "bus"):
		return ErrBusFault
	}
	return ErrBusTransfer
}

// busErrString maps a classified error to the compact string shown on
// the UI and CLI.
func busErrString(err error) string {
	switch {
	case err == nil:
		return "NONE"
	case errors.Is(err, ErrBusNACK):
		return "NACK"
	case errors.Is(err, ErrBusTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrBusFault):
		return "BUS"
	case errors.Is(err, ErrBusArbitration):
		return "ARLO"
	case errors.Is(err, ErrBusOverrun):
		return "OVR"
	case errors.Is(err, ErrBusTransfer):
		return "XFER"
	default:
		return "UNKNOWN"
	}
}

// RecoveryPins gives the recovery sequence direct control of the bus
// lines. DetachBus disables the controller and reconfigures SCL/SDA as
// open-drain GPIO outputs; ReattachBus restores the controller.
type RecoveryPins interface {
	DetachBus()
	SetSCL(high bool)
	SetSDA(high bool)
	ReadSDA() bool
	ReattachBus() error
}

// TempSensorAddr is the sensor's 7-bit bus address. The device answers a
// plain 2-byte read (int16 little-endian degrees Celsius, no command
// byte).
const TempSensorAddr = 0x28

const tempPollMS = 500

// TempSensor polls the external temperature source and carries the
// last-known-good value plus the last classified error for the UI.
//
// Each poll cycle is an independent attempt: primary read, and on
// failure one physical bus recovery followed by exactly one retry.
// A perpetually failing sensor yields a stable "not OK" status, never a
// hang.
type TempSensor struct {
	bus  drivers.I2C
	rec  RecoveryPins
	addr uint16

	poll Deadline

	ok      bool
	temp    int16
	lastErr string

	// Log, when set, receives one line per failed primary read.
	Log func(msg string)
}

func NewTempSensor(bus drivers.I2C, rec RecoveryPins) *TempSensor {
	return &TempSensor{
		bus:     bus,
		rec:     rec,
		addr:    TempSensorAddr,
		lastErr: "NONE",
	}
}

// read performs the primary request/response transaction.
func (s *TempSensor) read() (int16, error) {
	var buf [2]byte
	if err := s.bus.Tx(s.addr, nil, buf[:]); err != nil {
		return 0, ClassifyBusError(err)
	}
	return int16(uint16(buf[0]) | uint16(buf[1])<<8), nil
}

// recover runs the physical bus recovery: up to 9 SCL pulses to let a
// stuck device advance and release SDA, then a forced STOP condition,
// then controller reinit. The busy-waits are bounded to single-digit
// milliseconds by construction.
func (s *TempSensor) recover() {
	if s.rec == nil {
		return
	}

	s.rec.DetachBus()

	// Idle both lines high.
	s.rec.SetSCL(true)
	s.rec.SetSDA(true)
	time.Sleep(2 * time.Millisecond)

	for i := 0; i < 9; i++ {
		if s.rec.ReadSDA() {
			break
		}
		s.rec.SetSCL(false)
		time.Sleep(time.Millisecond)
		s.rec.SetSCL(true)
		time.Sleep(time.Millisecond)
	}

	// Forced STOP: SDA low -> SCL high -> SDA high.
	s.rec.SetSDA(false)
	time.Sleep(time.Millisecond)
	s.rec.SetSCL(true)
	time.Sleep(time.Millisecond)
	s.rec.SetSDA(true)
	time.Sleep(2 * time.Millisecond)

	if err := s.rec.ReattachBus(); err != nil && s.Log != nil {
		s.Log("I2C reinit failed (" + busErrString(ClassifyBusError(err)) + ")")
	}
}

// PollOnce runs one full poll cycle: read, and on failure recover and
// retry exactly once. At most one recovery per cycle.
func (s *TempSensor) PollOnce() {
	t, err := s.read()
	if err == nil {
		s.temp = t
		s.ok = true
		s.lastErr = "NONE"
		return
	}

	s.lastErr = busErrString(err)
	if s.Log != nil {
		s.Log("I2C err (" + s.lastErr + ") -> recover")
	}

	s.recover()

	t, err = s.read()
	if err == nil {
		s.temp = t
		s.ok = true
		s.lastErr = "NONE"
		return
	}

	s.lastErr = busErrString(err)
	s.ok = false
}

// Service polls on the fixed cadence. A slow recovery delays the next
// scheduled poll rather than re-entering.
func (s *TempSensor) Service(now uint32) {
	if !s.poll.Due(now, tempPollMS) {
		return
	}
	s.PollOnce()
}

// IsOk reports whether the last poll cycle succeeded.
func (s *TempSensor) IsOk() bool {
	return s.ok
}

// TempC returns the last good temperature in whole degrees Celsius.
func (s *TempSensor) TempC() int {
	return int(s.temp)
}

// LastErr returns the last classified error string, "NONE" when healthy.
func (s *TempSensor) LastErr() string {
	return s.lastErr
}
